package services

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/scoreboard/utils"
	"github.com/golang-jwt/jwt/v4"
)

const (
	RoleScorekeeper = "scorekeeper"
	TokenTTL        = 12 * time.Hour

	claimRole = "role"
)

// AuthService guards the scoring commands with a shared scorekeeper PIN.
type AuthService interface {
	Enabled() bool
	Login(pin string) (string, time.Time, error)
	Verify(token string) error
}

type authService struct {
	pinHash   string
	jwtSecret []byte
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService returns a disabled service when pinHash is empty: every request is let through.
func NewAuthService(pinHash, jwtSecret string, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		pinHash:   pinHash,
		jwtSecret: []byte(jwtSecret),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *authService) Enabled() bool {
	return s.pinHash != ""
}

// Login checks pin and issues a signed scorekeeper token.
func (s *authService) Login(pin string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrAuthDisabled
	}
	if pin == "" || !utils.CheckPINHash(pin, s.pinHash) {
		s.logger.Warn("scorekeeper login rejected")
		return "", time.Time{}, ErrAuthenticationFailed
	}

	now := s.now()
	expires := now.Add(TokenTTL)
	claims := jwt.MapClaims{
		claimRole: RoleScorekeeper,
		"exp":     expires.Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

func (s *authService) Verify(tokenString string) error {
	if !s.Enabled() {
		return nil
	}
	if tokenString == "" {
		return ErrAuthenticationFailed
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return fmt.Errorf("%w: token expired", ErrAuthenticationFailed)
		}
		return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ErrAuthenticationFailed
	}
	if role, _ := claims[claimRole].(string); role != RoleScorekeeper {
		return ErrForbidden
	}
	return nil
}
