package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Dosada05/scoreboard/services"
)

type contextKey string

const scorekeeperContextKey contextKey = "scorekeeper"

// RequireScorekeeper lets a request through when scorekeeper auth is off or the
// bearer token carries the scorekeeper role.
func RequireScorekeeper(auth services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth == nil || !auth.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing or malformed authorization header")
				return
			}
			if err := auth.Verify(token); err != nil {
				if errors.Is(err, services.ErrForbidden) {
					writeError(w, http.StatusForbidden, err.Error())
					return
				}
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), scorekeeperContextKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsScorekeeper reports whether the request passed RequireScorekeeper with a token.
func IsScorekeeper(ctx context.Context) bool {
	v, _ := ctx.Value(scorekeeperContextKey).(bool)
	return v
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
