package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Dosada05/scoreboard/models"
	"github.com/gosimple/slug"
)

const defaultMinWinBy = 2

// SettingsStore is the slice of the persistence collaborator used for settings.
type SettingsStore interface {
	LoadSetting(ctx context.Context, key string, dst any) bool
	SaveSetting(ctx context.Context, key string, value any) bool
}

type GameTypeService interface {
	List(ctx context.Context) []models.GameType
	Get(ctx context.Context, key string) (models.GameType, bool)
	AddCustom(ctx context.Context, input CreateGameTypeInput) (models.GameType, error)
	ResolveConfig(ctx context.Context, req ConfigRequest) (models.MatchConfig, error)
}

type CreateGameTypeInput struct {
	Name         string `json:"name"`
	DefaultScore int    `json:"default_score"`
	MinWinBy     int    `json:"min_win_by"`
}

// ConfigRequest describes a match setup. Nil fields fall back to the game type preset.
type ConfigRequest struct {
	GameKind     string `json:"game_kind"`
	TargetScore  *int   `json:"target_score,omitempty"`
	MinWinBy     *int   `json:"min_win_by,omitempty"`
	MaxScore     *int   `json:"max_score,omitempty"`
	DeuceEnabled bool   `json:"deuce_enabled"`
}

type gameTypeService struct {
	store  SettingsStore
	logger *slog.Logger
}

func NewGameTypeService(store SettingsStore, logger *slog.Logger) GameTypeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &gameTypeService{store: store, logger: logger}
}

func (s *gameTypeService) all(ctx context.Context) map[string]models.GameType {
	types := models.PresetGameTypes()
	custom := map[string]models.GameType{}
	if s.store != nil && s.store.LoadSetting(ctx, models.SettingCustomGameTypes, &custom) {
		for key, gt := range custom {
			if _, builtin := types[key]; builtin {
				continue
			}
			gt.Key = key
			gt.IsCustom = true
			types[key] = gt
		}
	}
	return types
}

func (s *gameTypeService) List(ctx context.Context) []models.GameType {
	types := s.all(ctx)
	out := make([]models.GameType, 0, len(types))
	for _, gt := range types {
		out = append(out, gt)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if a != b {
			return a < b
		}
		if out[i].IsCustom != out[j].IsCustom {
			return !out[i].IsCustom
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Get looks a game type up by key, falling back to a case-insensitive name match.
func (s *gameTypeService) Get(ctx context.Context, key string) (models.GameType, bool) {
	if gt, ok := s.all(ctx)[key]; ok {
		return gt, true
	}
	// Presets come before custom types with the same name.
	for _, gt := range s.List(ctx) {
		if strings.EqualFold(gt.Name, strings.TrimSpace(key)) {
			return gt, true
		}
	}
	return models.GameType{}, false
}

func (s *gameTypeService) AddCustom(ctx context.Context, input CreateGameTypeInput) (models.GameType, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return models.GameType{}, fmt.Errorf("%w: game type must have a name", ErrInvalidName)
	}
	if input.DefaultScore < MinTargetScore || input.DefaultScore > MaxTargetScore {
		return models.GameType{}, fmt.Errorf("%w: default score must be between %d and %d", ErrInvalidSetup, MinTargetScore, MaxTargetScore)
	}
	minWinBy := input.MinWinBy
	if minWinBy == 0 {
		minWinBy = defaultMinWinBy
	}
	if minWinBy < MinWinByLimit || minWinBy > MaxWinByLimit {
		return models.GameType{}, fmt.Errorf("%w: minimum win margin must be between %d and %d", ErrInvalidSetup, MinWinByLimit, MaxWinByLimit)
	}

	key := slug.Make(name)
	if key == "" {
		return models.GameType{}, fmt.Errorf("%w: game type name %q has no usable characters", ErrInvalidName, name)
	}
	for presetKey, preset := range models.PresetGameTypes() {
		if presetKey == key || strings.EqualFold(preset.Name, name) {
			return models.GameType{}, fmt.Errorf("%w: %q is a built-in game type", ErrDuplicateName, name)
		}
	}

	gt := models.GameType{
		Key:          key,
		Name:         name,
		DefaultScore: input.DefaultScore,
		MinWinBy:     minWinBy,
		IsCustom:     true,
	}

	custom := map[string]models.GameType{}
	if s.store != nil {
		s.store.LoadSetting(ctx, models.SettingCustomGameTypes, &custom)
	}
	for existingKey, existing := range custom {
		if existingKey == key || strings.EqualFold(existing.Name, name) {
			return models.GameType{}, fmt.Errorf("%w: game type %q already exists", ErrDuplicateName, name)
		}
	}
	custom[key] = gt
	if s.store != nil && !s.store.SaveSetting(ctx, models.SettingCustomGameTypes, custom) {
		s.logger.Warn("custom game type kept in memory only", slog.String("key", key))
	}
	s.logger.Info("custom game type added", slog.String("key", key), slog.Int("default_score", gt.DefaultScore))
	return gt, nil
}

func (s *gameTypeService) ResolveConfig(ctx context.Context, req ConfigRequest) (models.MatchConfig, error) {
	gt, ok := s.Get(ctx, req.GameKind)
	if !ok {
		return models.MatchConfig{}, fmt.Errorf("%w: unknown game type %q", ErrInvalidSetup, req.GameKind)
	}

	cfg := models.MatchConfig{
		GameKind:     gt.Key,
		TargetScore:  gt.DefaultScore,
		MinWinBy:     gt.MinWinBy,
		DeuceEnabled: req.DeuceEnabled,
	}
	if cfg.MinWinBy == 0 {
		cfg.MinWinBy = defaultMinWinBy
	}
	if req.TargetScore != nil {
		cfg.TargetScore = *req.TargetScore
	}
	if req.MinWinBy != nil {
		cfg.MinWinBy = *req.MinWinBy
	}
	if req.MaxScore != nil && *req.MaxScore > 0 {
		v := *req.MaxScore
		cfg.MaxScore = &v
	}

	if err := ValidateMatchConfig(cfg); err != nil {
		return models.MatchConfig{}, err
	}
	return cfg, nil
}
