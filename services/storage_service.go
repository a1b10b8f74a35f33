package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/repositories"
	"github.com/Dosada05/scoreboard/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StorageService is the persistence collaborator. Storage is best-effort:
// failures are logged here and never reach the caller, which keeps treating its
// in-memory state as the source of truth.
type StorageService struct {
	matches  repositories.MatchStateRepository
	history  repositories.HistoryRepository
	settings repositories.SettingsRepository
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	replaced []func(context.Context)
}

func NewStorageService(
	matches repositories.MatchStateRepository,
	history repositories.HistoryRepository,
	settings repositories.SettingsRepository,
	logger *slog.Logger,
) *StorageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageService{
		matches:  matches,
		history:  history,
		settings: settings,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// OnReplace registers fn to run after Import or ClearAll rewrote the stored data,
// so components caching settings in memory can reload them.
func (s *StorageService) OnReplace(fn func(context.Context)) {
	s.replaced = append(s.replaced, fn)
}

func (s *StorageService) notifyReplaced(ctx context.Context) {
	for _, fn := range s.replaced {
		fn(ctx)
	}
}

func (s *StorageService) SaveMatch(ctx context.Context, match *models.Match) {
	if err := s.matches.Save(ctx, match); err != nil {
		s.logger.Error("error saving current game", slog.Any("error", err))
	}
}

// LoadMatch returns the saved match or nil if there is none or it cannot be read.
func (s *StorageService) LoadMatch(ctx context.Context) *models.Match {
	match, err := s.matches.Get(ctx)
	if err != nil {
		s.logger.Error("error loading current game", slog.Any("error", err))
		return nil
	}
	return match
}

func (s *StorageService) ClearMatch(ctx context.Context) {
	if err := s.matches.Delete(ctx); err != nil {
		s.logger.Error("error clearing current game", slog.Any("error", err))
	}
}

// AppendHistory stores result as the newest history entry. It returns the
// stored record, or nil when it could not be saved.
func (s *StorageService) AppendHistory(ctx context.Context, result models.MatchResult) *models.HistoryRecord {
	record := &models.HistoryRecord{
		ID:          s.newID(),
		CompletedAt: s.now().UTC(),
		MatchResult: result,
	}
	if err := s.history.Append(ctx, record); err != nil {
		s.logger.Error("error saving game to history", slog.String("match_id", result.MatchID), slog.Any("error", err))
		return nil
	}
	return record
}

// GetHistory returns at most 50 records, newest first; empty on failure.
func (s *StorageService) GetHistory(ctx context.Context) []models.HistoryRecord {
	records, err := s.history.List(ctx)
	if err != nil {
		s.logger.Error("error loading game history", slog.Any("error", err))
		return []models.HistoryRecord{}
	}
	return records
}

func (s *StorageService) ClearHistory(ctx context.Context) bool {
	if err := s.history.Clear(ctx); err != nil {
		s.logger.Error("error clearing game history", slog.Any("error", err))
		return false
	}
	return true
}

// LoadSetting decodes the stored value of key into dst. It reports false when the
// key is missing or unreadable.
func (s *StorageService) LoadSetting(ctx context.Context, key string, dst any) bool {
	raw, err := s.settings.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, repositories.ErrSettingNotFound) {
			s.logger.Error("error loading setting", slog.String("key", key), slog.Any("error", err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Error("error decoding setting", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

func (s *StorageService) SaveSetting(ctx context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("error encoding setting", slog.String("key", key), slog.Any("error", err))
		return false
	}
	if err := s.settings.Put(ctx, key, raw); err != nil {
		s.logger.Error("error saving setting", slog.String("key", key), slog.Any("error", err))
		return false
	}
	return true
}

// Export loads everything that is stored, concurrently.
func (s *StorageService) Export(ctx context.Context) (*models.Backup, error) {
	backup := &models.Backup{ExportedAt: s.now().UTC()}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		match, err := s.matches.Get(gCtx)
		if err != nil {
			return fmt.Errorf("export current game: %w", err)
		}
		backup.CurrentGame = match
		return nil
	})
	g.Go(func() error {
		records, err := s.history.List(gCtx)
		if err != nil {
			return fmt.Errorf("export history: %w", err)
		}
		backup.History = records
		return nil
	})
	g.Go(func() error {
		settings, err := s.settings.All(gCtx)
		if err != nil {
			return fmt.Errorf("export settings: %w", err)
		}
		backup.Settings = settings
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("error exporting data", slog.Any("error", err))
		return nil, err
	}
	return backup, nil
}

// Import writes every section present in backup. Missing sections are left alone.
func (s *StorageService) Import(ctx context.Context, backup *models.Backup) error {
	if backup == nil {
		return ErrInvalidBackup
	}
	if backup.CurrentGame != nil {
		if err := s.matches.Save(ctx, backup.CurrentGame); err != nil {
			s.logger.Error("error importing current game", slog.Any("error", err))
			return err
		}
	}
	if backup.History != nil {
		if err := s.history.ReplaceAll(ctx, backup.History); err != nil {
			s.logger.Error("error importing history", slog.Any("error", err))
			return err
		}
	}
	for key, value := range backup.Settings {
		if err := s.settings.Put(ctx, key, value); err != nil {
			s.logger.Error("error importing setting", slog.String("key", key), slog.Any("error", err))
			return err
		}
	}
	s.notifyReplaced(ctx)
	return nil
}

// ClearAll removes the current game, history and settings.
func (s *StorageService) ClearAll(ctx context.Context) bool {
	ok := true
	if err := s.matches.Delete(ctx); err != nil {
		s.logger.Error("error clearing current game", slog.Any("error", err))
		ok = false
	}
	if err := s.history.Clear(ctx); err != nil {
		s.logger.Error("error clearing game history", slog.Any("error", err))
		ok = false
	}
	if err := s.settings.Clear(ctx); err != nil {
		s.logger.Error("error clearing settings", slog.Any("error", err))
		ok = false
	}
	s.notifyReplaced(ctx)
	return ok
}

// Info reports approximate storage usage; nil when it cannot be measured.
func (s *StorageService) Info(ctx context.Context) *models.StorageInfo {
	current, err := s.matches.Size(ctx)
	if err != nil {
		s.logger.Error("error getting storage info", slog.Any("error", err))
		return nil
	}
	settings, err := s.settings.Size(ctx)
	if err != nil {
		s.logger.Error("error getting storage info", slog.Any("error", err))
		return nil
	}
	records, err := s.history.List(ctx)
	if err != nil {
		s.logger.Error("error getting storage info", slog.Any("error", err))
		return nil
	}
	historyRaw, err := json.Marshal(records)
	if err != nil {
		s.logger.Error("error getting storage info", slog.Any("error", err))
		return nil
	}

	total := current + len(historyRaw) + settings
	return &models.StorageInfo{
		CurrentGameSize: current,
		HistorySize:     len(historyRaw),
		SettingsSize:    settings,
		TotalSize:       total,
		TotalFormatted:  utils.FormatBytes(total),
		HistoryCount:    len(records),
	}
}
