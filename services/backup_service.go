package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/storage"
	"github.com/google/uuid"
)

const (
	backupPrefix      = "backups/"
	backupContentType = "application/json"
	maxBackupSize     = 10 << 20
)

// DataPorter is the export/import half of the persistence collaborator.
type DataPorter interface {
	Export(ctx context.Context) (*models.Backup, error)
	Import(ctx context.Context, backup *models.Backup) error
}

type BackupInfo struct {
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"`
	Size int64  `json:"size"`
}

type BackupService interface {
	Enabled() bool
	Upload(ctx context.Context) (*BackupInfo, error)
	Restore(ctx context.Context, key string) (*models.Backup, error)
}

type backupService struct {
	store  storage.ObjectStore
	data   DataPorter
	logger *slog.Logger
	now    func() time.Time
}

// NewBackupService accepts a nil store; every call then fails with ErrBackupsDisabled.
func NewBackupService(store storage.ObjectStore, data DataPorter, logger *slog.Logger) BackupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &backupService{store: store, data: data, logger: logger, now: time.Now}
}

func (s *backupService) Enabled() bool {
	return s.store != nil
}

func (s *backupService) Upload(ctx context.Context) (*BackupInfo, error) {
	if !s.Enabled() {
		return nil, ErrBackupsDisabled
	}
	backup, err := s.data.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export data for backup: %w", err)
	}
	body, err := json.Marshal(backup)
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	key := fmt.Sprintf("%s%s-%s.json", backupPrefix, s.now().UTC().Format("20060102T150405Z"), uuid.NewString())
	res, err := s.store.Put(ctx, key, backupContentType, body)
	if err != nil {
		return nil, err
	}
	s.logger.Info("backup uploaded", slog.String("key", res.Key), slog.Int64("size", res.Size))
	return &BackupInfo{Key: res.Key, URL: res.Location, Size: res.Size}, nil
}

// Restore downloads the backup stored under key and imports it.
func (s *backupService) Restore(ctx context.Context, key string) (*models.Backup, error) {
	if !s.Enabled() {
		return nil, ErrBackupsDisabled
	}
	key = strings.TrimSpace(key)
	if !strings.HasPrefix(key, backupPrefix) || strings.Contains(key, "..") {
		return nil, fmt.Errorf("%w: key must start with %q", ErrInvalidBackup, backupPrefix)
	}

	rc, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: backup %s", ErrNotFound, key)
		}
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(io.LimitReader(rc, maxBackupSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read backup %s: %w", key, err)
	}
	if len(raw) > maxBackupSize {
		return nil, fmt.Errorf("%w: backup is larger than %d bytes", ErrInvalidBackup, maxBackupSize)
	}

	var backup models.Backup
	if err := json.Unmarshal(raw, &backup); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if err := s.data.Import(ctx, &backup); err != nil {
		return nil, fmt.Errorf("failed to import backup %s: %w", key, err)
	}
	s.logger.Info("backup restored", slog.String("key", key))
	return &backup, nil
}
