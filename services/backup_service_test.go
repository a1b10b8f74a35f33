package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/scoreboard/models"
)

type fakePorter struct {
	exported *models.Backup
	imported *models.Backup
}

func (f *fakePorter) Export(context.Context) (*models.Backup, error) {
	return f.exported, nil
}

func (f *fakePorter) Import(_ context.Context, b *models.Backup) error {
	f.imported = b
	return nil
}

func TestBackupDisabled(t *testing.T) {
	t.Parallel()
	svc := NewBackupService(nil, &fakePorter{}, nil)
	if svc.Enabled() {
		t.Fatal("Enabled() = true without a store")
	}
	if _, err := svc.Upload(context.Background()); !errors.Is(err, ErrBackupsDisabled) {
		t.Fatalf("Upload error = %v, want %v", err, ErrBackupsDisabled)
	}
	if _, err := svc.Restore(context.Background(), "backups/x.json"); !errors.Is(err, ErrBackupsDisabled) {
		t.Fatalf("Restore error = %v, want %v", err, ErrBackupsDisabled)
	}
}

func TestBackupUploadAndRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryObjectStore()
	porter := &fakePorter{exported: &models.Backup{
		History: []models.HistoryRecord{
			historyRecord("h1", models.GameBadminton, individuals("Ann", "Bob"), []int{21, 12}, 0),
		},
		ExportedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}}
	svc := NewBackupService(store, porter, nil)

	info, err := svc.Upload(ctx)
	if err != nil {
		t.Fatalf("Upload error = %v", err)
	}
	if !strings.HasPrefix(info.Key, "backups/") || !strings.HasSuffix(info.Key, ".json") {
		t.Fatalf("backup key = %q", info.Key)
	}
	if info.Size == 0 || info.URL == "" {
		t.Fatalf("backup info = %+v", info)
	}

	restored, err := svc.Restore(ctx, info.Key)
	if err != nil {
		t.Fatalf("Restore error = %v", err)
	}
	if len(restored.History) != 1 || restored.History[0].ID != "h1" {
		t.Fatalf("restored backup = %+v", restored)
	}
	if porter.imported == nil || porter.imported.History[0].Winner.Name != "Ann" {
		t.Fatalf("imported = %+v", porter.imported)
	}
}

func TestBackupRestoreErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryObjectStore()
	store.objects["backups/broken.json"] = []byte("{not json")
	svc := NewBackupService(store, &fakePorter{}, nil)

	tests := []struct {
		key     string
		wantErr error
	}{
		{key: "other/file.json", wantErr: ErrInvalidBackup},
		{key: "backups/../secret.json", wantErr: ErrInvalidBackup},
		{key: "backups/missing.json", wantErr: ErrNotFound},
		{key: "backups/broken.json", wantErr: ErrInvalidBackup},
	}
	for _, tt := range tests {
		if _, err := svc.Restore(ctx, tt.key); !errors.Is(err, tt.wantErr) {
			t.Errorf("Restore(%q) error = %v, want %v", tt.key, err, tt.wantErr)
		}
	}
}
