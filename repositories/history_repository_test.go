package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/Dosada05/scoreboard/db"
	"github.com/Dosada05/scoreboard/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(filepath.Join(t.TempDir(), "repo.db"), 5*time.Second)
	if err != nil {
		t.Fatalf("OpenSQLite error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := db.Migrate(context.Background(), conn, db.DriverSQLite); err != nil {
		t.Fatalf("Migrate error = %v", err)
	}
	return conn
}

func record(i int) models.HistoryRecord {
	return models.HistoryRecord{
		ID:          fmt.Sprintf("rec-%02d", i),
		CompletedAt: time.Date(2025, 3, 1, 10, i, 0, 0, time.UTC),
		MatchResult: models.MatchResult{
			MatchID:      fmt.Sprintf("match-%02d", i),
			GameKind:     models.GameBadminton,
			Participants: []models.Participant{models.NewIndividual("Ann"), models.NewIndividual("Bob")},
			FinalScores:  []int{21, i},
			Winner:       models.Winner{Index: 0, Name: "Ann", Score: 21},
		},
	}
}

func TestHistoryAppendEvictsOldest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewSQLiteHistoryRepository(openTestDB(t), HistoryLimit)

	for i := 0; i < HistoryLimit+2; i++ {
		rec := record(i)
		if err := repo.Append(ctx, &rec); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(list) != HistoryLimit {
		t.Fatalf("len = %d, want %d", len(list), HistoryLimit)
	}
	if list[0].ID != record(HistoryLimit+1).ID {
		t.Fatalf("newest = %s, want %s", list[0].ID, record(HistoryLimit+1).ID)
	}
	if last := list[len(list)-1]; last.ID != record(2).ID {
		t.Fatalf("oldest kept = %s, want %s", last.ID, record(2).ID)
	}
	if !list[0].CompletedAt.Equal(record(HistoryLimit + 1).CompletedAt) {
		t.Fatalf("CompletedAt = %v", list[0].CompletedAt)
	}
}

func TestHistoryReplaceAllKeepsOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewSQLiteHistoryRepository(openTestDB(t), 2)

	seed := record(9)
	if err := repo.Append(ctx, &seed); err != nil {
		t.Fatalf("Append error = %v", err)
	}
	if err := repo.ReplaceAll(ctx, []models.HistoryRecord{record(3), record(2), record(1)}); err != nil {
		t.Fatalf("ReplaceAll error = %v", err)
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(list) != 2 || list[0].ID != "rec-03" || list[1].ID != "rec-02" {
		t.Fatalf("after ReplaceAll = %v", ids(list))
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear error = %v", err)
	}
	if list, _ := repo.List(ctx); len(list) != 0 {
		t.Fatalf("after Clear = %v", ids(list))
	}
}

func TestMatchStateRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewSQLiteMatchStateRepository(openTestDB(t))

	if m, err := repo.Get(ctx); err != nil || m != nil {
		t.Fatalf("Get on empty = %v, %v", m, err)
	}
	if n, err := repo.Size(ctx); err != nil || n != 0 {
		t.Fatalf("Size on empty = %d, %v", n, err)
	}
	for _, id := range []string{"first", "second"} {
		if err := repo.Save(ctx, &models.Match{ID: id, Scores: []int{1, 2}}); err != nil {
			t.Fatalf("Save(%s) error = %v", id, err)
		}
	}
	m, err := repo.Get(ctx)
	if err != nil || m == nil || m.ID != "second" {
		t.Fatalf("Get = %+v, %v; want the last saved match", m, err)
	}
	if n, _ := repo.Size(ctx); n == 0 {
		t.Fatal("Size = 0 after Save")
	}
	if err := repo.Save(ctx, nil); err == nil {
		t.Fatal("Save(nil) error = nil")
	}
	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if m, _ := repo.Get(ctx); m != nil {
		t.Fatalf("Get after Delete = %+v", m)
	}
}

func TestSettingsRepository(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewSQLiteSettingsRepository(openTestDB(t))

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrSettingNotFound) {
		t.Fatalf("Get(missing) error = %v, want %v", err, ErrSettingNotFound)
	}
	if err := repo.Put(ctx, "theme", []byte(`"dark"`)); err != nil {
		t.Fatalf("Put error = %v", err)
	}
	if err := repo.Put(ctx, "theme", []byte(`"light"`)); err != nil {
		t.Fatalf("Put overwrite error = %v", err)
	}
	if err := repo.Put(ctx, "broken", []byte(`{`)); err == nil {
		t.Fatal("Put(invalid JSON) error = nil")
	}
	got, err := repo.Get(ctx, "theme")
	if err != nil || string(got) != `"light"` {
		t.Fatalf("Get = %s, %v", got, err)
	}
	all, err := repo.All(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("All = %v, %v", all, err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear error = %v", err)
	}
	if n, _ := repo.Size(ctx); n != 0 {
		t.Fatalf("Size after Clear = %d", n)
	}
}

func ids(list []models.HistoryRecord) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, r.ID)
	}
	return out
}
