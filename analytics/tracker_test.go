package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
)

type memoryStore struct {
	values map[string][]byte
	saves  int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string][]byte{}}
}

func (m *memoryStore) LoadSetting(_ context.Context, key string, dst any) bool {
	raw, ok := m.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (m *memoryStore) SaveSetting(_ context.Context, key string, value any) bool {
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}
	m.values[key] = raw
	m.saves++
	return true
}

func TestRecordVisit(t *testing.T) {
	t.Parallel()
	tr := NewTracker(context.Background(), nil, nil, nil)
	day := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return day }

	first := tr.RecordVisit(false)
	if !first.IsNewVisitor || first.SessionID == "" {
		t.Fatalf("first visit = %+v", first)
	}
	tr.RecordVisit(true)
	tr.RecordVisit(false)

	r := tr.Report()
	if r.TotalVisits != 3 || r.UniqueVisitors != 2 || r.TodayVisits != 3 {
		t.Fatalf("report = %+v, want total 3, unique 2, today 3", r)
	}

	day = day.Add(24 * time.Hour)
	tr.RecordVisit(true)
	if r := tr.Report(); r.TodayVisits != 1 || r.TotalVisits != 4 {
		t.Fatalf("report on the next day = %+v, want today 1", r)
	}
}

func TestRecordVisitKeepsLastSessions(t *testing.T) {
	t.Parallel()
	tr := NewTracker(context.Background(), nil, nil, nil)
	for i := 0; i < maxSessions+20; i++ {
		tr.RecordVisit(true)
	}
	if n := len(tr.data.Sessions); n != maxSessions {
		t.Fatalf("sessions kept = %d, want %d", n, maxSessions)
	}
}

func TestHandleEventCountsGames(t *testing.T) {
	t.Parallel()
	tr := NewTracker(context.Background(), nil, nil, nil)

	tr.HandleEvent(services.Event{Type: services.EventMatchStarted, Payload: &models.Match{GameKind: models.GameBadminton}})
	tr.HandleEvent(services.Event{Type: services.EventMatchStarted, Payload: &models.Match{GameKind: models.GameBadminton}})
	tr.HandleEvent(services.Event{Type: services.EventMatchStarted, Payload: nil})
	tr.HandleEvent(services.Event{Type: services.EventMatchCompleted, Payload: &models.MatchResult{DurationSeconds: 300}})
	tr.HandleEvent(services.Event{Type: services.EventScoreUpdated})

	g := tr.Report().Games
	if g.GamesStarted != 3 || g.GamesCompleted != 1 || g.TotalPlayTimeSeconds != 300 {
		t.Fatalf("game counters = %+v", g)
	}
	if g.PopularGameKinds[models.GameBadminton] != 2 || g.PopularGameKinds["unknown"] != 1 {
		t.Fatalf("popular kinds = %v", g.PopularGameKinds)
	}
}

func TestFlushPersistsOnlyChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()
	tr := NewTracker(ctx, store, nil, nil)

	if tr.Flush(ctx) {
		t.Fatal("Flush() = true with nothing recorded")
	}
	tr.RecordVisit(false)
	if !tr.Flush(ctx) {
		t.Fatal("Flush() = false after a visit")
	}
	if tr.Flush(ctx) {
		t.Fatal("second Flush() saved again")
	}
	if store.saves != 1 {
		t.Fatalf("saves = %d, want 1", store.saves)
	}

	reloaded := NewTracker(ctx, store, nil, nil)
	if r := reloaded.Report(); r.TotalVisits != 1 || r.UniqueVisitors != 1 {
		t.Fatalf("reloaded report = %+v", r)
	}
}

func TestReloadDropsStaleCounters(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()
	tr := NewTracker(ctx, store, nil, nil)

	tr.RecordVisit(false)
	tr.RecordVisit(false)
	tr.Flush(ctx)
	tr.RecordVisit(true)

	// The stored counters were wiped.
	delete(store.values, models.SettingAnalytics)
	tr.Reload(ctx)
	if r := tr.Report(); r.TotalVisits != 0 || r.UniqueVisitors != 0 || r.Games.PopularGameKinds == nil {
		t.Fatalf("report after reload = %+v, want empty counters", r)
	}
	if tr.Flush(ctx) {
		t.Fatal("Flush() after Reload wrote the old counters back")
	}

	// The stored counters were replaced by an import.
	store.SaveSetting(ctx, models.SettingAnalytics, Data{TotalVisits: 40, UniqueVisitors: 12})
	tr.Reload(ctx)
	tr.RecordVisit(true)
	tr.Flush(ctx)
	var saved Data
	if !store.LoadSetting(ctx, models.SettingAnalytics, &saved) || saved.TotalVisits != 41 || saved.UniqueVisitors != 12 {
		t.Fatalf("saved counters = %+v, want imported totals plus one visit", saved)
	}
}

func TestFormatNumber(t *testing.T) {
	t.Parallel()
	tr := NewTracker(context.Background(), nil, nil, nil)
	tests := map[int]string{
		0:         "0",
		999:       "999",
		1_000:     "1.0K",
		1_250:     "1.2K",
		2_500_000: "2.5M",
	}
	for n, want := range tests {
		if got := tr.formatNumber(n); got != want {
			t.Errorf("formatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestSimulatedVisitorsRanges(t *testing.T) {
	t.Parallel()
	s := NewSimulatedVisitors(42)
	c := s.Counts()
	if c.Total < 100 || c.Total > 599 || c.Today < 10 || c.Today > 59 || c.Online < 1 || c.Online > 5 {
		t.Fatalf("initial counts out of range: %+v", c)
	}
	if c.Label == "" {
		t.Fatal("simulated counts must carry a label")
	}

	s.Bump()
	if got := s.Counts(); got.Total != c.Total+1 || got.Today != c.Today+1 {
		t.Fatalf("after Bump = %+v, want total and today +1 from %+v", got, c)
	}
	for i := 0; i < 20; i++ {
		s.Refresh()
		if o := s.Counts().Online; o < 1 || o > 5 {
			t.Fatalf("online = %d, want 1..5", o)
		}
	}
	if s.Counts().Refresh != 20 {
		t.Fatalf("refreshes = %d, want 20", s.Counts().Refresh)
	}
}

func TestReportIncludesSimulatedCounts(t *testing.T) {
	t.Parallel()
	tr := NewTracker(context.Background(), nil, NewSimulatedVisitors(7), nil)
	before := tr.Report().Simulated.Total
	tr.RecordVisit(false)
	if after := tr.Report().Simulated.Total; after != before+1 {
		t.Fatalf("simulated total = %d, want %d", after, before+1)
	}
}
