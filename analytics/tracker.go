// Package analytics keeps demo visit and game counters for the scoreboard.
// It is not a metrics pipeline: counters live in one settings blob and
// nothing in the scoring core reads them.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/services"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const maxSessions = 100

// Store is where the counters are persisted between restarts.
type Store interface {
	LoadSetting(ctx context.Context, key string, dst any) bool
	SaveSetting(ctx context.Context, key string, value any) bool
}

type Visit struct {
	SessionID    string    `json:"session_id"`
	StartedAt    time.Time `json:"started_at"`
	IsNewVisitor bool      `json:"is_new_visitor"`
}

type GameCounters struct {
	GamesStarted         int            `json:"games_started"`
	GamesCompleted       int            `json:"games_completed"`
	PopularGameKinds     map[string]int `json:"popular_game_kinds"`
	TotalPlayTimeSeconds int64          `json:"total_play_time_seconds"`
}

type Data struct {
	TotalVisits    int          `json:"total_visits"`
	UniqueVisitors int          `json:"unique_visitors"`
	TodayVisits    int          `json:"today_visits"`
	FirstVisit     *time.Time   `json:"first_visit,omitempty"`
	LastVisit      *time.Time   `json:"last_visit,omitempty"`
	Sessions       []Visit      `json:"sessions"`
	Games          GameCounters `json:"game_stats"`
}

type Formatted struct {
	Total  string `json:"total"`
	Unique string `json:"unique"`
	Today  string `json:"today"`
}

type Report struct {
	TotalVisits    int             `json:"total_visits"`
	UniqueVisitors int             `json:"unique_visitors"`
	TodayVisits    int             `json:"today_visits"`
	Games          GameCounters    `json:"game_stats"`
	Formatted      Formatted       `json:"formatted"`
	Simulated      SimulatedCounts `json:"simulated"`
	LastUpdated    time.Time       `json:"last_updated"`
}

type Tracker struct {
	mu        sync.Mutex
	data      Data
	dirty     bool
	store     Store
	simulated *SimulatedVisitors
	printer   *message.Printer
	logger    *slog.Logger
	now       func() time.Time
}

// NewTracker loads any saved counters from store. store may be nil.
func NewTracker(ctx context.Context, store Store, simulated *SimulatedVisitors, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		store:     store,
		simulated: simulated,
		printer:   message.NewPrinter(language.English),
		logger:    logger,
		now:       time.Now,
	}
	t.load(ctx)
	return t
}

func (t *Tracker) load(ctx context.Context) {
	t.data = Data{}
	if t.store != nil {
		t.store.LoadSetting(ctx, models.SettingAnalytics, &t.data)
	}
	if t.data.Games.PopularGameKinds == nil {
		t.data.Games.PopularGameKinds = map[string]int{}
	}
	t.dirty = false
}

// Reload replaces the in-memory counters with what the store holds now,
// dropping unflushed changes. It runs after the stored data was imported or cleared.
func (t *Tracker) Reload(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.load(ctx)
}

// RecordVisit counts one visit. A visitor without a known id is new.
func (t *Tracker) RecordVisit(known bool) Visit {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().UTC()
	if t.data.LastVisit == nil || !sameDay(*t.data.LastVisit, now) {
		t.data.TodayVisits = 0
	}
	t.data.TotalVisits++
	t.data.TodayVisits++
	if !known {
		t.data.UniqueVisitors++
		if t.data.FirstVisit == nil {
			t.data.FirstVisit = &now
		}
	}
	t.data.LastVisit = &now

	v := Visit{SessionID: uuid.NewString(), StartedAt: now, IsNewVisitor: !known}
	t.data.Sessions = append([]Visit{v}, t.data.Sessions...)
	if len(t.data.Sessions) > maxSessions {
		t.data.Sessions = t.data.Sessions[:maxSessions]
	}
	t.dirty = true
	if t.simulated != nil {
		t.simulated.Bump()
	}
	return v
}

// HandleEvent updates game counters from scoreboard events.
func (t *Tracker) HandleEvent(ev services.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Type {
	case services.EventMatchStarted:
		kind := "unknown"
		if m, ok := ev.Payload.(*models.Match); ok && m != nil && m.GameKind != "" {
			kind = m.GameKind
		}
		t.data.Games.GamesStarted++
		t.data.Games.PopularGameKinds[kind]++
		t.dirty = true
	case services.EventMatchCompleted:
		t.data.Games.GamesCompleted++
		if r, ok := ev.Payload.(*models.MatchResult); ok && r != nil {
			t.data.Games.TotalPlayTimeSeconds += r.DurationSeconds
		}
		t.dirty = true
	}
}

// Refresh advances the simulated counters.
func (t *Tracker) Refresh() {
	if t.simulated != nil {
		t.simulated.Refresh()
	}
}

// Flush saves the counters if they changed since the last flush.
func (t *Tracker) Flush(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty || t.store == nil {
		return false
	}
	if !t.store.SaveSetting(ctx, models.SettingAnalytics, t.data) {
		return false
	}
	t.dirty = false
	return true
}

func (t *Tracker) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	games := t.data.Games
	games.PopularGameKinds = make(map[string]int, len(t.data.Games.PopularGameKinds))
	for k, v := range t.data.Games.PopularGameKinds {
		games.PopularGameKinds[k] = v
	}

	r := Report{
		TotalVisits:    t.data.TotalVisits,
		UniqueVisitors: t.data.UniqueVisitors,
		TodayVisits:    t.data.TodayVisits,
		Games:          games,
		Formatted: Formatted{
			Total:  t.formatNumber(t.data.TotalVisits),
			Unique: t.formatNumber(t.data.UniqueVisitors),
			Today:  t.formatNumber(t.data.TodayVisits),
		},
		LastUpdated: t.now().UTC(),
	}
	if t.simulated != nil {
		r.Simulated = t.simulated.Counts()
	}
	return r
}

// formatNumber renders 1.2K / 3.4M above a thousand and a grouped number below.
func (t *Tracker) formatNumber(n int) string {
	switch {
	case n >= 1_000_000:
		return t.printer.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return t.printer.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return t.printer.Sprintf("%d", n)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
