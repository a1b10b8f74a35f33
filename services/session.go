package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Dosada05/scoreboard/models"
)

type EventType string

const (
	EventRosterUpdated  EventType = "roster_updated"
	EventMatchStarted   EventType = "match_started"
	EventScoreUpdated   EventType = "score_updated"
	EventMatchCompleted EventType = "match_completed"
	EventMatchReset     EventType = "match_reset"
	EventNewGame        EventType = "new_game"
)

// Event is published to listeners after every successful mutation.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// Listener is called with the session lock held; it must not call back into the Session.
type Listener func(Event)

// MatchLoader reads the persisted current match.
type MatchLoader interface {
	LoadMatch(ctx context.Context) *models.Match
}

// Snapshot is the full observable state of the scoreboard.
type Snapshot struct {
	Mode      models.GameMode   `json:"mode"`
	Players   []string          `json:"players"`
	Teams     models.Teams      `json:"teams"`
	Readiness Readiness         `json:"readiness"`
	Match     *models.Match     `json:"match,omitempty"`
	Status    string            `json:"status"`
	Leader    *models.Leader    `json:"leader,omitempty"`
	Stats     *models.GameStats `json:"stats,omitempty"`
}

// Session owns one roster and one match and is the single writer for both.
// Every command runs under one mutex so HTTP handlers and scheduled jobs can
// share it.
type Session struct {
	mu        sync.Mutex
	roster    RosterService
	match     MatchService
	gameTypes GameTypeService
	loader    MatchLoader
	logger    *slog.Logger
	listeners []Listener
}

func NewSession(roster RosterService, match MatchService, gameTypes GameTypeService, loader MatchLoader, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		roster:    roster,
		match:     match,
		gameTypes: gameTypes,
		loader:    loader,
		logger:    logger,
	}
}

func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Session) emit(t EventType, payload any) {
	ev := Event{Type: t, Payload: payload}
	for _, l := range s.listeners {
		l(ev)
	}
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		Mode:      s.roster.Mode(),
		Players:   s.roster.Players(),
		Teams:     s.roster.Teams(),
		Readiness: s.roster.IsReadyToStart(),
		Match:     s.match.Current(),
		Status:    string(models.MatchStatusUninitialized),
	}
	if snap.Match != nil {
		snap.Status = string(snap.Match.Status())
		snap.Leader = s.match.Leader()
		snap.Stats = s.match.Stats()
	}
	return snap
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// rosterCommand runs fn and publishes the roster when it succeeded.
func (s *Session) rosterCommand(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	s.emit(EventRosterUpdated, s.snapshot())
	return nil
}

func (s *Session) SetMode(mode models.GameMode) error {
	return s.rosterCommand(func() error { return s.roster.SetMode(mode) })
}

func (s *Session) AddPlayer(name string) ([]string, error) {
	var players []string
	err := s.rosterCommand(func() (err error) {
		players, err = s.roster.AddPlayer(name)
		return err
	})
	return players, err
}

func (s *Session) SetPlayers(names []string) ([]string, error) {
	var players []string
	err := s.rosterCommand(func() (err error) {
		players, err = s.roster.SetPlayers(names)
		return err
	})
	return players, err
}

func (s *Session) RemovePlayer(name string) ([]string, error) {
	var players []string
	err := s.rosterCommand(func() (err error) {
		players, err = s.roster.RemovePlayer(name)
		return err
	})
	return players, err
}

func (s *Session) RemovePlayerAt(index int) ([]string, error) {
	var players []string
	err := s.rosterCommand(func() (err error) {
		players, err = s.roster.RemovePlayerAt(index)
		return err
	})
	return players, err
}

func (s *Session) RenamePlayer(index int, name string) ([]string, error) {
	var players []string
	err := s.rosterCommand(func() (err error) {
		players, err = s.roster.RenamePlayer(index, name)
		return err
	})
	return players, err
}

func (s *Session) ReorderPlayer(from, to int) ([]string, error) {
	var players []string
	err := s.rosterCommand(func() (err error) {
		players, err = s.roster.ReorderPlayer(from, to)
		return err
	})
	return players, err
}

func (s *Session) SetTeamName(side models.TeamSide, name string) (models.Teams, error) {
	var teams models.Teams
	err := s.rosterCommand(func() (err error) {
		teams, err = s.roster.SetTeamName(side, name)
		return err
	})
	return teams, err
}

func (s *Session) AddTeamMember(side models.TeamSide, name string) (models.Teams, error) {
	var teams models.Teams
	err := s.rosterCommand(func() (err error) {
		teams, err = s.roster.AddTeamMember(side, name)
		return err
	})
	return teams, err
}

func (s *Session) RemoveTeamMember(side models.TeamSide, name string) (models.Teams, error) {
	var teams models.Teams
	err := s.rosterCommand(func() (err error) {
		teams, err = s.roster.RemoveTeamMember(side, name)
		return err
	})
	return teams, err
}

func (s *Session) ClearRoster() {
	_ = s.rosterCommand(func() error {
		s.roster.Clear()
		return nil
	})
}

func (s *Session) Readiness() Readiness {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.IsReadyToStart()
}

// StartGame resolves the configuration for req and starts a match with the current roster.
func (s *Session) StartGame(ctx context.Context, req ConfigRequest) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r := s.roster.IsReadyToStart(); !r.Ready {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSetup, r.Reason)
	}
	cfg, err := s.gameTypes.ResolveConfig(ctx, req)
	if err != nil {
		return nil, err
	}
	match, err := s.match.Start(ctx, s.roster.ToParticipants(), cfg)
	if err != nil {
		return nil, err
	}
	s.emit(EventMatchStarted, match)
	return match, nil
}

func (s *Session) UpdateScore(ctx context.Context, index, delta int) (*ScoreUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update, err := s.match.ApplyDelta(ctx, index, delta)
	if err != nil {
		return nil, err
	}
	s.emit(EventScoreUpdated, update)
	if update.Completed {
		s.emit(EventMatchCompleted, update.Result)
	}
	return update, nil
}

func (s *Session) ResetScores(ctx context.Context) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.match.ResetScores(ctx); err != nil {
		return nil, err
	}
	match := s.match.Current()
	s.emit(EventMatchReset, match)
	return match, nil
}

// NewGame discards the current match and empties the roster.
func (s *Session) NewGame(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.match.Discard(ctx)
	s.roster.Clear()
	s.logger.Info("new game prepared")
	s.emit(EventNewGame, s.snapshot())
}

func (s *Session) Match() *models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Current()
}

func (s *Session) Leader() *models.Leader {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Leader()
}

func (s *Session) Stats() *models.GameStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Stats()
}

// Autosave persists the match while it is being played. It reports whether anything was saved.
func (s *Session) Autosave(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match.Save(ctx)
}

// Restore reloads the persisted match, if any, and rebuilds the roster from its participants.
func (s *Session) Restore(ctx context.Context) bool {
	if s.loader == nil {
		return false
	}
	saved := s.loader.LoadMatch(ctx)
	if saved == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.match.Restore(saved)
	current := s.match.Current()
	if current == nil || current.ID != saved.ID {
		return false
	}
	s.rebuildRoster(current)
	s.logger.Info("saved match restored",
		slog.String("match_id", current.ID),
		slog.Bool("active", current.Active),
	)
	s.emit(EventRosterUpdated, s.snapshot())
	return true
}

func (s *Session) rebuildRoster(m *models.Match) {
	s.roster.Clear()
	if m.Mode != models.ModeTeam {
		names := make([]string, 0, len(m.Participants))
		for _, p := range m.Participants {
			names = append(names, p.Name)
		}
		if _, err := s.roster.SetPlayers(names); err != nil {
			s.logger.Warn("could not rebuild roster from saved match", slog.Any("error", err))
		}
		return
	}

	if err := s.roster.SetMode(models.ModeTeam); err != nil {
		return
	}
	sides := []models.TeamSide{models.TeamA, models.TeamB}
	for i, p := range m.Participants {
		if i >= len(sides) {
			break
		}
		if _, err := s.roster.SetTeamName(sides[i], p.Name); err != nil {
			s.logger.Warn("could not restore team name", slog.String("team", p.Name), slog.Any("error", err))
		}
		for _, member := range p.Members {
			if _, err := s.roster.AddTeamMember(sides[i], member); err != nil {
				s.logger.Warn("could not restore team member", slog.String("player", member), slog.Any("error", err))
			}
		}
	}
}
