package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/utils"
	"github.com/google/uuid"
)

const (
	MinTargetScore = 1
	MaxTargetScore = 100
	MinWinByLimit  = 1
	MaxWinByLimit  = 10
)

// MatchRecorder is the part of the persistence collaborator the match needs.
// Implementations handle their own failures; nothing is reported back.
type MatchRecorder interface {
	SaveMatch(ctx context.Context, match *models.Match)
	ClearMatch(ctx context.Context)
	AppendHistory(ctx context.Context, result models.MatchResult) *models.HistoryRecord
}

type MatchService interface {
	Start(ctx context.Context, participants []models.Participant, cfg models.MatchConfig) (*models.Match, error)
	ApplyDelta(ctx context.Context, index, delta int) (*ScoreUpdate, error)
	ResetScores(ctx context.Context) error
	Leader() *models.Leader
	Stats() *models.GameStats
	Current() *models.Match
	Restore(match *models.Match)
	Discard(ctx context.Context)
	Save(ctx context.Context) bool
}

// ScoreUpdate is what a successful score change reports to the presentation layer.
type ScoreUpdate struct {
	Scores    []int                 `json:"scores"`
	Winner    *models.Winner        `json:"winner,omitempty"`
	Completed bool                  `json:"completed"`
	Result    *models.MatchResult   `json:"result,omitempty"`
	Record    *models.HistoryRecord `json:"record,omitempty"`
	Stats     *models.GameStats     `json:"stats,omitempty"`
}

type MatchOption func(*matchService)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) MatchOption {
	return func(s *matchService) { s.now = now }
}

func WithMatchIDGenerator(gen func() string) MatchOption {
	return func(s *matchService) { s.newID = gen }
}

type matchService struct {
	current  *models.Match
	recorder MatchRecorder
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

func NewMatchService(recorder MatchRecorder, logger *slog.Logger, opts ...MatchOption) MatchService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &matchService{
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateMatchConfig checks the scoring rules independently of participants.
func ValidateMatchConfig(cfg models.MatchConfig) error {
	if cfg.TargetScore < MinTargetScore || cfg.TargetScore > MaxTargetScore {
		return fmt.Errorf("%w: target score must be between %d and %d", ErrInvalidSetup, MinTargetScore, MaxTargetScore)
	}
	if cfg.MinWinBy < MinWinByLimit || cfg.MinWinBy > MaxWinByLimit {
		return fmt.Errorf("%w: minimum win margin must be between %d and %d", ErrInvalidSetup, MinWinByLimit, MaxWinByLimit)
	}
	if cfg.MaxScore != nil && *cfg.MaxScore <= cfg.TargetScore {
		return fmt.Errorf("%w: max score must be greater than the target score", ErrInvalidSetup)
	}
	return nil
}

func validateParticipants(participants []models.Participant) (models.GameMode, error) {
	if len(participants) < MinPlayers {
		return "", fmt.Errorf("%w: at least %d participants are required", ErrInvalidSetup, MinPlayers)
	}

	mode := models.ModeIndividual
	if participants[0].Kind == models.ParticipantTeam {
		mode = models.ModeTeam
	}

	names := make(map[string]struct{}, len(participants))
	members := make(map[string]struct{})
	for i, p := range participants {
		if (p.Kind == models.ParticipantTeam) != (mode == models.ModeTeam) {
			return "", fmt.Errorf("%w: individual and team participants cannot be mixed", ErrInvalidSetup)
		}
		if utils.NormalizeName(p.Name) == "" {
			return "", fmt.Errorf("%w: participant %d has no name", ErrInvalidSetup, i)
		}
		if _, dup := names[p.Name]; dup {
			return "", fmt.Errorf("%w: participant names must be unique (%q)", ErrInvalidSetup, p.Name)
		}
		names[p.Name] = struct{}{}

		if mode == models.ModeTeam {
			if len(p.Members) == 0 {
				return "", fmt.Errorf("%w: team %q must have at least 1 player", ErrInvalidSetup, p.Name)
			}
			if len(p.Members) > MaxTeamPlayers {
				return "", fmt.Errorf("%w: team %q can have at most %d players", ErrInvalidSetup, p.Name, MaxTeamPlayers)
			}
			for _, m := range p.Members {
				if _, dup := members[m]; dup {
					return "", fmt.Errorf("%w: player names must be unique across both teams (%q)", ErrInvalidSetup, m)
				}
				members[m] = struct{}{}
			}
		}
	}

	if mode == models.ModeTeam && len(participants) != 2 {
		return "", fmt.Errorf("%w: team mode needs exactly 2 teams", ErrInvalidSetup)
	}
	if mode == models.ModeIndividual && len(participants) > MaxPlayers {
		return "", fmt.Errorf("%w: at most %d players allowed", ErrInvalidSetup, MaxPlayers)
	}
	return mode, nil
}

// Start replaces any current match with a fresh, active one.
func (s *matchService) Start(ctx context.Context, participants []models.Participant, cfg models.MatchConfig) (*models.Match, error) {
	mode, err := validateParticipants(participants)
	if err != nil {
		return nil, err
	}
	if err := ValidateMatchConfig(cfg); err != nil {
		return nil, err
	}

	now := s.now()
	s.current = &models.Match{
		ID:           s.newID(),
		GameKind:     cfg.GameKind,
		Mode:         mode,
		Participants: models.CloneParticipants(participants),
		Scores:       make([]int, len(participants)),
		Config:       cfg.Clone(),
		Active:       true,
		StartedAt:    now,
		LastUpdated:  now,
	}
	s.logger.Info("match started",
		slog.String("match_id", s.current.ID),
		slog.String("game_kind", cfg.GameKind),
		slog.String("mode", string(mode)),
		slog.Int("participants", len(participants)),
	)
	s.persist(ctx)
	return s.current.Clone(), nil
}

func (s *matchService) ApplyDelta(ctx context.Context, index, delta int) (*ScoreUpdate, error) {
	m := s.current
	if m == nil || !m.Active {
		return nil, ErrInactiveMatch
	}
	if index < 0 || index >= len(m.Scores) {
		return nil, fmt.Errorf("%w: %d (participants: %d)", ErrIndexOutOfRange, index, len(m.Scores))
	}
	if delta > 0 && m.Scores[index] > math.MaxInt-delta {
		return nil, fmt.Errorf("%w: score change %d is too large", ErrInvalidSetup, delta)
	}
	next := m.Scores[index] + delta
	if next < 0 {
		return nil, ErrNegativeScore
	}

	m.Scores[index] = next
	m.LastUpdated = s.now()

	update := &ScoreUpdate{}
	if w := EvaluateWinner(m.Scores, m.Config); w >= 0 {
		m.Active = false
		result := s.buildResult(w)
		update.Winner = &result.Winner
		update.Completed = true
		update.Result = &result
		update.Stats = s.Stats()
		s.logger.Info("match completed",
			slog.String("match_id", m.ID),
			slog.String("winner", result.Winner.Name),
			slog.Int("winner_score", result.Winner.Score),
			slog.String("duration", result.Duration),
		)
		if s.recorder != nil {
			update.Record = s.recorder.AppendHistory(ctx, result)
		}
	}
	update.Scores = append([]int(nil), m.Scores...)

	s.persist(ctx)
	return update, nil
}

func (s *matchService) buildResult(winner int) models.MatchResult {
	m := s.current
	ended := s.now()
	elapsed := ended.Sub(m.StartedAt)
	total := 0
	for _, v := range m.Scores {
		total += v
	}
	return models.MatchResult{
		MatchID:      m.ID,
		GameKind:     m.GameKind,
		Mode:         m.Mode,
		TargetScore:  m.Config.TargetScore,
		Participants: models.CloneParticipants(m.Participants),
		FinalScores:  append([]int(nil), m.Scores...),
		Winner: models.Winner{
			Index: winner,
			Name:  m.Participants[winner].Name,
			Score: m.Scores[winner],
		},
		Duration:        utils.FormatDuration(elapsed),
		DurationSeconds: int64(elapsed / time.Second),
		StartedAt:       m.StartedAt,
		EndedAt:         ended,
		TotalPoints:     total,
	}
}

// ResetScores zeroes the scores of the current participants and reactivates the match.
func (s *matchService) ResetScores(ctx context.Context) error {
	m := s.current
	if m == nil || len(m.Participants) == 0 {
		return ErrNoMatch
	}
	now := s.now()
	m.Scores = make([]int, len(m.Participants))
	m.Active = true
	m.StartedAt = now
	m.LastUpdated = now
	s.logger.Info("match scores reset", slog.String("match_id", m.ID))
	s.persist(ctx)
	return nil
}

func (s *matchService) Leader() *models.Leader {
	m := s.current
	if m == nil || len(m.Scores) == 0 {
		return nil
	}
	best := 0
	for i, v := range m.Scores {
		if v > m.Scores[best] {
			best = i
		}
	}
	return &models.Leader{Index: best, Name: m.Participants[best].Name, Score: m.Scores[best]}
}

func (s *matchService) Stats() *models.GameStats {
	m := s.current
	if m == nil || m.StartedAt.IsZero() {
		return nil
	}
	total := 0
	for _, v := range m.Scores {
		total += v
	}
	avg := 0.0
	if len(m.Participants) > 0 {
		avg = utils.Round2(float64(total) / float64(len(m.Participants)))
	}
	return &models.GameStats{
		Duration:     utils.FormatDuration(s.now().Sub(m.StartedAt)),
		TotalPoints:  total,
		AverageScore: avg,
		Leader:       s.Leader(),
	}
}

func (s *matchService) Current() *models.Match {
	return s.current.Clone()
}

// Restore installs a previously persisted match. Malformed snapshots are ignored.
func (s *matchService) Restore(match *models.Match) {
	if match == nil {
		return
	}
	if len(match.Scores) != len(match.Participants) || len(match.Participants) < MinPlayers {
		s.logger.Warn("ignoring malformed saved match", slog.String("match_id", match.ID))
		return
	}
	for _, v := range match.Scores {
		if v < 0 {
			s.logger.Warn("ignoring saved match with negative score", slog.String("match_id", match.ID))
			return
		}
	}
	mode, err := validateParticipants(match.Participants)
	if err == nil {
		err = ValidateMatchConfig(match.Config)
	}
	if err != nil {
		s.logger.Warn("ignoring invalid saved match", slog.String("match_id", match.ID), slog.Any("error", err))
		return
	}
	s.current = match.Clone()
	s.current.Mode = mode
}

// Discard drops the current match entirely.
func (s *matchService) Discard(ctx context.Context) {
	s.current = nil
	if s.recorder != nil {
		s.recorder.ClearMatch(ctx)
	}
}

// Save persists the current match if it is still being played.
func (s *matchService) Save(ctx context.Context) bool {
	if s.current == nil || !s.current.Active {
		return false
	}
	s.persist(ctx)
	return true
}

func (s *matchService) persist(ctx context.Context) {
	if s.recorder == nil || s.current == nil {
		return
	}
	s.recorder.SaveMatch(ctx, s.current.Clone())
}
