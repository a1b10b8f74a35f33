package models

import "time"

type MatchStatus string

const (
	MatchStatusUninitialized MatchStatus = "uninitialized"
	MatchStatusActive        MatchStatus = "active"
	MatchStatusCompleted     MatchStatus = "completed"
)

// MatchConfig holds the scoring rules of one match.
type MatchConfig struct {
	GameKind     string `json:"game_kind"`
	TargetScore  int    `json:"target_score"`
	MinWinBy     int    `json:"min_win_by"`
	MaxScore     *int   `json:"max_score,omitempty"` // nil: no sudden-death ceiling
	DeuceEnabled bool   `json:"deuce_enabled"`
}

func (c MatchConfig) Clone() MatchConfig {
	if c.MaxScore != nil {
		v := *c.MaxScore
		c.MaxScore = &v
	}
	return c
}

// Match is the mutable state of the game currently being played.
type Match struct {
	ID           string        `json:"id"`
	GameKind     string        `json:"game_kind"`
	Mode         GameMode      `json:"mode"`
	Participants []Participant `json:"participants"`
	Scores       []int         `json:"scores"`
	Config       MatchConfig   `json:"config"`
	Active       bool          `json:"active"`
	StartedAt    time.Time     `json:"started_at"`
	LastUpdated  time.Time     `json:"last_updated"`
}

func (m *Match) Status() MatchStatus {
	if m == nil {
		return MatchStatusUninitialized
	}
	if m.Active {
		return MatchStatusActive
	}
	return MatchStatusCompleted
}

func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	c.Participants = CloneParticipants(m.Participants)
	c.Scores = append([]int(nil), m.Scores...)
	c.Config = m.Config.Clone()
	return &c
}

type Winner struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// MatchResult is the immutable snapshot of a finished match.
type MatchResult struct {
	MatchID         string        `json:"match_id"`
	GameKind        string        `json:"game_kind"`
	Mode            GameMode      `json:"mode"`
	TargetScore     int           `json:"target_score"`
	Participants    []Participant `json:"participants"`
	FinalScores     []int         `json:"final_scores"`
	Winner          Winner        `json:"winner"`
	Duration        string        `json:"duration"`
	DurationSeconds int64         `json:"duration_seconds"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         time.Time     `json:"ended_at"`
	TotalPoints     int           `json:"total_points"`
}

// HistoryRecord is a MatchResult as stored by the history log.
type HistoryRecord struct {
	ID          string    `json:"id" db:"id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	MatchResult
}
