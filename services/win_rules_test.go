package services

import (
	"testing"

	"github.com/Dosada05/scoreboard/models"
)

func intPtr(v int) *int { return &v }

func TestEvaluateWinner(t *testing.T) {
	t.Parallel()

	standard := models.MatchConfig{TargetScore: 21, MinWinBy: 2}
	deuce := models.MatchConfig{TargetScore: 21, MinWinBy: 2, DeuceEnabled: true}
	capped := models.MatchConfig{TargetScore: 21, MinWinBy: 2, MaxScore: intPtr(30)}

	tests := []struct {
		name   string
		scores []int
		cfg    models.MatchConfig
		want   int
	}{
		{name: "no points", scores: []int{0, 0}, cfg: standard, want: -1},
		{name: "target reached with margin", scores: []int{21, 19}, cfg: standard, want: 0},
		{name: "target reached without margin", scores: []int{21, 20}, cfg: standard, want: -1},
		{name: "second index wins", scores: []int{15, 21}, cfg: standard, want: 1},
		{name: "extended play without deuce", scores: []int{24, 21}, cfg: standard, want: 0},
		{name: "deuce tie", scores: []int{21, 21}, cfg: deuce, want: -1},
		{name: "deuce advantage", scores: []int{22, 21}, cfg: deuce, want: -1},
		{name: "deuce won by exact margin", scores: []int{23, 21}, cfg: deuce, want: 0},
		{name: "deuce margin larger than required", scores: []int{24, 21}, cfg: deuce, want: -1},
		{name: "deuce not reached uses standard rule", scores: []int{21, 15}, cfg: deuce, want: 0},
		{name: "sudden death at max", scores: []int{30, 10}, cfg: capped, want: 0},
		{name: "sudden death ignores margin", scores: []int{29, 30}, cfg: capped, want: 1},
		{name: "below max plays on", scores: []int{29, 28}, cfg: capped, want: -1},
		{name: "multi-player leader with margin", scores: []int{23, 19, 19}, cfg: standard, want: 0},
		{name: "multi-player tie at the top", scores: []int{21, 21, 19}, cfg: standard, want: -1},
		{name: "lowest index checked first", scores: []int{30, 30}, cfg: capped, want: 0},
		{name: "single score never wins", scores: []int{25}, cfg: standard, want: -1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := EvaluateWinner(tt.scores, tt.cfg); got != tt.want {
				t.Fatalf("EvaluateWinner(%v) = %d, want %d", tt.scores, got, tt.want)
			}
		})
	}
}
