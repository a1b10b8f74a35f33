package services

import (
	"context"
	"math"
	"sort"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/utils"
)

// HistorySource is the read side of the persistence collaborator.
type HistorySource interface {
	GetHistory(ctx context.Context) []models.HistoryRecord
}

type StatsService interface {
	PlayerStats(ctx context.Context, name string) models.PlayerStats
	AllPlayerStats(ctx context.Context) []models.PlayerStats
}

type statsService struct {
	history HistorySource
}

func NewStatsService(history HistorySource) StatsService {
	return &statsService{history: history}
}

// participantIndex returns the index of the participant name took part as:
// the individual of that name or the team that lists name as a member.
func participantIndex(result models.MatchResult, name string) int {
	for i, p := range result.Participants {
		if p.Name == name || p.HasMember(name) {
			return i
		}
	}
	return -1
}

func (s *statsService) PlayerStats(ctx context.Context, raw string) models.PlayerStats {
	return computePlayerStats(s.history.GetHistory(ctx), utils.NormalizeName(raw))
}

func computePlayerStats(records []models.HistoryRecord, name string) models.PlayerStats {
	stats := models.PlayerStats{PlayerName: name, GameKindStats: map[string]int{}}

	var kindOrder []string
	for _, rec := range records {
		idx := participantIndex(rec.MatchResult, name)
		if idx == -1 {
			continue
		}
		stats.GamesPlayed++
		if rec.Winner.Index == idx {
			stats.GamesWon++
		}
		if idx < len(rec.FinalScores) {
			stats.TotalPoints += rec.FinalScores[idx]
		}
		if _, seen := stats.GameKindStats[rec.GameKind]; !seen {
			kindOrder = append(kindOrder, rec.GameKind)
		}
		stats.GameKindStats[rec.GameKind]++
	}

	if stats.GamesPlayed == 0 {
		stats.GameKindStats = nil
		return stats
	}

	stats.GamesLost = stats.GamesPlayed - stats.GamesWon
	stats.WinRate = int(math.Round(float64(stats.GamesWon) / float64(stats.GamesPlayed) * 100))
	stats.AveragePoints = utils.Round2(float64(stats.TotalPoints) / float64(stats.GamesPlayed))

	// При равенстве побеждает вид игры, встреченный раньше (история идёт от новых к старым).
	favorite := kindOrder[0]
	for _, kind := range kindOrder[1:] {
		if stats.GameKindStats[kind] > stats.GameKindStats[favorite] {
			favorite = kind
		}
	}
	stats.FavoriteGame = &favorite
	return stats
}

// AllPlayerStats returns statistics for every player found in history, sorted by name.
// Team matches contribute each member, not the team name.
func (s *statsService) AllPlayerStats(ctx context.Context) []models.PlayerStats {
	records := s.history.GetHistory(ctx)

	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, p := range rec.Participants {
			if p.Kind == models.ParticipantTeam {
				for _, m := range p.Members {
					seen[m] = struct{}{}
				}
				continue
			}
			seen[p.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.PlayerStats, 0, len(names))
	for _, name := range names {
		out = append(out, computePlayerStats(records, name))
	}
	return out
}
