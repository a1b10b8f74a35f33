package services

import (
	"context"
	"testing"

	"github.com/Dosada05/scoreboard/models"
)

func historyRecord(id, kind string, participants []models.Participant, scores []int, winner int) models.HistoryRecord {
	return models.HistoryRecord{
		ID: id,
		MatchResult: models.MatchResult{
			MatchID:      id,
			GameKind:     kind,
			Participants: participants,
			FinalScores:  scores,
			Winner:       models.Winner{Index: winner, Name: participants[winner].Name, Score: scores[winner]},
		},
	}
}

func TestPlayerStats(t *testing.T) {
	t.Parallel()
	teams := []models.Participant{
		models.NewTeamParticipant("Reds", []string{"Ann", "Cid"}),
		models.NewTeamParticipant("Blues", []string{"Bob"}),
	}
	source := &fakeHistory{records: []models.HistoryRecord{
		historyRecord("3", models.GamePingPong, individuals("Ann", "Bob"), []int{11, 7}, 0),
		historyRecord("2", models.GameBadminton, individuals("Ann", "Bob", "Cid"), []int{18, 21, 4}, 1),
		historyRecord("1", models.GameBadminton, teams, []int{21, 15}, 0),
	}}
	svc := NewStatsService(source)

	got := svc.PlayerStats(context.Background(), " Ann ")
	if got.PlayerName != "Ann" {
		t.Fatalf("PlayerName = %q, want Ann", got.PlayerName)
	}
	if got.GamesPlayed != 3 || got.GamesWon != 2 || got.GamesLost != 1 {
		t.Fatalf("played/won/lost = %d/%d/%d, want 3/2/1", got.GamesPlayed, got.GamesWon, got.GamesLost)
	}
	if got.WinRate != 67 {
		t.Fatalf("WinRate = %d, want 67", got.WinRate)
	}
	if got.TotalPoints != 50 {
		t.Fatalf("TotalPoints = %d, want 50", got.TotalPoints)
	}
	if got.AveragePoints != 16.67 {
		t.Fatalf("AveragePoints = %v, want 16.67", got.AveragePoints)
	}
	if got.FavoriteGame == nil || *got.FavoriteGame != models.GameBadminton {
		t.Fatalf("FavoriteGame = %v, want badminton", got.FavoriteGame)
	}
	if got.GameKindStats[models.GameBadminton] != 2 || got.GameKindStats[models.GamePingPong] != 1 {
		t.Fatalf("GameKindStats = %v", got.GameKindStats)
	}
}

func TestPlayerStatsFavoriteTieGoesToNewest(t *testing.T) {
	t.Parallel()
	source := &fakeHistory{records: []models.HistoryRecord{
		historyRecord("2", models.GameVolleyball, individuals("Ann", "Bob"), []int{25, 20}, 0),
		historyRecord("1", models.GameBadminton, individuals("Ann", "Bob"), []int{10, 21}, 1),
	}}
	got := NewStatsService(source).PlayerStats(context.Background(), "Bob")
	if got.FavoriteGame == nil || *got.FavoriteGame != models.GameVolleyball {
		t.Fatalf("FavoriteGame = %v, want volleyball", got.FavoriteGame)
	}
	if got.WinRate != 50 {
		t.Fatalf("WinRate = %d, want 50", got.WinRate)
	}
}

func TestPlayerStatsUnknownPlayer(t *testing.T) {
	t.Parallel()
	source := &fakeHistory{records: []models.HistoryRecord{
		historyRecord("1", models.GameBadminton, individuals("Ann", "Bob"), []int{21, 3}, 0),
	}}
	got := NewStatsService(source).PlayerStats(context.Background(), "Zed")
	if got.GamesPlayed != 0 || got.WinRate != 0 || got.AveragePoints != 0 {
		t.Fatalf("stats for unknown player = %+v, want zeros", got)
	}
	if got.FavoriteGame != nil || got.GameKindStats != nil {
		t.Fatalf("unknown player has favorite/kinds: %+v", got)
	}
}

func TestAllPlayerStatsListsTeamMembers(t *testing.T) {
	t.Parallel()
	source := &fakeHistory{records: []models.HistoryRecord{
		historyRecord("2", models.GameBadminton, []models.Participant{
			models.NewTeamParticipant("Reds", []string{"Dee", "Ann"}),
			models.NewTeamParticipant("Blues", []string{"Eve"}),
		}, []int{21, 10}, 0),
		historyRecord("1", models.GameBadminton, individuals("Cid", "Ann"), []int{21, 10}, 0),
	}}
	all := NewStatsService(source).AllPlayerStats(context.Background())

	var names []string
	for _, s := range all {
		names = append(names, s.PlayerName)
	}
	want := []string{"Ann", "Cid", "Dee", "Eve"}
	if len(names) != len(want) {
		t.Fatalf("AllPlayerStats names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("AllPlayerStats names = %v, want %v", names, want)
		}
	}
	if all[0].GamesPlayed != 2 || all[0].GamesWon != 1 {
		t.Fatalf("Ann stats = %+v", all[0])
	}
}
