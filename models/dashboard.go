package models

// Leader is the participant currently holding the highest score.
type Leader struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

type GameStats struct {
	Duration     string  `json:"duration"`
	TotalPoints  int     `json:"total_points"`
	AverageScore float64 `json:"average_score"`
	Leader       *Leader `json:"leader,omitempty"`
}

type PlayerStats struct {
	PlayerName    string         `json:"player_name"`
	GamesPlayed   int            `json:"games_played"`
	GamesWon      int            `json:"games_won"`
	GamesLost     int            `json:"games_lost"`
	WinRate       int            `json:"win_rate"`
	TotalPoints   int            `json:"total_points"`
	AveragePoints float64        `json:"average_points"`
	FavoriteGame  *string        `json:"favorite_game"`
	GameKindStats map[string]int `json:"game_kind_stats,omitempty"`
}
