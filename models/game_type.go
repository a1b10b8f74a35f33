package models

// GameType описывает вид игры и его правила по умолчанию.
type GameType struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	DefaultScore int    `json:"default_score"`
	MinWinBy     int    `json:"min_win_by"`
	IsCustom     bool   `json:"is_custom"`
}

// Built-in game kinds.
const (
	GameBadminton  = "badminton"
	GamePingPong   = "ping-pong"
	GameVolleyball = "volleyball"
)

// PresetGameTypes returns a fresh copy of the built-in presets.
func PresetGameTypes() map[string]GameType {
	return map[string]GameType{
		GameBadminton:  {Key: GameBadminton, Name: "Badminton", DefaultScore: 21, MinWinBy: 2},
		GamePingPong:   {Key: GamePingPong, Name: "Ping Pong", DefaultScore: 11, MinWinBy: 2},
		GameVolleyball: {Key: GameVolleyball, Name: "Volleyball", DefaultScore: 25, MinWinBy: 2},
	}
}
