package models

type TeamSide string

const (
	TeamA TeamSide = "A"
	TeamB TeamSide = "B"
)

const (
	DefaultTeamAName = "Team A"
	DefaultTeamBName = "Team B"
)

// ParseTeamSide accepts "A"/"B" as well as the long "teamA"/"teamB" form.
func ParseTeamSide(raw string) (TeamSide, bool) {
	switch raw {
	case "A", "a", "teamA":
		return TeamA, true
	case "B", "b", "teamB":
		return TeamB, true
	default:
		return "", false
	}
}

type Team struct {
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

type Teams struct {
	A Team `json:"team_a"`
	B Team `json:"team_b"`
}

func (t Teams) Clone() Teams {
	t.A.Players = append([]string{}, t.A.Players...)
	t.B.Players = append([]string{}, t.B.Players...)
	return t
}
