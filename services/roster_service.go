package services

import (
	"fmt"
	"strings"

	"github.com/Dosada05/scoreboard/models"
	"github.com/Dosada05/scoreboard/utils"
)

const (
	MaxPlayers        = 8
	MinPlayers        = 2
	MaxTeamPlayers    = 4
	MinNameLength     = 1
	MaxNameLength     = 20
	MaxTeamNameLength = 30
)

const forbiddenNameChars = `<>"'&`

type RosterService interface {
	Mode() models.GameMode
	SetMode(mode models.GameMode) error

	Players() []string
	AddPlayer(name string) ([]string, error)
	RemovePlayer(name string) ([]string, error)
	RemovePlayerAt(index int) ([]string, error)
	RenamePlayer(index int, name string) ([]string, error)
	ReorderPlayer(from, to int) ([]string, error)
	SetPlayers(names []string) ([]string, error)

	Teams() models.Teams
	SetTeamName(side models.TeamSide, name string) (models.Teams, error)
	AddTeamMember(side models.TeamSide, name string) (models.Teams, error)
	RemoveTeamMember(side models.TeamSide, name string) (models.Teams, error)

	Clear()
	IsReadyToStart() Readiness
	ToParticipants() []models.Participant
}

// Readiness reports whether the roster can start a match and why not.
type Readiness struct {
	Ready       bool            `json:"ready"`
	Reason      string          `json:"reason"`
	Mode        models.GameMode `json:"mode"`
	PlayerCount int             `json:"player_count,omitempty"`
	TeamACount  int             `json:"team_a_count,omitempty"`
	TeamBCount  int             `json:"team_b_count,omitempty"`
}

type rosterService struct {
	mode    models.GameMode
	players []string
	teams   models.Teams
}

func NewRosterService() RosterService {
	s := &rosterService{mode: models.ModeIndividual}
	s.resetTeams()
	return s
}

// ValidatePlayerName returns the normalized name or ErrInvalidName.
func ValidatePlayerName(name string) (string, error) {
	return validateName(name, "player", MaxNameLength)
}

func ValidateTeamName(name string) (string, error) {
	return validateName(name, "team", MaxTeamNameLength)
}

func validateName(raw, what string, maxLen int) (string, error) {
	name := utils.NormalizeName(raw)
	n := utils.NameLength(name)
	if n < MinNameLength {
		return "", fmt.Errorf("%w: %s name must not be empty", ErrInvalidName, what)
	}
	if n > maxLen {
		return "", fmt.Errorf("%w: %s name must be at most %d characters", ErrInvalidName, what, maxLen)
	}
	if strings.ContainsAny(name, forbiddenNameChars) {
		return "", fmt.Errorf("%w: %s name contains invalid characters", ErrInvalidName, what)
	}
	return name, nil
}

func (s *rosterService) Mode() models.GameMode {
	return s.mode
}

// SetMode switches the roster mode. The roster of the other mode is discarded.
func (s *rosterService) SetMode(mode models.GameMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: unknown game mode %q", ErrInvalidSetup, mode)
	}
	s.mode = mode
	if mode == models.ModeIndividual {
		s.resetTeams()
	} else {
		s.players = nil
	}
	return nil
}

func (s *rosterService) Players() []string {
	return append([]string{}, s.players...)
}

func (s *rosterService) AddPlayer(raw string) ([]string, error) {
	name, err := ValidatePlayerName(raw)
	if err != nil {
		return s.Players(), err
	}
	if indexOf(s.players, name) != -1 {
		return s.Players(), fmt.Errorf("%w: player %q", ErrDuplicateName, name)
	}
	if len(s.players) >= MaxPlayers {
		return s.Players(), fmt.Errorf("%w: at most %d players allowed", ErrCapacityExceeded, MaxPlayers)
	}
	s.players = append(s.players, name)
	return s.Players(), nil
}

func (s *rosterService) RemovePlayer(name string) ([]string, error) {
	i := indexOf(s.players, utils.NormalizeName(name))
	if i == -1 {
		return s.Players(), fmt.Errorf("%w: player %q", ErrNotFound, name)
	}
	return s.RemovePlayerAt(i)
}

func (s *rosterService) RemovePlayerAt(index int) ([]string, error) {
	if index < 0 || index >= len(s.players) {
		return s.Players(), fmt.Errorf("%w: no player at index %d", ErrNotFound, index)
	}
	s.players = append(s.players[:index], s.players[index+1:]...)
	return s.Players(), nil
}

func (s *rosterService) RenamePlayer(index int, raw string) ([]string, error) {
	if index < 0 || index >= len(s.players) {
		return s.Players(), fmt.Errorf("%w: no player at index %d", ErrNotFound, index)
	}
	name, err := ValidatePlayerName(raw)
	if err != nil {
		return s.Players(), err
	}
	if existing := indexOf(s.players, name); existing != -1 && existing != index {
		return s.Players(), fmt.Errorf("%w: player %q", ErrDuplicateName, name)
	}
	s.players[index] = name
	return s.Players(), nil
}

func (s *rosterService) ReorderPlayer(from, to int) ([]string, error) {
	n := len(s.players)
	if from < 0 || from >= n || to < 0 || to >= n {
		return s.Players(), fmt.Errorf("%w: invalid player index", ErrNotFound)
	}
	moved := s.players[from]
	rest := append(append([]string{}, s.players[:from]...), s.players[from+1:]...)
	s.players = append(append(append([]string{}, rest[:to]...), moved), rest[to:]...)
	return s.Players(), nil
}

// SetPlayers replaces the individual roster. Nothing changes unless every name is valid.
func (s *rosterService) SetPlayers(raw []string) ([]string, error) {
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		name, err := ValidatePlayerName(r)
		if err != nil {
			return s.Players(), err
		}
		if indexOf(names, name) != -1 {
			return s.Players(), fmt.Errorf("%w: player %q", ErrDuplicateName, name)
		}
		names = append(names, name)
	}
	if len(names) > MaxPlayers {
		return s.Players(), fmt.Errorf("%w: at most %d players allowed", ErrCapacityExceeded, MaxPlayers)
	}
	s.players = names
	return s.Players(), nil
}

func (s *rosterService) Teams() models.Teams {
	return s.teams.Clone()
}

func (s *rosterService) team(side models.TeamSide) (*models.Team, error) {
	switch side {
	case models.TeamA:
		return &s.teams.A, nil
	case models.TeamB:
		return &s.teams.B, nil
	default:
		return nil, fmt.Errorf("%w: team %q", ErrNotFound, side)
	}
}

func (s *rosterService) SetTeamName(side models.TeamSide, raw string) (models.Teams, error) {
	team, err := s.team(side)
	if err != nil {
		return s.Teams(), err
	}
	name, err := ValidateTeamName(raw)
	if err != nil {
		return s.Teams(), err
	}
	team.Name = name
	return s.Teams(), nil
}

func (s *rosterService) AddTeamMember(side models.TeamSide, raw string) (models.Teams, error) {
	team, err := s.team(side)
	if err != nil {
		return s.Teams(), err
	}
	name, err := ValidatePlayerName(raw)
	if err != nil {
		return s.Teams(), err
	}
	if indexOf(s.teams.A.Players, name) != -1 || indexOf(s.teams.B.Players, name) != -1 {
		return s.Teams(), fmt.Errorf("%w: player %q is already on a team", ErrDuplicateName, name)
	}
	if len(team.Players) >= MaxTeamPlayers {
		return s.Teams(), fmt.Errorf("%w: at most %d players per team", ErrCapacityExceeded, MaxTeamPlayers)
	}
	team.Players = append(team.Players, name)
	return s.Teams(), nil
}

func (s *rosterService) RemoveTeamMember(side models.TeamSide, name string) (models.Teams, error) {
	team, err := s.team(side)
	if err != nil {
		return s.Teams(), err
	}
	i := indexOf(team.Players, utils.NormalizeName(name))
	if i == -1 {
		return s.Teams(), fmt.Errorf("%w: player %q not in team", ErrNotFound, name)
	}
	team.Players = append(team.Players[:i], team.Players[i+1:]...)
	return s.Teams(), nil
}

// Clear empties both rosters and returns to individual mode.
func (s *rosterService) Clear() {
	s.mode = models.ModeIndividual
	s.players = nil
	s.resetTeams()
}

func (s *rosterService) resetTeams() {
	s.teams = models.Teams{
		A: models.Team{Name: models.DefaultTeamAName, Players: []string{}},
		B: models.Team{Name: models.DefaultTeamBName, Players: []string{}},
	}
}

func (s *rosterService) IsReadyToStart() Readiness {
	if s.mode == models.ModeTeam {
		a, b := len(s.teams.A.Players), len(s.teams.B.Players)
		r := Readiness{Mode: s.mode, TeamACount: a, TeamBCount: b, Ready: a >= 1 && b >= 1}
		if r.Ready {
			r.Reason = "teams are ready to start"
		} else {
			r.Reason = "each team needs at least 1 player"
		}
		return r
	}

	n := len(s.players)
	r := Readiness{Mode: s.mode, PlayerCount: n, Ready: n >= MinPlayers}
	if r.Ready {
		r.Reason = "ready to start the game"
	} else {
		r.Reason = fmt.Sprintf("at least %d players are needed to start", MinPlayers)
	}
	return r
}

func (s *rosterService) ToParticipants() []models.Participant {
	if s.mode == models.ModeTeam {
		return []models.Participant{
			models.NewTeamParticipant(s.teams.A.Name, s.teams.A.Players),
			models.NewTeamParticipant(s.teams.B.Name, s.teams.B.Players),
		}
	}
	out := make([]models.Participant, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, models.NewIndividual(p))
	}
	return out
}

func indexOf(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return -1
}
