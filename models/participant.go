package models

// GameMode определяет, кто участвует в матче: отдельные игроки или две команды.
type GameMode string

const (
	ModeIndividual GameMode = "individual"
	ModeTeam       GameMode = "team"
)

func (m GameMode) Valid() bool {
	return m == ModeIndividual || m == ModeTeam
}

type ParticipantKind string

const (
	ParticipantIndividual ParticipantKind = "individual"
	ParticipantTeam       ParticipantKind = "team"
)

// Participant is one scoring side of a match. Individual participants carry
// their own name as the single member.
type Participant struct {
	Kind    ParticipantKind `json:"kind"`
	Name    string          `json:"name"`
	Members []string        `json:"members"`
}

func NewIndividual(name string) Participant {
	return Participant{Kind: ParticipantIndividual, Name: name, Members: []string{name}}
}

func NewTeamParticipant(name string, members []string) Participant {
	return Participant{Kind: ParticipantTeam, Name: name, Members: append([]string(nil), members...)}
}

// HasMember reports whether player is the participant itself or one of its members.
func (p Participant) HasMember(player string) bool {
	if p.Name == player {
		return true
	}
	for _, m := range p.Members {
		if m == player {
			return true
		}
	}
	return false
}

func (p Participant) Clone() Participant {
	p.Members = append([]string(nil), p.Members...)
	return p
}

func CloneParticipants(src []Participant) []Participant {
	if src == nil {
		return nil
	}
	out := make([]Participant, len(src))
	for i, p := range src {
		out[i] = p.Clone()
	}
	return out
}
