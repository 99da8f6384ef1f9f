package models

// Group is a pairing slot inside a tournament: either an initial
// round-robin group or a two-player knockout slot.
type Group struct {
	ID           int      `json:"id" db:"id"`
	TournamentID int      `json:"tournament_id" db:"tournament_id"`
	GroupNumber  int      `json:"group_number" db:"group_number"`
	Participants []string `json:"participants" db:"participants"`
	Court1       *string  `json:"court1,omitempty" db:"court1"`
	Court2       *string  `json:"court2,omitempty" db:"court2"`
}

// IsKnockoutPairing reports whether the group is a two-player slot.
func (g *Group) IsKnockoutPairing() bool {
	return len(g.Participants) == 2
}

func (g *Group) HasParticipant(name string) bool {
	for _, p := range g.Participants {
		if p == name {
			return true
		}
	}
	return false
}
