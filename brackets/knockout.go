package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-tournament/models"
)

var (
	ErrPlayerCountRequired = errors.New("number of players is required for the first knockout round")
	ErrTooFewPlayers       = errors.New("number of players must be at least 2")
	ErrOddPlayerCount      = errors.New("number of players must be divisible by 2")
)

// KnockoutRoundGenerator produces the empty two-player slots of the next
// single-elimination round.
type KnockoutRoundGenerator struct{}

func NewKnockoutRoundGenerator() RoundGenerator {
	return &KnockoutRoundGenerator{}
}

func (g *KnockoutRoundGenerator) GetName() string {
	return "Knockout"
}

// GenerateRound returns numberOfPlayers/2 new empty groups numbered after the
// tournament's existing groups. The tournament itself is not modified.
//
// When NumberOfPlayers is nil every existing two-player group counts as one
// advancing winner. Whether that group's match has actually been resolved is
// not checked.
func (g *KnockoutRoundGenerator) GenerateRound(ctx context.Context, params GenerateRoundParams) ([]models.Group, error) {
	t := params.Tournament
	if t == nil {
		return nil, errors.New("tournament is required to generate a round")
	}

	var numberOfPlayers int
	if params.NumberOfPlayers != nil {
		numberOfPlayers = *params.NumberOfPlayers
	} else {
		numberOfPlayers = CountKnockoutPairings(t.Groups)
		if numberOfPlayers == 0 {
			return nil, ErrPlayerCountRequired
		}
	}

	if numberOfPlayers < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPlayers, numberOfPlayers)
	}
	if numberOfPlayers%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddPlayerCount, numberOfPlayers)
	}

	numMatches := numberOfPlayers / 2
	first := t.NextGroupNumber()

	groups := make([]models.Group, 0, numMatches)
	for i := 0; i < numMatches; i++ {
		groups = append(groups, models.Group{
			TournamentID: t.ID,
			GroupNumber:  first + i,
			Participants: []string{},
		})
	}
	return groups, nil
}

// CountKnockoutPairings counts groups with exactly two participants.
func CountKnockoutPairings(groups []models.Group) int {
	n := 0
	for i := range groups {
		if groups[i].IsKnockoutPairing() {
			n++
		}
	}
	return n
}
