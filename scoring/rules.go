// Package scoring validates reported match outcomes and derives the winner.
//
// Each match status is its own Outcome variant carrying only the fields that
// status uses; Rules.Decide dispatches on the variant.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/tennis-tournament/models"
)

// DefaultGamesToWin is the race-to-four match format.
const DefaultGamesToWin = 4

var (
	ErrInvalidStatus   = errors.New("invalid match status")
	ErrMissingScore    = errors.New("both players must have a score")
	ErrScoreOutOfRange = errors.New("score is out of range")
	ErrNoGamesWinner   = errors.New("one player must have reached the winning number of games")
	ErrAmbiguousWinner = errors.New("both players cannot have reached the winning number of games")
	ErrMissingWinner   = errors.New("a winner must be named")
	ErrInvalidWinner   = errors.New("the winner must be one of the two players")
)

// Rules holds the match format.
type Rules struct {
	GamesToWin int
}

func NewRules(gamesToWin int) Rules {
	if gamesToWin <= 0 {
		gamesToWin = DefaultGamesToWin
	}
	return Rules{GamesToWin: gamesToWin}
}

// Pairing is the two players an outcome is reported for.
type Pairing struct {
	Player1 string
	Player2 string
}

func (p Pairing) has(name string) bool {
	return name == p.Player1 || name == p.Player2
}

// Decision is an accepted outcome, ready to be written to a MatchResult.
type Decision struct {
	Status models.MatchStatus
	Score1 *int
	Score2 *int
	Winner string
}

// Apply overwrites the outcome fields of m. Identity, group and player
// names are left untouched.
func (d Decision) Apply(m *models.MatchResult) {
	m.Status = d.Status
	m.Score1 = d.Score1
	m.Score2 = d.Score2
	winner := d.Winner
	m.Winner = &winner
}

type Outcome interface {
	Status() models.MatchStatus
	decide(r Rules, p Pairing) (Decision, error)
}

type Played struct {
	Score1 *int
	Score2 *int
}

type Walkover struct {
	Winner string
}

type Retired struct {
	Winner string
	Score1 *int
	Score2 *int
}

func (Played) Status() models.MatchStatus   { return models.MatchStatusPlayed }
func (Walkover) Status() models.MatchStatus { return models.MatchStatusWalkover }
func (Retired) Status() models.MatchStatus  { return models.MatchStatusRetired }

// NewOutcome builds the variant for a raw reported status. Fields the
// status does not use are dropped here.
func NewOutcome(status string, score1, score2 *int, winner *string) (Outcome, error) {
	parsed, err := models.ParseMatchStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	w := ""
	if winner != nil {
		w = *winner
	}
	switch parsed {
	case models.MatchStatusWalkover:
		return Walkover{Winner: w}, nil
	case models.MatchStatusRetired:
		return Retired{Winner: w, Score1: score1, Score2: score2}, nil
	default:
		return Played{Score1: score1, Score2: score2}, nil
	}
}

// Decide validates o for the given pairing. Every failure wraps one of the
// package's sentinel errors.
func (r Rules) Decide(o Outcome, p Pairing) (Decision, error) {
	if o == nil {
		return Decision{}, ErrInvalidStatus
	}
	return o.decide(r, p)
}

func (o Played) decide(r Rules, p Pairing) (Decision, error) {
	if o.Score1 == nil || o.Score2 == nil {
		return Decision{}, ErrMissingScore
	}
	s1, s2 := *o.Score1, *o.Score2
	if s1 < 0 || s2 < 0 || s1 > r.GamesToWin || s2 > r.GamesToWin {
		return Decision{}, fmt.Errorf("%w: games must be between 0 and %d", ErrScoreOutOfRange, r.GamesToWin)
	}
	if s1 != r.GamesToWin && s2 != r.GamesToWin {
		return Decision{}, fmt.Errorf("%w: nobody reached %d games", ErrNoGamesWinner, r.GamesToWin)
	}
	if s1 == r.GamesToWin && s2 == r.GamesToWin {
		return Decision{}, ErrAmbiguousWinner
	}

	winner := p.Player2
	if s1 == r.GamesToWin {
		winner = p.Player1
	}
	return Decision{
		Status: models.MatchStatusPlayed,
		Score1: intPtr(s1),
		Score2: intPtr(s2),
		Winner: winner,
	}, nil
}

func (o Walkover) decide(_ Rules, p Pairing) (Decision, error) {
	if err := validateWinner(o.Winner, p); err != nil {
		return Decision{}, err
	}
	return Decision{Status: models.MatchStatusWalkover, Winner: o.Winner}, nil
}

func (o Retired) decide(r Rules, p Pairing) (Decision, error) {
	if err := validateWinner(o.Winner, p); err != nil {
		return Decision{}, err
	}
	if o.Score1 == nil || o.Score2 == nil {
		return Decision{}, ErrMissingScore
	}
	s1, s2 := *o.Score1, *o.Score2
	// a retired match never reached the winning number of games
	if s1 < 0 || s2 < 0 || s1 >= r.GamesToWin || s2 >= r.GamesToWin {
		return Decision{}, fmt.Errorf("%w: games in a retired match must be between 0 and %d", ErrScoreOutOfRange, r.GamesToWin-1)
	}
	return Decision{
		Status: models.MatchStatusRetired,
		Score1: intPtr(s1),
		Score2: intPtr(s2),
		Winner: o.Winner,
	}, nil
}

func validateWinner(winner string, p Pairing) error {
	if strings.TrimSpace(winner) == "" {
		return ErrMissingWinner
	}
	if !p.has(winner) {
		return fmt.Errorf("%w: %q", ErrInvalidWinner, winner)
	}
	return nil
}

func intPtr(v int) *int {
	return &v
}
