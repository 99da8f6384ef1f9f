package models

import (
	"fmt"
	"strings"
	"time"
)

type MatchStatus string

const (
	MatchStatusPlayed   MatchStatus = "PLAYED"
	MatchStatusWalkover MatchStatus = "WALKOVER"
	MatchStatusRetired  MatchStatus = "RETIRED"
)

// ParseMatchStatus принимает статус в любом регистре.
func ParseMatchStatus(s string) (MatchStatus, error) {
	status := MatchStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case MatchStatusPlayed, MatchStatusWalkover, MatchStatusRetired:
		return status, nil
	default:
		return "", fmt.Errorf("unknown match status %q", s)
	}
}

// MatchResult is the recorded outcome of one pairing inside a group.
// Player names and ReportedAt never change after the first save.
type MatchResult struct {
	ID         int         `json:"id" db:"id"`
	GroupID    int         `json:"group_id" db:"group_id"`
	Status     MatchStatus `json:"status" db:"status"`
	Player1    string      `json:"player1" db:"player1"`
	Player2    string      `json:"player2" db:"player2"`
	Score1     *int        `json:"score1" db:"score1"`
	Score2     *int        `json:"score2" db:"score2"`
	Winner     *string     `json:"winner" db:"winner"`
	ReportedAt time.Time   `json:"reported_at" db:"reported_at"`
}

// Involves reports whether the result is for the unordered pair {a, b}.
func (m *MatchResult) Involves(a, b string) bool {
	return (m.Player1 == a && m.Player2 == b) || (m.Player1 == b && m.Player2 == a)
}

// GamesFor returns games won and lost by player in this result. Absent
// scores count as zero.
func (m *MatchResult) GamesFor(player string) (won, lost int) {
	s1, s2 := 0, 0
	if m.Score1 != nil {
		s1 = *m.Score1
	}
	if m.Score2 != nil {
		s2 = *m.Score2
	}
	switch player {
	case m.Player1:
		return s1, s2
	case m.Player2:
		return s2, s1
	}
	return 0, 0
}
