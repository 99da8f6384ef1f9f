package models

import "time"

// Tournament представляет турнир с его группами.
type Tournament struct {
	ID              int       `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Date            time.Time `json:"date" db:"date"`
	NumberOfWinners int       `json:"number_of_winners" db:"number_of_winners"`
	Archived        bool      `json:"archived" db:"archived"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`

	// Загружаются отдельным запросом, в таблице tournaments не хранятся
	Groups []Group `json:"groups" db:"-"`
}

// NextGroupNumber returns the number the next appended group should carry.
// Group numbers are display keys, so gaps left by dropped empty groups are
// respected and the result never collides with an existing number.
func (t *Tournament) NextGroupNumber() int {
	next := len(t.Groups)
	for _, g := range t.Groups {
		if g.GroupNumber > next {
			next = g.GroupNumber
		}
	}
	return next + 1
}

// ParticipantCount суммирует длины списков участников всех групп.
func (t *Tournament) ParticipantCount() int {
	total := 0
	for _, g := range t.Groups {
		total += len(g.Participants)
	}
	return total
}

type TournamentSummary struct {
	ID               int       `json:"id"`
	Name             string    `json:"name"`
	Date             time.Time `json:"date"`
	CreatedAt        time.Time `json:"created_at"`
	GroupCount       int       `json:"group_count"`
	ParticipantCount int       `json:"participant_count"`
}

func (t *Tournament) Summary() TournamentSummary {
	return TournamentSummary{
		ID:               t.ID,
		Name:             t.Name,
		Date:             t.Date,
		CreatedAt:        t.CreatedAt,
		GroupCount:       len(t.Groups),
		ParticipantCount: t.ParticipantCount(),
	}
}
