package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/tennis-tournament/models"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrGroupInvalidRef     = errors.New("group references a missing tournament")
	ErrMatchResultNotFound = errors.New("match result not found")
	// ErrMatchResultConflict: результат для этой пары в группе уже существует
	ErrMatchResultConflict = errors.New("match result for this pairing already exists")
	ErrMatchResultGroupRef = errors.New("match result references a missing group")
)

type ListTournamentsFilter struct {
	Archived *bool
}

// TournamentRepository stores tournament rows. Groups are handled by
// GroupRepository; returned tournaments have Groups == nil.
type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	// List returns tournaments ordered by date, newest first.
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	SetArchived(ctx context.Context, id int) error
	// Delete removes the tournament together with its groups and results.
	Delete(ctx context.Context, id int) error
}

type GroupRepository interface {
	Create(ctx context.Context, g *models.Group) error
	GetByID(ctx context.Context, id int) (*models.Group, error)
	// ListByTournament returns groups ordered by group number, then id.
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Group, error)
	ListByTournaments(ctx context.Context, tournamentIDs []int) (map[int][]models.Group, error)
	UpdateParticipants(ctx context.Context, id int, participants []string) error
}

type MatchResultRepository interface {
	// Create fails with ErrMatchResultConflict when the unordered pair
	// already has a result in the group.
	Create(ctx context.Context, m *models.MatchResult) error
	GetByID(ctx context.Context, id int) (*models.MatchResult, error)
	ListByGroup(ctx context.Context, groupID int) ([]models.MatchResult, error)
	FindByGroupAndPair(ctx context.Context, groupID int, playerA, playerB string) (*models.MatchResult, error)
	// UpdateOutcome overwrites status, scores and winner only.
	UpdateOutcome(ctx context.Context, m *models.MatchResult) error
}

// Store groups the repositories behind a single transaction boundary.
type Store interface {
	Tournaments() TournamentRepository
	Groups() GroupRepository
	MatchResults() MatchResultRepository
	// WithinTx runs fn against a transactional Store. Everything fn writes is
	// committed when it returns nil and rolled back otherwise. Nested calls
	// join the outer transaction.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
