package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-tournament/models"
	"github.com/lib/pq"
)

type postgresGroupRepository struct {
	exec SQLExecutor
}

const groupColumns = `id, tournament_id, group_number, participants, court1, court2`

func (r *postgresGroupRepository) Create(ctx context.Context, g *models.Group) error {
	if g.Participants == nil {
		g.Participants = []string{}
	}
	query := `
		INSERT INTO tournament_groups (tournament_id, group_number, participants, court1, court2)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.exec.QueryRowContext(ctx, query,
		g.TournamentID, g.GroupNumber, pq.Array(g.Participants), g.Court1, g.Court2,
	).Scan(&g.ID)
	return r.handleGroupError(err)
}

func (r *postgresGroupRepository) GetByID(ctx context.Context, id int) (*models.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM tournament_groups WHERE id = $1`

	g, err := scanGroup(r.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group by id %d: %w", id, err)
	}
	return g, nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Group, error) {
	byTournament, err := r.ListByTournaments(ctx, []int{tournamentID})
	if err != nil {
		return nil, err
	}
	groups := byTournament[tournamentID]
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

func (r *postgresGroupRepository) ListByTournaments(ctx context.Context, tournamentIDs []int) (map[int][]models.Group, error) {
	result := make(map[int][]models.Group, len(tournamentIDs))
	if len(tournamentIDs) == 0 {
		return result, nil
	}

	ids := make([]int64, len(tournamentIDs))
	for i, id := range tournamentIDs {
		ids[i] = int64(id)
	}

	query := `SELECT ` + groupColumns + `
		FROM tournament_groups
		WHERE tournament_id = ANY($1)
		ORDER BY tournament_id, group_number, id`

	rows, err := r.exec.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		g, scanErr := scanGroup(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", scanErr)
		}
		result[g.TournamentID] = append(result[g.TournamentID], *g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during group rows iteration: %w", err)
	}
	return result, nil
}

func (r *postgresGroupRepository) UpdateParticipants(ctx context.Context, id int, participants []string) error {
	query := `UPDATE tournament_groups SET participants = $1 WHERE id = $2`
	result, err := r.exec.ExecContext(ctx, query, pq.Array(participants), id)
	if err != nil {
		return fmt.Errorf("failed to update participants of group %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrGroupNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanGroup(row rowScanner) (*models.Group, error) {
	g := &models.Group{}
	var participants pq.StringArray
	if err := row.Scan(&g.ID, &g.TournamentID, &g.GroupNumber, &participants, &g.Court1, &g.Court2); err != nil {
		return nil, err
	}
	g.Participants = []string(participants)
	if g.Participants == nil {
		g.Participants = []string{}
	}
	return g, nil
}

func (r *postgresGroupRepository) handleGroupError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrGroupInvalidRef
	}
	return err
}
