package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tennis-tournament/models"
	"github.com/lib/pq"
)

const pairUniqueIndex = "match_results_group_pair_key"

type postgresMatchResultRepository struct {
	exec SQLExecutor
}

const matchResultColumns = `id, group_id, status, player1, player2, score1, score2, winner, reported_at`

func (r *postgresMatchResultRepository) Create(ctx context.Context, m *models.MatchResult) error {
	// reported_at выставляется БД один раз и больше не обновляется
	query := `
		INSERT INTO match_results (group_id, status, player1, player2, score1, score2, winner)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, reported_at`

	err := r.exec.QueryRowContext(ctx, query,
		m.GroupID, m.Status, m.Player1, m.Player2, m.Score1, m.Score2, m.Winner,
	).Scan(&m.ID, &m.ReportedAt)
	return r.handleMatchResultError(err)
}

func (r *postgresMatchResultRepository) GetByID(ctx context.Context, id int) (*models.MatchResult, error) {
	query := `SELECT ` + matchResultColumns + ` FROM match_results WHERE id = $1`

	m, err := scanMatchResult(r.exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchResultNotFound
		}
		return nil, fmt.Errorf("failed to scan match result by id %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchResultRepository) ListByGroup(ctx context.Context, groupID int) ([]models.MatchResult, error) {
	query := `SELECT ` + matchResultColumns + `
		FROM match_results
		WHERE group_id = $1
		ORDER BY reported_at ASC, id ASC`

	rows, err := r.exec.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results for group %d: %w", groupID, err)
	}
	defer rows.Close()

	results := make([]models.MatchResult, 0)
	for rows.Next() {
		m, scanErr := scanMatchResult(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match result row: %w", scanErr)
		}
		results = append(results, *m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match result rows iteration: %w", err)
	}
	return results, nil
}

func (r *postgresMatchResultRepository) FindByGroupAndPair(ctx context.Context, groupID int, playerA, playerB string) (*models.MatchResult, error) {
	query := `SELECT ` + matchResultColumns + `
		FROM match_results
		WHERE group_id = $1
		  AND ((player1 = $2 AND player2 = $3) OR (player1 = $3 AND player2 = $2))
		LIMIT 1`

	m, err := scanMatchResult(r.exec.QueryRowContext(ctx, query, groupID, playerA, playerB))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchResultNotFound
		}
		return nil, fmt.Errorf("failed to find match result for %q vs %q in group %d: %w", playerA, playerB, groupID, err)
	}
	return m, nil
}

func (r *postgresMatchResultRepository) UpdateOutcome(ctx context.Context, m *models.MatchResult) error {
	query := `
		UPDATE match_results
		SET status = $1, score1 = $2, score2 = $3, winner = $4
		WHERE id = $5`

	result, err := r.exec.ExecContext(ctx, query, m.Status, m.Score1, m.Score2, m.Winner, m.ID)
	if err != nil {
		return r.handleMatchResultError(err)
	}
	return checkAffectedRows(result, ErrMatchResultNotFound)
}

func scanMatchResult(row rowScanner) (*models.MatchResult, error) {
	m := &models.MatchResult{}
	var score1, score2 sql.NullInt64
	var winner sql.NullString
	if err := row.Scan(
		&m.ID, &m.GroupID, &m.Status, &m.Player1, &m.Player2,
		&score1, &score2, &winner, &m.ReportedAt,
	); err != nil {
		return nil, err
	}
	if score1.Valid {
		v := int(score1.Int64)
		m.Score1 = &v
	}
	if score2.Valid {
		v := int(score2.Int64)
		m.Score2 = &v
	}
	if winner.Valid {
		m.Winner = &winner.String
	}
	return m, nil
}

func (r *postgresMatchResultRepository) handleMatchResultError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// "23505": unique_violation, "23503": foreign_key_violation
		switch {
		case pqErr.Code == "23505" && pqErr.Constraint == pairUniqueIndex:
			return ErrMatchResultConflict
		case pqErr.Code == "23503":
			return ErrMatchResultGroupRef
		}
	}
	return err
}
