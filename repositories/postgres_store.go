package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresStore struct {
	db   *sql.DB
	tx   *sql.Tx
	exec SQLExecutor
}

func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db, exec: db}
}

func (s *postgresStore) Tournaments() TournamentRepository {
	return &postgresTournamentRepository{exec: s.exec}
}

func (s *postgresStore) Groups() GroupRepository {
	return &postgresGroupRepository{exec: s.exec}
}

func (s *postgresStore) MatchResults() MatchResultRepository {
	return &postgresMatchResultRepository{exec: s.exec}
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) (txErr error) {
	if s.tx != nil {
		return fn(ctx, s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	return fn(ctx, &postgresStore{db: s.db, tx: tx, exec: tx})
}
