// Package portfolios provides a PostgreSQL-backed repository tracking the
// storage keys of submitted, encrypted portfolio archives.
package portfolios

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/enrollhub/admitd/internal/common"
	"github.com/enrollhub/admitd/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, candidateID int64, storageKey string) error {
	query := `
		INSERT INTO portfolios (candidate_id, storage_key, submitted_at)
		VALUES ($1, $2, now())
		ON CONFLICT (candidate_id) DO UPDATE
		SET storage_key = EXCLUDED.storage_key, submitted_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, candidateID, storageKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByCandidateID(ctx context.Context, candidateID int64) (*Record, error) {
	query := `SELECT candidate_id, storage_key, submitted_at FROM portfolios WHERE candidate_id = $1`
	rec := &Record{}
	err := r.db.QueryRowContext(ctx, query, candidateID).Scan(&rec.CandidateID, &rec.StorageKey, &rec.SubmittedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, candidateID int64) error {
	query := `DELETE FROM portfolios WHERE candidate_id = $1`
	if _, err := r.db.ExecContext(ctx, query, candidateID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
