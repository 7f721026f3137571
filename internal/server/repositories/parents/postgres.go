// Package parents provides a PostgreSQL-backed repository for encrypted
// parent/guardian records.
package parents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/enrollhub/admitd/internal/common"
	"github.com/enrollhub/admitd/internal/dbx"
	"github.com/enrollhub/admitd/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetByCandidateID(ctx context.Context, candidateID int64) (*models.Parent, error) {
	query := `
		SELECT id, candidate_id, first_name, last_name, email, phone, address, created_at
		FROM parents
		WHERE candidate_id = $1
	`
	p := &models.Parent{}
	err := r.db.QueryRowContext(ctx, query, candidateID).Scan(
		&p.ID, &p.CandidateID,
		&p.Details.FirstName, &p.Details.LastName, &p.Details.Email, &p.Details.Phone, &p.Details.Address,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, candidateID int64, details *models.EncryptedParentDetails) error {
	query := `
		INSERT INTO parents (candidate_id, first_name, last_name, email, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (candidate_id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
		    email = EXCLUDED.email, phone = EXCLUDED.phone, address = EXCLUDED.address
	`
	if _, err := r.db.ExecContext(ctx, query, candidateID,
		details.FirstName, details.LastName, details.Email, details.Phone, details.Address); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
