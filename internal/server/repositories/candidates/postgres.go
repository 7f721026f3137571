// Package candidates provides a PostgreSQL-backed repository for candidate
// accounts and their encrypted detail fields.
package candidates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/enrollhub/admitd/internal/common"
	"github.com/enrollhub/admitd/internal/dbx"
	"github.com/enrollhub/admitd/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const candidateColumns = `id, application_id, password_hash, personal_id_hash, public_key, private_key_ciphertext,
	 first_name, last_name, email, phone, address, city, postal_code, school, graduation_year, created_at`

func scanCandidate(row *sql.Row) (*models.Candidate, error) {
	c := &models.Candidate{}
	err := row.Scan(
		&c.ID, &c.ApplicationID, &c.PasswordHash, &c.PersonalIDHash, &c.PublicKey, &c.PrivateKeyCiphertext,
		&c.Details.FirstName, &c.Details.LastName, &c.Details.Email, &c.Details.Phone, &c.Details.Address,
		&c.Details.City, &c.Details.PostalCode, &c.Details.School, &c.Details.GraduationYear, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, candidate *models.Candidate) (*models.Candidate, error) {
	query := `
		INSERT INTO candidates (application_id, password_hash, personal_id_hash, public_key, private_key_ciphertext)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		candidate.ApplicationID, candidate.PasswordHash, candidate.PersonalIDHash,
		candidate.PublicKey, candidate.PrivateKeyCiphertext).Scan(&candidate.ID, &candidate.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return candidate, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	return scanCandidate(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByApplicationID(ctx context.Context, applicationID string) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE application_id = $1`
	return scanCandidate(r.db.QueryRowContext(ctx, query, applicationID))
}

func (r *PostgresRepository) ExistsByPersonalIDHash(ctx context.Context, personalIDHash string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM candidates WHERE personal_id_hash = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, personalIDHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// UpdateCredentials replaces the login credentials and keypair in one
// statement, so a password reset is atomic at the row level.
func (r *PostgresRepository) UpdateCredentials(ctx context.Context, id int64, passwordHash, publicKey, privateKeyCiphertext string) error {
	query := `
		UPDATE candidates
		SET password_hash = $2, public_key = $3, private_key_ciphertext = $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, passwordHash, publicKey, privateKeyCiphertext)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateDetails(ctx context.Context, id int64, details *models.EncryptedCandidateDetails) error {
	query := `
		UPDATE candidates
		SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6,
		    city = $7, postal_code = $8, school = $9, graduation_year = $10
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id,
		details.FirstName, details.LastName, details.Email, details.Phone, details.Address,
		details.City, details.PostalCode, details.School, details.GraduationYear)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if affected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
