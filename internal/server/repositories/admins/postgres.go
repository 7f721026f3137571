// Package admins provides a PostgreSQL-backed repository for administrator
// accounts.
package admins

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

const adminColumns = `id, login, password_hash, public_key, private_key_ciphertext, created_at`

func scanAdmin(row *sql.Row) (*models.Admin, error) {
	a := &models.Admin{}
	err := row.Scan(&a.ID, &a.Login, &a.PasswordHash, &a.PublicKey, &a.PrivateKeyCiphertext, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, admin *models.Admin) (*models.Admin, error) {
	query := `
		INSERT INTO admins (login, password_hash, public_key, private_key_ciphertext)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		admin.Login, admin.PasswordHash, admin.PublicKey, admin.PrivateKeyCiphertext).Scan(&admin.ID, &admin.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return admin, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1`
	return scanAdmin(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE login = $1`
	return scanAdmin(r.db.QueryRowContext(ctx, query, login))
}

func (r *PostgresRepository) ListPublicKeys(ctx context.Context) ([]string, error) {
	query := `SELECT public_key FROM admins ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return keys, nil
}
