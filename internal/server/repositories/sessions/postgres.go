// Package sessions provides a PostgreSQL-backed repository for
// authentication sessions.
package sessions

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

// actorColumn maps a role to the session column holding the actor id.
// The two columns are mutually exclusive by table constraint.
func actorColumn(role models.Role) string {
	switch role {
	case models.RoleCandidate:
		return "candidate_id"
	case models.RoleAdmin:
		return "admin_id"
	default:
		panic(fmt.Sprintf("unknown role %v", role))
	}
}

func (r *PostgresRepository) Create(ctx context.Context, session *models.Session) error {
	query := fmt.Sprintf(`
		INSERT INTO sessions (id, %s, ip, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`, actorColumn(session.Role))
	if _, err := r.db.ExecContext(ctx, query,
		session.ID, session.ActorID, session.IP, session.CreatedAt, session.ExpiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, candidate_id, admin_id, ip, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`
	s := &models.Session{}
	var candidateID, adminID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &candidateID, &adminID, &s.IP, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	switch {
	case candidateID.Valid:
		s.Role = models.RoleCandidate
		s.ActorID = candidateID.Int64
	case adminID.Valid:
		s.Role = models.RoleAdmin
		s.ActorID = adminID.Int64
	default:
		return nil, fmt.Errorf("db error: session %s has no actor", id)
	}
	return s, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM sessions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteOldForActor(ctx context.Context, role models.Role, actorID int64, keepRecent int) error {
	col := actorColumn(role)
	query := fmt.Sprintf(`
		DELETE FROM sessions
		WHERE %s = $1 AND id NOT IN (
			SELECT id FROM sessions
			WHERE %s = $1
			ORDER BY created_at DESC
			LIMIT $2
		)
	`, col, col)
	if _, err := r.db.ExecContext(ctx, query, actorID, keepRecent); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
