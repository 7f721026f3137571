package sessions

import (
	"context"

	"github.com/enrollhub/admitd/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, session *models.Session) error
	Find(ctx context.Context, id string) (*models.Session, error)
	// Delete removes a session by id. Deleting a non-existent session is
	// not an error at this layer.
	Delete(ctx context.Context, id string) error
	// DeleteOldForActor deletes all but the keepRecent most-recently
	// created sessions of one actor.
	DeleteOldForActor(ctx context.Context, role models.Role, actorID int64, keepRecent int) error
}
