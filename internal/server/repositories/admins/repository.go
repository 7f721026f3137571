package admins

import (
	"context"

	"github.com/enrollhub/admitd/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, admin *models.Admin) (*models.Admin, error)
	GetByID(ctx context.Context, id int64) (*models.Admin, error)
	GetByLogin(ctx context.Context, login string) (*models.Admin, error)
	// ListPublicKeys returns the public keys of all current admins; this
	// is the admin half of every recipient set.
	ListPublicKeys(ctx context.Context) ([]string, error)
}
