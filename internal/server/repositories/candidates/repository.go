package candidates

import (
	"context"

	"github.com/enrollhub/admitd/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, candidate *models.Candidate) (*models.Candidate, error)
	GetByID(ctx context.Context, id int64) (*models.Candidate, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*models.Candidate, error)
	ExistsByPersonalIDHash(ctx context.Context, personalIDHash string) (bool, error)
	UpdateCredentials(ctx context.Context, id int64, passwordHash, publicKey, privateKeyCiphertext string) error
	UpdateDetails(ctx context.Context, id int64, details *models.EncryptedCandidateDetails) error
}
