package parents

import (
	"context"

	"github.com/enrollhub/admitd/internal/server/models"
)

type Repository interface {
	GetByCandidateID(ctx context.Context, candidateID int64) (*models.Parent, error)
	// Upsert inserts or replaces the single parent record of a candidate.
	Upsert(ctx context.Context, candidateID int64, details *models.EncryptedParentDetails) error
}
