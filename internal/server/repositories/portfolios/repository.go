package portfolios

import (
	"context"
	"time"
)

// Record is the persisted pointer to one candidate's encrypted portfolio
// archive in object storage.
type Record struct {
	CandidateID int64
	StorageKey  string
	SubmittedAt time.Time
}

type Repository interface {
	Upsert(ctx context.Context, candidateID int64, storageKey string) error
	GetByCandidateID(ctx context.Context, candidateID int64) (*Record, error)
	Delete(ctx context.Context, candidateID int64) error
}
