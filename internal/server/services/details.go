package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/enrollhub/admitd/internal/common"
	"github.com/enrollhub/admitd/internal/logging"
	"github.com/enrollhub/admitd/internal/server/models"
	"github.com/enrollhub/admitd/internal/server/repositories/repomanager"
)

// DetailsService persists personal-detail records. Every filled field is
// stored exclusively as ciphertext keyed to the recipient set
// {candidate public key} ∪ {all current admin public keys}, computed fresh
// at each write. Admins added later cannot read records written before
// them unless those records are re-encrypted.
type DetailsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewDetailsService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *DetailsService {
	return &DetailsService{db: db, repomanager: m, logger: logger}
}

// recipientSet snapshots the recipient public keys for a candidate's data
// at this moment.
func (s *DetailsService) recipientSet(ctx context.Context, candidate *models.Candidate) ([]string, error) {
	adminKeys, err := s.repomanager.Admins(s.db).ListPublicKeys(ctx)
	if err != nil {
		s.logger.Error(ctx, "admin key listing failed", "error", err)
		return nil, common.ErrorInternal
	}
	return append([]string{candidate.PublicKey}, adminKeys...), nil
}

func (s *DetailsService) loadCandidate(ctx context.Context, candidateID int64) (*models.Candidate, error) {
	candidate, err := s.repomanager.Candidates(s.db).GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "candidate lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	return candidate, nil
}

// SaveCandidateDetails encrypts details for the current recipient set and
// persists the ciphertext. Encryption of all fields completes before
// anything is written, so a failed batch commits nothing.
func (s *DetailsService) SaveCandidateDetails(ctx context.Context, candidateID int64, details *models.CandidateDetails) error {
	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return err
	}

	recipients, err := s.recipientSet(ctx, candidate)
	if err != nil {
		return err
	}

	encrypted, err := models.NewEncryptedCandidateDetails(details, recipients)
	if err != nil {
		s.logger.Error(ctx, "details encryption failed", "error", err)
		return common.ErrorInternal
	}

	if err := s.repomanager.Candidates(s.db).UpdateDetails(ctx, candidateID, encrypted); err != nil {
		s.logger.Error(ctx, "details update failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// GetCandidateDetails decrypts the candidate's record with the requester's
// private key. The decrypted form exists only for this call.
func (s *DetailsService) GetCandidateDetails(ctx context.Context, candidateID int64, privateKey string) (*models.CandidateDetails, error) {
	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return nil, err
	}

	details, err := candidate.Details.Decrypt(privateKey)
	if err != nil {
		s.logger.Error(ctx, "details decryption failed", "error", err)
		return nil, common.ErrorInternal
	}
	return details, nil
}

// SaveParentDetails mirrors SaveCandidateDetails for the parent record.
func (s *DetailsService) SaveParentDetails(ctx context.Context, candidateID int64, details *models.ParentDetails) error {
	candidate, err := s.loadCandidate(ctx, candidateID)
	if err != nil {
		return err
	}

	recipients, err := s.recipientSet(ctx, candidate)
	if err != nil {
		return err
	}

	encrypted, err := models.NewEncryptedParentDetails(details, recipients)
	if err != nil {
		s.logger.Error(ctx, "parent details encryption failed", "error", err)
		return common.ErrorInternal
	}

	if err := s.repomanager.Parents(s.db).Upsert(ctx, candidateID, encrypted); err != nil {
		s.logger.Error(ctx, "parent details upsert failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}

// GetParentDetails decrypts the parent record with the requester's private
// key. A candidate without a parent record yields ErrorNotFound.
func (s *DetailsService) GetParentDetails(ctx context.Context, candidateID int64, privateKey string) (*models.ParentDetails, error) {
	parent, err := s.repomanager.Parents(s.db).GetByCandidateID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "parent lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	details, err := parent.Details.Decrypt(privateKey)
	if err != nil {
		s.logger.Error(ctx, "parent details decryption failed", "error", err)
		return nil, common.ErrorInternal
	}
	return details, nil
}
