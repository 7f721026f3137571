// Package services contains the server-side business logic of the
// admissions portal: identity and key lifecycle, session authentication,
// encrypted personal-detail records, and portfolio packaging.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/enrollhub/admitd/internal/common"
	"github.com/enrollhub/admitd/internal/cryptox"
	"github.com/enrollhub/admitd/internal/dbx"
	"github.com/enrollhub/admitd/internal/logging"
	"github.com/enrollhub/admitd/internal/server/config"
	"github.com/enrollhub/admitd/internal/server/models"
	"github.com/enrollhub/admitd/internal/server/repositories/repomanager"
)

// IdentityService handles account creation and the key/password lifecycle:
// every account owns a keypair, and the private key is persisted only as
// ciphertext wrapped under the owner's login password.
type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cfg         *config.Config
	logger      logging.Logger
}

func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *IdentityService {
	return &IdentityService{db: db, repomanager: m, cfg: cfg, logger: logger}
}

func (s *IdentityService) validApplicationID(applicationID string) bool {
	if !strings.HasPrefix(applicationID, s.cfg.ApplicationIDPrefix) {
		return false
	}
	for _, r := range applicationID {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// RegisterCandidate creates a candidate account: fresh keypair, private key
// wrapped under the candidate's password, argon2 hash of the password for
// login, and a keyed hash of the personal id number for uniqueness checks.
func (s *IdentityService) RegisterCandidate(ctx context.Context, applicationID, password, personalID string) (*models.Candidate, error) {
	if !s.validApplicationID(applicationID) {
		return nil, common.ErrInvalidApplicationID
	}

	repo := s.repomanager.Candidates(s.db)

	if _, err := repo.GetByApplicationID(ctx, applicationID); err == nil {
		return nil, common.ErrUserAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "candidate lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	personalIDHash := cryptox.HashIdentifier(personalID, []byte(s.cfg.SecretKey))
	exists, err := repo.ExistsByPersonalIDHash(ctx, personalIDHash)
	if err != nil {
		s.logger.Error(ctx, "personal id lookup failed", "error", err)
		return nil, common.ErrorInternal
	}
	if exists {
		return nil, common.ErrUserAlreadyExists
	}

	publicKey, privateKey, err := cryptox.CreateIdentity()
	if err != nil {
		s.logger.Error(ctx, "keypair generation failed", "error", err)
		return nil, common.ErrorInternal
	}

	privateKeyCiphertext, err := cryptox.EncryptWithPassword(privateKey, password)
	if err != nil {
		s.logger.Error(ctx, "private key wrap failed", "error", err)
		return nil, common.ErrorInternal
	}

	candidate := &models.Candidate{
		ApplicationID:        applicationID,
		PasswordHash:         cryptox.HashPassword(password),
		PersonalIDHash:       personalIDHash,
		PublicKey:            publicKey,
		PrivateKeyCiphertext: privateKeyCiphertext,
	}

	created, err := repo.Create(ctx, candidate)
	if err != nil {
		s.logger.Error(ctx, "candidate insert failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "candidate registered", "application_id", applicationID)
	return created, nil
}

// RegisterAdmin creates an administrator account with the same key
// envelope as candidates. Admin public keys join every recipient set
// computed afterwards; records encrypted before this call stay readable
// only by the recipients they were written for.
func (s *IdentityService) RegisterAdmin(ctx context.Context, login, password string) (*models.Admin, error) {
	repo := s.repomanager.Admins(s.db)

	if _, err := repo.GetByLogin(ctx, login); err == nil {
		return nil, common.ErrUserAlreadyExists
	} else if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "admin lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	publicKey, privateKey, err := cryptox.CreateIdentity()
	if err != nil {
		s.logger.Error(ctx, "keypair generation failed", "error", err)
		return nil, common.ErrorInternal
	}
	privateKeyCiphertext, err := cryptox.EncryptWithPassword(privateKey, password)
	if err != nil {
		s.logger.Error(ctx, "private key wrap failed", "error", err)
		return nil, common.ErrorInternal
	}

	admin := &models.Admin{
		Login:                login,
		PasswordHash:         cryptox.HashPassword(password),
		PublicKey:            publicKey,
		PrivateKeyCiphertext: privateKeyCiphertext,
	}

	created, err := repo.Create(ctx, admin)
	if err != nil {
		s.logger.Error(ctx, "admin insert failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "admin registered", "login", login)
	return created, nil
}

// ResetPassword issues a new random password for a candidate who cannot
// present the old one. Because the old password is unavailable, the old
// private key cannot be recovered; a new keypair replaces it, and fields
// encrypted for the old public key become unreadable until re-encrypted.
func (s *IdentityService) ResetPassword(ctx context.Context, candidateID int64) (string, error) {
	repo := s.repomanager.Candidates(s.db)

	candidate, err := repo.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		s.logger.Error(ctx, "candidate lookup failed", "error", err)
		return "", common.ErrorInternal
	}

	newPassword, err := common.MakeRandHexString(8)
	if err != nil {
		return "", common.ErrorInternal
	}

	publicKey, privateKey, err := cryptox.CreateIdentity()
	if err != nil {
		s.logger.Error(ctx, "keypair generation failed", "error", err)
		return "", common.ErrorInternal
	}
	privateKeyCiphertext, err := cryptox.EncryptWithPassword(privateKey, newPassword)
	if err != nil {
		s.logger.Error(ctx, "private key wrap failed", "error", err)
		return "", common.ErrorInternal
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		txRepo := s.repomanager.Candidates(tx)
		if err := txRepo.UpdateCredentials(ctx, candidateID, cryptox.HashPassword(newPassword), publicKey, privateKeyCiphertext); err != nil {
			return fmt.Errorf("updating credentials: %w", err)
		}
		txSessions := s.repomanager.Sessions(tx)
		// drop every live session; the old password must stop working now
		return txSessions.DeleteOldForActor(ctx, models.RoleCandidate, candidateID, 0)
	})
	if err != nil {
		s.logger.Error(ctx, "password reset failed", "error", err)
		return "", common.ErrorInternal
	}

	s.logger.Warn(ctx, "password reset: previously encrypted fields are unreadable under the new keypair",
		"application_id", candidate.ApplicationID)
	return newPassword, nil
}

// ChangePassword is the self-service path: the old password is available,
// so the existing private key is unwrapped and re-wrapped under the new
// password. The keypair is kept and no encrypted data is orphaned.
func (s *IdentityService) ChangePassword(ctx context.Context, candidateID int64, oldPassword, newPassword string) error {
	repo := s.repomanager.Candidates(s.db)

	candidate, err := repo.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		s.logger.Error(ctx, "candidate lookup failed", "error", err)
		return common.ErrorInternal
	}

	if !cryptox.VerifyPassword(oldPassword, candidate.PasswordHash) {
		return common.ErrorUnauthorized
	}

	privateKey, err := cryptox.DecryptWithPassword(candidate.PrivateKeyCiphertext, oldPassword)
	if err != nil {
		s.logger.Error(ctx, "private key unwrap failed", "error", err)
		return common.ErrorInternal
	}
	privateKeyCiphertext, err := cryptox.EncryptWithPassword(privateKey, newPassword)
	if err != nil {
		s.logger.Error(ctx, "private key wrap failed", "error", err)
		return common.ErrorInternal
	}

	if err := repo.UpdateCredentials(ctx, candidateID, cryptox.HashPassword(newPassword), candidate.PublicKey, privateKeyCiphertext); err != nil {
		s.logger.Error(ctx, "credentials update failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}
