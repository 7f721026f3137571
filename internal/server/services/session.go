package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/enrollhub/admitd/internal/common"
	"github.com/enrollhub/admitd/internal/cryptox"
	"github.com/enrollhub/admitd/internal/logging"
	"github.com/enrollhub/admitd/internal/server/auth"
	"github.com/enrollhub/admitd/internal/server/config"
	"github.com/enrollhub/admitd/internal/server/models"
	"github.com/enrollhub/admitd/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// LoginResult is what a successful login hands back to the transport: the
// signed session token and the caller's private key, decrypted with the
// just-verified password. The private key is not retained server-side
// beyond this response.
type LoginResult struct {
	Token      string
	PrivateKey string
	Session    *models.Session
}

// SessionService drives the authentication state machine:
// NoSession -> Authenticated(candidate|admin) -> Expired|LoggedOut.
type SessionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secret      []byte
	sessionTTL  time.Duration
	retention   int
	logger      logging.Logger
	now         func() time.Time
}

func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *SessionService {
	return &SessionService{
		db:          db,
		repomanager: m,
		secret:      []byte(cfg.SecretKey),
		sessionTTL:  cfg.SessionTTL,
		retention:   cfg.SessionRetention,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *SessionService) createSession(ctx context.Context, role models.Role, actorID int64, ip string) (*models.Session, string, error) {
	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		Role:      role,
		ActorID:   actorID,
		IP:        ip,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	repo := s.repomanager.Sessions(s.db)
	if err := repo.Create(ctx, session); err != nil {
		s.logger.Error(ctx, "session insert failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	// bound session growth from repeated logins
	if err := repo.DeleteOldForActor(ctx, role, actorID, s.retention); err != nil {
		s.logger.Error(ctx, "session pruning failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	token, err := auth.GenerateToken(session.ID, s.secret, s.sessionTTL)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err)
		return nil, "", common.ErrorInternal
	}
	return session, token, nil
}

// Login authenticates a candidate by application id and password. On
// success it creates a session row and unwraps the candidate's private key
// for the caller's use within this request cycle.
func (s *SessionService) Login(ctx context.Context, applicationID, password, ip string) (*LoginResult, error) {
	repo := s.repomanager.Candidates(s.db)

	candidate, err := repo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "candidate lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !cryptox.VerifyPassword(password, candidate.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	privateKey, err := cryptox.DecryptWithPassword(candidate.PrivateKeyCiphertext, password)
	if err != nil {
		// hash verified but the envelope would not open: storage is corrupt
		s.logger.Error(ctx, "private key unwrap failed after password verification", "error", err)
		return nil, common.ErrorInternal
	}

	session, token, err := s.createSession(ctx, models.RoleCandidate, candidate.ID, ip)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, PrivateKey: privateKey, Session: session}, nil
}

// LoginAdmin is the administrator variant of Login.
func (s *SessionService) LoginAdmin(ctx context.Context, login, password, ip string) (*LoginResult, error) {
	repo := s.repomanager.Admins(s.db)

	admin, err := repo.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "admin lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !cryptox.VerifyPassword(password, admin.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	privateKey, err := cryptox.DecryptWithPassword(admin.PrivateKeyCiphertext, password)
	if err != nil {
		s.logger.Error(ctx, "private key unwrap failed after password verification", "error", err)
		return nil, common.ErrorInternal
	}

	session, token, err := s.createSession(ctx, models.RoleAdmin, admin.ID, ip)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, PrivateKey: privateKey, Session: session}, nil
}

// Auth resolves a session token to the authenticated actor. A missing
// session is ErrorUnauthorized; a present but stale one is
// ErrExpiredSession. Role checks are layered on top via RequireRole.
func (s *SessionService) Auth(ctx context.Context, token string) (*models.Actor, error) {
	sessionID, err := auth.SessionIDFromToken(token, s.secret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Sessions(s.db)
	session, err := repo.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "session lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if session.Expired(s.now()) {
		return nil, common.ErrExpiredSession
	}

	switch session.Role {
	case models.RoleCandidate:
		candidate, err := s.repomanager.Candidates(s.db).GetByID(ctx, session.ActorID)
		if err != nil {
			s.logger.Error(ctx, "session actor lookup failed", "error", err)
			return nil, common.ErrorInternal
		}
		return &models.Actor{Role: models.RoleCandidate, Candidate: candidate}, nil
	case models.RoleAdmin:
		admin, err := s.repomanager.Admins(s.db).GetByID(ctx, session.ActorID)
		if err != nil {
			s.logger.Error(ctx, "session actor lookup failed", "error", err)
			return nil, common.ErrorInternal
		}
		return &models.Actor{Role: models.RoleAdmin, Admin: admin}, nil
	default:
		panic("unreachable: session role is constrained by storage")
	}
}

// RequireRole gates role-specific operations on top of Auth.
func (s *SessionService) RequireRole(actor *models.Actor, role models.Role) error {
	if actor.Role != role {
		return common.ErrorForbidden
	}
	return nil
}

// Logout deletes the session row. Deleting an already-gone session is not
// an error; a token that does not even parse is.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	sessionID, err := auth.SessionIDFromToken(token, s.secret)
	if err != nil {
		return common.ErrorUnauthorized
	}

	if err := s.repomanager.Sessions(s.db).Delete(ctx, sessionID); err != nil {
		s.logger.Error(ctx, "session delete failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}
