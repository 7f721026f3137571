package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/enrollhub/admitd/internal/common"
	"github.com/enrollhub/admitd/internal/dbx"
	"github.com/enrollhub/admitd/internal/logging"
	"github.com/enrollhub/admitd/internal/server/models"
	adminsrepo "github.com/enrollhub/admitd/internal/server/repositories/admins"
	candidatesrepo "github.com/enrollhub/admitd/internal/server/repositories/candidates"
	parentsrepo "github.com/enrollhub/admitd/internal/server/repositories/parents"
	portfoliosrepo "github.com/enrollhub/admitd/internal/server/repositories/portfolios"
	"github.com/enrollhub/admitd/internal/server/repositories/repomanager"
	sessionsrepo "github.com/enrollhub/admitd/internal/server/repositories/sessions"
)

// --- shared helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

type nopLogger struct{}

func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

// --- in-memory repositories ---
//
// The fakes keep state across calls so a whole scenario (register, login,
// reset, login again) can run against one repo manager without a database.

type memCandidatesRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Candidate
}

func newMemCandidatesRepo() *memCandidatesRepo {
	return &memCandidatesRepo{byID: map[int64]*models.Candidate{}}
}

func (r *memCandidatesRepo) Create(_ context.Context, c *models.Candidate) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *c
	stored.ID = r.nextID
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memCandidatesRepo) GetByID(_ context.Context, id int64) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *c
	return &out, nil
}

func (r *memCandidatesRepo) GetByApplicationID(_ context.Context, applicationID string) (*models.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.ApplicationID == applicationID {
			out := *c
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memCandidatesRepo) ExistsByPersonalIDHash(_ context.Context, personalIDHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byID {
		if c.PersonalIDHash == personalIDHash {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCandidatesRepo) UpdateCredentials(_ context.Context, id int64, passwordHash, publicKey, privateKeyCiphertext string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.PasswordHash = passwordHash
	c.PublicKey = publicKey
	c.PrivateKeyCiphertext = privateKeyCiphertext
	return nil
}

func (r *memCandidatesRepo) UpdateDetails(_ context.Context, id int64, details *models.EncryptedCandidateDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.Details = *details
	return nil
}

type memAdminsRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*models.Admin
}

func newMemAdminsRepo() *memAdminsRepo {
	return &memAdminsRepo{byID: map[int64]*models.Admin{}}
}

func (r *memAdminsRepo) Create(_ context.Context, a *models.Admin) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	stored := *a
	stored.ID = r.nextID
	r.byID[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *memAdminsRepo) GetByID(_ context.Context, id int64) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *a
	return &out, nil
}

func (r *memAdminsRepo) GetByLogin(_ context.Context, login string) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Login == login {
			out := *a
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memAdminsRepo) ListPublicKeys(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.byID))
	for _, a := range r.byID {
		keys = append(keys, a.PublicKey)
	}
	sort.Strings(keys)
	return keys, nil
}

type memSessionsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Session
}

func newMemSessionsRepo() *memSessionsRepo {
	return &memSessionsRepo{byID: map[string]*models.Session{}}
}

func (r *memSessionsRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *s
	r.byID[stored.ID] = &stored
	return nil
}

func (r *memSessionsRepo) Find(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *s
	return &out, nil
}

func (r *memSessionsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

func (r *memSessionsRepo) DeleteOldForActor(_ context.Context, role models.Role, actorID int64, keepRecent int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owned []*models.Session
	for _, s := range r.byID {
		if s.Role == role && s.ActorID == actorID {
			owned = append(owned, s)
		}
	}
	sort.Slice(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	for i := keepRecent; i < len(owned); i++ {
		delete(r.byID, owned[i].ID)
	}
	return nil
}

func (r *memSessionsRepo) count(role models.Role, actorID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.byID {
		if s.Role == role && s.ActorID == actorID {
			n++
		}
	}
	return n
}

type memParentsRepo struct {
	mu           sync.Mutex
	byCandidateID map[int64]*models.Parent
}

func newMemParentsRepo() *memParentsRepo {
	return &memParentsRepo{byCandidateID: map[int64]*models.Parent{}}
}

func (r *memParentsRepo) GetByCandidateID(_ context.Context, candidateID int64) (*models.Parent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byCandidateID[candidateID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *p
	return &out, nil
}

func (r *memParentsRepo) Upsert(_ context.Context, candidateID int64, details *models.EncryptedParentDetails) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCandidateID[candidateID] = &models.Parent{CandidateID: candidateID, Details: *details}
	return nil
}

type memPortfoliosRepo struct {
	mu           sync.Mutex
	byCandidateID map[int64]*portfoliosrepo.Record
}

func newMemPortfoliosRepo() *memPortfoliosRepo {
	return &memPortfoliosRepo{byCandidateID: map[int64]*portfoliosrepo.Record{}}
}

func (r *memPortfoliosRepo) Upsert(_ context.Context, candidateID int64, storageKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCandidateID[candidateID] = &portfoliosrepo.Record{CandidateID: candidateID, StorageKey: storageKey}
	return nil
}

func (r *memPortfoliosRepo) GetByCandidateID(_ context.Context, candidateID int64) (*portfoliosrepo.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byCandidateID[candidateID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *rec
	return &out, nil
}

func (r *memPortfoliosRepo) Delete(_ context.Context, candidateID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byCandidateID, candidateID)
	return nil
}

type memRepoManager struct {
	candidates *memCandidatesRepo
	admins     *memAdminsRepo
	sessions   *memSessionsRepo
	parents    *memParentsRepo
	portfolios *memPortfoliosRepo
}

func newMemRepoManager() *memRepoManager {
	return &memRepoManager{
		candidates: newMemCandidatesRepo(),
		admins:     newMemAdminsRepo(),
		sessions:   newMemSessionsRepo(),
		parents:    newMemParentsRepo(),
		portfolios: newMemPortfoliosRepo(),
	}
}

var _ repomanager.RepositoryManager = (*memRepoManager)(nil)

func (m *memRepoManager) Candidates(dbx.DBTX) candidatesrepo.Repository { return m.candidates }
func (m *memRepoManager) Admins(dbx.DBTX) adminsrepo.Repository         { return m.admins }
func (m *memRepoManager) Parents(dbx.DBTX) parentsrepo.Repository       { return m.parents }
func (m *memRepoManager) Sessions(dbx.DBTX) sessionsrepo.Repository     { return m.sessions }
func (m *memRepoManager) Portfolios(dbx.DBTX) portfoliosrepo.Repository { return m.portfolios }
func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
