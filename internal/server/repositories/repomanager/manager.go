package repomanager

import (
	"context"
	"database/sql"

	"github.com/enrollhub/admitd/internal/dbx"
	"github.com/enrollhub/admitd/internal/server/repositories/admins"
	"github.com/enrollhub/admitd/internal/server/repositories/candidates"
	"github.com/enrollhub/admitd/internal/server/repositories/parents"
	"github.com/enrollhub/admitd/internal/server/repositories/portfolios"
	"github.com/enrollhub/admitd/internal/server/repositories/sessions"
)

// RepositoryManager vends repository implementations bound to a DBTX, so a
// service can run several repositories inside one transaction.
type RepositoryManager interface {
	Candidates(db dbx.DBTX) candidates.Repository
	Admins(db dbx.DBTX) admins.Repository
	Parents(db dbx.DBTX) parents.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Portfolios(db dbx.DBTX) portfolios.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
