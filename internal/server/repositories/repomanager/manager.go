package repomanager

import (
	"context"
	"database/sql"

	"github.com/photobridge/authserver/internal/dbx"
	"github.com/photobridge/authserver/internal/server/repositories/accountlock"
	"github.com/photobridge/authserver/internal/server/repositories/entitlements"
	"github.com/photobridge/authserver/internal/server/repositories/refreshtokens"
	"github.com/photobridge/authserver/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, letting services run
// the same repository code inside or outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Entitlements(db dbx.DBTX) entitlements.Repository
	AccountLocks(db dbx.DBTX) accountlock.Repository
}
