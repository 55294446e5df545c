package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/newsnow/internal/dbx"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/articles"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/categories"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/comments"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/settings"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works on the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Categories(db dbx.DBTX) categories.Repository
	Articles(db dbx.DBTX) articles.Repository
	Comments(db dbx.DBTX) comments.Repository
	Settings(db dbx.DBTX) settings.Repository
}
