package repomanager

import (
	"context"
	"database/sql"

	"github.com/ekazakov/taskmate/internal/dbx"
	"github.com/ekazakov/taskmate/internal/server/repositories/tasks"
	"github.com/ekazakov/taskmate/internal/server/repositories/tokens"
	"github.com/ekazakov/taskmate/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Tasks(db dbx.DBTX) tasks.Repository
}
