package repomanager

import (
	"context"
	"database/sql"

	"github.com/muralvote/muralvote/internal/dbx"
	"github.com/muralvote/muralvote/internal/repositories/candidates"
	"github.com/muralvote/muralvote/internal/repositories/elections"
	"github.com/muralvote/muralvote/internal/repositories/votes"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Elections(db dbx.DBTX) elections.Repository
	Candidates(db dbx.DBTX) candidates.Repository
	Votes(db dbx.DBTX) votes.Repository
}
