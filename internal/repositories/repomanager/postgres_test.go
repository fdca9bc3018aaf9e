package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"

	"github.com/muralvote/muralvote/internal/repositories/candidates"
	"github.com/muralvote/muralvote/internal/repositories/elections"
	"github.com/muralvote/muralvote/internal/repositories/votes"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNewPostgresRepositoryManager_ReturnsInterface(t *testing.T) {
	m := NewPostgresRepositoryManager()
	var _ RepositoryManager = m
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &PostgresRepositoryManager{}

	if e := m.Elections(db); e == nil {
		t.Fatal("Elections() nil")
	}
	if c := m.Candidates(db); c == nil {
		t.Fatal("Candidates() nil")
	}
	if v := m.Votes(db); v == nil {
		t.Fatal("Votes() nil")
	}

	var _ elections.Repository = m.Elections(db)
	var _ candidates.Repository = m.Candidates(db)
	var _ votes.Repository = m.Votes(db)
}

func TestRunMigrations_UsesGooseSeam(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var called bool
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		called = true
		return nil
	}

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
	if !called {
		t.Fatal("goose.UpContext not invoked")
	}
}

func TestRunMigrations_PropagatesError(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	boom := errors.New("migration failed")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}

	m := &PostgresRepositoryManager{}
	if err := m.RunMigrations(context.Background(), db); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
}
