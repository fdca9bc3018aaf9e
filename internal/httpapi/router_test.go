package httpapi

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/muralvote/muralvote/internal/blob"
	"github.com/muralvote/muralvote/internal/config"
	"github.com/muralvote/muralvote/internal/identity"
	"github.com/muralvote/muralvote/internal/imaging"
	"github.com/muralvote/muralvote/internal/logging"
	"github.com/muralvote/muralvote/internal/notify"
	"github.com/muralvote/muralvote/internal/repositories/repomanager"
	"github.com/muralvote/muralvote/internal/services"
)

var (
	subStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	subEnd   = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	voteOpen = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	voteEnd  = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	duringVoting  = voteOpen.AddDate(0, 0, 10)
	duringPending = subEnd.AddDate(0, 0, 10)
)

const selectElectionQ = `(?s)^SELECT\s+id,.*FROM\s+elections\s+WHERE\s+id=\$1`

func newTestRouter(t *testing.T, now time.Time) (*gin.Engine, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}

	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	cfg := &config.Config{}
	cfg.LoadDefaults()

	repos := repomanager.NewPostgresRepositoryManager()
	validator := &imaging.DecodeValidator{
		AllowedExtensions: cfg.AllowedExtensions,
		AllowedMimetypes:  cfg.AllowedMimetypes,
		MinWidth:          cfg.PictureMinWidth,
		MinHeight:         cfg.PictureMinHeight,
	}
	notifier := notify.NopNotifier{}

	router := NewRouter(gin.TestMode, Deps{
		Config:     cfg,
		Elections:  services.NewElectionService(db, repos, notifier, log),
		Candidates: services.NewCandidateService(db, repos, blob.NewMemoryStore(), validator, notifier, log),
		Votes:      services.NewVoteService(db, repos, log),
		Results:    services.NewResultsService(db, repos),
		Identity:   identity.HeaderProvider{},
		Log:        log,
		Now:        func() time.Time { return now },
	})
	return router, mock, db
}

func expectElection(mock sqlmock.Sqlmock, id int64) {
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "name", "folder", "year",
		"submission_start", "submission_end", "voting_start", "voting_end",
		"max_votes_per_user", "max_candidates_per_user", "allows_resubmission",
		"badge_link", "created_at", "updated_at",
	}).AddRow(
		id, "Wallpapers 2026", "wallpapers-2026", 2026,
		subStart, subEnd, voteOpen, voteEnd,
		16, nil, true,
		"", now, now,
	)
	mock.ExpectQuery(selectElectionQ).WithArgs(id).WillReturnRows(rows)
}

func asUser(req *http.Request, user string, groups string) {
	req.Header.Set("X-Auth-User", user)
	req.Header.Set("X-Auth-Email", user+"@example.org")
	if groups != "" {
		req.Header.Set("X-Auth-Groups", groups)
	}
}

func TestGetPhase(t *testing.T) {
	router, mock, db := newTestRouter(t, duringVoting)
	defer db.Close()

	expectElection(mock, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/elections/1/phase", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["phase"] != "voting" {
		t.Fatalf("expected voting, got %q", body["phase"])
	}
}

func TestGetElection_NotFound(t *testing.T) {
	router, mock, db := newTestRouter(t, duringVoting)
	defer db.Close()

	mock.ExpectQuery(selectElectionQ).WithArgs(int64(404)).WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/elections/404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateElection_RequiresAdmin(t *testing.T) {
	router, _, db := newTestRouter(t, duringVoting)
	defer db.Close()

	body := bytes.NewBufferString(`{}`)

	req := httptest.NewRequest(http.MethodPost, "/api/elections", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/elections", bytes.NewBufferString(`{}`))
	asUser(req, "alice", "packagers")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin: expected 403, got %d", rec.Code)
	}
}

// Members of the weighted-vote group cast votes carrying the configured
// weight; the weight never comes from the request.
func TestCastVotes_WeightedGroup(t *testing.T) {
	router, mock, db := newTestRouter(t, duringVoting)
	defer db.Close()

	expectElection(mock, 1)
	mock.ExpectQuery(`(?s)^SELECT\s+id\s+FROM\s+candidates\s+WHERE\s+election_id=\$1\s+AND\s+approved`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^SELECT\s+pg_advisory_xact_lock`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`(?s)^\s*SELECT\s+count\(\*\)\s+FROM\s+votes`).
		WithArgs(int64(1), "alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+votes`).
		WithArgs("alice", int64(3), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := bytes.NewBufferString(`{"candidate_ids":[3]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/elections/1/vote", body)
	req.Header.Set("Content-Type", "application/json")
	asUser(req, "alice", "artboard")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	var resp castVotesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Cast != 1 || resp.Remaining != 15 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCastVotes_RequiresAuth(t *testing.T) {
	router, _, db := newTestRouter(t, duringVoting)
	defer db.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/elections/1/vote", bytes.NewBufferString(`{"candidate_ids":[3]}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestModerate_ReasonRequiredMapsTo400(t *testing.T) {
	router, mock, db := newTestRouter(t, duringPending)
	defer db.Close()

	expectElection(mock, 1)

	body := bytes.NewBufferString(`{"decisions":{"3":{"approve":false,"motif":""}}}`)
	req := httptest.NewRequest(http.MethodPost, "/api/elections/1/moderate", body)
	req.Header.Set("Content-Type", "application/json")
	asUser(req, "admin", "election-admins")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
}

func TestBallot_HiddenOutsideVoting(t *testing.T) {
	router, mock, db := newTestRouter(t, duringPending)
	defer db.Close()

	expectElection(mock, 1)

	req := httptest.NewRequest(http.MethodGet, "/api/elections/1/ballot", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestBadElectionID(t *testing.T) {
	router, _, db := newTestRouter(t, duringVoting)
	defer db.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/elections/banana", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestNoRoute(t *testing.T) {
	router, _, db := newTestRouter(t, duringVoting)
	defer db.Close()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
