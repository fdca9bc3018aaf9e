// Package services implements the election engine: election lifecycle,
// candidate intake and moderation, the vote ledger, and results
// aggregation. Services own no global state; time always arrives as an
// argument so phase-dependent behavior is deterministic under test.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/muralvote/muralvote/internal/common"
	"github.com/muralvote/muralvote/internal/logging"
	"github.com/muralvote/muralvote/internal/models"
	"github.com/muralvote/muralvote/internal/notify"
	"github.com/muralvote/muralvote/internal/phase"
	"github.com/muralvote/muralvote/internal/repositories/repomanager"
)

// ElectionService creates, edits and inspects elections.
type ElectionService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	notifier notify.Notifier
	log      logging.Logger
}

func NewElectionService(db *sql.DB, repos repomanager.RepositoryManager, notifier notify.Notifier, log logging.Logger) *ElectionService {
	return &ElectionService{db: db, repos: repos, notifier: notifier, log: log}
}

// validateElection enforces the invariants checked at creation/edit time:
// non-empty name and folder, at least one vote per user, an optional
// candidate cap of at least one, and non-decreasing date boundaries.
func validateElection(e *models.Election) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: election name must not be empty", common.ErrValidation)
	}
	if strings.TrimSpace(e.Folder) == "" {
		return fmt.Errorf("%w: election folder must not be empty", common.ErrValidation)
	}
	if e.MaxVotesPerUser < 1 {
		return fmt.Errorf("%w: max votes per user must be at least 1", common.ErrValidation)
	}
	if e.MaxCandidatesPerUser != nil && *e.MaxCandidatesPerUser < 1 {
		return fmt.Errorf("%w: max candidates per user must be at least 1", common.ErrValidation)
	}
	if e.SubmissionEnd.Before(e.SubmissionStart) ||
		e.VotingStart.Before(e.SubmissionEnd) ||
		e.VotingEnd.Before(e.VotingStart) {
		return fmt.Errorf("%w: election dates must be ordered: submission start <= submission end <= voting start <= voting end", common.ErrValidation)
	}
	return nil
}

// Create validates and stores a new election, then publishes
// election.new.
func (s *ElectionService) Create(ctx context.Context, election *models.Election, agent string) error {
	if err := validateElection(election); err != nil {
		return err
	}

	if err := s.repos.Elections(s.db).Create(ctx, election); err != nil {
		return err
	}

	s.notifier.Publish(ctx, notify.TopicElectionNew, map[string]any{
		"agent":    agent,
		"election": election.Name,
		"year":     election.Year,
	})
	return nil
}

// Edit validates and applies changes to an existing election, publishing
// election.update with the list of changed fields.
func (s *ElectionService) Edit(ctx context.Context, election *models.Election, agent string) error {
	if err := validateElection(election); err != nil {
		return err
	}

	repo := s.repos.Elections(s.db)
	current, err := repo.GetByID(ctx, election.ID)
	if err != nil {
		return err
	}

	edited := changedFields(current, election)
	if err := repo.Update(ctx, election); err != nil {
		return err
	}

	s.notifier.Publish(ctx, notify.TopicElectionUpdate, map[string]any{
		"agent":    agent,
		"election": election.Name,
		"updated":  strings.Join(edited, ", "),
	})
	return nil
}

func changedFields(prev, next *models.Election) []string {
	var edited []string
	add := func(changed bool, name string) {
		if changed {
			edited = append(edited, name)
		}
	}
	add(prev.Name != next.Name, "name")
	add(prev.Folder != next.Folder, "folder")
	add(prev.Year != next.Year, "year")
	add(!prev.SubmissionStart.Equal(next.SubmissionStart), "submission start")
	add(!prev.SubmissionEnd.Equal(next.SubmissionEnd), "submission end")
	add(!prev.VotingStart.Equal(next.VotingStart), "voting start")
	add(!prev.VotingEnd.Equal(next.VotingEnd), "voting end")
	add(prev.MaxVotesPerUser != next.MaxVotesPerUser, "max votes per user")
	add(!intPtrEqual(prev.MaxCandidatesPerUser, next.MaxCandidatesPerUser), "max candidates per user")
	add(prev.AllowsResubmission != next.AllowsResubmission, "allows resubmission")
	add(prev.BadgeLink != next.BadgeLink, "badge link")
	return edited
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Get returns one election by id.
func (s *ElectionService) Get(ctx context.Context, id int64) (*models.Election, error) {
	return s.repos.Elections(s.db).GetByID(ctx, id)
}

// Phase resolves the election's lifecycle phase at the given instant.
func (s *ElectionService) Phase(ctx context.Context, id int64, now time.Time) (phase.Phase, error) {
	election, err := s.repos.Elections(s.db).GetByID(ctx, id)
	if err != nil {
		return phase.Draft, err
	}
	return phase.Resolve(election, now), nil
}

// List returns all elections, most recently ending first.
func (s *ElectionService) List(ctx context.Context) ([]*models.Election, error) {
	return s.repos.Elections(s.db).List(ctx)
}

// ListInPhase returns the elections currently in the given phase.
func (s *ElectionService) ListInPhase(ctx context.Context, p phase.Phase, now time.Time) ([]*models.Election, error) {
	all, err := s.repos.Elections(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	var result []*models.Election
	for _, e := range all {
		if phase.Resolve(e, now) == p {
			result = append(result, e)
		}
	}
	return result, nil
}
