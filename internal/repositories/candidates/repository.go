package candidates

import (
	"context"

	"github.com/muralvote/muralvote/internal/models"
)

type Repository interface {
	Create(ctx context.Context, candidate *models.Candidate) error
	Update(ctx context.Context, candidate *models.Candidate) error
	SetStatus(ctx context.Context, candidateID int64, status models.Status) error
	GetByID(ctx context.Context, id int64) (*models.Candidate, error)
	// ByElection returns an election's candidates in creation order,
	// optionally restricted to one moderation state.
	ByElection(ctx context.Context, electionID int64, state *models.ModerationState) ([]*models.Candidate, error)
	// BySubmitter returns a submitter's candidates across elections,
	// most recently updated first.
	BySubmitter(ctx context.Context, submitter string) ([]*models.Candidate, error)
	CountByElectionSubmitter(ctx context.Context, electionID int64, submitter string) (int, error)
	// ApprovedIDs returns the set of approved candidate ids of an election.
	ApprovedIDs(ctx context.Context, electionID int64) (map[int64]struct{}, error)
}
