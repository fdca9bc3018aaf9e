package votes

import (
	"context"

	"github.com/muralvote/muralvote/internal/models"
)

// TallyEntry is one candidate's aggregated vote weight.
type TallyEntry struct {
	CandidateID int64
	TotalWeight int64
}

// VoterCount is the number of candidates one voter voted for.
type VoterCount struct {
	Voter      string
	Candidates int
}

type Repository interface {
	Insert(ctx context.Context, vote *models.Vote) error
	CountByElectionVoter(ctx context.Context, electionID int64, voter string) (int, error)
	ByElectionVoter(ctx context.Context, electionID int64, voter string) ([]*models.Vote, error)
	// TallyByElection aggregates vote weights per approved candidate,
	// heaviest first, ties broken by candidate creation order. Approved
	// candidates without votes appear with total 0.
	TallyByElection(ctx context.Context, electionID int64) ([]TallyEntry, error)
	SumWeights(ctx context.Context, electionID int64) (int64, error)
	DistinctVoters(ctx context.Context, electionID int64) (int, error)
	CountsByVoter(ctx context.Context, electionID int64) ([]VoterCount, error)
	// LockElectionVoter takes a transaction-scoped advisory lock that
	// serializes concurrent CastVotes calls for one (election, voter)
	// pair. Only meaningful on a DBTX bound to an open transaction.
	LockElectionVoter(ctx context.Context, electionID int64, voterKey int32) error
}
