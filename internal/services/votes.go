package services

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/muralvote/muralvote/internal/common"
	"github.com/muralvote/muralvote/internal/dbx"
	"github.com/muralvote/muralvote/internal/logging"
	"github.com/muralvote/muralvote/internal/models"
	"github.com/muralvote/muralvote/internal/phase"
	"github.com/muralvote/muralvote/internal/repositories/repomanager"
)

// VoteService records ballots against a per-voter quota.
type VoteService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	log   logging.Logger
}

func NewVoteService(db *sql.DB, repos repomanager.RepositoryManager, log logging.Logger) *VoteService {
	return &VoteService{db: db, repos: repos, log: log}
}

// CastResult summarizes a successful ballot: how many votes were cast,
// how many the voter has left, and the election's badge-claim link when
// one is configured.
type CastResult struct {
	Cast      int
	Remaining int
	BadgeLink string
}

// CastVotes records one ballot of weight per selected candidate. The
// whole selection is validated against the voting window, the approved
// set and the voter's remaining quota before anything is written; it is
// recorded atomically or not at all.
//
// Two requests for the same voter racing on the same election are
// serialized with a transaction-scoped advisory lock so the quota
// cannot be oversubscribed.
func (s *VoteService) CastVotes(ctx context.Context, electionID int64, voter string,
	candidateIDs []int64, weight int, now time.Time) (*CastResult, error) {

	election, err := s.repos.Elections(s.db).GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if phase.Resolve(election, now) != phase.Voting {
		return nil, common.ErrElectionNotOpen
	}

	if len(candidateIDs) == 0 {
		return nil, common.ErrEmptySelection
	}
	if weight < 1 {
		return nil, fmt.Errorf("%w: vote weight must be at least 1", common.ErrValidation)
	}

	approved, err := s.repos.Candidates(s.db).ApprovedIDs(ctx, electionID)
	if err != nil {
		return nil, err
	}

	ids := dedupeSorted(candidateIDs)
	for _, id := range ids {
		if _, ok := approved[id]; !ok {
			return nil, fmt.Errorf("%w: candidate %d is not on the ballot", common.ErrInvalidSelection, id)
		}
	}

	result := &CastResult{Cast: len(ids), BadgeLink: election.BadgeLink}
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Votes(tx)

		if err := repo.LockElectionVoter(ctx, electionID, voterKey(voter)); err != nil {
			return err
		}

		cast, err := repo.CountByElectionVoter(ctx, electionID, voter)
		if err != nil {
			return err
		}
		if cast >= election.MaxVotesPerUser {
			return common.ErrQuotaExhausted
		}
		if remaining := election.MaxVotesPerUser - cast; len(ids) > remaining {
			return &common.QuotaExceededError{Remaining: remaining}
		}
		result.Remaining = election.MaxVotesPerUser - cast - len(ids)

		for _, id := range ids {
			vote := &models.Vote{Voter: voter, CandidateID: id, Weight: weight}
			if err := repo.Insert(ctx, vote); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "votes cast", "election", electionID, "count", result.Cast, "weight", weight)
	return result, nil
}

// VotesByVoter returns the ballots a voter already cast in an election.
func (s *VoteService) VotesByVoter(ctx context.Context, electionID int64, voter string) ([]*models.Vote, error) {
	return s.repos.Votes(s.db).ByElectionVoter(ctx, electionID, voter)
}

// voterKey folds a voter identifier into the 32-bit advisory lock keyspace.
func voterKey(voter string) int32 {
	h := fnv.New32a()
	h.Write([]byte(voter))
	return int32(h.Sum32())
}

func dedupeSorted(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
