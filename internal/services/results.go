package services

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/muralvote/muralvote/internal/common"
	"github.com/muralvote/muralvote/internal/models"
	"github.com/muralvote/muralvote/internal/phase"
	"github.com/muralvote/muralvote/internal/repositories/repomanager"
)

// ResultsService presents ballots and aggregates outcomes.
type ResultsService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewResultsService(db *sql.DB, repos repomanager.RepositoryManager) *ResultsService {
	return &ResultsService{db: db, repos: repos}
}

// Result is one candidate with its aggregated vote weight.
type Result struct {
	Candidate   *models.Candidate
	TotalWeight int64
}

// Stats summarizes participation in an election.
type Stats struct {
	TotalVotes     int64
	DistinctVoters int
	// VotesPerVoter maps a ballot size to how many voters cast exactly
	// that many votes.
	VotesPerVoter map[int]int
}

// OrderForVoter returns the approved candidates of a voting election in
// the order the given voter should see them. Each voter gets a stable
// personal shuffle so early submissions gain no positional advantage;
// an anonymous viewer (empty voter) sees the base creation order.
func (s *ResultsService) OrderForVoter(ctx context.Context, electionID int64, voter string, now time.Time) ([]*models.Candidate, error) {
	election, err := s.repos.Elections(s.db).GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if ph := phase.Resolve(election, now); ph != phase.Voting && ph != phase.Public {
		return nil, common.ErrElectionNotOpen
	}

	approved := models.Approved
	candidates, err := s.repos.Candidates(s.db).ByElection(ctx, electionID, &approved)
	if err != nil {
		return nil, err
	}

	if voter != "" {
		ShuffleForVoter(candidates, voter)
	}
	return candidates, nil
}

// ShuffleForVoter permutes candidates in place with a PRNG seeded from
// the voter identifier, so the same voter always sees the same order.
// The seed is the voter's SHA-1 digest reduced modulo 100000, which
// keeps it small and stable across runs.
func ShuffleForVoter(candidates []*models.Candidate, voter string) {
	r := rand.New(rand.NewSource(voterSeed(voter)))
	r.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
}

func voterSeed(voter string) int64 {
	sum := sha1.Sum([]byte(voter))
	m := 0
	for _, b := range sum {
		m = (m*256 + int(b)) % 100000
	}
	return int64(m)
}

// Tally returns the election's results, heaviest candidate first, ties
// broken by submission order. Approved candidates nobody voted for are
// included with a zero total. Only consultable once voting has started.
func (s *ResultsService) Tally(ctx context.Context, electionID int64, admin bool, now time.Time) ([]Result, error) {
	election, err := s.repos.Elections(s.db).GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if ph := phase.Resolve(election, now); ph != phase.Voting && ph != phase.Public && !admin {
		return nil, common.ErrElectionNotOpen
	}

	entries, err := s.repos.Votes(s.db).TallyByElection(ctx, electionID)
	if err != nil {
		return nil, err
	}

	approved := models.Approved
	candidates, err := s.repos.Candidates(s.db).ByElection(ctx, electionID, &approved)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	results := make([]Result, 0, len(entries))
	for _, entry := range entries {
		candidate, ok := byID[entry.CandidateID]
		if !ok {
			return nil, fmt.Errorf("tally references unknown candidate %d", entry.CandidateID)
		}
		results = append(results, Result{Candidate: candidate, TotalWeight: entry.TotalWeight})
	}
	return results, nil
}

// Stats aggregates participation figures for an election, including a
// histogram of how many candidates each voter voted for.
func (s *ResultsService) Stats(ctx context.Context, electionID int64) (*Stats, error) {
	if _, err := s.repos.Elections(s.db).GetByID(ctx, electionID); err != nil {
		return nil, err
	}

	total, err := s.repos.Votes(s.db).SumWeights(ctx, electionID)
	if err != nil {
		return nil, err
	}
	voters, err := s.repos.Votes(s.db).DistinctVoters(ctx, electionID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repos.Votes(s.db).CountsByVoter(ctx, electionID)
	if err != nil {
		return nil, err
	}

	histogram := make(map[int]int, len(counts))
	for _, vc := range counts {
		histogram[vc.Candidates]++
	}

	return &Stats{
		TotalVotes:     total,
		DistinctVoters: voters,
		VotesPerVoter:  histogram,
	}, nil
}
