// Package votes provides the PostgreSQL-backed vote ledger storage.
// The (voter, candidate_id) primary key is the canonical duplicate-vote
// guard; a violation surfaces as ErrAlreadyVoted.
package votes

import (
	"context"
	"fmt"

	"github.com/muralvote/muralvote/internal/common"
	"github.com/muralvote/muralvote/internal/dbx"
	"github.com/muralvote/muralvote/internal/models"
)

// PostgresRepository implements vote storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert records one vote. A duplicate (voter, candidate) pair returns
// ErrAlreadyVoted; votes are never updated in place.
func (r *PostgresRepository) Insert(ctx context.Context, vote *models.Vote) error {
	query := `INSERT INTO votes (voter, candidate_id, weight) VALUES ($1, $2, $3);`
	_, err := r.db.ExecContext(ctx, query, vote.Voter, vote.CandidateID, vote.Weight)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrAlreadyVoted
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// CountByElectionVoter counts the votes a voter has cast in one election.
func (r *PostgresRepository) CountByElectionVoter(ctx context.Context, electionID int64, voter string) (int, error) {
	query := `
		SELECT count(*) FROM votes v
		JOIN candidates c ON c.id = v.candidate_id
		WHERE c.election_id=$1 AND v.voter=$2`
	var n int
	if err := r.db.QueryRowContext(ctx, query, electionID, voter).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

// ByElectionVoter returns a voter's votes in one election, ordered by
// candidate id.
func (r *PostgresRepository) ByElectionVoter(ctx context.Context, electionID int64, voter string) ([]*models.Vote, error) {
	query := `
		SELECT v.voter, v.candidate_id, v.weight, v.created_at FROM votes v
		JOIN candidates c ON c.id = v.candidate_id
		WHERE c.election_id=$1 AND v.voter=$2
		ORDER BY v.candidate_id`
	rows, err := r.db.QueryContext(ctx, query, electionID, voter)
	if err != nil {
		return nil, fmt.Errorf("failed to select votes: %w", err)
	}
	defer rows.Close()

	var result []*models.Vote
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.Voter, &v.CandidateID, &v.Weight, &v.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// TallyByElection sums weights per approved candidate. The ORDER BY makes
// the tie-break explicit: equal totals rank by candidate creation time.
func (r *PostgresRepository) TallyByElection(ctx context.Context, electionID int64) ([]TallyEntry, error) {
	query := `
		SELECT c.id, COALESCE(SUM(v.weight), 0) AS total
		FROM candidates c
		LEFT JOIN votes v ON v.candidate_id = c.id
		WHERE c.election_id=$1 AND c.approved
		GROUP BY c.id, c.created_at
		ORDER BY total DESC, c.created_at, c.id`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	defer rows.Close()

	var result []TallyEntry
	for rows.Next() {
		var e TallyEntry
		if err := rows.Scan(&e.CandidateID, &e.TotalWeight); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SumWeights returns the total weight of all votes in an election.
func (r *PostgresRepository) SumWeights(ctx context.Context, electionID int64) (int64, error) {
	query := `
		SELECT COALESCE(SUM(v.weight), 0) FROM votes v
		JOIN candidates c ON c.id = v.candidate_id
		WHERE c.election_id=$1`
	var n int64
	if err := r.db.QueryRowContext(ctx, query, electionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to sum votes: %w", err)
	}
	return n, nil
}

// DistinctVoters counts the distinct voters of an election.
func (r *PostgresRepository) DistinctVoters(ctx context.Context, electionID int64) (int, error) {
	query := `
		SELECT count(DISTINCT v.voter) FROM votes v
		JOIN candidates c ON c.id = v.candidate_id
		WHERE c.election_id=$1`
	var n int
	if err := r.db.QueryRowContext(ctx, query, electionID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count voters: %w", err)
	}
	return n, nil
}

// CountsByVoter returns, per voter, how many candidates they voted for.
func (r *PostgresRepository) CountsByVoter(ctx context.Context, electionID int64) ([]VoterCount, error) {
	query := `
		SELECT v.voter, count(*) FROM votes v
		JOIN candidates c ON c.id = v.candidate_id
		WHERE c.election_id=$1
		GROUP BY v.voter`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes per voter: %w", err)
	}
	defer rows.Close()

	var result []VoterCount
	for rows.Next() {
		var vc VoterCount
		if err := rows.Scan(&vc.Voter, &vc.Candidates); err != nil {
			return nil, err
		}
		result = append(result, vc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LockElectionVoter blocks until the (election, voter) advisory lock is
// held by the surrounding transaction. Postgres releases it on
// commit/rollback.
func (r *PostgresRepository) LockElectionVoter(ctx context.Context, electionID int64, voterKey int32) error {
	query := `SELECT pg_advisory_xact_lock($1, $2);`
	if _, err := r.db.ExecContext(ctx, query, int32(electionID), voterKey); err != nil {
		return fmt.Errorf("failed to take vote lock: %w", err)
	}
	return nil
}
