// Package elections provides the PostgreSQL-backed repository for
// election records.
package elections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/muralvote/muralvote/internal/common"
	"github.com/muralvote/muralvote/internal/dbx"
	"github.com/muralvote/muralvote/internal/models"
)

// PostgresRepository implements election storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const electionColumns = `id, name, folder, year,
	submission_start, submission_end, voting_start, voting_end,
	max_votes_per_user, max_candidates_per_user, allows_resubmission,
	badge_link, created_at, updated_at`

// Create inserts a new election and fills in its generated ID and
// timestamps. A name or folder collision returns ErrDuplicateElection.
func (r *PostgresRepository) Create(ctx context.Context, election *models.Election) error {
	query := `
		INSERT INTO elections (name, folder, year,
			submission_start, submission_end, voting_start, voting_end,
			max_votes_per_user, max_candidates_per_user, allows_resubmission, badge_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRowContext(ctx, query,
		election.Name, election.Folder, election.Year,
		election.SubmissionStart, election.SubmissionEnd,
		election.VotingStart, election.VotingEnd,
		election.MaxVotesPerUser, election.MaxCandidatesPerUser,
		election.AllowsResubmission, election.BadgeLink,
	).Scan(&election.ID, &election.CreatedAt, &election.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrDuplicateElection
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update rewrites every mutable election field by ID.
func (r *PostgresRepository) Update(ctx context.Context, election *models.Election) error {
	query := `
		UPDATE elections SET name=$2, folder=$3, year=$4,
			submission_start=$5, submission_end=$6, voting_start=$7, voting_end=$8,
			max_votes_per_user=$9, max_candidates_per_user=$10,
			allows_resubmission=$11, badge_link=$12, updated_at=now()
		WHERE id=$1;
	`
	res, err := r.db.ExecContext(ctx, query,
		election.ID, election.Name, election.Folder, election.Year,
		election.SubmissionStart, election.SubmissionEnd,
		election.VotingStart, election.VotingEnd,
		election.MaxVotesPerUser, election.MaxCandidatesPerUser,
		election.AllowsResubmission, election.BadgeLink,
	)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrDuplicateElection
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// GetByID returns the election with the given identifier, or ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Election, error) {
	query := `SELECT ` + electionColumns + ` FROM elections WHERE id=$1`
	var e models.Election
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.Folder, &e.Year,
		&e.SubmissionStart, &e.SubmissionEnd, &e.VotingStart, &e.VotingEnd,
		&e.MaxVotesPerUser, &e.MaxCandidatesPerUser, &e.AllowsResubmission,
		&e.BadgeLink, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select election: %w", err)
	}
	return &e, nil
}

// List returns every election, most recently ending first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Election, error) {
	query := `SELECT ` + electionColumns + ` FROM elections ORDER BY voting_end DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select elections: %w", err)
	}
	defer rows.Close()

	var result []*models.Election
	for rows.Next() {
		var e models.Election
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Folder, &e.Year,
			&e.SubmissionStart, &e.SubmissionEnd, &e.VotingStart, &e.VotingEnd,
			&e.MaxVotesPerUser, &e.MaxCandidatesPerUser, &e.AllowsResubmission,
			&e.BadgeLink, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
