// Package candidates provides the PostgreSQL-backed repository for
// candidate records. The tagged moderation status is stored as the
// legacy (approved, motif) column pair; translation happens here and
// only here.
package candidates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/muralvote/muralvote/internal/common"
	"github.com/muralvote/muralvote/internal/dbx"
	"github.com/muralvote/muralvote/internal/models"
)

// PostgresRepository implements candidate storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const candidateColumns = `id, election_id, submitter, submitter_email,
	asset_key, name, author, original_url, license,
	approved, motif, created_at, updated_at`

func scanCandidate(scan func(dest ...any) error) (*models.Candidate, error) {
	var c models.Candidate
	var approved bool
	var motif string
	err := scan(
		&c.ID, &c.ElectionID, &c.Submitter, &c.SubmitterEmail,
		&c.AssetKey, &c.Name, &c.Author, &c.OriginalURL, &c.License,
		&approved, &motif, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Status = models.StatusFromColumns(approved, motif)
	return &c, nil
}

// Create inserts a candidate and fills in its generated ID and
// timestamps. A (election, asset key) collision returns ErrDuplicateAsset.
func (r *PostgresRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	approved, motif := candidate.Status.Columns()
	query := `
		INSERT INTO candidates (election_id, submitter, submitter_email,
			asset_key, name, author, original_url, license, approved, motif)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRowContext(ctx, query,
		candidate.ElectionID, candidate.Submitter, candidate.SubmitterEmail,
		candidate.AssetKey, candidate.Name, candidate.Author,
		candidate.OriginalURL, candidate.License, approved, motif,
	).Scan(&candidate.ID, &candidate.CreatedAt, &candidate.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrDuplicateAsset
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Update replaces a candidate's metadata, asset key and status. Used by
// resubmissions; votes are untouched because the row identity is stable.
func (r *PostgresRepository) Update(ctx context.Context, candidate *models.Candidate) error {
	approved, motif := candidate.Status.Columns()
	query := `
		UPDATE candidates SET asset_key=$2, name=$3, author=$4,
			original_url=$5, license=$6, approved=$7, motif=$8, updated_at=now()
		WHERE id=$1;
	`
	res, err := r.db.ExecContext(ctx, query,
		candidate.ID, candidate.AssetKey, candidate.Name, candidate.Author,
		candidate.OriginalURL, candidate.License, approved, motif,
	)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrDuplicateAsset
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

// SetStatus applies one moderation decision.
func (r *PostgresRepository) SetStatus(ctx context.Context, candidateID int64, status models.Status) error {
	approved, motif := status.Columns()
	query := `UPDATE candidates SET approved=$2, motif=$3, updated_at=now() WHERE id=$1;`
	res, err := r.db.ExecContext(ctx, query, candidateID, approved, motif)
	if err != nil {
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

// GetByID returns the candidate with the given identifier, or ErrNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE id=$1`
	c, err := scanCandidate(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select candidate: %w", err)
	}
	return c, nil
}

// ByElection returns an election's candidates in creation order. A non-nil
// state restricts the result to that moderation state.
func (r *PostgresRepository) ByElection(ctx context.Context, electionID int64, state *models.ModerationState) ([]*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE election_id=$1`
	if state != nil {
		switch *state {
		case models.Approved:
			query += ` AND approved`
		case models.Pending:
			query += ` AND NOT approved AND motif=''`
		case models.Denied:
			query += ` AND NOT approved AND motif<>''`
		}
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select candidates: %w", err)
	}
	defer rows.Close()

	var result []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// BySubmitter returns a submitter's candidates across all elections,
// most recently updated first.
func (r *PostgresRepository) BySubmitter(ctx context.Context, submitter string) ([]*models.Candidate, error) {
	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE submitter=$1 ORDER BY updated_at DESC`
	rows, err := r.db.QueryContext(ctx, query, submitter)
	if err != nil {
		return nil, fmt.Errorf("failed to select candidates: %w", err)
	}
	defer rows.Close()

	var result []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CountByElectionSubmitter counts the submitter's candidates in one
// election, regardless of moderation state.
func (r *PostgresRepository) CountByElectionSubmitter(ctx context.Context, electionID int64, submitter string) (int, error) {
	query := `SELECT count(*) FROM candidates WHERE election_id=$1 AND submitter=$2`
	var n int
	if err := r.db.QueryRowContext(ctx, query, electionID, submitter).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count candidates: %w", err)
	}
	return n, nil
}

// ApprovedIDs returns the set of approved candidate ids of an election.
func (r *PostgresRepository) ApprovedIDs(ctx context.Context, electionID int64) (map[int64]struct{}, error) {
	query := `SELECT id FROM candidates WHERE election_id=$1 AND approved`
	rows, err := r.db.QueryContext(ctx, query, electionID)
	if err != nil {
		return nil, fmt.Errorf("failed to select approved candidates: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]struct{})
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
