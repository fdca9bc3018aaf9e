package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/muralvote/muralvote/internal/common"
	"github.com/muralvote/muralvote/internal/dbx"
	"github.com/muralvote/muralvote/internal/saga"
)

// coordinateSubmission performs the record-then-asset dual write for a
// submission. The record row is staged inside an open transaction, the
// asset bytes go to the blob store, and only then does the transaction
// commit. Compensation runs in reverse on failure so a half-written
// submission never survives: a commit failure deletes the uploaded
// asset, a store failure rolls the row back.
func (s *CandidateService) coordinateSubmission(ctx context.Context,
	stage func(ctx context.Context, tx dbx.DBTX) error, key string, sub Submission) error {

	if _, err := s.validator.Validate(sub.Data, sub.Filename, sub.Mimetype); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	steps := []saga.Step{
		{
			Name: "stage record",
			Run: func(ctx context.Context) error {
				return stage(ctx, tx)
			},
			Compensate: func(ctx context.Context) error {
				if err := tx.Rollback(); err != nil && !errTxDone(err) {
					return err
				}
				return nil
			},
		},
		{
			Name: "store asset",
			Run: func(ctx context.Context) error {
				if err := s.blobs.Put(ctx, key, sub.Data, sub.Mimetype); err != nil {
					return fmt.Errorf("%w: %v", common.ErrDependency, err)
				}
				return nil
			},
			Compensate: func(ctx context.Context) error {
				return s.blobs.Delete(ctx, key)
			},
		},
		{
			Name: "commit",
			Run: func(ctx context.Context) error {
				if err := tx.Commit(); err != nil {
					return fmt.Errorf("%w: %v", common.ErrDependency, err)
				}
				return nil
			},
		},
	}

	return saga.Run(ctx, s.log, steps)
}

// assetKey builds the storage key for a submission: the election folder,
// a fresh uuid and the sanitized original filename. The uuid keeps
// concurrent uploads of identically named files apart while the
// filename keeps the key readable.
func assetKey(folder, filename string) string {
	return fmt.Sprintf("%s/%s-%s", folder, uuid.New(), sanitizeFilename(filename))
}

// sanitizeFilename reduces a user-supplied filename to a safe key
// fragment, replacing anything outside [a-zA-Z0-9._-].
func sanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
