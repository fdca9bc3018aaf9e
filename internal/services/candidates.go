package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/muralvote/muralvote/internal/blob"
	"github.com/muralvote/muralvote/internal/common"
	"github.com/muralvote/muralvote/internal/dbx"
	"github.com/muralvote/muralvote/internal/imaging"
	"github.com/muralvote/muralvote/internal/logging"
	"github.com/muralvote/muralvote/internal/models"
	"github.com/muralvote/muralvote/internal/notify"
	"github.com/muralvote/muralvote/internal/phase"
	"github.com/muralvote/muralvote/internal/repositories/repomanager"
)

// CandidateService handles candidate intake, resubmission, visibility
// and moderation.
type CandidateService struct {
	db        *sql.DB
	repos     repomanager.RepositoryManager
	blobs     blob.Store
	validator imaging.Validator
	notifier  notify.Notifier
	log       logging.Logger
}

func NewCandidateService(db *sql.DB, repos repomanager.RepositoryManager, blobs blob.Store,
	validator imaging.Validator, notifier notify.Notifier, log logging.Logger) *CandidateService {
	return &CandidateService{
		db:        db,
		repos:     repos,
		blobs:     blobs,
		validator: validator,
		notifier:  notifier,
		log:       log,
	}
}

// Submission carries the metadata and bytes of one candidate upload.
type Submission struct {
	Name        string
	Author      string
	OriginalURL string
	License     string

	Filename string
	Mimetype string
	Data     []byte
}

// Submit accepts a new candidate while the election's submission window
// is open. The record and the asset bytes are written through the
// submission coordinator so a failure at any point leaves neither behind.
func (s *CandidateService) Submit(ctx context.Context, electionID int64, submitter, submitterEmail string,
	sub Submission, now time.Time) (*models.Candidate, error) {

	election, err := s.repos.Elections(s.db).GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}

	if phase.Resolve(election, now) != phase.Submission {
		return nil, common.ErrPhaseClosed
	}

	if election.MaxCandidatesPerUser != nil {
		n, err := s.repos.Candidates(s.db).CountByElectionSubmitter(ctx, electionID, submitter)
		if err != nil {
			return nil, err
		}
		if n >= *election.MaxCandidatesPerUser {
			return nil, common.ErrCandidateQuotaExceeded
		}
	}

	candidate := &models.Candidate{
		ElectionID:     electionID,
		Submitter:      submitter,
		SubmitterEmail: submitterEmail,
		AssetKey:       assetKey(election.Folder, sub.Filename),
		Name:           sub.Name,
		Author:         sub.Author,
		OriginalURL:    sub.OriginalURL,
		License:        sub.License,
		Status:         models.Status{State: models.Pending},
	}

	stage := func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Candidates(tx).Create(ctx, candidate)
	}
	if err := s.coordinateSubmission(ctx, stage, candidate.AssetKey, sub); err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, notify.TopicCandidateNew, map[string]any{
		"election":  election.Name,
		"candidate": candidate.Name,
		"submitter": submitter,
	})
	return candidate, nil
}

// Resubmit replaces a non-approved candidate's metadata and asset and
// resets it to pending, discarding any previous denial reason.
func (s *CandidateService) Resubmit(ctx context.Context, candidateID int64, submitter string,
	sub Submission, now time.Time) (*models.Candidate, error) {

	candidate, err := s.repos.Candidates(s.db).GetByID(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate.Submitter != submitter {
		return nil, common.ErrNotOwner
	}
	if candidate.Status.State == models.Approved {
		return nil, common.ErrAlreadyApproved
	}

	election, err := s.repos.Elections(s.db).GetByID(ctx, candidate.ElectionID)
	if err != nil {
		return nil, err
	}
	if !election.AllowsResubmission {
		return nil, common.ErrResubmissionDisabled
	}
	if phase.Resolve(election, now) != phase.Submission {
		return nil, common.ErrPhaseClosed
	}

	previousKey := candidate.AssetKey
	candidate.AssetKey = assetKey(election.Folder, sub.Filename)
	candidate.Name = sub.Name
	candidate.Author = sub.Author
	candidate.OriginalURL = sub.OriginalURL
	candidate.License = sub.License
	candidate.Status = models.Status{State: models.Pending}

	stage := func(ctx context.Context, tx dbx.DBTX) error {
		return s.repos.Candidates(tx).Update(ctx, candidate)
	}
	if err := s.coordinateSubmission(ctx, stage, candidate.AssetKey, sub); err != nil {
		return nil, err
	}

	// The replaced asset is unreachable once the record points elsewhere.
	if previousKey != candidate.AssetKey {
		if err := s.blobs.Delete(ctx, previousKey); err != nil {
			s.log.Warn(ctx, "could not delete replaced asset", "key", previousKey, "error", err.Error())
		}
	}

	s.notifier.Publish(ctx, notify.TopicCandidateNew, map[string]any{
		"election":  election.Name,
		"candidate": candidate.Name,
		"submitter": submitter,
		"resubmit":  true,
	})
	return candidate, nil
}

// ListVisible returns the candidates a viewer may see at the given
// instant. Admins see everything (optionally filtered by moderation
// state); ordinary viewers see approved candidates during voting and
// after, and nothing otherwise.
func (s *CandidateService) ListVisible(ctx context.Context, electionID int64, admin bool,
	stateFilter *models.ModerationState, now time.Time) ([]*models.Candidate, error) {

	election, err := s.repos.Elections(s.db).GetByID(ctx, electionID)
	if err != nil {
		return nil, err
	}

	if admin {
		return s.repos.Candidates(s.db).ByElection(ctx, electionID, stateFilter)
	}

	ph := phase.Resolve(election, now)
	if ph != phase.Voting && ph != phase.Public {
		return nil, nil
	}
	approved := models.Approved
	return s.repos.Candidates(s.db).ByElection(ctx, electionID, &approved)
}

// ContributionsBySubmitter returns everything the submitter has
// contributed across elections, most recently updated first.
func (s *CandidateService) ContributionsBySubmitter(ctx context.Context, submitter string) ([]*models.Candidate, error) {
	return s.repos.Candidates(s.db).BySubmitter(ctx, submitter)
}

// Get returns one candidate by id.
func (s *CandidateService) Get(ctx context.Context, id int64) (*models.Candidate, error) {
	return s.repos.Candidates(s.db).GetByID(ctx, id)
}

// Decision is one moderation verdict: approve (with an optional note) or
// deny (with a mandatory reason).
type Decision struct {
	Approve bool
	Motif   string
}

// Moderate applies a batch of decisions with partial-update semantics:
// candidates absent from the batch are untouched. The batch is
// all-or-nothing; a denial without a reason invalidates the whole batch
// before anything is written. Moderation is frozen once the election is
// voting or public.
func (s *CandidateService) Moderate(ctx context.Context, electionID int64, decisions map[int64]Decision,
	agent string, now time.Time) (int, error) {

	election, err := s.repos.Elections(s.db).GetByID(ctx, electionID)
	if err != nil {
		return 0, err
	}

	if ph := phase.Resolve(election, now); ph == phase.Voting || ph == phase.Public {
		return 0, common.ErrPhaseLocked
	}

	ids := make([]int64, 0, len(decisions))
	for id, d := range decisions {
		if !d.Approve && strings.TrimSpace(d.Motif) == "" {
			return 0, common.ErrReasonRequired
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	applied := make([]*models.Candidate, 0, len(ids))
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Candidates(tx)
		for _, id := range ids {
			candidate, err := repo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if candidate.ElectionID != electionID {
				return fmt.Errorf("%w: candidate %d does not belong to election %d", common.ErrValidation, id, electionID)
			}

			d := decisions[id]
			status := models.Status{State: models.Denied, Note: strings.TrimSpace(d.Motif)}
			if d.Approve {
				status = models.Status{State: models.Approved, Note: strings.TrimSpace(d.Motif)}
			}
			if err := repo.SetStatus(ctx, id, status); err != nil {
				return err
			}
			candidate.Status = status
			applied = append(applied, candidate)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, candidate := range applied {
		topic := notify.TopicCandidateDenied
		if candidate.Status.State == models.Approved {
			topic = notify.TopicCandidateApproved
		}
		s.notifier.Publish(ctx, topic, map[string]any{
			"agent":     agent,
			"election":  election.Name,
			"candidate": candidate.Name,
			"submitter": candidate.Submitter,
			"motif":     candidate.Status.Note,
		})
	}
	return len(applied), nil
}

// errTxDone reports the harmless rollback-after-commit-failure case.
func errTxDone(err error) bool {
	return errors.Is(err, sql.ErrTxDone)
}
