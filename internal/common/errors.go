// Package common defines the sentinel errors shared by the election
// engine's repositories, services and transport. Callers match them
// with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors (malformed or out-of-range input).
	ErrValidation = errors.New("validation error")

	// Phase errors: the operation was attempted outside its lifecycle window.
	ErrPhaseClosed     = errors.New("submission phase is closed")
	ErrPhaseLocked     = errors.New("moderation is locked for this election")
	ErrElectionNotOpen = errors.New("election is not open for voting")

	// Conflict errors, raised from unique-constraint violations.
	ErrDuplicateAsset    = errors.New("an asset with this key already exists for the election")
	ErrAlreadyVoted      = errors.New("already voted for this candidate")
	ErrDuplicateElection = errors.New("an election with this name or folder already exists")

	// Quota errors.
	ErrQuotaExhausted         = errors.New("maximal number of votes already cast")
	ErrQuotaExceeded          = errors.New("selection exceeds the remaining vote allowance")
	ErrCandidateQuotaExceeded = errors.New("maximal number of candidates already submitted")

	// Authorization errors.
	ErrNotOwner             = errors.New("not the submitter of this candidate")
	ErrResubmissionDisabled = errors.New("this election does not allow resubmissions")
	ErrAlreadyApproved      = errors.New("candidate is already approved")

	// Moderation errors.
	ErrReasonRequired = errors.New("a reason is required to deny a candidate")

	// Vote selection errors.
	ErrEmptySelection   = errors.New("no candidate selected")
	ErrInvalidSelection = errors.New("selection contains candidates not in this election")

	// External collaborator failures (blob store, image validator).
	ErrDependency = errors.New("dependency failure")
)

// QuotaExceededError reports how many votes the voter may still cast for
// the election. It matches ErrQuotaExceeded under errors.Is so callers can
// surface the remaining allowance instead of silently truncating.
type QuotaExceededError struct {
	Remaining int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("selection exceeds the remaining vote allowance (%d left)", e.Remaining)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}
