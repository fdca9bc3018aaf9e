// Package models defines the data models persisted by the election engine.
package models

import "time"

// Election describes one timed election. Name and Folder are globally
// unique; Folder doubles as the object-storage prefix for the election's
// candidate assets.
//
// The four date boundaries must be non-decreasing:
//
//	SubmissionStart <= SubmissionEnd <= VotingStart <= VotingEnd
type Election struct {
	ID     int64
	Name   string
	Folder string
	Year   int

	SubmissionStart time.Time
	SubmissionEnd   time.Time
	VotingStart     time.Time
	VotingEnd       time.Time

	// MaxVotesPerUser is the number of votes one voter may cast (>= 1).
	MaxVotesPerUser int
	// MaxCandidatesPerUser caps submissions per contributor; nil means
	// unlimited.
	MaxCandidatesPerUser *int
	AllowsResubmission   bool

	// BadgeLink, when set, is surfaced to voters after a successful vote.
	BadgeLink string

	CreatedAt time.Time
	UpdatedAt time.Time
}
