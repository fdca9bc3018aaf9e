// Package phase derives an election's lifecycle phase from its four date
// boundaries and a caller-supplied instant. Resolution is a pure function:
// no clock reads, no caching, safe for any number of concurrent callers.
package phase

import (
	"time"

	"github.com/muralvote/muralvote/internal/models"
)

// Phase is the lifecycle stage of an election at a given instant.
type Phase int

const (
	// Draft: before the submission window opens.
	Draft Phase = iota
	// Submission: candidate intake is open.
	Submission
	// Pending: intake closed, voting not yet open; moderation happens here.
	Pending
	// Voting: ballots are open.
	Voting
	// Public: voting ended, results are visible to everyone.
	Public
)

func (p Phase) String() string {
	switch p {
	case Draft:
		return "draft"
	case Submission:
		return "submission"
	case Pending:
		return "pending"
	case Voting:
		return "voting"
	case Public:
		return "public"
	default:
		return "unknown"
	}
}

// Resolve maps now onto exactly one phase. All intervals are half-open
// [start, end) except Public, which is closed from VotingEnd onwards, so
// the five phases partition the timeline with no gaps or overlaps.
// Coinciding boundaries yield zero-length phases that are simply never
// observed.
func Resolve(e *models.Election, now time.Time) Phase {
	switch {
	case now.Before(e.SubmissionStart):
		return Draft
	case now.Before(e.SubmissionEnd) && now.Before(e.VotingStart):
		return Submission
	case now.Before(e.VotingStart):
		return Pending
	case now.Before(e.VotingEnd):
		return Voting
	default:
		return Public
	}
}
