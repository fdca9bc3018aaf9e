package models

import "time"

// ModerationState is the review state of a candidate.
type ModerationState int

const (
	// Pending candidates await review; they are invisible to voters.
	Pending ModerationState = iota
	// Approved candidates appear on the ballot and in results.
	Approved
	// Denied candidates were rejected with a reason; the submitter may
	// resubmit while the submission window is open.
	Denied
)

func (s ModerationState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Approved:
		return "approved"
	case Denied:
		return "denied"
	default:
		return "unknown"
	}
}

// Status pairs a moderation state with its note: an optional remark for
// approvals, the mandatory reason for denials, empty while pending.
type Status struct {
	State ModerationState
	Note  string
}

// StatusFromColumns rebuilds a Status from the stored column pair. Denied
// is encoded as not-approved with a non-empty motif, pending as
// not-approved with an empty one.
func StatusFromColumns(approved bool, motif string) Status {
	switch {
	case approved:
		return Status{State: Approved, Note: motif}
	case motif != "":
		return Status{State: Denied, Note: motif}
	default:
		return Status{State: Pending}
	}
}

// Columns flattens the Status into the stored (approved, motif) pair.
func (s Status) Columns() (approved bool, motif string) {
	return s.State == Approved, s.Note
}

// Candidate is one submitted image in an election. AssetKey is unique per
// election and addresses the stored bytes in the blob store.
type Candidate struct {
	ID         int64
	ElectionID int64

	Submitter      string
	SubmitterEmail string

	AssetKey    string
	Name        string
	Author      string
	OriginalURL string
	License     string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
