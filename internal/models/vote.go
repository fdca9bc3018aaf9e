package models

import "time"

// Vote records one weighted vote. The (Voter, CandidateID) pair is the
// primary key, so a voter can vote for a given candidate at most once.
// Votes are never mutated or deleted once recorded.
type Vote struct {
	Voter       string
	CandidateID int64
	// Weight is assigned at cast time (>= 1) and immutable afterwards.
	Weight int

	CreatedAt time.Time
}
