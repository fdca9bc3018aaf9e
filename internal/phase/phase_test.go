package phase

import (
	"testing"
	"time"

	"github.com/muralvote/muralvote/internal/models"
)

var (
	subStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	subEnd   = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	voteOpen = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	voteEnd  = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
)

func election() *models.Election {
	return &models.Election{
		SubmissionStart: subStart,
		SubmissionEnd:   subEnd,
		VotingStart:     voteOpen,
		VotingEnd:       voteEnd,
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want Phase
	}{
		{"before everything", subStart.Add(-time.Hour), Draft},
		{"submission opens at start", subStart, Submission},
		{"mid submission", subStart.AddDate(0, 0, 15), Submission},
		{"submission closed at end", subEnd, Pending},
		{"mid pending", subEnd.AddDate(0, 0, 10), Pending},
		{"voting opens at start", voteOpen, Voting},
		{"one nanosecond before voting ends", voteEnd.Add(-time.Nanosecond), Voting},
		{"public at voting end", voteEnd, Public},
		{"public forever after", voteEnd.AddDate(10, 0, 0), Public},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(election(), tt.now); got != tt.want {
				t.Fatalf("Resolve(%s) = %s, want %s", tt.now, got, tt.want)
			}
		})
	}
}

// Submission end and voting start may coincide; the pending phase then
// has zero length and voting follows submission directly.
func TestResolve_NoPendingGap(t *testing.T) {
	e := election()
	e.VotingStart = e.SubmissionEnd

	if got := Resolve(e, subEnd.Add(-time.Nanosecond)); got != Submission {
		t.Fatalf("expected submission just before boundary, got %s", got)
	}
	if got := Resolve(e, subEnd); got != Voting {
		t.Fatalf("expected voting at boundary, got %s", got)
	}
}

// Every instant maps to exactly one phase and transitions are monotonic.
func TestResolve_Partition(t *testing.T) {
	e := election()
	prev := Draft
	for now := subStart.Add(-time.Hour); now.Before(voteEnd.Add(time.Hour)); now = now.Add(time.Hour) {
		got := Resolve(e, now)
		if got < prev {
			t.Fatalf("phase went backwards at %s: %s after %s", now, got, prev)
		}
		prev = got
	}
	if prev != Public {
		t.Fatalf("expected to end public, got %s", prev)
	}
}

func TestPhaseString(t *testing.T) {
	if Voting.String() != "voting" || Phase(42).String() != "unknown" {
		t.Fatal("unexpected phase names")
	}
}
