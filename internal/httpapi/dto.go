package httpapi

import (
	"time"

	"github.com/muralvote/muralvote/internal/models"
)

type electionRequest struct {
	Name                 string    `json:"name" binding:"required"`
	Folder               string    `json:"folder" binding:"required"`
	Year                 int       `json:"year" binding:"required"`
	SubmissionStart      time.Time `json:"submission_start" binding:"required"`
	SubmissionEnd        time.Time `json:"submission_end" binding:"required"`
	VotingStart          time.Time `json:"voting_start" binding:"required"`
	VotingEnd            time.Time `json:"voting_end" binding:"required"`
	MaxVotesPerUser      int       `json:"max_votes_per_user" binding:"required"`
	MaxCandidatesPerUser *int      `json:"max_candidates_per_user"`
	AllowsResubmission   bool      `json:"allows_resubmission"`
	BadgeLink            string    `json:"badge_link"`
}

func (r *electionRequest) toModel() *models.Election {
	return &models.Election{
		Name:                 r.Name,
		Folder:               r.Folder,
		Year:                 r.Year,
		SubmissionStart:      r.SubmissionStart,
		SubmissionEnd:        r.SubmissionEnd,
		VotingStart:          r.VotingStart,
		VotingEnd:            r.VotingEnd,
		MaxVotesPerUser:      r.MaxVotesPerUser,
		MaxCandidatesPerUser: r.MaxCandidatesPerUser,
		AllowsResubmission:   r.AllowsResubmission,
		BadgeLink:            r.BadgeLink,
	}
}

type electionResponse struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Folder               string    `json:"folder"`
	Year                 int       `json:"year"`
	SubmissionStart      time.Time `json:"submission_start"`
	SubmissionEnd        time.Time `json:"submission_end"`
	VotingStart          time.Time `json:"voting_start"`
	VotingEnd            time.Time `json:"voting_end"`
	MaxVotesPerUser      int       `json:"max_votes_per_user"`
	MaxCandidatesPerUser *int      `json:"max_candidates_per_user,omitempty"`
	AllowsResubmission   bool      `json:"allows_resubmission"`
	BadgeLink            string    `json:"badge_link,omitempty"`
	Phase                string    `json:"phase"`
}

func toElectionResponse(e *models.Election, phase string) *electionResponse {
	return &electionResponse{
		ID:                   e.ID,
		Name:                 e.Name,
		Folder:               e.Folder,
		Year:                 e.Year,
		SubmissionStart:      e.SubmissionStart,
		SubmissionEnd:        e.SubmissionEnd,
		VotingStart:          e.VotingStart,
		VotingEnd:            e.VotingEnd,
		MaxVotesPerUser:      e.MaxVotesPerUser,
		MaxCandidatesPerUser: e.MaxCandidatesPerUser,
		AllowsResubmission:   e.AllowsResubmission,
		BadgeLink:            e.BadgeLink,
		Phase:                phase,
	}
}

type candidateResponse struct {
	ID          int64  `json:"id"`
	ElectionID  int64  `json:"election_id"`
	Name        string `json:"name"`
	Author      string `json:"author"`
	OriginalURL string `json:"original_url,omitempty"`
	License     string `json:"license,omitempty"`
	AssetKey    string `json:"asset_key"`
	Status      string `json:"status,omitempty"`
	Motif       string `json:"motif,omitempty"`
	Submitter   string `json:"submitter,omitempty"`
}

// toCandidateResponse renders a candidate. Moderation details and the
// submitter are only included for privileged views.
func toCandidateResponse(c *models.Candidate, privileged bool) *candidateResponse {
	resp := &candidateResponse{
		ID:          c.ID,
		ElectionID:  c.ElectionID,
		Name:        c.Name,
		Author:      c.Author,
		OriginalURL: c.OriginalURL,
		License:     c.License,
		AssetKey:    c.AssetKey,
	}
	if privileged {
		resp.Status = c.Status.State.String()
		resp.Motif = c.Status.Note
		resp.Submitter = c.Submitter
	}
	return resp
}

func toCandidateResponses(cs []*models.Candidate, privileged bool) []*candidateResponse {
	out := make([]*candidateResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCandidateResponse(c, privileged))
	}
	return out
}

type moderateRequest struct {
	Decisions map[int64]moderateDecision `json:"decisions" binding:"required"`
}

type moderateDecision struct {
	Approve bool   `json:"approve"`
	Motif   string `json:"motif"`
}

type moderateResponse struct {
	Applied int `json:"applied"`
}

type castVotesRequest struct {
	CandidateIDs []int64 `json:"candidate_ids" binding:"required"`
}

type castVotesResponse struct {
	Cast      int    `json:"cast"`
	Remaining int    `json:"remaining"`
	BadgeLink string `json:"badge_link,omitempty"`
}

type voteResponse struct {
	CandidateID int64 `json:"candidate_id"`
	Weight      int   `json:"weight"`
}

type resultEntry struct {
	Candidate   *candidateResponse `json:"candidate"`
	TotalWeight int64              `json:"total_weight"`
}

type statsResponse struct {
	TotalVotes     int64       `json:"total_votes"`
	DistinctVoters int         `json:"distinct_voters"`
	VotesPerVoter  map[int]int `json:"votes_per_voter"`
}
