package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muralvote/muralvote/internal/identity"
)

// VoteController serves ballot casting and inspection.
type VoteController struct {
	deps Deps
}

func NewVoteController(deps Deps) *VoteController {
	return &VoteController{deps: deps}
}

func (c *VoteController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/elections")

	group.POST("/:id/vote", c.cast)
	group.GET("/:id/votes", c.myVotes)
}

func (c *VoteController) cast(g *gin.Context) {
	user := requireUser(g)
	if user == nil {
		return
	}

	electionID, ok := pathID(g)
	if !ok {
		return
	}

	var req castVotesRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "invalid request format"})
		return
	}

	weight := c.voteWeight(user)
	result, err := c.deps.Votes.CastVotes(g.Request.Context(), electionID, user.ID, req.CandidateIDs, weight, c.deps.Now())
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusOK, &castVotesResponse{
		Cast:      result.Cast,
		Remaining: result.Remaining,
		BadgeLink: result.BadgeLink,
	})
}

func (c *VoteController) myVotes(g *gin.Context) {
	user := requireUser(g)
	if user == nil {
		return
	}

	electionID, ok := pathID(g)
	if !ok {
		return
	}

	votes, err := c.deps.Votes.VotesByVoter(g.Request.Context(), electionID, user.ID)
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	out := make([]*voteResponse, 0, len(votes))
	for _, v := range votes {
		out = append(out, &voteResponse{CandidateID: v.CandidateID, Weight: v.Weight})
	}
	g.JSON(http.StatusOK, out)
}

// voteWeight derives the caller's ballot weight: members of the
// configured group carry the configured weight, everyone else 1.
func (c *VoteController) voteWeight(user *identity.User) int {
	if user.InGroup(c.deps.Config.WeightedVoteGroup) && c.deps.Config.WeightedVoteValue > 1 {
		return c.deps.Config.WeightedVoteValue
	}
	return 1
}
