package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ResultsController serves the voter ballot view, tallies and stats.
type ResultsController struct {
	deps Deps
}

func NewResultsController(deps Deps) *ResultsController {
	return &ResultsController{deps: deps}
}

func (c *ResultsController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/elections")

	group.GET("/:id/ballot", c.ballot)
	group.GET("/:id/results", c.results)
	group.GET("/:id/stats", c.stats)
}

// ballot returns the approved candidates in the caller's personal order.
// Anonymous callers see the base order.
func (c *ResultsController) ballot(g *gin.Context) {
	electionID, ok := pathID(g)
	if !ok {
		return
	}

	voter := ""
	if user := currentUser(g); user != nil {
		voter = user.ID
	}

	candidates, err := c.deps.Results.OrderForVoter(g.Request.Context(), electionID, voter, c.deps.Now())
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusOK, toCandidateResponses(candidates, false))
}

func (c *ResultsController) results(g *gin.Context) {
	electionID, ok := pathID(g)
	if !ok {
		return
	}

	admin := currentUser(g).InGroup(c.deps.Config.AdminGroup)
	results, err := c.deps.Results.Tally(g.Request.Context(), electionID, admin, c.deps.Now())
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	out := make([]*resultEntry, 0, len(results))
	for _, r := range results {
		out = append(out, &resultEntry{
			Candidate:   toCandidateResponse(r.Candidate, admin),
			TotalWeight: r.TotalWeight,
		})
	}
	g.JSON(http.StatusOK, out)
}

func (c *ResultsController) stats(g *gin.Context) {
	electionID, ok := pathID(g)
	if !ok {
		return
	}

	stats, err := c.deps.Results.Stats(g.Request.Context(), electionID)
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusOK, &statsResponse{
		TotalVotes:     stats.TotalVotes,
		DistinctVoters: stats.DistinctVoters,
		VotesPerVoter:  stats.VotesPerVoter,
	})
}
