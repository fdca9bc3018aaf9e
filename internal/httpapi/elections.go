package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/muralvote/muralvote/internal/models"
	"github.com/muralvote/muralvote/internal/phase"
)

// ElectionController serves election lifecycle endpoints.
type ElectionController struct {
	deps Deps
}

func NewElectionController(deps Deps) *ElectionController {
	return &ElectionController{deps: deps}
}

func (c *ElectionController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api/elections")

	group.GET("", c.list)
	group.POST("", c.create)
	group.GET("/:id", c.get)
	group.PUT("/:id", c.edit)
	group.GET("/:id/phase", c.getPhase)
}

// list returns all elections, optionally restricted to one lifecycle
// phase with ?phase=submission|voting|public.
func (c *ElectionController) list(g *gin.Context) {
	now := c.deps.Now()

	var (
		elections []*models.Election
		err       error
	)
	if name := g.Query("phase"); name != "" {
		p, ok := phaseByName(name)
		if !ok {
			g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "unknown phase " + strconv.Quote(name)})
			return
		}
		elections, err = c.deps.Elections.ListInPhase(g.Request.Context(), p, now)
	} else {
		elections, err = c.deps.Elections.List(g.Request.Context())
	}
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	out := make([]*electionResponse, 0, len(elections))
	for _, e := range elections {
		out = append(out, toElectionResponse(e, phase.Resolve(e, now).String()))
	}
	g.JSON(http.StatusOK, out)
}

func (c *ElectionController) create(g *gin.Context) {
	user := requireAdmin(g, c.deps.Config.AdminGroup)
	if user == nil {
		return
	}

	var req electionRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "invalid request format"})
		return
	}

	election := req.toModel()
	if err := c.deps.Elections.Create(g.Request.Context(), election, user.ID); err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusCreated, toElectionResponse(election, phase.Resolve(election, c.deps.Now()).String()))
}

func (c *ElectionController) get(g *gin.Context) {
	id, ok := pathID(g)
	if !ok {
		return
	}

	election, err := c.deps.Elections.Get(g.Request.Context(), id)
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusOK, toElectionResponse(election, phase.Resolve(election, c.deps.Now()).String()))
}

func (c *ElectionController) edit(g *gin.Context) {
	user := requireAdmin(g, c.deps.Config.AdminGroup)
	if user == nil {
		return
	}

	id, ok := pathID(g)
	if !ok {
		return
	}

	var req electionRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "invalid request format"})
		return
	}

	election := req.toModel()
	election.ID = id
	if err := c.deps.Elections.Edit(g.Request.Context(), election, user.ID); err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusOK, toElectionResponse(election, phase.Resolve(election, c.deps.Now()).String()))
}

func (c *ElectionController) getPhase(g *gin.Context) {
	id, ok := pathID(g)
	if !ok {
		return
	}

	p, err := c.deps.Elections.Phase(g.Request.Context(), id, c.deps.Now())
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusOK, gin.H{"phase": p.String()})
}

// pathID parses the :id path parameter, responding with 400 on garbage.
func pathID(g *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(g.Param("id"), 10, 64)
	if err != nil || id < 1 {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "invalid election id"})
		return 0, false
	}
	return id, true
}

func phaseByName(name string) (phase.Phase, bool) {
	for _, p := range []phase.Phase{phase.Draft, phase.Submission, phase.Pending, phase.Voting, phase.Public} {
		if p.String() == name {
			return p, true
		}
	}
	return phase.Draft, false
}
