package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/muralvote/muralvote/internal/models"
	"github.com/muralvote/muralvote/internal/services"
)

// maxUploadBytes caps candidate uploads at 16 MiB.
const maxUploadBytes = 16 << 20

// CandidateController serves candidate submission, listing and
// moderation endpoints.
type CandidateController struct {
	deps Deps
}

func NewCandidateController(deps Deps) *CandidateController {
	return &CandidateController{deps: deps}
}

func (c *CandidateController) RegisterRoutes(engine *gin.Engine) {
	group := engine.Group("/api")

	group.GET("/elections/:id/candidates", c.list)
	group.POST("/elections/:id/candidates", c.submit)
	group.POST("/elections/:id/moderate", c.moderate)
	group.GET("/candidates/:id", c.get)
	group.POST("/candidates/:id/resubmit", c.resubmit)
	group.GET("/contributions", c.contributions)
}

// get returns one candidate. Moderation details are visible to admins
// and to the submitter.
func (c *CandidateController) get(g *gin.Context) {
	candidateID, err := strconv.ParseInt(g.Param("id"), 10, 64)
	if err != nil || candidateID < 1 {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "invalid candidate id"})
		return
	}

	candidate, err := c.deps.Candidates.Get(g.Request.Context(), candidateID)
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	user := currentUser(g)
	privileged := user.InGroup(c.deps.Config.AdminGroup) || (user != nil && user.ID == candidate.Submitter)
	g.JSON(http.StatusOK, toCandidateResponse(candidate, privileged))
}

// list returns the candidates a caller may see. Admins get the full
// list, optionally filtered with ?state=pending|approved|denied;
// everyone else gets the approved set during voting and after.
func (c *CandidateController) list(g *gin.Context) {
	electionID, ok := pathID(g)
	if !ok {
		return
	}

	user := currentUser(g)
	admin := user.InGroup(c.deps.Config.AdminGroup)

	var stateFilter *models.ModerationState
	if name := g.Query("state"); name != "" {
		if !admin {
			g.JSON(http.StatusForbidden, &ErrorResponse{Error: "administrator privileges required"})
			return
		}
		state, ok := stateByName(name)
		if !ok {
			g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "unknown state " + strconv.Quote(name)})
			return
		}
		stateFilter = &state
	}

	candidates, err := c.deps.Candidates.ListVisible(g.Request.Context(), electionID, admin, stateFilter, c.deps.Now())
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusOK, toCandidateResponses(candidates, admin))
}

func (c *CandidateController) submit(g *gin.Context) {
	user := requireUser(g)
	if user == nil {
		return
	}

	electionID, ok := pathID(g)
	if !ok {
		return
	}

	sub, ok := c.readSubmission(g)
	if !ok {
		return
	}

	candidate, err := c.deps.Candidates.Submit(g.Request.Context(), electionID, user.ID, user.Email, sub, c.deps.Now())
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusCreated, toCandidateResponse(candidate, true))
}

func (c *CandidateController) resubmit(g *gin.Context) {
	user := requireUser(g)
	if user == nil {
		return
	}

	candidateID, err := strconv.ParseInt(g.Param("id"), 10, 64)
	if err != nil || candidateID < 1 {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "invalid candidate id"})
		return
	}

	sub, ok := c.readSubmission(g)
	if !ok {
		return
	}

	candidate, err := c.deps.Candidates.Resubmit(g.Request.Context(), candidateID, user.ID, sub, c.deps.Now())
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusOK, toCandidateResponse(candidate, true))
}

func (c *CandidateController) moderate(g *gin.Context) {
	user := requireAdmin(g, c.deps.Config.AdminGroup)
	if user == nil {
		return
	}

	electionID, ok := pathID(g)
	if !ok {
		return
	}

	var req moderateRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "invalid request format"})
		return
	}

	decisions := make(map[int64]services.Decision, len(req.Decisions))
	for id, d := range req.Decisions {
		decisions[id] = services.Decision{Approve: d.Approve, Motif: d.Motif}
	}

	applied, err := c.deps.Candidates.Moderate(g.Request.Context(), electionID, decisions, user.ID, c.deps.Now())
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusOK, &moderateResponse{Applied: applied})
}

// contributions returns everything the caller has submitted across
// elections, moderation status included.
func (c *CandidateController) contributions(g *gin.Context) {
	user := requireUser(g)
	if user == nil {
		return
	}

	candidates, err := c.deps.Candidates.ContributionsBySubmitter(g.Request.Context(), user.ID)
	if err != nil {
		writeError(g, c.deps.Log, err)
		return
	}

	g.JSON(http.StatusOK, toCandidateResponses(candidates, true))
}

// readSubmission parses the multipart upload: a "candidate" file part
// plus name/author/original_url/license form fields.
func (c *CandidateController) readSubmission(g *gin.Context) (services.Submission, bool) {
	file, err := g.FormFile("candidate")
	if err != nil {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "a candidate file is required"})
		return services.Submission{}, false
	}
	if file.Size > maxUploadBytes {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "the submitted candidate is too large"})
		return services.Submission{}, false
	}

	f, err := file.Open()
	if err != nil {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "could not read the submitted candidate"})
		return services.Submission{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: "could not read the submitted candidate"})
		return services.Submission{}, false
	}

	return services.Submission{
		Name:        g.PostForm("name"),
		Author:      g.PostForm("author"),
		OriginalURL: g.PostForm("original_url"),
		License:     g.PostForm("license"),
		Filename:    file.Filename,
		Mimetype:    file.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

func stateByName(name string) (models.ModerationState, bool) {
	switch name {
	case "pending":
		return models.Pending, true
	case "approved":
		return models.Approved, true
	case "denied":
		return models.Denied, true
	}
	return models.Pending, false
}
