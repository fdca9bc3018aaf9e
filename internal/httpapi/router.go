// Package httpapi exposes the election engine over HTTP with gin.
// Authentication is delegated to an identity.Provider; controllers read
// the resolved user from the request context and never see credentials.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/muralvote/muralvote/internal/config"
	"github.com/muralvote/muralvote/internal/identity"
	"github.com/muralvote/muralvote/internal/logging"
	"github.com/muralvote/muralvote/internal/services"
)

const userContextKey = "httpapi.user"

// Deps bundles everything the router needs.
type Deps struct {
	Config     *config.Config
	Elections  *services.ElectionService
	Candidates *services.CandidateService
	Votes      *services.VoteService
	Results    *services.ResultsService
	Identity   identity.Provider
	Log        logging.Logger

	// Now supplies the current time; defaults to time.Now.
	Now func() time.Time
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(mode string, deps Deps) *gin.Engine {
	gin.SetMode(mode)
	if deps.Now == nil {
		deps.Now = time.Now
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(identityMiddleware(deps.Identity, deps.Log))
	engine.NoRoute(func(g *gin.Context) {
		g.JSON(http.StatusNotFound, &ErrorResponse{Error: "page not found"})
	})

	NewElectionController(deps).RegisterRoutes(engine)
	NewCandidateController(deps).RegisterRoutes(engine)
	NewVoteController(deps).RegisterRoutes(engine)
	NewResultsController(deps).RegisterRoutes(engine)

	return engine
}

// identityMiddleware resolves the caller once per request and stashes it
// in the gin context. Anonymous requests pass through with no user.
func identityMiddleware(provider identity.Provider, log logging.Logger) gin.HandlerFunc {
	return func(g *gin.Context) {
		user, err := provider.FromRequest(g.Request)
		if err != nil {
			log.Warn(g.Request.Context(), "could not resolve identity", "error", err.Error())
			g.AbortWithStatusJSON(http.StatusUnauthorized, &ErrorResponse{Error: "could not resolve identity"})
			return
		}
		if user != nil {
			g.Set(userContextKey, user)
		}
		g.Next()
	}
}

// currentUser returns the resolved caller, nil when anonymous.
func currentUser(g *gin.Context) *identity.User {
	v, ok := g.Get(userContextKey)
	if !ok {
		return nil
	}
	return v.(*identity.User)
}

// requireUser aborts anonymous requests with 401.
func requireUser(g *gin.Context) *identity.User {
	user := currentUser(g)
	if user == nil {
		g.AbortWithStatusJSON(http.StatusUnauthorized, &ErrorResponse{Error: "authentication required"})
	}
	return user
}

// requireAdmin aborts requests from callers outside the admin group.
func requireAdmin(g *gin.Context, adminGroup string) *identity.User {
	user := requireUser(g)
	if user == nil {
		return nil
	}
	if !user.InGroup(adminGroup) {
		g.AbortWithStatusJSON(http.StatusForbidden, &ErrorResponse{Error: "administrator privileges required"})
		return nil
	}
	return user
}
