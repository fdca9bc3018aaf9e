package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/muralvote/muralvote/internal/common"
	"github.com/muralvote/muralvote/internal/logging"
)

// ErrorResponse is the uniform error body of the API.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError translates the service error taxonomy into HTTP statuses.
// Invalid input is 400, acting outside a window or without ownership is
// 403, missing records are 404, duplicates and quota violations are 409,
// blob store trouble is 502, everything else is a logged 500.
func writeError(g *gin.Context, log logging.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrReasonRequired),
		errors.Is(err, common.ErrEmptySelection),
		errors.Is(err, common.ErrInvalidSelection):
		g.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})

	case errors.Is(err, common.ErrNotOwner),
		errors.Is(err, common.ErrPhaseClosed),
		errors.Is(err, common.ErrPhaseLocked),
		errors.Is(err, common.ErrElectionNotOpen),
		errors.Is(err, common.ErrResubmissionDisabled):
		g.JSON(http.StatusForbidden, &ErrorResponse{Error: err.Error()})

	case errors.Is(err, common.ErrNotFound):
		g.JSON(http.StatusNotFound, &ErrorResponse{Error: err.Error()})

	case errors.Is(err, common.ErrDuplicateAsset),
		errors.Is(err, common.ErrDuplicateElection),
		errors.Is(err, common.ErrAlreadyVoted),
		errors.Is(err, common.ErrAlreadyApproved),
		errors.Is(err, common.ErrQuotaExhausted),
		errors.Is(err, common.ErrQuotaExceeded),
		errors.Is(err, common.ErrCandidateQuotaExceeded):
		g.JSON(http.StatusConflict, &ErrorResponse{Error: err.Error()})

	case errors.Is(err, common.ErrDependency):
		g.JSON(http.StatusBadGateway, &ErrorResponse{Error: err.Error()})

	default:
		log.Error(context.Background(), "unhandled error", "path", g.Request.URL.Path, "error", err.Error())
		g.JSON(http.StatusInternalServerError, &ErrorResponse{Error: "internal error"})
	}
}
