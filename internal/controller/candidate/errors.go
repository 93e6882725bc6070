package candidate

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talentgate/assessment-api/internal/apperr"
	"github.com/talentgate/assessment-api/internal/dto"
)

// respondError translates the engine's typed failures into HTTP statuses. The
// engine never renders user-facing strings; this is the only place that maps.
func respondError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperr.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrInvalidTransition), errors.Is(err, apperr.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, apperr.ErrInsufficientQuestionBank), errors.Is(err, apperr.ErrInvalidMedia):
		status = http.StatusUnprocessableEntity
	}
	ctx.JSON(status, dto.ErrorResponse{Message: err.Error()})
}
