package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/getmentor/mentorship-api/pkg/errors"
	"github.com/getmentor/mentorship-api/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// respondServiceError maps a service error onto its HTTP status.
// Anything outside the domain taxonomy is a 500 with a generic message.
func respondServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, apperrors.ErrValidation):
		respondError(c, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, apperrors.ErrInvalidTransition), errors.Is(err, apperrors.ErrConflict):
		respondError(c, http.StatusConflict, err.Error(), err)
	case errors.Is(err, apperrors.ErrPreconditionFailed):
		respondErrorWithDetails(c, http.StatusUnprocessableEntity, "Precondition failed",
			gin.H{"unmetConditions": apperrors.UnmetConditions(err)}, err)
	default:
		logger.LogError(err, fallback, zap.String("path", c.FullPath()))
		respondError(c, http.StatusInternalServerError, fallback, err)
	}
}
