package api

import (
	"errors"
	"log"
	"net/http"

	"vidaleve/coaching-app/internal/apperr"
	"vidaleve/coaching-app/internal/repository"
	"vidaleve/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// respondServiceError maps a service-layer error to an HTTP response. This is
// the only place a status code is chosen for service failures; handlers pass
// every non-nil error here.
func respondServiceError(c *gin.Context, err error) {
	switch {
	// Missing records
	case errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrWeighInNotFound),
		errors.Is(err, service.ErrGoalNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrSaboteurNotFound),
		errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrLessonNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
		return

	// Ownership and role violations
	case errors.Is(err, service.ErrClientNotManaged),
		errors.Is(err, service.ErrClientNotRole),
		errors.Is(err, service.ErrSessionAccessDenied),
		errors.Is(err, service.ErrSessionNotAssigned):
		abortWithError(c, http.StatusForbidden, err.Error())
		return

	// State conflicts. ErrDuplicate covers unique-index violations that reach
	// the handler untranslated, such as losing the first-write race on an
	// AI config upsert; the request is safe to retry.
	case errors.Is(err, service.ErrClientAlreadyCoached),
		errors.Is(err, service.ErrSaboteurNameTaken),
		errors.Is(err, repository.ErrDuplicate):
		abortWithError(c, http.StatusConflict, err.Error())
		return

	// Rejected input
	case errors.Is(err, service.ErrInvalidWeighIn),
		errors.Is(err, service.ErrInvalidGoalProgress),
		errors.Is(err, service.ErrInvalidAIConfig),
		errors.Is(err, service.ErrUnsupportedMediaType):
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	switch apperr.KindOf(err) {
	case apperr.Validation:
		abortWithError(c, http.StatusBadRequest, apperr.MessageOf(err))
	case apperr.NotFound:
		abortWithError(c, http.StatusNotFound, apperr.MessageOf(err))
	case apperr.Conflict:
		abortWithError(c, http.StatusConflict, apperr.MessageOf(err))
	case apperr.Unavailable:
		abortWithError(c, http.StatusServiceUnavailable, apperr.MessageOf(err))
	default:
		log.Printf("ERROR: unhandled service error: %v", err)
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
