package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidaleve/coaching-app/internal/apperr"
	"vidaleve/coaching-app/internal/repository"
	"vidaleve/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

func TestRespondServiceErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing record", service.ErrSessionNotFound, http.StatusNotFound},
		{"ownership violation", service.ErrClientNotManaged, http.StatusForbidden},
		{"named conflict", service.ErrSaboteurNameTaken, http.StatusConflict},
		{"duplicate key", repository.ErrDuplicate, http.StatusConflict},
		{"wrapped duplicate key", fmt.Errorf("upsert: %w", repository.ErrDuplicate), http.StatusConflict},
		{"rejected input", service.ErrInvalidAIConfig, http.StatusBadRequest},
		{"validation kind", apperr.E(apperr.Validation, "bad field", nil), http.StatusBadRequest},
		{"conflict kind", apperr.E(apperr.Conflict, "already there", nil), http.StatusConflict},
		{"unknown error", fmt.Errorf("driver hiccup"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondServiceError(c, tc.err)

			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
