package api

import (
	"net/http"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// --- DTOs ---

type SaveNoteRequest struct {
	Text string `json:"text"` // Empty text removes the note
}

// --- Dashboard and history ---

// GetDashboard returns the client's home view: engagement, alerts, weight
// metrics, goals, and recent weigh-ins.
func (h *ClientHandler) GetDashboard(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}

	dash, err := h.clientService.GetDashboard(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *ClientHandler) GetMyWeighIns(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}

	weighIns, err := h.clientService.GetMyWeighIns(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if weighIns == nil {
		weighIns = []domain.WeighIn{}
	}
	c.JSON(http.StatusOK, weighIns)
}

// --- Sessions ---

// GetMySessions lists assigned sessions. Listing marks "sent" sessions as
// viewed.
func (h *ClientHandler) GetMySessions(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}

	sessions, err := h.clientService.GetMySessions(c.Request.Context(), clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

// StartSession moves a session to in_progress.
func (h *ClientHandler) StartSession(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.clientService.StartSession(c.Request.Context(), clientID, sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// CompleteSession moves a session to completed.
func (h *ClientHandler) CompleteSession(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}

	session, err := h.clientService.CompleteSession(c.Request.Context(), clientID, sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSessionMedia returns temporary download URLs for the session's video
// and PDF attachments.
func (h *ClientHandler) GetSessionMedia(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}

	urls, err := h.clientService.GetSessionMediaURLs(c.Request.Context(), clientID, sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, urls)
}

// --- Courses ---

func (h *ClientHandler) ListCourses(c *gin.Context) {
	courses, err := h.clientService.ListCourses(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	c.JSON(http.StatusOK, courses)
}

// GetCourse returns the course hierarchy together with the caller's
// progress record.
func (h *ClientHandler) GetCourse(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}

	course, err := h.clientService.GetCourseWithProgress(c.Request.Context(), clientID, courseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// ToggleLessonComplete flips a lesson's completion state and returns the new
// state.
func (h *ClientHandler) ToggleLessonComplete(c *gin.Context) {
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	lessonID := c.Param("lessonId")

	completed, err := h.clientService.ToggleLessonComplete(c.Request.Context(), clientID, courseID, lessonID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessonId": lessonID, "completed": completed})
}

// SaveLessonNote saves the client's note on a lesson.
func (h *ClientHandler) SaveLessonNote(c *gin.Context) {
	var req SaveNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	clientID, ok := callerID(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	lessonID := c.Param("lessonId")

	if err := h.clientService.SaveLessonNote(c.Request.Context(), clientID, courseID, lessonID, req.Text); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
