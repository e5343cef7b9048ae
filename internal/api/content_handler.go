package api

import (
	"net/http"
	"time"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ContentHandler covers the admin-authored content surfaces: session
// assignments, the saboteur taxonomy, AI configuration, courses, and the
// media upload flow.
type ContentHandler struct {
	contentService service.ContentService
}

func NewContentHandler(contentService service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// --- DTOs ---

type CreateSessionRequest struct {
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
	Tools        []string   `json:"tools,omitempty"`
	Category     string     `json:"category,omitempty"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
}

type SaboteurRequest struct {
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description,omitempty"`
	Triggers         []string `json:"triggers,omitempty"`
	Patterns         []string `json:"patterns,omitempty"`
	CopingStrategies []string `json:"coping_strategies,omitempty"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type AIConfigRequest struct {
	Functionality string  `json:"functionality" binding:"required"`
	Provider      string  `json:"provider" binding:"required"`
	Model         string  `json:"model" binding:"required"`
	MaxTokens     int     `json:"max_tokens" binding:"gte=0"`
	Temperature   float64 `json:"temperature" binding:"gte=0,lte=2"`
	IsEnabled     bool    `json:"is_enabled"`
}

type CreateCourseRequest struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description,omitempty"`
	Modules     []domain.CourseModule `json:"modules" binding:"required"`
}

type RequestUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	FileSize    int64  `json:"fileSize" binding:"required,gt=0"`
	ContentType string `json:"contentType" binding:"required"`
}

// --- Sessions ---

// CreateSession godoc
// @Summary Create a session assignment for a client
// @Description Creates a coaching session assigned to one managed client. The lifecycle starts at "sent".
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param session body CreateSessionRequest true "Session details"
// @Success 201 {object} domain.Session
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Client not found"
// @Router /admin/clients/{clientId}/sessions [post]
func (h *ContentHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}

	session, err := h.contentService.CreateSession(c.Request.Context(), adminID, clientID, service.SessionInput{
		Title:       req.Title,
		Description: req.Description,
		Content: domain.SessionContent{
			Instructions: req.Instructions,
			Tools:        req.Tools,
			Category:     req.Category,
		},
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GetCreatedSessions lists sessions authored by the admin.
func (h *ContentHandler) GetCreatedSessions(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	sessions, err := h.contentService.GetCreatedSessions(c.Request.Context(), adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if sessions == nil {
		sessions = []domain.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

// DeleteSession removes a session and its attached media.
func (h *ContentHandler) DeleteSession(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}

	if err := h.contentService.DeleteSession(c.Request.Context(), adminID, sessionID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AssignToAllClients clones a session for every client on the admin's roster.
func (h *ContentHandler) AssignToAllClients(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}

	created, err := h.contentService.AssignSessionToAllClients(c.Request.Context(), adminID, sessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assigned": created})
}

// --- Saboteurs ---

func (h *ContentHandler) CreateSaboteur(c *gin.Context) {
	var req SaboteurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	saboteur, err := h.contentService.CreateSaboteur(c.Request.Context(), adminID, &domain.Saboteur{
		Name:             req.Name,
		Description:      req.Description,
		Triggers:         req.Triggers,
		Patterns:         req.Patterns,
		CopingStrategies: req.CopingStrategies,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saboteur)
}

// ListSaboteurs lists the taxonomy. ?active=true narrows to active entries.
func (h *ContentHandler) ListSaboteurs(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	saboteurs, err := h.contentService.ListSaboteurs(c.Request.Context(), activeOnly)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if saboteurs == nil {
		saboteurs = []domain.Saboteur{}
	}
	c.JSON(http.StatusOK, saboteurs)
}

func (h *ContentHandler) UpdateSaboteur(c *gin.Context) {
	var req SaboteurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	saboteurID, ok := pathID(c, "saboteurId")
	if !ok {
		return
	}

	err := h.contentService.UpdateSaboteur(c.Request.Context(), adminID, &domain.Saboteur{
		ID:               saboteurID,
		Name:             req.Name,
		Description:      req.Description,
		Triggers:         req.Triggers,
		Patterns:         req.Patterns,
		CopingStrategies: req.CopingStrategies,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContentHandler) SetSaboteurActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	saboteurID, ok := pathID(c, "saboteurId")
	if !ok {
		return
	}

	if err := h.contentService.SetSaboteurActive(c.Request.Context(), adminID, saboteurID, *req.IsActive); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContentHandler) DeleteSaboteur(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	saboteurID, ok := pathID(c, "saboteurId")
	if !ok {
		return
	}

	if err := h.contentService.DeleteSaboteur(c.Request.Context(), adminID, saboteurID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- AI Configuration ---

// UpsertAIConfig writes the configuration row for one functionality,
// creating it on first write.
func (h *ContentHandler) UpsertAIConfig(c *gin.Context) {
	var req AIConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	err := h.contentService.UpsertAIConfig(c.Request.Context(), &domain.AIConfiguration{
		Functionality: req.Functionality,
		Provider:      req.Provider,
		Model:         req.Model,
		MaxTokens:     req.MaxTokens,
		Temperature:   req.Temperature,
		IsEnabled:     req.IsEnabled,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ContentHandler) GetAIConfig(c *gin.Context) {
	cfg, err := h.contentService.GetAIConfig(c.Request.Context(), c.Param("functionality"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *ContentHandler) ListAIConfigs(c *gin.Context) {
	configs, err := h.contentService.ListAIConfigs(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if configs == nil {
		configs = []domain.AIConfiguration{}
	}
	c.JSON(http.StatusOK, configs)
}

// --- Courses ---

func (h *ContentHandler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	course, err := h.contentService.CreateCourse(c.Request.Context(), adminID, &domain.Course{
		Title:       req.Title,
		Description: req.Description,
		Modules:     req.Modules,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *ContentHandler) ListCourses(c *gin.Context) {
	courses, err := h.contentService.ListCourses(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if courses == nil {
		courses = []domain.Course{}
	}
	c.JSON(http.StatusOK, courses)
}

func (h *ContentHandler) GetCourse(c *gin.Context) {
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}

	course, err := h.contentService.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *ContentHandler) DeleteCourse(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}

	if err := h.contentService.DeleteCourse(c.Request.Context(), adminID, courseID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Media Upload Flow ---

// RequestUploadURL godoc
// @Summary Request a presigned upload URL for session media
// @Description Generates a temporary PUT URL so the browser uploads directly to object storage.
// @Tags Content
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param sessionId path string true "Session ID"
// @Param request body RequestUploadURLRequest true "Content type of the file"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} gin.H "Unsupported content type"
// @Failure 403 {object} gin.H "Session belongs to another admin"
// @Router /admin/sessions/{sessionId}/media/upload-url [post]
func (h *ContentHandler) RequestUploadURL(c *gin.Context) {
	var req RequestUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}

	resp, err := h.contentService.RequestSessionMediaUploadURL(c.Request.Context(), adminID, sessionID, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmUpload records a completed upload and links the object to the session.
func (h *ContentHandler) ConfirmUpload(c *gin.Context) {
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "sessionId")
	if !ok {
		return
	}

	err := h.contentService.ConfirmSessionMediaUpload(c.Request.Context(), adminID, sessionID, req.ObjectKey, req.FileName, req.FileSize, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
