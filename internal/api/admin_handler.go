package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// --- DTOs ---

type AddClientRequest struct {
	ClientEmail string `json:"clientEmail" binding:"required,email"`
}

type SetHeightRequest struct {
	HeightCm float64 `json:"altura_cm" binding:"required,gt=0"`
}

type RecordWeighInRequest struct {
	WeightKg           float64   `json:"peso_kg" binding:"required,gt=0"`
	MeasuredAt         time.Time `json:"data_medicao" binding:"required"`
	AbdominalCircCm    *float64  `json:"circunferencia_abdominal_cm,omitempty"`
	BodyFatPct         *float64  `json:"gordura_corporal_pct,omitempty"`
	MuscleMassKg       *float64  `json:"massa_muscular_kg,omitempty"`
	BodyWaterPct       *float64  `json:"agua_corporal_pct,omitempty"`
	VisceralFat        *float64  `json:"gordura_visceral,omitempty"`
	MetabolicAge       *int      `json:"idade_metabolica,omitempty"`
	BoneMassKg         *float64  `json:"massa_ossea_kg,omitempty"`
	BasalMetabolicRate *int      `json:"taxa_metabolica_basal,omitempty"`
	BodyType           string    `json:"tipo_corpo,omitempty"`
	Source             string    `json:"origem_medicao,omitempty"`
}

type CreateGoalRequest struct {
	Name       string    `json:"name" binding:"required"`
	Type       string    `json:"type" binding:"required"`
	StartDate  time.Time `json:"start_date"`
	TargetDate time.Time `json:"target_date"`
	Notes      string    `json:"notes,omitempty"`
	Progress   int       `json:"progress" binding:"gte=0,lte=100"`
}

type SetGoalProgressRequest struct {
	Progress *int `json:"progress" binding:"required,gte=0,lte=100"`
}

// --- Roster ---

// AddClientByEmail godoc
// @Summary Add a client to the admin's roster by email
// @Description Associates an existing client user with the authenticated admin.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientRequest body AddClientRequest true "Client's email"
// @Success 200 {object} UserResponse "Client successfully added/associated"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Forbidden (user is not a client)"
// @Failure 404 {object} gin.H "Client not found"
// @Failure 409 {object} gin.H "Client already coached by another admin"
// @Router /admin/clients [post]
func (h *AdminHandler) AddClientByEmail(c *gin.Context) {
	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	client, err := h.adminService.AddClientByEmail(c.Request.Context(), adminID, req.ClientEmail)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients returns the admin's roster.
func (h *AdminHandler) GetManagedClients(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	clients, err := h.adminService.GetManagedClients(c.Request.Context(), adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if clients == nil {
		c.JSON(http.StatusOK, []UserResponse{}) // Return empty JSON array, not null
		return
	}
	c.JSON(http.StatusOK, MapUsersToResponse(clients))
}

// SetClientHeight records the client's height, used to derive IMC on
// subsequent weigh-ins.
func (h *AdminHandler) SetClientHeight(c *gin.Context) {
	var req SetHeightRequest
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

	if err := h.adminService.SetClientHeight(c.Request.Context(), adminID, clientID, req.HeightCm); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Weigh-ins ---

// RecordWeighIn godoc
// @Summary Record a weigh-in for a managed client
// @Description Inserts a measurement row. IMC is derived server-side when the client has a recorded height.
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param weighIn body RecordWeighInRequest true "Measurement"
// @Success 201 {object} domain.WeighIn
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Client not managed by this admin"
// @Router /admin/clients/{clientId}/weighins [post]
func (h *AdminHandler) RecordWeighIn(c *gin.Context) {
	var req RecordWeighInRequest
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

	weighIn, err := h.adminService.RecordWeighIn(c.Request.Context(), adminID, clientID, service.WeighInInput{
		WeightKg:           req.WeightKg,
		MeasuredAt:         req.MeasuredAt,
		AbdominalCircCm:    req.AbdominalCircCm,
		BodyFatPct:         req.BodyFatPct,
		MuscleMassKg:       req.MuscleMassKg,
		BodyWaterPct:       req.BodyWaterPct,
		VisceralFat:        req.VisceralFat,
		MetabolicAge:       req.MetabolicAge,
		BoneMassKg:         req.BoneMassKg,
		BasalMetabolicRate: req.BasalMetabolicRate,
		BodyType:           req.BodyType,
		Source:             req.Source,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, weighIn)
}

// GetClientWeighIns returns the client's weigh-in window, newest first.
func (h *AdminHandler) GetClientWeighIns(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}

	weighIns, err := h.adminService.GetClientWeighIns(c.Request.Context(), adminID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if weighIns == nil {
		weighIns = []domain.WeighIn{}
	}
	c.JSON(http.StatusOK, weighIns)
}

// DeleteWeighIn removes a mistaken measurement.
func (h *AdminHandler) DeleteWeighIn(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}
	weighInID, ok := pathID(c, "weighInId")
	if !ok {
		return
	}

	if err := h.adminService.DeleteWeighIn(c.Request.Context(), adminID, clientID, weighInID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Goals ---

func (h *AdminHandler) CreateGoal(c *gin.Context) {
	var req CreateGoalRequest
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

	goal, err := h.adminService.CreateGoal(c.Request.Context(), adminID, clientID, &domain.Goal{
		Name:       req.Name,
		Type:       req.Type,
		StartDate:  req.StartDate,
		TargetDate: req.TargetDate,
		Notes:      req.Notes,
		Progress:   req.Progress,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, goal)
}

func (h *AdminHandler) GetClientGoals(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}

	goals, err := h.adminService.GetClientGoals(c.Request.Context(), adminID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if goals == nil {
		goals = []domain.Goal{}
	}
	c.JSON(http.StatusOK, goals)
}

func (h *AdminHandler) SetGoalProgress(c *gin.Context) {
	var req SetGoalProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "goalId")
	if !ok {
		return
	}

	if err := h.adminService.SetGoalProgress(c.Request.Context(), adminID, goalID, *req.Progress); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) DeleteGoal(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	goalID, ok := pathID(c, "goalId")
	if !ok {
		return
	}

	if err := h.adminService.DeleteGoal(c.Request.Context(), adminID, goalID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Reporting ---

// GetClientOverview returns the per-client dashboard: engagement, alerts, and
// windowed weight metrics.
func (h *AdminHandler) GetClientOverview(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}

	overview, err := h.adminService.ClientOverview(c.Request.Context(), adminID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetEngagementOverview returns engagement for every client on the roster.
func (h *AdminHandler) GetEngagementOverview(c *gin.Context) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}

	results, err := h.adminService.EngagementOverview(c.Request.Context(), adminID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if results == nil {
		results = []service.ClientEngagement{}
	}
	c.JSON(http.StatusOK, results)
}

// ExportWeighInsCSV streams the client's weigh-in history as a CSV download.
func (h *AdminHandler) ExportWeighInsCSV(c *gin.Context) {
	h.serveExport(c, h.adminService.ExportClientWeighInsCSV)
}

// ExportReport streams the printable HTML report for a client.
func (h *AdminHandler) ExportReport(c *gin.Context) {
	h.serveExport(c, h.adminService.ExportClientReport)
}

func (h *AdminHandler) serveExport(c *gin.Context, render func(ctx context.Context, adminID, clientID primitive.ObjectID) (*service.ExportDocument, error)) {
	adminID, ok := callerID(c)
	if !ok {
		return
	}
	clientID, ok := pathID(c, "clientId")
	if !ok {
		return
	}

	doc, err := render(c.Request.Context(), adminID, clientID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, []byte(doc.Content))
}
