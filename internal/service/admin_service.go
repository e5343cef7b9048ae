package service

import (
	"context"
	"errors"
	"time"

	"vidaleve/coaching-app/internal/apperr"
	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/export"
	"vidaleve/coaching-app/internal/metrics"
	"vidaleve/coaching-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// --- Error Definitions ---
var (
	ErrClientNotFound       = errors.New("client user not found")
	ErrClientNotRole        = errors.New("user found but is not a client")
	ErrClientAlreadyCoached = errors.New("client is already coached by another admin")
	ErrClientNotManaged     = errors.New("client is not managed by this admin")
	ErrWeighInNotFound      = errors.New("weigh-in not found")
	ErrGoalNotFound         = errors.New("goal not found")
	ErrInvalidGoalProgress  = errors.New("goal progress must be between 0 and 100")
	ErrInvalidWeighIn       = errors.New("weigh-in requires a positive weight")
)

// How far back engagement looks, and how many weigh-ins a window holds. Both
// bound every derived metric: they are windowed approximations, not lifetime
// statistics.
const (
	engagementWindowDays = 30
	weighInWindowLimit   = 50
)

// WeighInInput carries an admin-entered measurement.
type WeighInInput struct {
	WeightKg           float64
	MeasuredAt         time.Time
	AbdominalCircCm    *float64
	BodyFatPct         *float64
	MuscleMassKg       *float64
	BodyWaterPct       *float64
	VisceralFat        *float64
	MetabolicAge       *int
	BoneMassKg         *float64
	BasalMetabolicRate *int
	BodyType           string
	Source             string
}

// ClientOverview is the admin's per-client dashboard payload.
type ClientOverview struct {
	Client      *domain.User         `json:"client"`
	Engagement  metrics.Engagement   `json:"engagement"`
	Alerts      []metrics.Alert      `json:"alerts"`
	Stats       *metrics.WeightStats `json:"stats,omitempty"` // nil when the client has no weigh-ins
	Trend       *float64             `json:"trend,omitempty"`
	ProgressPct float64              `json:"progressPct"`
	WeeklyDelta float64              `json:"weeklyDelta"`
}

// ClientEngagement pairs a roster entry with its engagement summary for the
// overview board.
type ClientEngagement struct {
	ClientID   primitive.ObjectID `json:"clientId"`
	Name       string             `json:"name"`
	Engagement metrics.Engagement `json:"engagement"`
}

// ExportDocument is a rendered download: content plus the filename to serve
// it under.
type ExportDocument struct {
	Filename    string
	ContentType string
	Content     string
}

// --- Service Interface ---
type AdminService interface {
	// Roster
	AddClientByEmail(ctx context.Context, adminID primitive.ObjectID, clientEmail string) (*domain.User, error)
	GetManagedClients(ctx context.Context, adminID primitive.ObjectID) ([]domain.User, error)
	SetClientHeight(ctx context.Context, adminID, clientID primitive.ObjectID, heightCm float64) error

	// Weigh-ins
	RecordWeighIn(ctx context.Context, adminID, clientID primitive.ObjectID, input WeighInInput) (*domain.WeighIn, error)
	GetClientWeighIns(ctx context.Context, adminID, clientID primitive.ObjectID) ([]domain.WeighIn, error)
	DeleteWeighIn(ctx context.Context, adminID, clientID, weighInID primitive.ObjectID) error

	// Goals
	CreateGoal(ctx context.Context, adminID, clientID primitive.ObjectID, goal *domain.Goal) (*domain.Goal, error)
	GetClientGoals(ctx context.Context, adminID, clientID primitive.ObjectID) ([]domain.Goal, error)
	SetGoalProgress(ctx context.Context, adminID, goalID primitive.ObjectID, progress int) error
	DeleteGoal(ctx context.Context, adminID, goalID primitive.ObjectID) error

	// Reporting
	ClientOverview(ctx context.Context, adminID, clientID primitive.ObjectID) (*ClientOverview, error)
	EngagementOverview(ctx context.Context, adminID primitive.ObjectID) ([]ClientEngagement, error)
	ExportClientWeighInsCSV(ctx context.Context, adminID, clientID primitive.ObjectID) (*ExportDocument, error)
	ExportClientReport(ctx context.Context, adminID, clientID primitive.ObjectID) (*ExportDocument, error)
}

// --- Service Implementation ---

type adminService struct {
	userRepo    repository.UserRepository
	weighInRepo repository.WeighInRepository
	dailyRepo   repository.DailyRepository
	goalRepo    repository.GoalRepository
	fanoutLimit int
	now         func() time.Time
}

// NewAdminService creates a new instance of adminService. fanoutLimit caps
// concurrent per-client fetches in EngagementOverview.
func NewAdminService(
	userRepo repository.UserRepository,
	weighInRepo repository.WeighInRepository,
	dailyRepo repository.DailyRepository,
	goalRepo repository.GoalRepository,
	fanoutLimit int,
) AdminService {
	if fanoutLimit <= 0 {
		fanoutLimit = 8
	}
	return &adminService{
		userRepo:    userRepo,
		weighInRepo: weighInRepo,
		dailyRepo:   dailyRepo,
		goalRepo:    goalRepo,
		fanoutLimit: fanoutLimit,
		now:         time.Now,
	}
}

// === Roster ===

// AddClientByEmail finds a client by email and assigns them to the admin.
func (s *adminService) AddClientByEmail(ctx context.Context, adminID primitive.ObjectID, clientEmail string) (*domain.User, error) {
	if adminID == primitive.NilObjectID || clientEmail == "" {
		return nil, apperr.E(apperr.Validation, "admin ID and client email are required", nil)
	}

	client, err := s.userRepo.GetByEmail(ctx, clientEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	if client.Role != domain.RoleClient {
		return nil, ErrClientNotRole
	}

	// A client already coached by this admin is fine; by another admin is not.
	if client.AdminID != nil && *client.AdminID != primitive.NilObjectID {
		if *client.AdminID == adminID {
			return client, nil
		}
		return nil, ErrClientAlreadyCoached
	}

	if err := s.userRepo.AddClientIDToAdmin(ctx, adminID, client.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetAdminForClient(ctx, client.ID, adminID); err != nil {
		return nil, err
	}

	client.AdminID = &adminID
	return client, nil
}

// GetManagedClients retrieves the list of clients coached by the admin.
func (s *adminService) GetManagedClients(ctx context.Context, adminID primitive.ObjectID) ([]domain.User, error) {
	if adminID == primitive.NilObjectID {
		return nil, apperr.E(apperr.Validation, "admin ID is required", nil)
	}
	clients, err := s.userRepo.GetClientsByAdminID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	// Clear password hashes before returning
	for i := range clients {
		clients[i].PasswordHash = ""
	}
	return clients, nil
}

// SetClientHeight records the client's height for IMC derivation.
func (s *adminService) SetClientHeight(ctx context.Context, adminID, clientID primitive.ObjectID, heightCm float64) error {
	if heightCm <= 0 || heightCm > 260 {
		return apperr.E(apperr.Validation, "height must be a plausible value in cm", nil)
	}
	if _, err := s.managedClient(ctx, adminID, clientID); err != nil {
		return err
	}
	return s.userRepo.UpdateHeight(ctx, clientID, heightCm)
}

// managedClient fetches the client and verifies the admin coaches them.
func (s *adminService) managedClient(ctx context.Context, adminID, clientID primitive.ObjectID) (*domain.User, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.AdminID == nil || *client.AdminID != adminID {
		return nil, ErrClientNotManaged
	}
	return client, nil
}

// === Weigh-ins ===

// RecordWeighIn inserts a measurement for a managed client. When the client
// has a recorded height, IMC is derived server-side and stored with the row.
func (s *adminService) RecordWeighIn(ctx context.Context, adminID, clientID primitive.ObjectID, input WeighInInput) (*domain.WeighIn, error) {
	if input.WeightKg <= 0 {
		return nil, ErrInvalidWeighIn
	}
	client, err := s.managedClient(ctx, adminID, clientID)
	if err != nil {
		return nil, err
	}

	weighIn := &domain.WeighIn{
		UserID:             clientID,
		WeightKg:           input.WeightKg,
		MeasuredAt:         input.MeasuredAt,
		AbdominalCircCm:    input.AbdominalCircCm,
		BodyFatPct:         input.BodyFatPct,
		MuscleMassKg:       input.MuscleMassKg,
		BodyWaterPct:       input.BodyWaterPct,
		VisceralFat:        input.VisceralFat,
		MetabolicAge:       input.MetabolicAge,
		BoneMassKg:         input.BoneMassKg,
		BasalMetabolicRate: input.BasalMetabolicRate,
		BodyType:           input.BodyType,
		Source:             input.Source,
	}
	if weighIn.Source == "" {
		weighIn.Source = "manual"
	}
	if client.HeightCm > 0 {
		imc := metrics.ComputeIMC(input.WeightKg, client.HeightCm)
		weighIn.IMC = &imc
	}

	id, err := s.weighInRepo.Create(ctx, weighIn)
	if err != nil {
		return nil, err
	}
	weighIn.ID = id
	return weighIn, nil
}

// GetClientWeighIns retrieves a managed client's weigh-in window, newest first.
func (s *adminService) GetClientWeighIns(ctx context.Context, adminID, clientID primitive.ObjectID) ([]domain.WeighIn, error) {
	if _, err := s.managedClient(ctx, adminID, clientID); err != nil {
		return nil, err
	}
	return s.weighInRepo.GetByUserID(ctx, clientID, weighInWindowLimit)
}

// DeleteWeighIn removes a mistaken entry. Weigh-ins are never edited in place.
func (s *adminService) DeleteWeighIn(ctx context.Context, adminID, clientID, weighInID primitive.ObjectID) error {
	if _, err := s.managedClient(ctx, adminID, clientID); err != nil {
		return err
	}
	err := s.weighInRepo.Delete(ctx, weighInID, clientID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrWeighInNotFound
	}
	return err
}

// === Goals ===

// CreateGoal creates a coaching goal for a managed client.
func (s *adminService) CreateGoal(ctx context.Context, adminID, clientID primitive.ObjectID, goal *domain.Goal) (*domain.Goal, error) {
	if goal.Name == "" {
		return nil, apperr.E(apperr.Validation, "goal name is required", nil)
	}
	if goal.Progress < 0 || goal.Progress > 100 {
		return nil, ErrInvalidGoalProgress
	}
	if _, err := s.managedClient(ctx, adminID, clientID); err != nil {
		return nil, err
	}

	goal.UserID = clientID
	id, err := s.goalRepo.Create(ctx, goal)
	if err != nil {
		return nil, err
	}
	goal.ID = id
	return goal, nil
}

// GetClientGoals retrieves a managed client's goals.
func (s *adminService) GetClientGoals(ctx context.Context, adminID, clientID primitive.ObjectID) ([]domain.Goal, error) {
	if _, err := s.managedClient(ctx, adminID, clientID); err != nil {
		return nil, err
	}
	return s.goalRepo.GetByUserID(ctx, clientID)
}

// SetGoalProgress sets the manual progress value after verifying the goal
// belongs to a client this admin coaches.
func (s *adminService) SetGoalProgress(ctx context.Context, adminID, goalID primitive.ObjectID, progress int) error {
	if progress < 0 || progress > 100 {
		return ErrInvalidGoalProgress
	}
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGoalNotFound
		}
		return err
	}
	if _, err := s.managedClient(ctx, adminID, goal.UserID); err != nil {
		return err
	}
	return s.goalRepo.UpdateProgress(ctx, goalID, progress)
}

// DeleteGoal removes a goal for a client this admin coaches.
func (s *adminService) DeleteGoal(ctx context.Context, adminID, goalID primitive.ObjectID) error {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrGoalNotFound
		}
		return err
	}
	if _, err := s.managedClient(ctx, adminID, goal.UserID); err != nil {
		return err
	}
	return s.goalRepo.Delete(ctx, goalID)
}

// === Reporting ===

// ClientOverview builds the per-client dashboard: engagement, alerts, and
// windowed weight metrics.
func (s *adminService) ClientOverview(ctx context.Context, adminID, clientID primitive.ObjectID) (*ClientOverview, error) {
	client, err := s.managedClient(ctx, adminID, clientID)
	if err != nil {
		return nil, err
	}
	client.PasswordHash = ""

	now := s.now()
	since := now.AddDate(0, 0, -engagementWindowDays)

	missions, err := s.dailyRepo.GetMissionsByUserID(ctx, clientID, since)
	if err != nil {
		return nil, err
	}
	scores, err := s.dailyRepo.GetScoresByUserID(ctx, clientID, since)
	if err != nil {
		return nil, err
	}
	history, err := s.weighInRepo.GetByUserID(ctx, clientID, weighInWindowLimit)
	if err != nil {
		return nil, err
	}

	overview := &ClientOverview{
		Client:      client,
		Engagement:  metrics.ComputeEngagement(missions, scores, now),
		ProgressPct: metrics.WeightProgressPct(history),
		WeeklyDelta: metrics.AverageWeeklyDelta(history),
		Trend:       metrics.WeightTrend(history),
	}
	overview.Alerts = metrics.GenerateAlerts(overview.Engagement, history)
	if stats, ok := metrics.ComputeWeightStats(history); ok {
		overview.Stats = &stats
	}
	return overview, nil
}

// EngagementOverview computes engagement for every client on the roster. The
// per-client fetches fan out concurrently, capped by fanoutLimit so a large
// roster cannot flood the store.
func (s *adminService) EngagementOverview(ctx context.Context, adminID primitive.ObjectID) ([]ClientEngagement, error) {
	clients, err := s.userRepo.GetClientsByAdminID(ctx, adminID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	since := now.AddDate(0, 0, -engagementWindowDays)
	results := make([]ClientEngagement, len(clients))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanoutLimit)
	for i := range clients {
		g.Go(func() error {
			client := &clients[i]
			missions, err := s.dailyRepo.GetMissionsByUserID(gctx, client.ID, since)
			if err != nil {
				return err
			}
			scores, err := s.dailyRepo.GetScoresByUserID(gctx, client.ID, since)
			if err != nil {
				return err
			}
			results[i] = ClientEngagement{
				ClientID:   client.ID,
				Name:       client.Name,
				Engagement: metrics.ComputeEngagement(missions, scores, now),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ExportClientWeighInsCSV renders the client's weigh-in window as a CSV download.
func (s *adminService) ExportClientWeighInsCSV(ctx context.Context, adminID, clientID primitive.ObjectID) (*ExportDocument, error) {
	client, history, err := s.clientWithHistory(ctx, adminID, clientID)
	if err != nil {
		return nil, err
	}
	content, err := export.WeighInsCSV(history)
	if err != nil {
		return nil, err
	}
	return &ExportDocument{
		Filename:    export.CSVFilename(client.Name, s.now()),
		ContentType: "text/csv; charset=utf-8",
		Content:     content,
	}, nil
}

// ExportClientReport renders the printable HTML report for a client.
func (s *adminService) ExportClientReport(ctx context.Context, adminID, clientID primitive.ObjectID) (*ExportDocument, error) {
	client, history, err := s.clientWithHistory(ctx, adminID, clientID)
	if err != nil {
		return nil, err
	}
	content, err := export.WeighInsReport(client.Name, history, s.now())
	if err != nil {
		return nil, err
	}
	return &ExportDocument{
		Filename:    export.ReportFilename(client.Name, s.now()),
		ContentType: "text/html; charset=utf-8",
		Content:     content,
	}, nil
}

func (s *adminService) clientWithHistory(ctx context.Context, adminID, clientID primitive.ObjectID) (*domain.User, []domain.WeighIn, error) {
	client, err := s.managedClient(ctx, adminID, clientID)
	if err != nil {
		return nil, nil, err
	}
	history, err := s.weighInRepo.GetByUserID(ctx, clientID, weighInWindowLimit)
	if err != nil {
		return nil, nil, err
	}
	return client, history, nil
}
