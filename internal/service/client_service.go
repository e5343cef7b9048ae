package service

import (
	"context"
	"errors"
	"log"
	"time"

	"vidaleve/coaching-app/internal/apperr"
	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/metrics"
	"vidaleve/coaching-app/internal/progress"
	"vidaleve/coaching-app/internal/repository"
	"vidaleve/coaching-app/internal/storage"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSessionNotAssigned = errors.New("session is not assigned to this client")
	ErrLessonNotFound     = errors.New("lesson not found in this course")
)

// Dashboard is the client's own home view payload.
type Dashboard struct {
	Engagement  metrics.Engagement   `json:"engagement"`
	Alerts      []metrics.Alert      `json:"alerts"`
	Stats       *metrics.WeightStats `json:"stats,omitempty"`
	Trend       *float64             `json:"trend,omitempty"`
	ProgressPct float64              `json:"progressPct"`
	WeeklyDelta float64              `json:"weeklyDelta"`
	IMC         *float64             `json:"imc,omitempty"`
	IMCBand     metrics.IMCBand      `json:"imcBand,omitempty"`
	Goals       []domain.Goal        `json:"goals"`
	WeighIns    []domain.WeighIn     `json:"weighIns"`
}

// SessionMediaURLs carries the temporary download links for a session's
// attachments.
type SessionMediaURLs struct {
	VideoURL string `json:"videoUrl,omitempty"`
	PDFURL   string `json:"pdfUrl,omitempty"`
}

// CourseWithProgress pairs a course with the client's progress through it.
type CourseWithProgress struct {
	Course        *domain.Course   `json:"course"`
	Progress      *progress.Record `json:"progress"`
	CompletionPct float64          `json:"completionPct"`
}

// --- Service Interface ---
type ClientService interface {
	// Dashboard and history
	GetDashboard(ctx context.Context, clientID primitive.ObjectID) (*Dashboard, error)
	GetMyWeighIns(ctx context.Context, clientID primitive.ObjectID) ([]domain.WeighIn, error)

	// Sessions
	GetMySessions(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error)
	StartSession(ctx context.Context, clientID, sessionID primitive.ObjectID) (*domain.Session, error)
	CompleteSession(ctx context.Context, clientID, sessionID primitive.ObjectID) (*domain.Session, error)
	GetSessionMediaURLs(ctx context.Context, clientID, sessionID primitive.ObjectID) (*SessionMediaURLs, error)

	// Courses
	ListCourses(ctx context.Context) ([]domain.Course, error)
	GetCourseWithProgress(ctx context.Context, clientID, courseID primitive.ObjectID) (*CourseWithProgress, error)
	ToggleLessonComplete(ctx context.Context, clientID, courseID primitive.ObjectID, lessonID string) (bool, error)
	SaveLessonNote(ctx context.Context, clientID, courseID primitive.ObjectID, lessonID, text string) error
}

// --- Service Implementation ---

type clientService struct {
	userRepo     repository.UserRepository
	weighInRepo  repository.WeighInRepository
	dailyRepo    repository.DailyRepository
	goalRepo     repository.GoalRepository
	sessionRepo  repository.SessionRepository
	courseRepo   repository.CourseRepository
	mediaStorage storage.MediaStorage
	progress     progress.Store
	now          func() time.Time
}

// NewClientService creates a new instance of clientService.
func NewClientService(
	userRepo repository.UserRepository,
	weighInRepo repository.WeighInRepository,
	dailyRepo repository.DailyRepository,
	goalRepo repository.GoalRepository,
	sessionRepo repository.SessionRepository,
	courseRepo repository.CourseRepository,
	mediaStorage storage.MediaStorage,
	progressStore progress.Store,
) ClientService {
	return &clientService{
		userRepo:     userRepo,
		weighInRepo:  weighInRepo,
		dailyRepo:    dailyRepo,
		goalRepo:     goalRepo,
		sessionRepo:  sessionRepo,
		courseRepo:   courseRepo,
		mediaStorage: mediaStorage,
		progress:     progressStore,
		now:          time.Now,
	}
}

// === Dashboard ===

// GetDashboard builds the client's home view: engagement, alerts, windowed
// weight metrics, goals, and recent weigh-ins.
func (s *clientService) GetDashboard(ctx context.Context, clientID primitive.ObjectID) (*Dashboard, error) {
	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

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
	goals, err := s.goalRepo.GetByUserID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{
		Engagement:  metrics.ComputeEngagement(missions, scores, now),
		ProgressPct: metrics.WeightProgressPct(history),
		WeeklyDelta: metrics.AverageWeeklyDelta(history),
		Trend:       metrics.WeightTrend(history),
		Goals:       goals,
		WeighIns:    history,
	}
	dash.Alerts = metrics.GenerateAlerts(dash.Engagement, history)
	if stats, ok := metrics.ComputeWeightStats(history); ok {
		dash.Stats = &stats
	}
	// IMC off the newest weigh-in, subject to a recorded height.
	if len(history) > 0 && client.HeightCm > 0 {
		imc := metrics.ComputeIMC(history[0].WeightKg, client.HeightCm)
		dash.IMC = &imc
		dash.IMCBand = metrics.IMCCategory(imc)
	}
	return dash, nil
}

// GetMyWeighIns retrieves the client's own weigh-in window, newest first.
func (s *clientService) GetMyWeighIns(ctx context.Context, clientID primitive.ObjectID) ([]domain.WeighIn, error) {
	return s.weighInRepo.GetByUserID(ctx, clientID, weighInWindowLimit)
}

// === Sessions ===

// GetMySessions retrieves the client's assigned sessions. Listing counts as
// viewing: any session still in "sent" advances to "viewed". A failed
// advance is logged and the listing still succeeds.
func (s *clientService) GetMySessions(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error) {
	sessions, err := s.sessionRepo.GetByAssignee(ctx, clientID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range sessions {
		if sessions[i].Status != domain.SessionSent {
			continue
		}
		if sessions[i].Advance(domain.SessionViewed, now) {
			if err := s.sessionRepo.Update(ctx, &sessions[i]); err != nil {
				log.Printf("WARN: failed to mark session %s viewed: %v", sessions[i].ID.Hex(), err)
			}
		}
	}
	return sessions, nil
}

// StartSession moves one of the client's sessions to in_progress.
func (s *clientService) StartSession(ctx context.Context, clientID, sessionID primitive.ObjectID) (*domain.Session, error) {
	return s.advanceSession(ctx, clientID, sessionID, domain.SessionInProgress)
}

// CompleteSession moves one of the client's sessions to completed.
func (s *clientService) CompleteSession(ctx context.Context, clientID, sessionID primitive.ObjectID) (*domain.Session, error) {
	return s.advanceSession(ctx, clientID, sessionID, domain.SessionCompleted)
}

func (s *clientService) advanceSession(ctx context.Context, clientID, sessionID primitive.ObjectID, next domain.SessionStatus) (*domain.Session, error) {
	session, err := s.assignedSession(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Advance(next, s.now()) {
		return nil, apperr.E(apperr.Conflict, "session cannot move from "+string(session.Status)+" to "+string(next), nil)
	}
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// GetSessionMediaURLs generates temporary download links for the session's
// attached media.
func (s *clientService) GetSessionMediaURLs(ctx context.Context, clientID, sessionID primitive.ObjectID) (*SessionMediaURLs, error) {
	session, err := s.assignedSession(ctx, clientID, sessionID)
	if err != nil {
		return nil, err
	}

	urls := &SessionMediaURLs{}
	if session.VideoKey != "" {
		url, err := s.mediaStorage.GeneratePresignedDownloadURL(ctx, session.VideoKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, ErrDownloadURLError
		}
		urls.VideoURL = url
	}
	if session.PDFKey != "" {
		url, err := s.mediaStorage.GeneratePresignedDownloadURL(ctx, session.PDFKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, ErrDownloadURLError
		}
		urls.PDFURL = url
	}
	return urls, nil
}

// assignedSession fetches the session and verifies it belongs to the client.
func (s *clientService) assignedSession(ctx context.Context, clientID, sessionID primitive.ObjectID) (*domain.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.AssignedTo != clientID {
		return nil, ErrSessionNotAssigned
	}
	return session, nil
}

// === Courses ===

// ListCourses returns the course catalog.
func (s *clientService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.courseRepo.GetAll(ctx)
}

// GetCourseWithProgress returns the course hierarchy together with the
// client's progress record.
func (s *clientService) GetCourseWithProgress(ctx context.Context, clientID, courseID primitive.ObjectID) (*CourseWithProgress, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	record := s.progress.Load(clientID, courseID)
	return &CourseWithProgress{
		Course:        course,
		Progress:      record,
		CompletionPct: record.CompletionPct(course),
	}, nil
}

// ToggleLessonComplete flips the completion state of a lesson the course
// actually contains. Returns the new state.
func (s *clientService) ToggleLessonComplete(ctx context.Context, clientID, courseID primitive.ObjectID, lessonID string) (bool, error) {
	if err := s.lessonExists(ctx, courseID, lessonID); err != nil {
		return false, err
	}
	return s.progress.ToggleComplete(clientID, courseID, lessonID)
}

// SaveLessonNote saves the client's note on a lesson. Empty text removes the
// note.
func (s *clientService) SaveLessonNote(ctx context.Context, clientID, courseID primitive.ObjectID, lessonID, text string) error {
	if err := s.lessonExists(ctx, courseID, lessonID); err != nil {
		return err
	}
	return s.progress.SaveNote(clientID, courseID, lessonID, text)
}

func (s *clientService) lessonExists(ctx context.Context, courseID primitive.ObjectID, lessonID string) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	for m := range course.Modules {
		for l := range course.Modules[m].Lessons {
			if course.Modules[m].Lessons[l].ID == lessonID {
				return nil
			}
		}
	}
	return ErrLessonNotFound
}
