package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"vidaleve/coaching-app/internal/apperr"
	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/repository"
	"vidaleve/coaching-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

// --- Error Definitions ---
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAccessDenied  = errors.New("access denied to modify this session")
	ErrSaboteurNotFound     = errors.New("saboteur not found")
	ErrSaboteurNameTaken    = errors.New("a saboteur with this name already exists")
	ErrCourseNotFound       = errors.New("course not found")
	ErrUploadURLError       = errors.New("failed to generate upload URL")
	ErrDownloadURLError     = errors.New("failed to generate download URL")
	ErrUnsupportedMediaType = errors.New("unsupported media content type")
	ErrInvalidAIConfig      = errors.New("ai configuration has invalid limits")
)

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // The key the admin reports back on confirm
}

// SessionInput carries the admin form for creating a session assignment.
type SessionInput struct {
	Title       string
	Description string
	Content     domain.SessionContent
	ScheduledAt *time.Time
}

// --- Service Interface ---
type ContentService interface {
	// Session assignments
	CreateSession(ctx context.Context, adminID, clientID primitive.ObjectID, input SessionInput) (*domain.Session, error)
	GetCreatedSessions(ctx context.Context, adminID primitive.ObjectID) ([]domain.Session, error)
	DeleteSession(ctx context.Context, adminID, sessionID primitive.ObjectID) error
	AssignSessionToAllClients(ctx context.Context, adminID, sessionID primitive.ObjectID) (int, error)

	// Saboteur taxonomy
	CreateSaboteur(ctx context.Context, adminID primitive.ObjectID, saboteur *domain.Saboteur) (*domain.Saboteur, error)
	ListSaboteurs(ctx context.Context, activeOnly bool) ([]domain.Saboteur, error)
	UpdateSaboteur(ctx context.Context, adminID primitive.ObjectID, saboteur *domain.Saboteur) error
	SetSaboteurActive(ctx context.Context, adminID, saboteurID primitive.ObjectID, active bool) error
	DeleteSaboteur(ctx context.Context, adminID, saboteurID primitive.ObjectID) error

	// AI configuration
	UpsertAIConfig(ctx context.Context, cfg *domain.AIConfiguration) error
	GetAIConfig(ctx context.Context, functionality string) (*domain.AIConfiguration, error)
	ListAIConfigs(ctx context.Context) ([]domain.AIConfiguration, error)

	// Courses
	CreateCourse(ctx context.Context, adminID primitive.ObjectID, course *domain.Course) (*domain.Course, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
	GetCourse(ctx context.Context, courseID primitive.ObjectID) (*domain.Course, error)
	DeleteCourse(ctx context.Context, adminID, courseID primitive.ObjectID) error

	// Media upload flow
	RequestSessionMediaUploadURL(ctx context.Context, adminID, sessionID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmSessionMediaUpload(ctx context.Context, adminID, sessionID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) error
}

// --- Service Implementation ---

type contentService struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	saboteurRepo repository.SaboteurRepository
	aiConfigRepo repository.AIConfigRepository
	courseRepo   repository.CourseRepository
	mediaRepo    repository.MediaRepository
	mediaStorage storage.MediaStorage
	fanoutLimit  int
}

// NewContentService creates a new instance of contentService.
func NewContentService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	saboteurRepo repository.SaboteurRepository,
	aiConfigRepo repository.AIConfigRepository,
	courseRepo repository.CourseRepository,
	mediaRepo repository.MediaRepository,
	mediaStorage storage.MediaStorage,
	fanoutLimit int,
) ContentService {
	if fanoutLimit <= 0 {
		fanoutLimit = 8
	}
	return &contentService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		saboteurRepo: saboteurRepo,
		aiConfigRepo: aiConfigRepo,
		courseRepo:   courseRepo,
		mediaRepo:    mediaRepo,
		mediaStorage: mediaStorage,
		fanoutLimit:  fanoutLimit,
	}
}

// === Session Assignments ===

// CreateSession creates a session assignment for a single client. The
// lifecycle starts at "sent"; there is no draft state.
func (s *contentService) CreateSession(ctx context.Context, adminID, clientID primitive.ObjectID, input SessionInput) (*domain.Session, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.E(apperr.Validation, "session title is required", nil)
	}

	client, err := s.userRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if !client.IsClient() {
		return nil, ErrClientNotRole
	}

	session := &domain.Session{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Content:     input.Content,
		AssignedTo:  clientID,
		CreatedBy:   adminID,
		IsActive:    true,
		ScheduledAt: input.ScheduledAt,
		// Status, SentAt set by repository on create
	}

	id, err := s.sessionRepo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	session.ID = id
	return session, nil
}

// GetCreatedSessions retrieves sessions created by the admin, newest first.
func (s *contentService) GetCreatedSessions(ctx context.Context, adminID primitive.ObjectID) ([]domain.Session, error) {
	return s.sessionRepo.GetByCreator(ctx, adminID)
}

// DeleteSession removes a session the admin created, along with its media.
func (s *contentService) DeleteSession(ctx context.Context, adminID, sessionID primitive.ObjectID) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.CreatedBy != adminID {
		return ErrSessionAccessDenied
	}

	// Best effort on media: a leaked object is preferable to a session that
	// cannot be deleted.
	uploads, err := s.mediaRepo.GetBySessionID(ctx, sessionID)
	if err == nil {
		for i := range uploads {
			_ = s.mediaStorage.DeleteObject(ctx, uploads[i].ObjectKey)
			_ = s.mediaRepo.Delete(ctx, uploads[i].ID)
		}
	}

	return s.sessionRepo.Delete(ctx, sessionID)
}

// AssignSessionToAllClients clones the session for every client on the
// admin's roster (the bulk "send to everyone" action). Creates fan out
// concurrently, capped by fanoutLimit. Returns how many assignments were
// created.
func (s *contentService) AssignSessionToAllClients(ctx context.Context, adminID, sessionID primitive.ObjectID) (int, error) {
	template, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	if template.CreatedBy != adminID {
		return 0, ErrSessionAccessDenied
	}

	clients, err := s.userRepo.GetClientsByAdminID(ctx, adminID)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanoutLimit)
	created := 0
	var countMu sync.Mutex
	for i := range clients {
		g.Go(func() error {
			client := &clients[i]
			if client.ID == template.AssignedTo {
				return nil // Already has the original
			}
			clone := &domain.Session{
				Title:       template.Title,
				Description: template.Description,
				Content:     template.Content,
				VideoKey:    template.VideoKey,
				PDFKey:      template.PDFKey,
				AssignedTo:  client.ID,
				CreatedBy:   adminID,
				IsActive:    template.IsActive,
				ScheduledAt: template.ScheduledAt,
			}
			if _, err := s.sessionRepo.Create(gctx, clone); err != nil {
				return fmt.Errorf("assign session to %s: %w", client.ID.Hex(), err)
			}
			countMu.Lock()
			created++
			countMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return created, err
	}
	return created, nil
}

// === Saboteur Taxonomy ===

// CreateSaboteur adds a taxonomy entry. New entries start active.
func (s *contentService) CreateSaboteur(ctx context.Context, adminID primitive.ObjectID, saboteur *domain.Saboteur) (*domain.Saboteur, error) {
	if strings.TrimSpace(saboteur.Name) == "" {
		return nil, apperr.E(apperr.Validation, "saboteur name is required", nil)
	}
	saboteur.AdminID = adminID
	saboteur.IsActive = true

	id, err := s.saboteurRepo.Create(ctx, saboteur)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSaboteurNameTaken
		}
		return nil, err
	}
	saboteur.ID = id
	return saboteur, nil
}

// ListSaboteurs returns the taxonomy, optionally only active entries.
func (s *contentService) ListSaboteurs(ctx context.Context, activeOnly bool) ([]domain.Saboteur, error) {
	return s.saboteurRepo.GetAll(ctx, activeOnly)
}

// UpdateSaboteur replaces the editable fields of an entry the admin authored.
func (s *contentService) UpdateSaboteur(ctx context.Context, adminID primitive.ObjectID, saboteur *domain.Saboteur) error {
	existing, err := s.saboteurRepo.GetByID(ctx, saboteur.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSaboteurNotFound
		}
		return err
	}
	if existing.AdminID != adminID {
		return apperr.E(apperr.Conflict, "saboteur belongs to another admin", nil)
	}
	if err := s.saboteurRepo.Update(ctx, saboteur); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrSaboteurNameTaken
		}
		return err
	}
	return nil
}

// SetSaboteurActive flips the is_active toggle.
func (s *contentService) SetSaboteurActive(ctx context.Context, adminID, saboteurID primitive.ObjectID, active bool) error {
	if _, err := s.saboteurRepo.GetByID(ctx, saboteurID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSaboteurNotFound
		}
		return err
	}
	return s.saboteurRepo.SetActive(ctx, saboteurID, active)
}

// DeleteSaboteur removes an entry the admin authored.
func (s *contentService) DeleteSaboteur(ctx context.Context, adminID, saboteurID primitive.ObjectID) error {
	existing, err := s.saboteurRepo.GetByID(ctx, saboteurID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSaboteurNotFound
		}
		return err
	}
	if existing.AdminID != adminID {
		return apperr.E(apperr.Conflict, "saboteur belongs to another admin", nil)
	}
	return s.saboteurRepo.Delete(ctx, saboteurID)
}

// === AI Configuration ===

// UpsertAIConfig writes the row for cfg.Functionality, creating it on first
// write.
func (s *contentService) UpsertAIConfig(ctx context.Context, cfg *domain.AIConfiguration) error {
	if strings.TrimSpace(cfg.Functionality) == "" {
		return apperr.E(apperr.Validation, "functionality is required", nil)
	}
	if cfg.MaxTokens < 0 || cfg.Temperature < 0 || cfg.Temperature > 2 {
		return ErrInvalidAIConfig
	}
	return s.aiConfigRepo.Upsert(ctx, cfg)
}

// GetAIConfig retrieves one functionality's configuration.
func (s *contentService) GetAIConfig(ctx context.Context, functionality string) (*domain.AIConfiguration, error) {
	cfg, err := s.aiConfigRepo.GetByFunctionality(ctx, functionality)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.E(apperr.NotFound, "no configuration for this functionality", err)
	}
	return cfg, err
}

// ListAIConfigs retrieves every configuration row.
func (s *contentService) ListAIConfigs(ctx context.Context) ([]domain.AIConfiguration, error) {
	return s.aiConfigRepo.GetAll(ctx)
}

// === Courses ===

// CreateCourse stores a course hierarchy. Lesson ids are generated when the
// author omitted them, so progress records always have a stable key.
func (s *contentService) CreateCourse(ctx context.Context, adminID primitive.ObjectID, course *domain.Course) (*domain.Course, error) {
	if strings.TrimSpace(course.Title) == "" {
		return nil, apperr.E(apperr.Validation, "course title is required", nil)
	}
	course.CreatedBy = adminID
	for m := range course.Modules {
		for l := range course.Modules[m].Lessons {
			if course.Modules[m].Lessons[l].ID == "" {
				course.Modules[m].Lessons[l].ID = uuid.NewString()
			}
		}
	}

	id, err := s.courseRepo.Create(ctx, course)
	if err != nil {
		return nil, err
	}
	course.ID = id
	return course, nil
}

// ListCourses returns the course catalog.
func (s *contentService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.courseRepo.GetAll(ctx)
}

// GetCourse retrieves one course with its full hierarchy.
func (s *contentService) GetCourse(ctx context.Context, courseID primitive.ObjectID) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCourseNotFound
	}
	return course, err
}

// DeleteCourse removes a course the admin authored. Client progress records
// for the course become orphaned files; they reset naturally on next load.
func (s *contentService) DeleteCourse(ctx context.Context, adminID, courseID primitive.ObjectID) error {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		return err
	}
	if course.CreatedBy != adminID {
		return apperr.E(apperr.Conflict, "course belongs to another admin", nil)
	}
	return s.courseRepo.Delete(ctx, courseID)
}

// === Media Upload Flow ===

// Media types accepted for session attachments.
var allowedMediaTypes = map[string]string{
	"video/mp4":       "videos",
	"video/quicktime": "videos",
	"application/pdf": "documents",
}

// RequestSessionMediaUploadURL generates a presigned PUT URL for attaching
// media to a session the admin created.
func (s *contentService) RequestSessionMediaUploadURL(ctx context.Context, adminID, sessionID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	prefix, ok := allowedMediaTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedMediaType
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.CreatedBy != adminID {
		return nil, ErrSessionAccessDenied
	}

	// Object key: sessions/{sessionId}/{videos|documents}/{uuid}
	objectKey := path.Join("sessions", sessionID.Hex(), prefix, uuid.NewString())

	url, err := s.mediaStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: url, ObjectKey: objectKey}, nil
}

// ConfirmSessionMediaUpload records metadata for a completed upload and links
// the object to the session.
func (s *contentService) ConfirmSessionMediaUpload(ctx context.Context, adminID, sessionID primitive.ObjectID, objectKey, fileName string, fileSize int64, contentType string) error {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return err
	}
	if session.CreatedBy != adminID {
		return ErrSessionAccessDenied
	}

	upload := &domain.MediaUpload{
		SessionID:   &sessionID,
		UploadedBy:  adminID,
		ObjectKey:   objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        fileSize,
	}
	if _, err := s.mediaRepo.Create(ctx, upload); err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(contentType, "video/"):
		session.VideoKey = objectKey
	case contentType == "application/pdf":
		session.PDFKey = objectKey
	}
	return s.sessionRepo.Update(ctx, session)
}
