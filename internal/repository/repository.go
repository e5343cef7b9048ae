package repository

import (
	"context"
	"time"

	"vidaleve/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate record")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with profile data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToAdmin(ctx context.Context, adminID, clientID primitive.ObjectID) error
	GetClientsByAdminID(ctx context.Context, adminID primitive.ObjectID) ([]domain.User, error)
	SetAdminForClient(ctx context.Context, clientID, adminID primitive.ObjectID) error
	UpdateHeight(ctx context.Context, userID primitive.ObjectID, heightCm float64) error
}

// WeighInRepository handles weigh-in records. Weigh-ins are insert/delete
// only; there is no update.
type WeighInRepository interface {
	Create(ctx context.Context, weighIn *domain.WeighIn) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int64) ([]domain.WeighIn, error)
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// DailyRepository reads self-reported missions and their scored summaries.
// Both are written by the client check-in flow, never by this service.
type DailyRepository interface {
	GetMissionsByUserID(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.DailyMission, error)
	GetScoresByUserID(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.DailyScore, error)
}

// GoalRepository defines the interface for coaching goals.
type GoalRepository interface {
	Create(ctx context.Context, goal *domain.Goal) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Goal, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Goal, error)
	UpdateProgress(ctx context.Context, id primitive.ObjectID, progress int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SessionRepository defines the interface for session assignments.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error)
	GetByAssignee(ctx context.Context, clientID primitive.ObjectID) ([]domain.Session, error)
	GetByCreator(ctx context.Context, adminID primitive.ObjectID) ([]domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// SaboteurRepository defines the interface for the saboteur taxonomy.
type SaboteurRepository interface {
	Create(ctx context.Context, saboteur *domain.Saboteur) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Saboteur, error)
	GetAll(ctx context.Context, activeOnly bool) ([]domain.Saboteur, error)
	Update(ctx context.Context, saboteur *domain.Saboteur) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AIConfigRepository upserts AI configuration rows keyed by functionality.
type AIConfigRepository interface {
	Upsert(ctx context.Context, cfg *domain.AIConfiguration) error
	GetByFunctionality(ctx context.Context, functionality string) (*domain.AIConfiguration, error)
	GetAll(ctx context.Context) ([]domain.AIConfiguration, error)
}

// CourseRepository defines the interface for course content.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Course, error)
	GetAll(ctx context.Context) ([]domain.Course, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// MediaRepository defines the interface for upload metadata.
type MediaRepository interface {
	Create(ctx context.Context, upload *domain.MediaUpload) (primitive.ObjectID, error)
	GetBySessionID(ctx context.Context, sessionID primitive.ObjectID) ([]domain.MediaUpload, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
