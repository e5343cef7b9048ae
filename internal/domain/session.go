package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionStatus type for the assignment lifecycle. The status is persisted and
// advanced through explicit transitions; it is never synthesized at read time.
type SessionStatus string

const (
	SessionSent       SessionStatus = "sent"        // Created and visible to the client
	SessionViewed     SessionStatus = "viewed"      // Client opened the session
	SessionInProgress SessionStatus = "in_progress" // Client started working through it
	SessionCompleted  SessionStatus = "completed"
)

// sessionTransitions enumerates the legal forward moves. A session never goes
// backwards.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionSent:       {SessionViewed, SessionInProgress, SessionCompleted},
	SessionViewed:     {SessionInProgress, SessionCompleted},
	SessionInProgress: {SessionCompleted},
	SessionCompleted:  {},
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SessionContent carries the coaching instructions attached to a session.
type SessionContent struct {
	Instructions string   `bson:"instructions,omitempty" json:"instructions,omitempty"`
	Tools        []string `bson:"tools,omitempty" json:"tools,omitempty"`
	Category     string   `bson:"category,omitempty" json:"category,omitempty"`
}

// Session is an assignable unit of coaching content, created by an admin and
// assigned to a single client. (Not a login session.)
type Session struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Content     SessionContent     `bson:"content" json:"content"`
	VideoKey    string             `bson:"videoKey,omitempty" json:"-"` // Object key in media storage
	PDFKey      string             `bson:"pdfKey,omitempty" json:"-"`
	AssignedTo  primitive.ObjectID `bson:"assigned_to" json:"assigned_to"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	IsActive    bool               `bson:"is_active" json:"is_active"`
	ScheduledAt *time.Time         `bson:"scheduled_at,omitempty" json:"scheduled_at,omitempty"`

	Status SessionStatus `bson:"status" json:"status"`
	// Transition timestamps. Each is set exactly once, when the session first
	// reaches that state.
	SentAt      time.Time  `bson:"sentAt" json:"sentAt"`
	ViewedAt    *time.Time `bson:"viewedAt,omitempty" json:"viewedAt,omitempty"`
	StartedAt   *time.Time `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Advance moves the session to next at the given time, recording the
// transition timestamp. Returns false if the move is not legal.
func (s *Session) Advance(next SessionStatus, at time.Time) bool {
	if !s.Status.CanTransition(next) {
		return false
	}
	switch next {
	case SessionViewed:
		s.ViewedAt = &at
	case SessionInProgress:
		if s.ViewedAt == nil {
			s.ViewedAt = &at // Starting implies the client saw it
		}
		s.StartedAt = &at
	case SessionCompleted:
		s.CompletedAt = &at
	}
	s.Status = next
	return true
}
