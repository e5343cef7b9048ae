// Package progress persists per-(user, course) playback state: which lessons
// are marked complete and the free-text note attached to each lesson.
//
// The record is deliberately small and rewritten whole on every change; the
// last write wins. The serialization format is isolated behind the Store
// interface so the medium can change without touching callers.
package progress

import (
	"vidaleve/coaching-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Record is the full progress state for one user on one course.
type Record struct {
	Completed map[string]bool   `json:"completed"` // Set of completed lesson ids
	Notes     map[string]string `json:"notes"`     // Lesson id -> note text
}

// NewRecord returns an empty record with both maps allocated.
func NewRecord() *Record {
	return &Record{
		Completed: make(map[string]bool),
		Notes:     make(map[string]string),
	}
}

// IsCompleted reports whether the lesson is marked complete.
func (r *Record) IsCompleted(lessonID string) bool {
	return r.Completed[lessonID]
}

// CompletedCount returns how many lessons are marked complete.
func (r *Record) CompletedCount() int {
	n := 0
	for _, done := range r.Completed {
		if done {
			n++
		}
	}
	return n
}

// CompletionPct returns the percent of the course's lessons marked complete.
func (r *Record) CompletionPct(course *domain.Course) float64 {
	total := course.LessonCount()
	if total == 0 {
		return 0
	}
	return float64(r.CompletedCount()) / float64(total) * 100
}

// Store is the typed progress store. Implementations must return an empty
// record (never an error) when nothing is stored or the stored value cannot
// be parsed: a corrupt record silently resets progress rather than breaking
// the course view.
type Store interface {
	// Load returns the current record for (userID, courseID).
	Load(userID, courseID primitive.ObjectID) *Record

	// ToggleComplete flips lessonID's membership in the completed set and
	// persists. Calling it twice restores the original state. Returns the
	// new completion state of the lesson.
	ToggleComplete(userID, courseID primitive.ObjectID, lessonID string) (bool, error)

	// SaveNote replaces the note for lessonID and persists. An empty text
	// removes the note.
	SaveNote(userID, courseID primitive.ObjectID, lessonID, text string) error
}
