package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuizQuestion is an optional knowledge check attached to a lesson.
type QuizQuestion struct {
	Question string   `bson:"question" json:"question"`
	Options  []string `bson:"options" json:"options"`
	Answer   int      `bson:"answer" json:"answer"` // Index into Options
}

// Lesson is the playable unit of a course module.
type Lesson struct {
	ID            string         `bson:"id" json:"id"` // Stable string id, referenced by progress records
	Title         string         `bson:"title" json:"title"`
	OrderIndex    int            `bson:"order_index" json:"order_index"`
	VideoKey      string         `bson:"videoKey,omitempty" json:"-"` // Object key in media storage
	DurationMin   int            `bson:"duration_min,omitempty" json:"duration_min,omitempty"`
	Resources     []string       `bson:"resources,omitempty" json:"resources,omitempty"`
	QuizQuestions []QuizQuestion `bson:"quiz_questions,omitempty" json:"quiz_questions,omitempty"`
}

// CourseModule groups ordered lessons.
type CourseModule struct {
	Title      string   `bson:"title" json:"title"`
	OrderIndex int      `bson:"order_index" json:"order_index"`
	Lessons    []Lesson `bson:"lessons" json:"lessons"`
}

// Course is a static content hierarchy (course -> modules -> lessons). Modules
// and lessons are embedded; courses are small and always read whole.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedBy   primitive.ObjectID `bson:"created_by" json:"created_by"`
	Modules     []CourseModule     `bson:"modules" json:"modules"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LessonCount returns the total number of lessons across all modules.
func (c *Course) LessonCount() int {
	n := 0
	for i := range c.Modules {
		n += len(c.Modules[i].Lessons)
	}
	return n
}
