package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Goal is a coaching goal set for a client. Progress is set manually by the
// admin (0-100), never computed from other data.
type Goal struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name       string             `bson:"name" json:"name"`
	Type       string             `bson:"type" json:"type"` // e.g. "peso", "habito", "medida"
	StartDate  time.Time          `bson:"start_date" json:"start_date"`
	TargetDate time.Time          `bson:"target_date" json:"target_date"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Progress   int                `bson:"progress" json:"progress"` // 0-100
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}
