package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Saboteur is an admin-authored behavioral-pattern taxonomy entry used to
// target coaching content (e.g. "o crítico", "o sabotador da madrugada").
type Saboteur struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AdminID          primitive.ObjectID `bson:"adminId" json:"adminId"` // Author
	Name             string             `bson:"name" json:"name"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Triggers         []string           `bson:"triggers,omitempty" json:"triggers,omitempty"`
	Patterns         []string           `bson:"patterns,omitempty" json:"patterns,omitempty"`
	CopingStrategies []string           `bson:"coping_strategies,omitempty" json:"coping_strategies,omitempty"`
	IsActive         bool               `bson:"is_active" json:"is_active"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
