package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AIConfiguration controls a downstream AI call for one functionality
// (e.g. "chat_nutricional", "analise_semanal"). Exactly one row exists per
// functionality; writes are upserts keyed on that field.
type AIConfiguration struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Functionality string             `bson:"functionality" json:"functionality"` // Unique
	Provider      string             `bson:"provider" json:"provider"`
	Model         string             `bson:"model" json:"model"`
	MaxTokens     int                `bson:"max_tokens" json:"max_tokens"`
	Temperature   float64            `bson:"temperature" json:"temperature"`
	IsEnabled     bool               `bson:"is_enabled" json:"is_enabled"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
