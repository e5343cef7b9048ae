package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScoreCategory bands a day's total points.
type ScoreCategory string

const (
	ScoreExcellent ScoreCategory = "excelente"
	ScoreMedium    ScoreCategory = "medio"
	ScoreLow       ScoreCategory = "baixa"
)

// DailyMission is a client's self-reported habit check-in for one day.
// This service only reads these; they are written by the client mobile flow.
type DailyMission struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	Date          string             `bson:"data" json:"data"` // YYYY-MM-DD
	Completed     bool               `bson:"concluido" json:"concluido"`
	ExerciseDone  bool               `bson:"exercicio_feito" json:"exercicio_feito"`
	SleepHours    float64            `bson:"horas_sono,omitempty" json:"horas_sono,omitempty"`
	WaterCups     int                `bson:"copos_agua,omitempty" json:"copos_agua,omitempty"`
	StressLevel   int                `bson:"nivel_estresse,omitempty" json:"nivel_estresse,omitempty"`
	Mood          string             `bson:"humor,omitempty" json:"humor,omitempty"`
	GratitudeText string             `bson:"gratidao,omitempty" json:"gratidao,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}

// DailyScore is the scored summary of a day. It is joined to DailyMission by
// the Date string, not by a foreign key, so timelines tolerate either record
// being absent for a given day.
type DailyScore struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Date        string             `bson:"data" json:"data"` // YYYY-MM-DD
	TotalPoints int                `bson:"total_pontos_dia" json:"total_pontos_dia"`
	Category    ScoreCategory      `bson:"categoria_dia" json:"categoria_dia"`
}
