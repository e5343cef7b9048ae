package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeighIn is a single body-measurement record for a client. Weight is the only
// required measurement; the composition fields come from smart scales and are
// frequently absent on manual entries.
//
// Weigh-ins are insert/delete only. A bad entry is removed and re-entered,
// never edited.
type WeighIn struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID `bson:"user_id" json:"user_id"`
	WeightKg           float64            `bson:"peso_kg" json:"peso_kg"`
	MeasuredAt         time.Time          `bson:"data_medicao" json:"data_medicao"`
	IMC                *float64           `bson:"imc,omitempty" json:"imc,omitempty"`
	AbdominalCircCm    *float64           `bson:"circunferencia_abdominal_cm,omitempty" json:"circunferencia_abdominal_cm,omitempty"`
	BodyFatPct         *float64           `bson:"gordura_corporal_pct,omitempty" json:"gordura_corporal_pct,omitempty"`
	MuscleMassKg       *float64           `bson:"massa_muscular_kg,omitempty" json:"massa_muscular_kg,omitempty"`
	BodyWaterPct       *float64           `bson:"agua_corporal_pct,omitempty" json:"agua_corporal_pct,omitempty"`
	VisceralFat        *float64           `bson:"gordura_visceral,omitempty" json:"gordura_visceral,omitempty"`
	MetabolicAge       *int               `bson:"idade_metabolica,omitempty" json:"idade_metabolica,omitempty"`
	BoneMassKg         *float64           `bson:"massa_ossea_kg,omitempty" json:"massa_ossea_kg,omitempty"`
	BasalMetabolicRate *int               `bson:"taxa_metabolica_basal,omitempty" json:"taxa_metabolica_basal,omitempty"`
	BodyType           string             `bson:"tipo_corpo,omitempty" json:"tipo_corpo,omitempty"`
	Source             string             `bson:"origem_medicao" json:"origem_medicao"` // "manual", "balanca", etc.
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}
