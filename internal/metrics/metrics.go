// Package metrics computes presentation-ready numbers from already-fetched
// record lists. Everything here is pure and synchronous; callers own the
// fetch window and its ordering.
package metrics

import (
	"math"
	"time"

	"vidaleve/coaching-app/internal/domain"
)

// DaysNever is the sentinel returned for DaysSinceLastActivity when the client
// has no activity at all. Callers must treat it as "unknown", not a literal
// day count.
const DaysNever = 999

// IMCCategory bands for the fixed WHO breakpoints. Lower bounds are
// inclusive: an IMC of exactly 18.5 is "normal".
type IMCBand string

const (
	IMCUnderweight IMCBand = "abaixo"
	IMCNormal      IMCBand = "normal"
	IMCOverweight  IMCBand = "sobrepeso"
	IMCObese       IMCBand = "obesidade"
)

// EngagementStatus bands recency of activity.
type EngagementStatus string

const (
	EngagementActive   EngagementStatus = "active"
	EngagementAtRisk   EngagementStatus = "at-risk"
	EngagementInactive EngagementStatus = "inactive"
)

// WeightTrend returns the delta between the two most recent weigh-ins
// (history is newest-first), or nil when fewer than two exist. No smoothing:
// a single bad manual entry produces a visible spike, which is acceptable for
// this class of tool.
func WeightTrend(history []domain.WeighIn) *float64 {
	if len(history) < 2 {
		return nil
	}
	d := history[0].WeightKg - history[1].WeightKg
	return &d
}

// WeightProgressPct returns (latest - first) / first * 100 over the retrieved
// window. The window is bounded by the caller's fetch limit, not the true
// full history; this is a windowed approximation.
func WeightProgressPct(history []domain.WeighIn) float64 {
	if len(history) < 2 {
		return 0
	}
	first := history[len(history)-1].WeightKg
	if first == 0 {
		return 0
	}
	return (history[0].WeightKg - first) / first * 100
}

// AverageWeeklyDelta returns (latest - first) / ceil(len/7). Every 7 records
// count as one "week" regardless of calendar spacing; a documented
// approximation.
func AverageWeeklyDelta(history []domain.WeighIn) float64 {
	if len(history) < 2 {
		return 0
	}
	weeks := math.Ceil(float64(len(history)) / 7)
	return (history[0].WeightKg - history[len(history)-1].WeightKg) / weeks
}

// WeightStats summarizes a weigh-in window for the stats cards.
type WeightStats struct {
	Current float64
	Min     float64
	Max     float64
	Avg     float64
}

// ComputeWeightStats returns windowed stats and ok=false for an empty history,
// so an empty state never leaks ±Inf or NaN into a rendered card.
func ComputeWeightStats(history []domain.WeighIn) (WeightStats, bool) {
	if len(history) == 0 {
		return WeightStats{}, false
	}
	s := WeightStats{
		Current: history[0].WeightKg,
		Min:     history[0].WeightKg,
		Max:     history[0].WeightKg,
	}
	sum := 0.0
	for i := range history {
		w := history[i].WeightKg
		if w < s.Min {
			s.Min = w
		}
		if w > s.Max {
			s.Max = w
		}
		sum += w
	}
	s.Avg = sum / float64(len(history))
	return s, true
}

// ComputeIMC returns peso_kg / height_m². Zero height yields 0 rather than
// +Inf.
func ComputeIMC(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return weightKg / (m * m)
}

// IMCCategory is a pure step function over the fixed breakpoints 18.5/25/30.
func IMCCategory(imc float64) IMCBand {
	switch {
	case imc < 18.5:
		return IMCUnderweight
	case imc < 25:
		return IMCNormal
	case imc < 30:
		return IMCOverweight
	default:
		return IMCObese
	}
}

// Engagement summarizes a client's check-in activity.
type Engagement struct {
	CompletionRate        float64          `json:"completionRate"` // Percent of missions marked complete
	AvgScore              float64          `json:"avgScore"`
	DaysSinceLastActivity int              `json:"daysSinceLastActivity"` // DaysNever when no missions exist
	Status                EngagementStatus `json:"status"`
}

// ComputeEngagement derives engagement from missions and scores as of "now".
// Scores are joined to missions by date string only for timelines; here each
// list contributes independently.
func ComputeEngagement(missions []domain.DailyMission, scores []domain.DailyScore, now time.Time) Engagement {
	e := Engagement{DaysSinceLastActivity: DaysNever}

	if len(missions) > 0 {
		done := 0
		var latest time.Time
		for i := range missions {
			if missions[i].Completed {
				done++
			}
			d, err := time.Parse("2006-01-02", missions[i].Date)
			if err != nil {
				// A mangled date string still marks a check-in; fall back to
				// the insert timestamp for recency.
				d = missions[i].CreatedAt
			}
			if d.After(latest) {
				latest = d
			}
		}
		e.CompletionRate = float64(done) / float64(len(missions)) * 100
		if !latest.IsZero() {
			days := int(now.Sub(latest).Hours() / 24)
			if days < 0 {
				days = 0
			}
			e.DaysSinceLastActivity = days
		}
	}

	if len(scores) > 0 {
		sum := 0
		for i := range scores {
			sum += scores[i].TotalPoints
		}
		e.AvgScore = float64(sum) / float64(len(scores))
	}

	switch {
	case e.DaysSinceLastActivity > 3:
		e.Status = EngagementInactive
	case e.DaysSinceLastActivity > 1:
		e.Status = EngagementAtRisk
	default:
		e.Status = EngagementActive
	}
	return e
}
