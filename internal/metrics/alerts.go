package metrics

import (
	"fmt"

	"vidaleve/coaching-app/internal/domain"
)

// AlertSeverity orders alerts for display.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert is a rule-generated flag for the coach's attention.
type Alert struct {
	Severity AlertSeverity `json:"severity"`
	Title    string        `json:"title"`
	Message  string        `json:"message"`
}

// Fixed rule thresholds. No weighting, no configurability: a literal if-ladder,
// evaluated in display order (high severity first).
const (
	lowCompletionThreshold = 30.0 // percent
	inactivityAlertDays    = 3
	weightSpikeKg          = 2.0 // jump between consecutive weigh-ins worth flagging
)

// GenerateAlerts runs the fixed threshold checks against an engagement summary
// and a newest-first weigh-in window.
func GenerateAlerts(e Engagement, history []domain.WeighIn) []Alert {
	var alerts []Alert

	if e.DaysSinceLastActivity == DaysNever {
		alerts = append(alerts, Alert{
			Severity: SeverityHigh,
			Title:    "Sem atividade registrada",
			Message:  "O cliente ainda não registrou nenhuma missão diária.",
		})
	} else if e.DaysSinceLastActivity > inactivityAlertDays {
		alerts = append(alerts, Alert{
			Severity: SeverityHigh,
			Title:    "Cliente inativo",
			Message:  fmt.Sprintf("Sem atividade há %d dias.", e.DaysSinceLastActivity),
		})
	}

	if e.CompletionRate < lowCompletionThreshold {
		alerts = append(alerts, Alert{
			Severity: SeverityMedium,
			Title:    "Baixa taxa de conclusão",
			Message:  fmt.Sprintf("Apenas %.1f%% das missões foram concluídas.", e.CompletionRate),
		})
	}

	if trend := WeightTrend(history); trend != nil && *trend >= weightSpikeKg {
		alerts = append(alerts, Alert{
			Severity: SeverityLow,
			Title:    "Variação de peso acentuada",
			Message:  fmt.Sprintf("Ganho de %.1f kg desde a última pesagem.", *trend),
		})
	}

	return alerts
}
