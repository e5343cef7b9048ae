package metrics_test

import (
	"strings"
	"testing"
	"time"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/metrics"
)

func hasAlert(alerts []metrics.Alert, title string) bool {
	for _, a := range alerts {
		if a.Title == title {
			return true
		}
	}
	return false
}

func TestLowCompletionAlert(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	var missions []domain.DailyMission
	for i := 0; i < 7; i++ {
		missions = append(missions, domain.DailyMission{
			Date:      now.AddDate(0, 0, -i).Format("2006-01-02"),
			Completed: i < 2, // 28.57% < 30%
		})
	}
	e := metrics.ComputeEngagement(missions, nil, now)

	alerts := metrics.GenerateAlerts(e, nil)
	if !hasAlert(alerts, "Baixa taxa de conclusão") {
		t.Fatalf("expected low completion alert, got %+v", alerts)
	}
}

func TestNoAlertsForHealthyClient(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	var missions []domain.DailyMission
	for i := 0; i < 7; i++ {
		missions = append(missions, domain.DailyMission{
			Date:      now.AddDate(0, 0, -i).Format("2006-01-02"),
			Completed: true,
		})
	}
	e := metrics.ComputeEngagement(missions, nil, now)

	alerts := metrics.GenerateAlerts(e, weighIns(71.8, 72.0))
	if len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}

func TestNeverActiveAlert(t *testing.T) {
	t.Parallel()

	e := metrics.ComputeEngagement(nil, nil, time.Now())
	alerts := metrics.GenerateAlerts(e, nil)
	if !hasAlert(alerts, "Sem atividade registrada") {
		t.Fatalf("expected never-active alert, got %+v", alerts)
	}
	// The sentinel day count must never be rendered as a literal day count.
	for _, a := range alerts {
		if strings.Contains(a.Message, "999") {
			t.Fatalf("sentinel leaked into alert message: %q", a.Message)
		}
	}
}

func TestWeightSpikeAlert(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	missions := []domain.DailyMission{{Date: now.Format("2006-01-02"), Completed: true}}
	e := metrics.ComputeEngagement(missions, nil, now)

	alerts := metrics.GenerateAlerts(e, weighIns(75.0, 72.5))
	if !hasAlert(alerts, "Variação de peso acentuada") {
		t.Fatalf("expected weight spike alert, got %+v", alerts)
	}

	// Losing weight never triggers the spike rule.
	alerts = metrics.GenerateAlerts(e, weighIns(70.0, 72.5))
	if hasAlert(alerts, "Variação de peso acentuada") {
		t.Fatalf("weight loss should not alert, got %+v", alerts)
	}
}

func TestAlertsOrderedBySeverity(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	missions := []domain.DailyMission{{
		Date:      now.AddDate(0, 0, -10).Format("2006-01-02"),
		Completed: false,
	}}
	e := metrics.ComputeEngagement(missions, nil, now)

	alerts := metrics.GenerateAlerts(e, weighIns(78.0, 74.0))
	if len(alerts) < 2 {
		t.Fatalf("expected multiple alerts, got %+v", alerts)
	}
	if alerts[0].Severity != metrics.SeverityHigh {
		t.Fatalf("expected high severity first, got %+v", alerts[0])
	}
}
