package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"vidaleve/coaching-app/internal/domain"
	"vidaleve/coaching-app/internal/metrics"
)

// Trend polarity is domain-specific: lower weight is improvement, so a
// negative delta renders green and a positive one red.
const (
	trendGoodColor = "#16a34a"
	trendBadColor  = "#dc2626"
	trendFlatColor = "#64748b"
)

type reportCard struct {
	Label string
	Value string
	Color string
}

type reportRow struct {
	Date     string
	WeightKg string
	IMC      string
	BodyFat  string
	Muscle   string
	Source   string
}

type reportData struct {
	PatientName string
	GeneratedOn string
	Cards       []reportCard
	Rows        []reportRow
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Relatório de Pesagens - {{.PatientName}}</title>
<style>
  body { font-family: Arial, Helvetica, sans-serif; color: #1e293b; margin: 32px; }
  h1 { font-size: 20px; margin-bottom: 4px; }
  .meta { color: #64748b; font-size: 12px; margin-bottom: 24px; }
  .cards { display: flex; gap: 16px; margin-bottom: 24px; }
  .card { border: 1px solid #e2e8f0; border-radius: 8px; padding: 12px 20px; min-width: 140px; }
  .card .label { font-size: 11px; color: #64748b; text-transform: uppercase; }
  .card .value { font-size: 18px; font-weight: bold; }
  table { border-collapse: collapse; width: 100%; font-size: 13px; }
  th, td { border: 1px solid #e2e8f0; padding: 6px 10px; text-align: left; }
  th { background: #f8fafc; }
  @media print { body { margin: 8px; } }
</style>
</head>
<body>
<h1>Relatório de Pesagens</h1>
<div class="meta">Paciente: {{.PatientName}} &middot; Gerado em {{.GeneratedOn}}</div>
<div class="cards">
{{range .Cards}}  <div class="card"><div class="label">{{.Label}}</div><div class="value" style="color: {{.Color}}">{{.Value}}</div></div>
{{end}}</div>
<table>
<thead><tr><th>Data</th><th>Peso (kg)</th><th>IMC</th><th>Gordura (%)</th><th>Músculo (kg)</th><th>Origem</th></tr></thead>
<tbody>
{{range .Rows}}<tr><td>{{.Date}}</td><td>{{.WeightKg}}</td><td>{{.IMC}}</td><td>{{.BodyFat}}</td><td>{{.Muscle}}</td><td>{{.Source}}</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// WeighInsReport renders the complete printable HTML document for a client's
// weigh-in window (newest first).
func WeighInsReport(patientName string, history []domain.WeighIn, now time.Time) (string, error) {
	data := reportData{
		PatientName: patientName,
		GeneratedOn: now.Format("02/01/2006"),
		Cards:       buildCards(history),
	}
	for i := range history {
		wi := &history[i]
		data.Rows = append(data.Rows, reportRow{
			Date:     wi.MeasuredAt.Format("02/01/2006"),
			WeightKg: formatFloat(wi.WeightKg),
			IMC:      placeholder(optFloat(wi.IMC)),
			BodyFat:  placeholder(optFloat(wi.BodyFatPct)),
			Muscle:   placeholder(optFloat(wi.MuscleMassKg)),
			Source:   wi.Source,
		})
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return buf.String(), nil
}

func buildCards(history []domain.WeighIn) []reportCard {
	stats, ok := metrics.ComputeWeightStats(history)
	if !ok {
		// Zero weigh-ins: suppress the cards instead of rendering NaN.
		return nil
	}
	cards := []reportCard{
		{Label: "Peso atual", Value: formatFloat(stats.Current) + " kg", Color: "#1e293b"},
	}
	if trend := metrics.WeightTrend(history); trend != nil {
		cards = append(cards, reportCard{
			Label: "Tendência",
			Value: fmt.Sprintf("%+.1f kg", *trend),
			Color: trendColor(*trend),
		})
	}
	cards = append(cards,
		reportCard{Label: "Mínimo", Value: formatFloat(stats.Min) + " kg", Color: "#1e293b"},
		reportCard{Label: "Máximo", Value: formatFloat(stats.Max) + " kg", Color: "#1e293b"},
	)
	return cards
}

func trendColor(delta float64) string {
	switch {
	case delta < 0:
		return trendGoodColor
	case delta > 0:
		return trendBadColor
	default:
		return trendFlatColor
	}
}

// Missing optional fields render as a placeholder, matching the dashboards.
func placeholder(s string) string {
	if s == "" {
		return "--"
	}
	return s
}
