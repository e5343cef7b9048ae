// Package export renders weigh-in windows into downloadable documents:
// a CSV file and a printable HTML report.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vidaleve/coaching-app/internal/domain"
)

// Fixed, hand-enumerated column set. Order matters: exports are diffed and
// imported by spreadsheets downstream.
var csvHeader = []string{
	"data_medicao",
	"peso_kg",
	"imc",
	"circunferencia_abdominal_cm",
	"gordura_corporal_pct",
	"massa_muscular_kg",
	"agua_corporal_pct",
	"gordura_visceral",
	"idade_metabolica",
	"massa_ossea_kg",
	"taxa_metabolica_basal",
	"tipo_corpo",
	"origem_medicao",
}

// WeighInsCSV renders the window as CSV. encoding/csv quotes fields containing
// the delimiter, quote character, or line breaks, so free-text fields
// round-trip losslessly. Missing optional numerics render as empty string,
// never "0".
func WeighInsCSV(history []domain.WeighIn) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for i := range history {
		if err := w.Write(csvRow(&history[i])); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}

func csvRow(wi *domain.WeighIn) []string {
	return []string{
		wi.MeasuredAt.Format("02/01/2006 15:04"),
		formatFloat(wi.WeightKg),
		optFloat(wi.IMC),
		optFloat(wi.AbdominalCircCm),
		optFloat(wi.BodyFatPct),
		optFloat(wi.MuscleMassKg),
		optFloat(wi.BodyWaterPct),
		optFloat(wi.VisceralFat),
		optInt(wi.MetabolicAge),
		optFloat(wi.BoneMassKg),
		optInt(wi.BasalMetabolicRate),
		wi.BodyType,
		wi.Source,
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// CSVFilename builds pesagens-{displayName}-{dd-MM-yyyy}.csv. Spaces in the
// display name become dashes so the filename survives content-disposition
// handling everywhere.
func CSVFilename(displayName string, at time.Time) string {
	return fmt.Sprintf("pesagens-%s-%s.csv", slugify(displayName), at.Format("02-01-2006"))
}

// ReportFilename builds relatorio-{displayName}-{dd-MM-yyyy}.html.
func ReportFilename(displayName string, at time.Time) string {
	return fmt.Sprintf("relatorio-%s-%s.html", slugify(displayName), at.Format("02-01-2006"))
}

func slugify(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return "cliente"
	}
	return strings.Join(strings.Fields(name), "-")
}
