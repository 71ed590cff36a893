package reports

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fdg312/health-navigator/internal/googlefit"
	"github.com/fdg312/health-navigator/internal/medications"
	"github.com/fdg312/health-navigator/internal/metrics"
	"github.com/fdg312/health-navigator/internal/score"
	"github.com/jung-kurt/gofpdf"
)

const noDataLabel = "No data"

// ReportInput — всё, что попадает в PDF: снапшот за сегодня, балл,
// недельные тренды и список лекарств.
type ReportInput struct {
	GeneratedAt time.Time
	Snapshot    *metrics.SnapshotDTO
	Score       *score.HealthScore
	Trends      *metrics.TrendsResponse
	Medications []medications.MedicationDTO
}

// Generator собирает PDF-отчёт. Используются встроенные шрифты
// gofpdf, поэтому весь текст отчёта — на английском.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(in ReportInput) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Health Report")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", in.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	g.writeSnapshot(pdf, in.Snapshot)
	g.writeScore(pdf, in.Score)
	g.writeTrends(pdf, in.Trends)
	g.writeMedications(pdf, in.Medications)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSnapshot(pdf *gofpdf.Fpdf, snapshot *metrics.SnapshotDTO) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Today's Metrics")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	if snapshot == nil {
		pdf.Cell(0, 6, noDataLabel)
		pdf.Ln(10)
		return
	}

	line := func(text string) {
		pdf.Cell(0, 6, text)
		pdf.Ln(5)
	}

	line(fmt.Sprintf("Steps: %s", statusValue(snapshot.StepsStatus, strconv.Itoa(snapshot.Steps))))
	line(fmt.Sprintf("Calories: %s", statusValue(snapshot.CaloriesStatus, fmt.Sprintf("%d kcal", snapshot.CaloriesKcal))))
	line(fmt.Sprintf("Distance: %s", statusValue(snapshot.DistanceStatus, fmt.Sprintf("%.2f km", snapshot.DistanceKm))))

	sleep := statusValue(snapshot.SleepStatus, fmt.Sprintf("%.1f hours", snapshot.SleepHours))
	if snapshot.SleepMessage != "" {
		sleep = snapshot.SleepMessage
	}
	line(fmt.Sprintf("Sleep: %s", sleep))

	hr := noDataLabel
	if snapshot.HeartRate != nil {
		hr = fmt.Sprintf("%d bpm", *snapshot.HeartRate)
	}
	line(fmt.Sprintf("Heart rate: %s", hr))

	line(fmt.Sprintf("Synced at: %s", snapshot.SyncedAt.Format("2006-01-02 15:04")))
	pdf.Ln(5)
}

func (g *Generator) writeScore(pdf *gofpdf.Fpdf, healthScore *score.HealthScore) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Health Score")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	if healthScore == nil {
		pdf.Cell(0, 6, noDataLabel)
		pdf.Ln(10)
		return
	}

	pdf.Cell(0, 6, fmt.Sprintf("Score: %d / 100", healthScore.Score))
	pdf.Ln(6)

	for _, explanation := range healthScore.Explanations {
		pdf.Cell(0, 5, "- "+explanation)
		pdf.Ln(5)
	}
	for _, suggestion := range healthScore.Suggestions {
		pdf.Cell(0, 5, "Tip: "+suggestion)
		pdf.Ln(5)
	}
	pdf.Ln(5)
}

func (g *Generator) writeTrends(pdf *gofpdf.Fpdf, trends *metrics.TrendsResponse) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Weekly Trends")
	pdf.Ln(8)

	if trends == nil || len(trends.StepsWeekly) == 0 {
		pdf.SetFont("Arial", "", 10)
		pdf.Cell(0, 6, noDataLabel)
		pdf.Ln(10)
		return
	}

	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(25, 6, "Day", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Steps", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Calories", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Distance, km", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Sleep, h", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Heart rate", "1", 1, "C", false, 0, "")

	calories := seriesByLabel(trends.CaloriesWeekly)
	distance := seriesByLabel(trends.DistanceWeekly)
	sleep := seriesByLabel(trends.SleepWeekly)
	heartRate := seriesByLabel(trends.HeartRateWeekly)

	for _, point := range trends.StepsWeekly {
		pdf.CellFormat(25, 6, point.Label, "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, strconv.Itoa(int(point.Value)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, cellValue(calories, point.Label, "%.0f"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, cellValue(distance, point.Label, "%.1f"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 6, cellValue(sleep, point.Label, "%.1f"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, cellValue(heartRate, point.Label, "%.0f"), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(5)
}

func (g *Generator) writeMedications(pdf *gofpdf.Fpdf, meds []medications.MedicationDTO) {
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Medications")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	if len(meds) == 0 {
		pdf.Cell(0, 6, "No medications")
		pdf.Ln(6)
		return
	}

	for _, med := range meds {
		times := make([]string, 0, len(med.Times))
		for _, t := range med.Times {
			times = append(times, medications.FormatTime(t))
		}
		line := med.Name
		if med.Dose != "" {
			line += " (" + med.Dose + ")"
		}
		if len(times) > 0 {
			line += " - " + strings.Join(times, ", ")
		}
		pdf.Cell(0, 6, line)
		pdf.Ln(5)
	}
}

func statusValue(status, value string) string {
	if status == "no_data" {
		return noDataLabel
	}
	return value
}

func seriesByLabel(points []googlefit.TrendPoint) map[string]float64 {
	m := make(map[string]float64, len(points))
	for _, p := range points {
		m[p.Label] = p.Value
	}
	return m
}

func cellValue(series map[string]float64, label, format string) string {
	value, ok := series[label]
	if !ok {
		return ""
	}
	return fmt.Sprintf(format, value)
}
