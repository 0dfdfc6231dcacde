package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tawteen-backend/internal/models"
	"tawteen-backend/internal/risk"
)

func record(level string, gap int) *models.AssessmentRecord {
	return &models.AssessmentRecord{
		Reference:        "TWN-TEST0001",
		CompanyName:      "Falcon Contracting LLC",
		Jurisdiction:     risk.JurisdictionMainland,
		Sector:           "construction",
		TotalEmployees:   35,
		SkilledEmployees: 10,
		PayrollCompliant: true,
		Result: risk.Assessment{
			RequiredCount: gap,
			Gap:           gap,
			FineEstimate:  float64(gap) * 96000,
			RiskScore:     50,
			RiskLevel:     level,
		},
		CreatedAt: "2026-08-30T10:00:00Z",
	}
}

func TestBuildReportTierContent(t *testing.T) {
	high := BuildReport(record(risk.LevelHigh, 3))
	assert.Contains(t, high.Summary, "high exposure")
	assert.Contains(t, high.Summary, "288,000")
	assert.NotEmpty(t, high.NextSteps)
	assert.Equal(t, "Book an urgent consultation", high.CallToAction.ButtonLabel)

	medium := BuildReport(record(risk.LevelMedium, 1))
	assert.Contains(t, medium.Summary, "moderate exposure")
	assert.Equal(t, "Talk to a specialist", medium.CallToAction.ButtonLabel)

	low := BuildReport(record(risk.LevelLow, 0))
	assert.Contains(t, low.Summary, "covered")
	assert.Equal(t, "Schedule a periodic review", low.CallToAction.ButtonLabel)
}

func TestBuildReportFindings(t *testing.T) {
	rec := record(risk.LevelMedium, 2)
	rec.PayrollCompliant = false
	days := 45
	rec.RecentDeparture = true
	rec.DaysSinceDeparture = &days

	rep := BuildReport(rec)

	assert.Contains(t, rep.Findings, "Unconfirmed WPS/pension compliance disqualifies your current Emirati headcount from counting.")
	assert.Contains(t, rep.Findings, "A departure 45 day(s) ago may still be inside the replacement grace window.")
}

func TestBuildReportFreezone(t *testing.T) {
	rec := record(risk.LevelLow, 0)
	rec.Jurisdiction = risk.JurisdictionFreezone

	rep := BuildReport(rec)
	assert.Len(t, rep.Findings, 1)
	assert.Contains(t, rep.Findings[0], "exempt")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0", formatAmount(0))
	assert.Equal(t, "960", formatAmount(960))
	assert.Equal(t, "96,000", formatAmount(96000))
	assert.Equal(t, "1,248,000", formatAmount(1248000))
}
