package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"tawteen-backend/internal/database"
	"tawteen-backend/internal/models"
	"tawteen-backend/internal/risk"
	"tawteen-backend/internal/storage"
)

// ReportHandler renders stored assessments as reports and exports.
type ReportHandler struct {
	db    database.Service
	store storage.Store
}

// NewReportHandler creates a ReportHandler backed by the given
// database and export-archive store.
func NewReportHandler(db database.Service, store storage.Store) *ReportHandler {
	return &ReportHandler{db: db, store: store}
}

// ── Report Rendering ───────────────────────────────────────────

// BuildReport renders a stored assessment into report content with a
// tier-dependent call to action. Pure formatting — the numbers come
// from the stored result untouched.
func BuildReport(a *models.AssessmentRecord) models.Report {
	rep := models.Report{
		Reference:   a.Reference,
		CompanyName: a.CompanyName,
		GeneratedAt: a.CreatedAt,
		Result:      a.Result,
		Findings:    findings(a),
	}

	switch a.Result.RiskLevel {
	case risk.LevelHigh:
		rep.Summary = fmt.Sprintf(
			"%s scores %d/100 — high exposure. The estimated annual fine at the current shortfall is AED %s.",
			a.CompanyName, a.Result.RiskScore, formatAmount(a.Result.FineEstimate))
		rep.NextSteps = []string{
			"Prioritize recruiting for the quota shortfall before the next MOHRE review cycle.",
			"Verify WPS and pension registrations for every current Emirati hire.",
			"Book an urgent compliance review to map out a hiring plan.",
		}
		rep.CallToAction = models.CTA{
			Headline:    "Your fine exposure is growing",
			Body:        "Every unfilled position in your quota accrues penalties annually. A structured hiring plan can close the gap before the next audit.",
			ButtonLabel: "Book an urgent consultation",
		}
	case risk.LevelMedium:
		rep.Summary = fmt.Sprintf(
			"%s scores %d/100 — moderate exposure with room to close the gap before penalties escalate.",
			a.CompanyName, a.Result.RiskScore)
		rep.NextSteps = []string{
			"Plan recruitment for the remaining quota positions this quarter.",
			"Confirm payroll and pension compliance to protect your qualifying headcount.",
		}
		rep.CallToAction = models.CTA{
			Headline:    "Close the gap while it's small",
			Body:        "You are within reach of full compliance. A short advisory session can turn this into a concrete hiring timeline.",
			ButtonLabel: "Talk to a specialist",
		}
	default:
		rep.Summary = fmt.Sprintf(
			"%s scores %d/100 — current obligations are covered.",
			a.CompanyName, a.Result.RiskScore)
		rep.NextSteps = []string{
			"Re-run the assessment when headcount or skilled roles change.",
			"Keep WPS and pension registrations current to preserve qualifying status.",
		}
		rep.CallToAction = models.CTA{
			Headline:    "Stay ahead of threshold changes",
			Body:        "Quota rules tighten as your workforce grows. Periodic reviews keep you compliant before thresholds move.",
			ButtonLabel: "Schedule a periodic review",
		}
	}

	return rep
}

// findings lists the human-readable facts behind the numbers.
func findings(a *models.AssessmentRecord) []string {
	out := []string{}

	if a.Jurisdiction == risk.JurisdictionFreezone {
		out = append(out, "Free-zone entities are currently exempt from the Emiratisation quota.")
		return out
	}

	if a.Result.RequiredCount > 0 {
		out = append(out, fmt.Sprintf("Your establishment is required to employ %d Emirati national(s).", a.Result.RequiredCount))
	} else {
		out = append(out, "No quota currently applies at your headcount and sector.")
	}

	if a.Result.ValidCount > 0 {
		out = append(out, fmt.Sprintf("%d hire(s) currently count toward the quota.", a.Result.ValidCount))
	}
	if !a.PayrollCompliant {
		out = append(out, "Unconfirmed WPS/pension compliance disqualifies your current Emirati headcount from counting.")
	}
	if a.RecentDeparture && a.DaysSinceDeparture != nil {
		out = append(out, fmt.Sprintf("A departure %d day(s) ago may still be inside the replacement grace window.", *a.DaysSinceDeparture))
	}
	if a.Result.Gap > 0 {
		out = append(out, fmt.Sprintf("Shortfall of %d position(s) — estimated fine AED %s per year.",
			a.Result.Gap, formatAmount(a.Result.FineEstimate)))
	}

	return out
}

// formatAmount renders a currency amount with thousands separators.
func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 0, 64)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}

// ── HTTP ───────────────────────────────────────────────────────

// Get renders the report for one assessment by public reference.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "reference")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	row := h.db.GetPool().QueryRow(ctx, selectAssessment+" WHERE reference = UPPER($1)", ref)
	record, err := scanAssessment(row)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Assessment not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": BuildReport(record)})
}

// ExportCSV streams all stored assessments as CSV and archives a copy
// to the export store. Archive failures are logged, not fatal — the
// download is the primary artifact.
func (h *ReportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	rows, err := h.db.GetPool().Query(ctx, selectAssessment+" ORDER BY created_at DESC")
	if err != nil {
		log.Printf("Failed to export assessments: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to export assessments")
		return
	}
	defer rows.Close()

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write([]string{
		"reference", "company_name", "contact_email", "jurisdiction", "sector",
		"total_employees", "skilled_employees", "current_qualifying_workers",
		"payroll_compliant", "recent_departure", "days_since_departure",
		"required_count", "valid_count", "gap", "fine_estimate",
		"risk_score", "risk_level", "created_at",
	})

	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			log.Printf("Failed to scan assessment for export: %v", err)
			continue
		}
		days := ""
		if a.DaysSinceDeparture != nil {
			days = strconv.Itoa(*a.DaysSinceDeparture)
		}
		_ = cw.Write([]string{
			a.Reference, a.CompanyName, a.ContactEmail, a.Jurisdiction, a.Sector,
			strconv.Itoa(a.TotalEmployees), strconv.Itoa(a.SkilledEmployees),
			strconv.Itoa(a.CurrentQualifyingWorkers),
			strconv.FormatBool(a.PayrollCompliant),
			strconv.FormatBool(a.RecentDeparture), days,
			strconv.Itoa(a.Result.RequiredCount), strconv.Itoa(a.Result.ValidCount),
			strconv.Itoa(a.Result.Gap),
			strconv.FormatFloat(a.Result.FineEstimate, 'f', 2, 64),
			strconv.Itoa(a.Result.RiskScore), a.Result.RiskLevel,
			a.CreatedAt,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Printf("Failed to build CSV export: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to export assessments")
		return
	}

	filename := fmt.Sprintf("assessments-%s.csv", time.Now().Format("2006-01-02"))

	// Archive a copy for the audit trail.
	if _, err := h.store.Save(ctx, "exports/"+filename, bytes.NewReader(buf.Bytes()), "text/csv"); err != nil {
		log.Printf("Failed to archive export %s: %v", filename, err)
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
