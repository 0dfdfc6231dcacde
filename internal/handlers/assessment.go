package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tawteen-backend/internal/database"
	"tawteen-backend/internal/models"
	"tawteen-backend/internal/risk"
	"tawteen-backend/internal/settings"
)

// AssessmentHandler handles questionnaire submissions and assessment lookups.
type AssessmentHandler struct {
	db database.Service
}

// NewAssessmentHandler creates an AssessmentHandler with the provided database service.
func NewAssessmentHandler(db database.Service) *AssessmentHandler {
	return &AssessmentHandler{db: db}
}

// ── Submit ─────────────────────────────────────────────────────

// Submit evaluates a public questionnaire submission and persists the
// profile together with its computed result. The settings snapshot is
// frozen before evaluation, so an admin edit mid-request cannot split
// one assessment across two configurations.
func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		JSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Validation failed",
			"details": errs,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	cfg, err := settings.Load(ctx, pool)
	if err != nil {
		log.Printf("Failed to load risk settings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to run assessment")
		return
	}

	profile := req.Profile()
	result := risk.Evaluate(profile, cfg)

	record := models.AssessmentRecord{
		CompanyName:              strings.TrimSpace(req.CompanyName),
		ContactEmail:             strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		Jurisdiction:             profile.Jurisdiction,
		Sector:                   profile.Sector,
		TotalEmployees:           profile.TotalEmployees,
		SkilledEmployees:         profile.SkilledEmployees,
		CurrentQualifyingWorkers: profile.CurrentQualifyingWorkers,
		PayrollCompliant:         profile.PayrollComplianceConfirmed,
		RecentDeparture:          profile.RecentDeparture,
		DaysSinceDeparture:       profile.DaysSinceDeparture,
		Result:                   result,
	}

	// Retry on the (unlikely) reference collision — the column is UNIQUE.
	var inserted bool
	for attempt := 0; attempt < 3 && !inserted; attempt++ {
		record.Reference = newReference()
		err = pool.QueryRow(ctx, `
			INSERT INTO assessments (
				reference, company_name, contact_email, contact_phone,
				jurisdiction, sector, total_employees, skilled_employees,
				current_qualifying_workers, payroll_compliance_confirmed,
				recent_departure, days_since_departure,
				required_count, valid_count, gap, fine_estimate,
				risk_score, risk_level
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			        $13, $14, $15, $16, $17, $18)
			RETURNING id, created_at::text
		`, record.Reference, record.CompanyName, record.ContactEmail,
			nilIfEmptyStr(strings.TrimSpace(req.ContactPhone)),
			record.Jurisdiction, record.Sector,
			record.TotalEmployees, record.SkilledEmployees,
			record.CurrentQualifyingWorkers, record.PayrollCompliant,
			record.RecentDeparture, record.DaysSinceDeparture,
			result.RequiredCount, result.ValidCount, result.Gap,
			result.FineEstimate, result.RiskScore, result.RiskLevel,
		).Scan(&record.ID, &record.CreatedAt)

		switch {
		case err == nil:
			inserted = true
		case isDuplicateKeyError(err):
			continue
		default:
			log.Printf("Failed to store assessment: %v", err)
			JSONError(w, http.StatusInternalServerError, "Failed to store assessment")
			return
		}
	}
	if !inserted {
		log.Printf("Failed to store assessment after retries: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to store assessment")
		return
	}
	if req.ContactPhone != "" {
		phone := strings.TrimSpace(req.ContactPhone)
		record.ContactPhone = &phone
	}

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":   record,
		"report": BuildReport(&record),
	})
}

// newReference generates a short human-quotable assessment reference.
func newReference() string {
	return "TWN-" + strings.ToUpper(uuid.NewString()[:8])
}

// ── Lookup ─────────────────────────────────────────────────────

// GetByReference returns a stored assessment by its public reference.
// Unauthenticated on purpose: the reference is the capability, handed
// only to the submitter.
func (h *AssessmentHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	ref := strings.ToUpper(chi.URLParam(r, "reference"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	record, err := h.fetchOne(ctx, "reference = $1", ref)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Assessment not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":   record,
		"report": BuildReport(record),
	})
}

// GetByID returns a stored assessment by its internal ID (back office).
func (h *AssessmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	record, err := h.fetchOne(ctx, "id = $1", id)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Assessment not found")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": record})
}

// ── List ───────────────────────────────────────────────────────

// List returns stored assessments, newest first, with optional
// risk-level and sector filters plus limit/offset pagination.
func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	where := "WHERE 1=1"
	args := []interface{}{}
	argIdx := 1

	if level := r.URL.Query().Get("riskLevel"); level != "" {
		where += " AND risk_level = $" + strconv.Itoa(argIdx)
		args = append(args, level)
		argIdx++
	}
	if sector := r.URL.Query().Get("sector"); sector != "" {
		where += " AND sector = $" + strconv.Itoa(argIdx)
		args = append(args, risk.NormalizeSector(sector))
		argIdx++
	}

	limit := clampQueryInt(r, "limit", 50, 1, 200)
	offset := clampQueryInt(r, "offset", 0, 0, 1<<30)

	var total int
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM assessments "+where, args...).Scan(&total); err != nil {
		log.Printf("Failed to count assessments: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch assessments")
		return
	}

	query := selectAssessment + " " + where +
		" ORDER BY created_at DESC LIMIT $" + strconv.Itoa(argIdx) +
		" OFFSET $" + strconv.Itoa(argIdx+1)
	args = append(args, limit, offset)

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Failed to list assessments: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch assessments")
		return
	}
	defer rows.Close()

	assessments := []models.AssessmentRecord{}
	for rows.Next() {
		record, err := scanAssessment(rows)
		if err != nil {
			log.Printf("Failed to scan assessment: %v", err)
			continue
		}
		assessments = append(assessments, *record)
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":   assessments,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// ── Shared Query Helpers ───────────────────────────────────────

const selectAssessment = `
	SELECT id, reference, company_name, contact_email, contact_phone,
	       jurisdiction, sector, total_employees, skilled_employees,
	       current_qualifying_workers, payroll_compliance_confirmed,
	       recent_departure, days_since_departure,
	       required_count, valid_count, gap, fine_estimate,
	       risk_score, risk_level, created_at::text
	FROM assessments`

func (h *AssessmentHandler) fetchOne(ctx context.Context, cond string, arg interface{}) (*models.AssessmentRecord, error) {
	row := h.db.GetPool().QueryRow(ctx, selectAssessment+" WHERE "+cond, arg)
	return scanAssessment(row)
}

// scanAssessment maps one assessments row into a record.
func scanAssessment(row pgx.Row) (*models.AssessmentRecord, error) {
	var a models.AssessmentRecord
	err := row.Scan(
		&a.ID, &a.Reference, &a.CompanyName, &a.ContactEmail, &a.ContactPhone,
		&a.Jurisdiction, &a.Sector, &a.TotalEmployees, &a.SkilledEmployees,
		&a.CurrentQualifyingWorkers, &a.PayrollCompliant,
		&a.RecentDeparture, &a.DaysSinceDeparture,
		&a.Result.RequiredCount, &a.Result.ValidCount, &a.Result.Gap,
		&a.Result.FineEstimate, &a.Result.RiskScore, &a.Result.RiskLevel,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// clampQueryInt parses an integer query parameter and clamps it to [min, max].
func clampQueryInt(r *http.Request, key string, def, min, max int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
