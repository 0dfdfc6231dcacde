package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tawteen-backend/internal/ctxkeys"
	"tawteen-backend/internal/database"
	"tawteen-backend/internal/models"
	"tawteen-backend/internal/risk"
)

// AdminHandler provides CRUD for the engine's reference data: the
// sector list and the risk settings row.
type AdminHandler struct {
	db database.Service
}

func NewAdminHandler(db database.Service) *AdminHandler {
	return &AdminHandler{db: db}
}

// ── Sectors ────────────────────────────────────────────────────

const selectSector = `
	SELECT id, slug, display_name, is_designated, is_active, sort_order,
	       created_at::text, updated_at::text
	FROM sectors`

// ListSectors returns all active sectors, ordered by sort_order.
// Accessible without authentication — the questionnaire form needs it.
func (h *AdminHandler) ListSectors(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	rows, err := pool.Query(ctx, selectSector+`
		WHERE is_active = TRUE
		ORDER BY sort_order, display_name
	`)
	if err != nil {
		log.Printf("Failed to list sectors: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch sectors")
		return
	}
	defer rows.Close()

	sectors := []models.Sector{}
	for rows.Next() {
		var s models.Sector
		if err := rows.Scan(
			&s.ID, &s.Slug, &s.DisplayName, &s.IsDesignated, &s.IsActive,
			&s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			log.Printf("Failed to scan sector: %v", err)
			continue
		}
		sectors = append(sectors, s)
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": sectors})
}

// CreateSector adds a new sector (admin-only).
func (h *AdminHandler) CreateSector(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSectorRequest
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
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)

	var s models.Sector
	err := pool.QueryRow(ctx, `
		INSERT INTO sectors (slug, display_name, is_designated, sort_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, slug, display_name, is_designated, is_active, sort_order,
		          created_at::text, updated_at::text
	`, risk.NormalizeSector(req.Slug), req.DisplayName, req.IsDesignated, req.SortOrder,
	).Scan(
		&s.ID, &s.Slug, &s.DisplayName, &s.IsDesignated, &s.IsActive,
		&s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			JSONError(w, http.StatusConflict, "A sector with this slug already exists")
			return
		}
		log.Printf("Failed to create sector: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to create sector")
		return
	}

	go logActivity(pool, userID, "created", "sector", s.ID, map[string]interface{}{
		"slug":         s.Slug,
		"isDesignated": s.IsDesignated,
	})

	JSON(w, http.StatusCreated, map[string]interface{}{
		"data":    s,
		"message": "Sector created successfully",
	})
}

// UpdateSector edits an existing sector (admin-only). Toggling
// is_designated changes the quota rule for future submissions only;
// stored assessments keep the result they were computed with.
func (h *AdminHandler) UpdateSector(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.UpdateSectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)

	var s models.Sector
	err := pool.QueryRow(ctx, `
		UPDATE sectors SET
			display_name  = COALESCE($1, display_name),
			is_designated = COALESCE($2, is_designated),
			is_active     = COALESCE($3, is_active),
			sort_order    = COALESCE($4, sort_order),
			updated_at    = NOW()
		WHERE id = $5
		RETURNING id, slug, display_name, is_designated, is_active, sort_order,
		          created_at::text, updated_at::text
	`, req.DisplayName, req.IsDesignated, req.IsActive, req.SortOrder, id,
	).Scan(
		&s.ID, &s.Slug, &s.DisplayName, &s.IsDesignated, &s.IsActive,
		&s.SortOrder, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		JSONError(w, http.StatusNotFound, "Sector not found")
		return
	}

	go logActivity(pool, userID, "updated", "sector", s.ID, map[string]interface{}{
		"slug":         s.Slug,
		"isDesignated": s.IsDesignated,
		"isActive":     s.IsActive,
	})

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    s,
		"message": "Sector updated successfully",
	})
}

// DeleteSector deactivates a sector (admin-only). Soft delete:
// stored assessments keep referencing the slug.
func (h *AdminHandler) DeleteSector(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)

	result, err := pool.Exec(ctx, `
		UPDATE sectors SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		log.Printf("Failed to delete sector: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to delete sector")
		return
	}
	if result.RowsAffected() == 0 {
		JSONError(w, http.StatusNotFound, "Sector not found")
		return
	}

	go logActivity(pool, userID, "deleted", "sector", id, nil)

	JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Sector deactivated successfully",
	})
}

// ── Risk Settings ──────────────────────────────────────────────

// GetSettings returns the current engine tunables (admin-only).
func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var s models.RiskSettings
	err := h.db.GetPool().QueryRow(ctx, `
		SELECT small_establishment_min, small_establishment_max,
		       small_establishment_quota, large_establishment_threshold,
		       target_percent, fine_per_missing_worker, grace_period_days,
		       risk_low_min, risk_medium_min, updated_at::text
		FROM risk_settings WHERE id = 1
	`).Scan(
		&s.SmallEstablishmentMin, &s.SmallEstablishmentMax,
		&s.SmallEstablishmentQuota, &s.LargeEstablishmentThreshold,
		&s.TargetPercent, &s.FinePerMissingWorker, &s.GracePeriodDays,
		&s.RiskLowMin, &s.RiskMediumMin, &s.UpdatedAt,
	)
	if err != nil {
		log.Printf("Failed to load risk settings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch settings")
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": s})
}

// UpdateSettings replaces the engine tunables (admin-only). Takes
// effect for submissions after this request; in-flight evaluations
// keep the snapshot they loaded.
func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRiskSettingsRequest
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
	userID, _ := r.Context().Value(ctxkeys.UserID).(string)

	var s models.RiskSettings
	err := pool.QueryRow(ctx, `
		UPDATE risk_settings SET
			small_establishment_min       = $1,
			small_establishment_max       = $2,
			small_establishment_quota     = $3,
			large_establishment_threshold = $4,
			target_percent                = $5,
			fine_per_missing_worker       = $6,
			grace_period_days             = $7,
			risk_low_min                  = $8,
			risk_medium_min               = $9,
			updated_at                    = NOW()
		WHERE id = 1
		RETURNING small_establishment_min, small_establishment_max,
		          small_establishment_quota, large_establishment_threshold,
		          target_percent, fine_per_missing_worker, grace_period_days,
		          risk_low_min, risk_medium_min, updated_at::text
	`, req.SmallEstablishmentMin, req.SmallEstablishmentMax,
		req.SmallEstablishmentQuota, req.LargeEstablishmentThreshold,
		req.TargetPercent, req.FinePerMissingWorker, req.GracePeriodDays,
		req.RiskLowMin, req.RiskMediumMin,
	).Scan(
		&s.SmallEstablishmentMin, &s.SmallEstablishmentMax,
		&s.SmallEstablishmentQuota, &s.LargeEstablishmentThreshold,
		&s.TargetPercent, &s.FinePerMissingWorker, &s.GracePeriodDays,
		&s.RiskLowMin, &s.RiskMediumMin, &s.UpdatedAt,
	)
	if err != nil {
		log.Printf("Failed to update risk settings: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	go logActivity(pool, userID, "updated", "risk_settings", "1", map[string]interface{}{
		"finePerMissingWorker": s.FinePerMissingWorker,
		"targetPercent":        s.TargetPercent,
	})

	JSON(w, http.StatusOK, map[string]interface{}{
		"data":    s,
		"message": "Settings updated successfully",
	})
}
