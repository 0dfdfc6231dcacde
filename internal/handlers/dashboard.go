package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"tawteen-backend/internal/database"
	"tawteen-backend/internal/models"
)

// DashboardHandler serves aggregate statistics for the back office.
type DashboardHandler struct {
	db database.Service
}

func NewDashboardHandler(db database.Service) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// GetMetrics returns the headline submission statistics.
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	pool := h.db.GetPool()

	m := models.DashboardMetrics{
		AssessmentsByTier: map[string]int{},
	}

	err := pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(risk_score), 0),
		       COALESCE(SUM(fine_estimate), 0),
		       COALESCE(AVG(CASE WHEN gap > 0 THEN 100.0 ELSE 0 END), 0),
		       COUNT(*) FILTER (WHERE created_at > NOW() - INTERVAL '30 days')
		FROM assessments
	`).Scan(
		&m.TotalAssessments, &m.AverageRiskScore, &m.TotalFineExposure,
		&m.NonCompliantShare, &m.SubmissionsLast30,
	)
	if err != nil {
		log.Printf("Failed to fetch dashboard metrics: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch metrics")
		return
	}

	rows, err := pool.Query(ctx, `
		SELECT risk_level, COUNT(*) FROM assessments GROUP BY risk_level
	`)
	if err != nil {
		log.Printf("Failed to fetch tier counts: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch metrics")
		return
	}
	defer rows.Close()

	for rows.Next() {
		var level string
		var count int
		if err := rows.Scan(&level, &count); err != nil {
			continue
		}
		m.AssessmentsByTier[level] = count
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": m})
}

// GetSectorBreakdown returns per-sector submission stats, worst first.
func (h *DashboardHandler) GetSectorBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rows, err := h.db.GetPool().Query(ctx, `
		SELECT sector,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE risk_level = 'high'),
		       COALESCE(AVG(risk_score), 0),
		       COALESCE(SUM(fine_estimate), 0)
		FROM assessments
		GROUP BY sector
		ORDER BY SUM(fine_estimate) DESC, COUNT(*) DESC
	`)
	if err != nil {
		log.Printf("Failed to fetch sector breakdown: %v", err)
		JSONError(w, http.StatusInternalServerError, "Failed to fetch sector breakdown")
		return
	}
	defer rows.Close()

	breakdown := []models.SectorBreakdown{}
	for rows.Next() {
		var b models.SectorBreakdown
		if err := rows.Scan(
			&b.Sector, &b.Count, &b.HighRiskCount,
			&b.AverageRiskScore, &b.FineExposure,
		); err != nil {
			log.Printf("Failed to scan sector breakdown: %v", err)
			continue
		}
		breakdown = append(breakdown, b)
	}

	JSON(w, http.StatusOK, map[string]interface{}{"data": breakdown})
}
