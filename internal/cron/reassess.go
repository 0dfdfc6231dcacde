// Package cron runs the background review job.
package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"tawteen-backend/internal/database"
	"tawteen-backend/internal/risk"
	"tawteen-backend/internal/settings"
)

// StartReviewer launches a background goroutine that runs once per day
// (and once immediately) to re-evaluate recent assessments against the
// CURRENT settings. When an admin has changed thresholds or fines since
// a submission was scored, the stored tier can drift from what the
// engine would say today; reviewers get notified so they can reach out
// with updated numbers. Stored rows are never rewritten.
func StartReviewer(db database.Service) {
	go func() {
		runCycle(db)

		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			runCycle(db)
		}
	}()

	log.Println("[cron] assessment reviewer started – runs every 24 h")
}

// reviewWindow bounds how far back the reviewer looks. Older
// submissions are stale leads; drift there is noise.
const reviewWindow = 90 * 24 * time.Hour

// runCycle re-scores recent assessments and notifies admins about tier
// drift. Notifications are de-duplicated by (user, assessment) per day.
func runCycle(db database.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool := db.GetPool()
	now := time.Now()

	cfg, err := settings.Load(ctx, pool)
	if err != nil {
		log.Printf("[cron] error loading settings: %v", err)
		return
	}

	rows, err := pool.Query(ctx, `
		SELECT id, reference, company_name,
		       jurisdiction, sector, total_employees, skilled_employees,
		       current_qualifying_workers, payroll_compliance_confirmed,
		       recent_departure, days_since_departure, risk_level
		FROM assessments
		WHERE created_at > $1
	`, now.Add(-reviewWindow))
	if err != nil {
		log.Printf("[cron] error querying assessments: %v", err)
		return
	}
	defer rows.Close()

	type driftRow struct {
		ID          string
		Reference   string
		CompanyName string
		StoredLevel string
		NewLevel    string
		NewScore    int
	}

	var drifted []driftRow
	for rows.Next() {
		var (
			d driftRow
			p risk.Profile
		)
		if err := rows.Scan(
			&d.ID, &d.Reference, &d.CompanyName,
			&p.Jurisdiction, &p.Sector, &p.TotalEmployees, &p.SkilledEmployees,
			&p.CurrentQualifyingWorkers, &p.PayrollComplianceConfirmed,
			&p.RecentDeparture, &p.DaysSinceDeparture, &d.StoredLevel,
		); err != nil {
			log.Printf("[cron] scan error: %v", err)
			continue
		}

		rescored := risk.Evaluate(p, cfg)
		if rescored.RiskLevel == d.StoredLevel {
			continue
		}
		d.NewLevel = rescored.RiskLevel
		d.NewScore = rescored.RiskScore
		drifted = append(drifted, d)
	}

	if len(drifted) == 0 {
		log.Println("[cron] no tier drift under current settings")
		return
	}

	// Notify every admin; viewers don't act on settings drift.
	adminRows, err := pool.Query(ctx, `
		SELECT id FROM users WHERE role IN ('admin', 'super_admin')
	`)
	if err != nil {
		log.Printf("[cron] error querying admins: %v", err)
		return
	}
	defer adminRows.Close()

	var adminIDs []string
	for adminRows.Next() {
		var id string
		if adminRows.Scan(&id) == nil {
			adminIDs = append(adminIDs, id)
		}
	}

	inserted := 0
	today := now.Format("2006-01-02")

	for _, d := range drifted {
		title := fmt.Sprintf("Risk tier drift – %s", d.Reference)
		message := fmt.Sprintf(
			"%s (%s) was scored '%s' at submission but evaluates to '%s' (score %d) under current settings.",
			d.CompanyName, d.Reference, d.StoredLevel, d.NewLevel, d.NewScore,
		)

		for _, userID := range adminIDs {
			var exists bool
			_ = pool.QueryRow(ctx, `
				SELECT EXISTS(
					SELECT 1 FROM notifications
					WHERE user_id     = $1
					  AND entity_type = 'assessment'
					  AND entity_id   = $2
					  AND created_at::date = $3::date
				)
			`, userID, d.ID, today).Scan(&exists)

			if exists {
				continue
			}

			_, err := pool.Exec(ctx, `
				INSERT INTO notifications (user_id, title, message, type, entity_type, entity_id)
				VALUES ($1, $2, $3, 'tier_drift', 'assessment', $4)
			`, userID, title, message, d.ID)
			if err != nil {
				log.Printf("[cron] insert notification error: %v", err)
				continue
			}
			inserted++
		}
	}

	log.Printf("[cron] review complete – %d drifted assessments, %d new notifications", len(drifted), inserted)
}
