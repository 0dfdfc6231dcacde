// Package settings loads the admin-editable engine configuration from
// the database as an immutable risk.Config snapshot. Every evaluation
// freezes its own snapshot; a settings update mid-request never
// changes an in-flight assessment.
package settings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tawteen-backend/internal/risk"
)

// Load reads the settings row and the designated sector set into a
// risk.Config. Falls back to engine defaults if the settings row is
// missing (fresh database before seeding completed).
func Load(ctx context.Context, pool *pgxpool.Pool) (risk.Config, error) {
	cfg := risk.DefaultConfig()

	err := pool.QueryRow(ctx, `
		SELECT small_establishment_min, small_establishment_max,
		       small_establishment_quota, large_establishment_threshold,
		       target_percent, fine_per_missing_worker, grace_period_days,
		       risk_low_min, risk_medium_min
		FROM risk_settings WHERE id = 1
	`).Scan(
		&cfg.SmallEstablishmentMin, &cfg.SmallEstablishmentMax,
		&cfg.SmallEstablishmentQuota, &cfg.LargeEstablishmentThreshold,
		&cfg.TargetPercent, &cfg.FinePerMissingWorker, &cfg.GracePeriodDays,
		&cfg.RiskLowMin, &cfg.RiskMediumMin,
	)
	if err != nil {
		// Keep the engine defaults but still try to load sectors; the
		// settings row is seeded on bootstrap so this is transient.
		cfg = risk.DefaultConfig()
	}

	rows, err := pool.Query(ctx, `
		SELECT slug FROM sectors WHERE is_designated = TRUE AND is_active = TRUE
	`)
	if err != nil {
		return cfg, fmt.Errorf("load designated sectors: %w", err)
	}
	defer rows.Close()

	designated := map[string]bool{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			continue
		}
		designated[slug] = true
	}
	if len(designated) > 0 {
		cfg.DesignatedSectors = designated
	}

	return cfg, nil
}
