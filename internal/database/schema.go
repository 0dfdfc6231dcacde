package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tawteen-backend/internal/risk"
)

// schema is the full DDL, applied idempotently on startup. The product
// ships as a single binary against a managed Postgres — there is no
// separate migration tool in the deployment.
const schema = `
CREATE EXTENSION IF NOT EXISTS pgcrypto;

CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'viewer',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sectors (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	slug          TEXT NOT NULL UNIQUE,
	display_name  TEXT NOT NULL,
	is_designated BOOLEAN NOT NULL DEFAULT FALSE,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE,
	sort_order    INT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS risk_settings (
	id                            SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	small_establishment_min       INT NOT NULL,
	small_establishment_max       INT NOT NULL,
	small_establishment_quota     INT NOT NULL,
	large_establishment_threshold INT NOT NULL,
	target_percent                NUMERIC(5,2) NOT NULL,
	fine_per_missing_worker       NUMERIC(12,2) NOT NULL,
	grace_period_days             INT NOT NULL,
	risk_low_min                  INT NOT NULL,
	risk_medium_min               INT NOT NULL,
	updated_at                    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS assessments (
	id                           UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	reference                    TEXT NOT NULL UNIQUE,
	company_name                 TEXT NOT NULL,
	contact_email                TEXT NOT NULL,
	contact_phone                TEXT,
	jurisdiction                 TEXT NOT NULL,
	sector                       TEXT NOT NULL,
	total_employees              INT NOT NULL,
	skilled_employees            INT NOT NULL,
	current_qualifying_workers   INT NOT NULL,
	payroll_compliance_confirmed BOOLEAN NOT NULL,
	recent_departure             BOOLEAN NOT NULL,
	days_since_departure         INT,
	required_count               INT NOT NULL,
	valid_count                  INT NOT NULL,
	gap                          INT NOT NULL,
	fine_estimate                NUMERIC(14,2) NOT NULL,
	risk_score                   INT NOT NULL,
	risk_level                   TEXT NOT NULL,
	created_at                   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_assessments_created_at ON assessments (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_assessments_risk_level ON assessments (risk_level);

CREATE TABLE IF NOT EXISTS notifications (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id     UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	title       TEXT NOT NULL,
	message     TEXT NOT NULL,
	type        TEXT NOT NULL,
	entity_type TEXT,
	entity_id   TEXT,
	is_read     BOOLEAN NOT NULL DEFAULT FALSE,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, is_read);

CREATE TABLE IF NOT EXISTS activity_log (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	user_id     UUID,
	action      TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id   TEXT,
	details     JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// sectorSeed lists the selectable economic activities shown on the
// questionnaire. Designation flags follow risk.DefaultDesignatedSectors.
var sectorSeed = []struct {
	Slug        string
	DisplayName string
}{
	{"information_and_communications", "Information & Communications"},
	{"financial_and_insurance", "Financial & Insurance Activities"},
	{"real_estate", "Real Estate"},
	{"professional_and_technical", "Professional & Technical Activities"},
	{"administrative_and_support", "Administrative & Support Services"},
	{"education", "Education"},
	{"healthcare_and_social_work", "Healthcare & Social Work"},
	{"arts_and_entertainment", "Arts & Entertainment"},
	{"mining_and_quarrying", "Mining & Quarrying"},
	{"manufacturing", "Manufacturing"},
	{"construction", "Construction"},
	{"wholesale_and_retail", "Wholesale & Retail Trade"},
	{"transportation_and_storage", "Transportation & Storage"},
	{"hospitality", "Accommodation & Food Services"},
	{"agriculture", "Agriculture"},
	{"other", "Other"},
}

// bootstrap applies the DDL and seeds reference data that must exist
// before the first request: the sector list and the engine defaults.
func bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	designated := make(map[string]bool, len(risk.DefaultDesignatedSectors))
	for _, slug := range risk.DefaultDesignatedSectors {
		designated[slug] = true
	}

	for i, s := range sectorSeed {
		_, err := pool.Exec(ctx, `
			INSERT INTO sectors (slug, display_name, is_designated, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO NOTHING
		`, s.Slug, s.DisplayName, designated[s.Slug], i)
		if err != nil {
			return fmt.Errorf("seed sector %s: %w", s.Slug, err)
		}
	}

	def := risk.DefaultConfig()
	_, err := pool.Exec(ctx, `
		INSERT INTO risk_settings (
			id, small_establishment_min, small_establishment_max,
			small_establishment_quota, large_establishment_threshold,
			target_percent, fine_per_missing_worker, grace_period_days,
			risk_low_min, risk_medium_min
		)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`, def.SmallEstablishmentMin, def.SmallEstablishmentMax,
		def.SmallEstablishmentQuota, def.LargeEstablishmentThreshold,
		def.TargetPercent, def.FinePerMissingWorker, def.GracePeriodDays,
		def.RiskLowMin, def.RiskMediumMin)
	if err != nil {
		return fmt.Errorf("seed risk settings: %w", err)
	}

	return nil
}
