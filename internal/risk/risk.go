// Package risk implements the Emiratisation workforce-compliance risk engine.
// These functions have ZERO dependencies on HTTP, database, or any other
// infrastructure — making them trivially testable and safe to call
// concurrently. All tunables arrive through an explicit Config snapshot;
// the engine never reads global state.
package risk

import (
	"math"
	"strings"
)

// ── Jurisdiction Constants ───────────────────────────────────────

const (
	JurisdictionMainland = "mainland"
	JurisdictionFreezone = "freezone"
)

// ── Risk Tier Constants ──────────────────────────────────────────
// Tier is always derived from the numeric score via the configured
// cutoffs. It is never stored independently of its score.

const (
	LevelLow    = "low"    // Score >= RiskLowMin
	LevelMedium = "medium" // Score >= RiskMediumMin
	LevelHigh   = "high"   // Everything below
)

// ── Input / Output Types ─────────────────────────────────────────

// Profile is the immutable workforce snapshot for one assessment.
// Callers are expected to range-validate fields before evaluation
// (see ValidateProfile); Evaluate assumes the preconditions hold.
type Profile struct {
	Jurisdiction               string
	Sector                     string
	TotalEmployees             int
	SkilledEmployees           int
	CurrentQualifyingWorkers   int
	PayrollComplianceConfirmed bool
	RecentDeparture            bool
	DaysSinceDeparture         *int // required when RecentDeparture is true
}

// Config holds every tunable the engine reads. Admin-edited values are
// frozen into a Config before each evaluation, so a mid-flight settings
// update never changes the outcome of an in-progress assessment.
type Config struct {
	DesignatedSectors map[string]bool

	SmallEstablishmentMin   int
	SmallEstablishmentMax   int
	SmallEstablishmentQuota int

	LargeEstablishmentThreshold int
	TargetPercent               float64

	FinePerMissingWorker float64
	GracePeriodDays      int

	RiskLowMin    int
	RiskMediumMin int
}

// Assessment is the full output of one evaluation.
type Assessment struct {
	RequiredCount int     `json:"requiredCount"`
	ValidCount    int     `json:"validCount"`
	Gap           int     `json:"gap"`
	FineEstimate  float64 `json:"fineEstimate"`
	RiskScore     int     `json:"riskScore"`
	RiskLevel     string  `json:"riskLevel"`
}

// ── Default Configuration ────────────────────────────────────────
// Seeded into the settings table on first boot and used as a fallback
// when the table is empty. Values mirror the MOHRE fine schedule:
// AED 96,000 per missing Emirati hire per year, 8% skilled-workforce
// target for 50+ establishments, fixed 2-hire quota for designated
// sectors with 20–49 employees.

// DefaultDesignatedSectors lists the economic activities subject to the
// small-establishment fixed quota.
var DefaultDesignatedSectors = []string{
	"information_and_communications",
	"financial_and_insurance",
	"real_estate",
	"professional_and_technical",
	"administrative_and_support",
	"education",
	"healthcare_and_social_work",
	"arts_and_entertainment",
	"mining_and_quarrying",
	"manufacturing",
	"construction",
	"wholesale_and_retail",
	"transportation_and_storage",
	"hospitality",
}

// DefaultConfig returns the engine defaults used until an admin edits
// the stored settings.
func DefaultConfig() Config {
	designated := make(map[string]bool, len(DefaultDesignatedSectors))
	for _, s := range DefaultDesignatedSectors {
		designated[s] = true
	}
	return Config{
		DesignatedSectors:           designated,
		SmallEstablishmentMin:       20,
		SmallEstablishmentMax:       49,
		SmallEstablishmentQuota:     2,
		LargeEstablishmentThreshold: 50,
		TargetPercent:               8,
		FinePerMissingWorker:        96000,
		GracePeriodDays:             90,
		RiskLowMin:                  71,
		RiskMediumMin:               41,
	}
}

// ── Sector Classification ────────────────────────────────────────

// IsDesignated reports whether a sector is subject to the fixed
// small-establishment quota. Unrecognized sectors are NOT designated:
// an unknown activity must never block the headcount-based rules, so
// classification fails open rather than erroring.
func IsDesignated(sector string, cfg Config) bool {
	return cfg.DesignatedSectors[NormalizeSector(sector)]
}

// NormalizeSector canonicalizes a sector name to its slug form so that
// form values ("Real Estate") and stored slugs ("real_estate") compare
// equal.
func NormalizeSector(sector string) string {
	s := strings.ToLower(strings.TrimSpace(sector))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// ── Evaluation ───────────────────────────────────────────────────

// Evaluate runs the full rule chain over one profile and returns the
// computed assessment. Pure and deterministic: identical inputs always
// produce identical outputs.
func Evaluate(p Profile, cfg Config) Assessment {
	required := requiredQuota(p, cfg)
	valid := qualifyingCount(p, cfg)

	gap := required - valid
	if gap < 0 {
		gap = 0
	}

	sc := score(gap, p.PayrollComplianceConfirmed)

	return Assessment{
		RequiredCount: required,
		ValidCount:    valid,
		Gap:           gap,
		FineEstimate:  float64(gap) * cfg.FinePerMissingWorker,
		RiskScore:     sc,
		RiskLevel:     Level(sc, cfg),
	}
}

// requiredQuota applies the quota rules in strict order; the first
// matching rule wins. The bands are not assumed disjoint — order is
// what resolves any overlap.
func requiredQuota(p Profile, cfg Config) int {
	// Rule 1: free-zone entities are categorically exempt, regardless
	// of headcount or sector.
	if p.Jurisdiction == JurisdictionFreezone {
		return 0
	}

	// Rule 2: fixed quota for designated sectors in the 20–49 band.
	if p.TotalEmployees >= cfg.SmallEstablishmentMin &&
		p.TotalEmployees <= cfg.SmallEstablishmentMax &&
		IsDesignated(p.Sector, cfg) {
		return cfg.SmallEstablishmentQuota
	}

	// Rule 3: percentage quota for large establishments, computed on
	// the skilled headcount and rounded up.
	if p.SkilledEmployees >= cfg.LargeEstablishmentThreshold {
		return int(math.Ceil(float64(p.SkilledEmployees) * cfg.TargetPercent / 100))
	}

	// Below every threshold — no quota applies.
	return 0
}

// qualifyingCount computes how many hires count toward the quota.
// Non-compliant WPS/pension status disqualifies the entire current
// headcount — an all-or-nothing gate, not partial credit. The grace
// bonus for a recent departure is an independent additive term and
// applies even when the gate zeroes the base count.
func qualifyingCount(p Profile, cfg Config) int {
	count := 0
	if p.PayrollComplianceConfirmed {
		count = p.CurrentQualifyingWorkers
	}
	if withinGracePeriod(p, cfg) {
		count++
	}
	return count
}

// withinGracePeriod reports whether a departed qualifying worker still
// counts as employed. A missing day count means the grace window does
// not apply; it is never an error here — upstream validation rejects
// the combination before it reaches the engine.
func withinGracePeriod(p Profile, cfg Config) bool {
	if !p.RecentDeparture || p.DaysSinceDeparture == nil {
		return false
	}
	return *p.DaysSinceDeparture <= cfg.GracePeriodDays
}

// score maps a compliance gap to a 0–100 risk score.
// Each missing hire costs 20 points, a gap of two or more costs a
// further 10, and confirmed payroll compliance earns 5 back.
func score(gap int, payrollCompliant bool) int {
	s := 100 - gap*20
	if gap >= 2 {
		s -= 10
	}
	if payrollCompliant {
		s += 5
	}
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return s
}

// Level maps a clamped score to its tier using the configured cutoffs.
func Level(score int, cfg Config) string {
	switch {
	case score >= cfg.RiskLowMin:
		return LevelLow
	case score >= cfg.RiskMediumMin:
		return LevelMedium
	default:
		return LevelHigh
	}
}

// ── Precondition Checks ──────────────────────────────────────────

// ValidateProfile checks the declared input domain. The engine itself
// does not call this — violations are a caller bug, not a business
// outcome — but handlers and tests share this one implementation.
func ValidateProfile(p Profile) map[string]string {
	errors := map[string]string{}

	if p.Jurisdiction != JurisdictionMainland && p.Jurisdiction != JurisdictionFreezone {
		errors["jurisdiction"] = "Jurisdiction must be 'mainland' or 'freezone'"
	}
	if p.TotalEmployees < 1 {
		errors["totalEmployees"] = "Total employees must be at least 1"
	}
	if p.SkilledEmployees < 0 || p.SkilledEmployees > p.TotalEmployees {
		errors["skilledEmployees"] = "Skilled employees must be between 0 and total employees"
	}
	if p.CurrentQualifyingWorkers < 0 {
		errors["currentQualifyingWorkers"] = "Current Emirati headcount cannot be negative"
	}
	if p.RecentDeparture {
		if p.DaysSinceDeparture == nil {
			errors["daysSinceDeparture"] = "Days since departure is required when a recent departure is reported"
		} else if *p.DaysSinceDeparture < 0 || *p.DaysSinceDeparture > 365 {
			errors["daysSinceDeparture"] = "Days since departure must be between 0 and 365"
		}
	} else if p.DaysSinceDeparture != nil {
		errors["daysSinceDeparture"] = "Days since departure only applies when a recent departure is reported"
	}

	return errors
}
