package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

// mainlandProfile returns a baseline mainland profile tests mutate.
func mainlandProfile() Profile {
	return Profile{
		Jurisdiction:               JurisdictionMainland,
		Sector:                     "construction",
		TotalEmployees:             35,
		SkilledEmployees:           10,
		CurrentQualifyingWorkers:   0,
		PayrollComplianceConfirmed: false,
	}
}

// ── Quota Rules ──────────────────────────────────────────────────

func TestEvaluateDesignatedSmallEstablishment(t *testing.T) {
	cfg := DefaultConfig()

	// 35 employees in a designated sector, nobody qualifying, payroll
	// not confirmed: fixed quota of 2 applies.
	p := mainlandProfile()

	got := Evaluate(p, cfg)

	assert.Equal(t, 2, got.RequiredCount)
	assert.Equal(t, 0, got.ValidCount)
	assert.Equal(t, 2, got.Gap)
	assert.Equal(t, 192000.0, got.FineEstimate)
	assert.Equal(t, 50, got.RiskScore) // 100 - 40 - 10
	assert.Equal(t, LevelMedium, got.RiskLevel)
}

func TestEvaluateBelowAllThresholds(t *testing.T) {
	cfg := DefaultConfig()

	// Non-designated sector, 30 employees, all skilled but below the
	// 50-skilled threshold: no quota, compliant payroll lifts the
	// score past 100 and it clamps.
	p := Profile{
		Jurisdiction:               JurisdictionMainland,
		Sector:                     "agriculture",
		TotalEmployees:             30,
		SkilledEmployees:           30,
		CurrentQualifyingWorkers:   2,
		PayrollComplianceConfirmed: true,
	}

	got := Evaluate(p, cfg)

	assert.Equal(t, 0, got.RequiredCount)
	assert.Equal(t, 0, got.Gap)
	assert.Equal(t, 0.0, got.FineEstimate)
	assert.Equal(t, 100, got.RiskScore)
	assert.Equal(t, LevelLow, got.RiskLevel)
}

func TestEvaluateLargeEstablishmentPercentage(t *testing.T) {
	cfg := DefaultConfig()

	// 60 skilled at 8% → ceil(4.8) = 5 required.
	p := Profile{
		Jurisdiction:               JurisdictionMainland,
		Sector:                     "agriculture",
		TotalEmployees:             80,
		SkilledEmployees:           60,
		CurrentQualifyingWorkers:   2,
		PayrollComplianceConfirmed: true,
	}

	got := Evaluate(p, cfg)

	assert.Equal(t, 5, got.RequiredCount)
	assert.Equal(t, 2, got.ValidCount)
	assert.Equal(t, 3, got.Gap)
	assert.Equal(t, 288000.0, got.FineEstimate)
	assert.Equal(t, 35, got.RiskScore) // 100 - 60 - 10 + 5
	assert.Equal(t, LevelHigh, got.RiskLevel)
}

func TestEvaluateFreezoneAlwaysExempt(t *testing.T) {
	cfg := DefaultConfig()

	// The free-zone exemption must win over every other rule, even for
	// profiles that would otherwise hit the band or percentage quota.
	profiles := []Profile{
		{Jurisdiction: JurisdictionFreezone, Sector: "construction", TotalEmployees: 35, SkilledEmployees: 10},
		{Jurisdiction: JurisdictionFreezone, Sector: "manufacturing", TotalEmployees: 500, SkilledEmployees: 400},
		{Jurisdiction: JurisdictionFreezone, Sector: "unknown_sector", TotalEmployees: 1, SkilledEmployees: 0},
	}

	for _, p := range profiles {
		got := Evaluate(p, cfg)
		assert.Equal(t, 0, got.RequiredCount, "sector %s", p.Sector)
		assert.Equal(t, 0, got.Gap)
		assert.Equal(t, 0.0, got.FineEstimate)
	}
}

func TestEvaluateRulePrecedenceWithOverlappingBands(t *testing.T) {
	// Bands deliberately overlap: 40 total in a designated sector AND
	// 40 skilled over a lowered threshold. The band rule is checked
	// first, so the fixed quota wins.
	cfg := DefaultConfig()
	cfg.LargeEstablishmentThreshold = 30

	p := Profile{
		Jurisdiction:     JurisdictionMainland,
		Sector:           "construction",
		TotalEmployees:   40,
		SkilledEmployees: 40,
	}

	got := Evaluate(p, cfg)
	assert.Equal(t, cfg.SmallEstablishmentQuota, got.RequiredCount)
}

// ── Qualifying Count ─────────────────────────────────────────────

func TestEvaluatePayrollGateZeroesHeadcount(t *testing.T) {
	cfg := DefaultConfig()

	p := mainlandProfile()
	p.CurrentQualifyingWorkers = 4
	p.PayrollComplianceConfirmed = false

	got := Evaluate(p, cfg)
	assert.Equal(t, 0, got.ValidCount, "non-compliant payroll disqualifies the entire headcount")

	p.PayrollComplianceConfirmed = true
	got = Evaluate(p, cfg)
	assert.Equal(t, 4, got.ValidCount)
}

func TestEvaluateGraceBonusIndependentOfPayrollGate(t *testing.T) {
	cfg := DefaultConfig()

	// Departure 45 days ago, inside the 90-day window, payroll NOT
	// confirmed: the base count is gated to zero but the grace bonus
	// still applies.
	p := mainlandProfile()
	p.CurrentQualifyingWorkers = 3
	p.RecentDeparture = true
	p.DaysSinceDeparture = intPtr(45)

	got := Evaluate(p, cfg)
	assert.Equal(t, 1, got.ValidCount)
}

func TestEvaluateGracePeriodBoundaries(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		days *int
		want int
	}{
		{"at window edge", intPtr(90), 1},
		{"past window", intPtr(91), 0},
		{"same day departure", intPtr(0), 1},
		{"missing day count treated as no grace", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mainlandProfile()
			p.RecentDeparture = true
			p.DaysSinceDeparture = tt.days

			got := Evaluate(p, cfg)
			assert.Equal(t, tt.want, got.ValidCount)
		})
	}
}

func TestEvaluateNoDepartureIgnoresDayCount(t *testing.T) {
	cfg := DefaultConfig()

	p := mainlandProfile()
	p.RecentDeparture = false
	p.DaysSinceDeparture = intPtr(10)

	got := Evaluate(p, cfg)
	assert.Equal(t, 0, got.ValidCount)
}

// ── Score Properties ─────────────────────────────────────────────

func TestEvaluateGapNeverNegative(t *testing.T) {
	cfg := DefaultConfig()

	// More qualifying workers than required: surplus never produces a
	// negative gap or a refund.
	p := Profile{
		Jurisdiction:               JurisdictionMainland,
		Sector:                     "construction",
		TotalEmployees:             35,
		SkilledEmployees:           10,
		CurrentQualifyingWorkers:   9,
		PayrollComplianceConfirmed: true,
	}

	got := Evaluate(p, cfg)
	assert.Equal(t, 2, got.RequiredCount)
	assert.Equal(t, 0, got.Gap)
	assert.Equal(t, 0.0, got.FineEstimate)
}

func TestEvaluateScoreClampedForExtremeGaps(t *testing.T) {
	cfg := DefaultConfig()

	// 1000 skilled at 8% → 80 required, nobody qualifying. Raw score
	// would be deeply negative; it must clamp to 0.
	p := Profile{
		Jurisdiction:     JurisdictionMainland,
		Sector:           "agriculture",
		TotalEmployees:   1200,
		SkilledEmployees: 1000,
	}

	got := Evaluate(p, cfg)
	assert.Equal(t, 80, got.RequiredCount)
	assert.Equal(t, 0, got.RiskScore)
	assert.Equal(t, LevelHigh, got.RiskLevel)
}

func TestScoreMonotonicInGap(t *testing.T) {
	prev := 101
	for gap := 0; gap <= 20; gap++ {
		s := score(gap, false)
		require.GreaterOrEqual(t, s, 0)
		require.LessOrEqual(t, s, 100)
		require.LessOrEqual(t, s, prev, "score increased when gap grew to %d", gap)
		prev = s
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	cfg := DefaultConfig()

	p := mainlandProfile()
	p.CurrentQualifyingWorkers = 1
	p.RecentDeparture = true
	p.DaysSinceDeparture = intPtr(30)

	first := Evaluate(p, cfg)
	second := Evaluate(p, cfg)
	assert.Equal(t, first, second)
}

func TestLevelCutoffs(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, LevelLow, Level(100, cfg))
	assert.Equal(t, LevelLow, Level(71, cfg))
	assert.Equal(t, LevelMedium, Level(70, cfg))
	assert.Equal(t, LevelMedium, Level(41, cfg))
	assert.Equal(t, LevelHigh, Level(40, cfg))
	assert.Equal(t, LevelHigh, Level(0, cfg))
}

// ── Sector Classification ────────────────────────────────────────

func TestIsDesignated(t *testing.T) {
	cfg := DefaultConfig()

	assert.True(t, IsDesignated("construction", cfg))
	assert.True(t, IsDesignated("Real Estate", cfg), "display-form names normalize to slugs")
	assert.True(t, IsDesignated("  HOSPITALITY  ", cfg))

	// Unknown sectors fail open to "not designated" — never an error.
	assert.False(t, IsDesignated("space_mining", cfg))
	assert.False(t, IsDesignated("", cfg))
}

func TestNormalizeSector(t *testing.T) {
	assert.Equal(t, "real_estate", NormalizeSector("Real Estate"))
	assert.Equal(t, "financial_and_insurance", NormalizeSector("financial-and-insurance"))
	assert.Equal(t, "education", NormalizeSector(" Education "))
}

// ── Precondition Checks ──────────────────────────────────────────

func TestValidateProfile(t *testing.T) {
	valid := mainlandProfile()
	assert.Empty(t, ValidateProfile(valid))

	tests := []struct {
		name   string
		mutate func(*Profile)
		field  string
	}{
		{"bad jurisdiction", func(p *Profile) { p.Jurisdiction = "offshore" }, "jurisdiction"},
		{"zero employees", func(p *Profile) { p.TotalEmployees = 0 }, "totalEmployees"},
		{"skilled exceeds total", func(p *Profile) { p.SkilledEmployees = 99 }, "skilledEmployees"},
		{"negative skilled", func(p *Profile) { p.SkilledEmployees = -1 }, "skilledEmployees"},
		{"negative qualifying", func(p *Profile) { p.CurrentQualifyingWorkers = -2 }, "currentQualifyingWorkers"},
		{"departure without day count", func(p *Profile) { p.RecentDeparture = true }, "daysSinceDeparture"},
		{"day count out of range", func(p *Profile) {
			p.RecentDeparture = true
			p.DaysSinceDeparture = intPtr(400)
		}, "daysSinceDeparture"},
		{"day count without departure", func(p *Profile) { p.DaysSinceDeparture = intPtr(10) }, "daysSinceDeparture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mainlandProfile()
			tt.mutate(&p)
			errs := ValidateProfile(p)
			assert.Contains(t, errs, tt.field)
		})
	}
}
