package models

// ── Sectors ──────────────────────────────────────────────────────

// Sector is a selectable economic activity, stored in the database.
// The is_designated flag feeds the engine's designated-sector set.
type Sector struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	DisplayName  string `json:"displayName"`
	IsDesignated bool   `json:"isDesignated"`
	IsActive     bool   `json:"isActive"`
	SortOrder    int    `json:"sortOrder"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// CreateSectorRequest is used to add a custom sector.
type CreateSectorRequest struct {
	Slug         string `json:"slug"`
	DisplayName  string `json:"displayName"`
	IsDesignated bool   `json:"isDesignated"`
	SortOrder    int    `json:"sortOrder"`
}

// Validate checks required fields for a new sector.
func (r *CreateSectorRequest) Validate() map[string]string {
	errors := map[string]string{}
	if len(r.Slug) < 2 {
		errors["slug"] = "Sector slug is required (min 2 characters)"
	}
	if len(r.DisplayName) < 2 {
		errors["displayName"] = "Display name is required (min 2 characters)"
	}
	return errors
}

// UpdateSectorRequest is used to edit an existing sector.
type UpdateSectorRequest struct {
	DisplayName  *string `json:"displayName,omitempty"`
	IsDesignated *bool   `json:"isDesignated,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
	SortOrder    *int    `json:"sortOrder,omitempty"`
}

// ── Risk Settings ────────────────────────────────────────────────

// RiskSettings is the admin view of the engine tunables — the single
// settings row, every tunable with one declared type and default.
type RiskSettings struct {
	SmallEstablishmentMin       int     `json:"smallEstablishmentMin"`
	SmallEstablishmentMax       int     `json:"smallEstablishmentMax"`
	SmallEstablishmentQuota     int     `json:"smallEstablishmentQuota"`
	LargeEstablishmentThreshold int     `json:"largeEstablishmentThreshold"`
	TargetPercent               float64 `json:"targetPercent"`
	FinePerMissingWorker        float64 `json:"finePerMissingWorker"`
	GracePeriodDays             int     `json:"gracePeriodDays"`
	RiskLowMin                  int     `json:"riskLowMin"`
	RiskMediumMin               int     `json:"riskMediumMin"`
	UpdatedAt                   string  `json:"updatedAt"`
}

// UpdateRiskSettingsRequest carries a full replacement of the settings
// row. Partial updates are deliberately not supported: the thresholds
// are interdependent, so admins always submit the complete set.
type UpdateRiskSettingsRequest struct {
	SmallEstablishmentMin       int     `json:"smallEstablishmentMin"`
	SmallEstablishmentMax       int     `json:"smallEstablishmentMax"`
	SmallEstablishmentQuota     int     `json:"smallEstablishmentQuota"`
	LargeEstablishmentThreshold int     `json:"largeEstablishmentThreshold"`
	TargetPercent               float64 `json:"targetPercent"`
	FinePerMissingWorker        float64 `json:"finePerMissingWorker"`
	GracePeriodDays             int     `json:"gracePeriodDays"`
	RiskLowMin                  int     `json:"riskLowMin"`
	RiskMediumMin               int     `json:"riskMediumMin"`
}

// Validate checks the settings for internal consistency.
func (r *UpdateRiskSettingsRequest) Validate() map[string]string {
	errors := map[string]string{}

	if r.SmallEstablishmentMin < 1 {
		errors["smallEstablishmentMin"] = "Band minimum must be at least 1"
	}
	if r.SmallEstablishmentMax < r.SmallEstablishmentMin {
		errors["smallEstablishmentMax"] = "Band maximum must not be below the minimum"
	}
	if r.SmallEstablishmentQuota < 0 {
		errors["smallEstablishmentQuota"] = "Quota cannot be negative"
	}
	if r.LargeEstablishmentThreshold < 1 {
		errors["largeEstablishmentThreshold"] = "Threshold must be at least 1"
	}
	if r.TargetPercent <= 0 || r.TargetPercent > 100 {
		errors["targetPercent"] = "Target percent must be between 0 and 100"
	}
	if r.FinePerMissingWorker < 0 {
		errors["finePerMissingWorker"] = "Fine amount cannot be negative"
	}
	if r.GracePeriodDays < 0 || r.GracePeriodDays > 365 {
		errors["gracePeriodDays"] = "Grace period must be between 0 and 365 days"
	}
	if r.RiskLowMin < 0 || r.RiskLowMin > 100 {
		errors["riskLowMin"] = "Low-tier cutoff must be between 0 and 100"
	}
	if r.RiskMediumMin < 0 || r.RiskMediumMin > r.RiskLowMin {
		errors["riskMediumMin"] = "Medium-tier cutoff must be between 0 and the low-tier cutoff"
	}

	return errors
}
