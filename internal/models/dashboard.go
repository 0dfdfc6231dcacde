package models

// ── Dashboard Metrics ────────────────────────────────────────────

// DashboardMetrics holds the headline statistics for the back office.
type DashboardMetrics struct {
	TotalAssessments  int            `json:"totalAssessments"`
	AssessmentsByTier map[string]int `json:"assessmentsByTier"` // risk level → count
	AverageRiskScore  float64        `json:"averageRiskScore"`
	TotalFineExposure float64        `json:"totalFineExposure"` // sum of estimated fines
	NonCompliantShare float64        `json:"nonCompliantShare"` // % of submissions with gap > 0
	SubmissionsLast30 int            `json:"submissionsLast30"`
}

// SectorBreakdown is per-sector submission stats.
type SectorBreakdown struct {
	Sector           string  `json:"sector"`
	Count            int     `json:"count"`
	HighRiskCount    int     `json:"highRiskCount"`
	AverageRiskScore float64 `json:"averageRiskScore"`
	FineExposure     float64 `json:"fineExposure"`
}

// ── Notifications ────────────────────────────────────────────────

// Notification is an in-app alert for a back-office user.
type Notification struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Message    string  `json:"message"`
	Type       string  `json:"type"`
	EntityType *string `json:"entityType,omitempty"`
	EntityID   *string `json:"entityId,omitempty"`
	IsRead     bool    `json:"isRead"`
	CreatedAt  string  `json:"createdAt"`
}

// ── Activity Log ─────────────────────────────────────────────────

// ActivityEntry is one audit-trail row for admin actions.
type ActivityEntry struct {
	ID         string  `json:"id"`
	UserID     *string `json:"userId,omitempty"`
	UserName   *string `json:"userName,omitempty"`
	Action     string  `json:"action"`
	EntityType string  `json:"entityType"`
	EntityID   *string `json:"entityId,omitempty"`
	Details    any     `json:"details,omitempty"`
	CreatedAt  string  `json:"createdAt"`
}
