package models

import (
	"strings"

	"tawteen-backend/internal/risk"
)

// ── Questionnaire Submission ─────────────────────────────────────

// Departure answer values accepted from the questionnaire. "not_sure"
// is normalized conservatively: no grace credit is granted for a
// departure the respondent cannot confirm.
const (
	DepartureYes     = "yes"
	DepartureNo      = "no"
	DepartureNotSure = "not_sure"
)

// SubmitAssessmentRequest is the public questionnaire payload. Contact
// fields are stored with the submission so a consultant can follow up;
// there is no outbound delivery from this service.
type SubmitAssessmentRequest struct {
	CompanyName  string `json:"companyName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone,omitempty"`

	Jurisdiction             string `json:"jurisdiction"` // "mainland" | "freezone"
	Sector                   string `json:"sector"`
	TotalEmployees           int    `json:"totalEmployees"`
	SkilledEmployees         int    `json:"skilledEmployees"`
	CurrentQualifyingWorkers int    `json:"currentQualifyingWorkers"`
	PayrollCompliant         bool   `json:"payrollCompliant"`

	RecentDeparture    string `json:"recentDeparture"` // "yes" | "no" | "not_sure"
	DaysSinceDeparture *int   `json:"daysSinceDeparture,omitempty"`
}

// Validate checks the questionnaire fields. Range checks on the
// workforce numbers are delegated to risk.ValidateProfile so the
// declared input domain lives in exactly one place.
func (r *SubmitAssessmentRequest) Validate() map[string]string {
	errors := map[string]string{}

	if len(strings.TrimSpace(r.CompanyName)) < 2 {
		errors["companyName"] = "Company name is required (min 2 characters)"
	}
	if r.ContactEmail == "" || !strings.Contains(r.ContactEmail, "@") {
		errors["contactEmail"] = "A valid contact email is required"
	}
	if r.Sector == "" {
		errors["sector"] = "Sector is required"
	}
	switch r.RecentDeparture {
	case DepartureYes:
		if r.DaysSinceDeparture == nil {
			errors["daysSinceDeparture"] = "Days since departure is required when a departure is reported"
		}
	case DepartureNo, DepartureNotSure, "":
		// Day count only meaningful for a confirmed departure.
	default:
		errors["recentDeparture"] = "Recent departure must be 'yes', 'no', or 'not_sure'"
	}

	for field, msg := range risk.ValidateProfile(r.Profile()) {
		if _, taken := errors[field]; !taken {
			errors[field] = msg
		}
	}

	return errors
}

// Profile normalizes the questionnaire answers into an engine profile.
// Only a confirmed "yes" carries the departure (and its day count)
// into the evaluation; "no" and "not_sure" drop both.
func (r *SubmitAssessmentRequest) Profile() risk.Profile {
	p := risk.Profile{
		Jurisdiction:               strings.ToLower(strings.TrimSpace(r.Jurisdiction)),
		Sector:                     risk.NormalizeSector(r.Sector),
		TotalEmployees:             r.TotalEmployees,
		SkilledEmployees:           r.SkilledEmployees,
		CurrentQualifyingWorkers:   r.CurrentQualifyingWorkers,
		PayrollComplianceConfirmed: r.PayrollCompliant,
	}
	if r.RecentDeparture == DepartureYes {
		p.RecentDeparture = true
		p.DaysSinceDeparture = r.DaysSinceDeparture
	}
	return p
}

// ── Stored Assessment ────────────────────────────────────────────

// AssessmentRecord is one persisted submission: the profile as
// answered, the computed result, and lookup metadata. The result
// columns are written once at submission time and never recomputed
// in place — re-evaluation against newer settings happens in the
// review job without touching the stored row.
type AssessmentRecord struct {
	ID        string `json:"id"`
	Reference string `json:"reference"`

	CompanyName  string  `json:"companyName"`
	ContactEmail string  `json:"contactEmail"`
	ContactPhone *string `json:"contactPhone,omitempty"`

	Jurisdiction             string `json:"jurisdiction"`
	Sector                   string `json:"sector"`
	TotalEmployees           int    `json:"totalEmployees"`
	SkilledEmployees         int    `json:"skilledEmployees"`
	CurrentQualifyingWorkers int    `json:"currentQualifyingWorkers"`
	PayrollCompliant         bool   `json:"payrollCompliant"`
	RecentDeparture          bool   `json:"recentDeparture"`
	DaysSinceDeparture       *int   `json:"daysSinceDeparture,omitempty"`

	Result risk.Assessment `json:"result"`

	CreatedAt string `json:"createdAt"`
}

// Profile rebuilds the engine input from a stored record, for
// re-evaluation against current settings.
func (a *AssessmentRecord) Profile() risk.Profile {
	return risk.Profile{
		Jurisdiction:               a.Jurisdiction,
		Sector:                     a.Sector,
		TotalEmployees:             a.TotalEmployees,
		SkilledEmployees:           a.SkilledEmployees,
		CurrentQualifyingWorkers:   a.CurrentQualifyingWorkers,
		PayrollComplianceConfirmed: a.PayrollCompliant,
		RecentDeparture:            a.RecentDeparture,
		DaysSinceDeparture:         a.DaysSinceDeparture,
	}
}
