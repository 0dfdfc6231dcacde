package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tawteen-backend/internal/risk"
)

func intPtr(n int) *int { return &n }

func validSubmission() SubmitAssessmentRequest {
	return SubmitAssessmentRequest{
		CompanyName:              "Falcon Contracting LLC",
		ContactEmail:             "ops@falcon.example",
		Jurisdiction:             "mainland",
		Sector:                   "Construction",
		TotalEmployees:           35,
		SkilledEmployees:         10,
		CurrentQualifyingWorkers: 1,
		PayrollCompliant:         true,
		RecentDeparture:          DepartureNo,
	}
}

func TestSubmitRequestValidate(t *testing.T) {
	valid := validSubmission()
	assert.Empty(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SubmitAssessmentRequest)
		field  string
	}{
		{"missing company name", func(r *SubmitAssessmentRequest) { r.CompanyName = " " }, "companyName"},
		{"bad email", func(r *SubmitAssessmentRequest) { r.ContactEmail = "not-an-email" }, "contactEmail"},
		{"missing sector", func(r *SubmitAssessmentRequest) { r.Sector = "" }, "sector"},
		{"bad jurisdiction", func(r *SubmitAssessmentRequest) { r.Jurisdiction = "offshore" }, "jurisdiction"},
		{"skilled exceeds total", func(r *SubmitAssessmentRequest) { r.SkilledEmployees = 99 }, "skilledEmployees"},
		{"departure without days", func(r *SubmitAssessmentRequest) { r.RecentDeparture = DepartureYes }, "daysSinceDeparture"},
		{"unknown departure answer", func(r *SubmitAssessmentRequest) { r.RecentDeparture = "maybe" }, "recentDeparture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSubmission()
			tt.mutate(&req)
			assert.Contains(t, req.Validate(), tt.field)
		})
	}
}

func TestSubmitRequestProfileNormalization(t *testing.T) {
	req := validSubmission()
	req.Jurisdiction = " Mainland "
	req.Sector = "Real Estate"

	p := req.Profile()
	assert.Equal(t, risk.JurisdictionMainland, p.Jurisdiction)
	assert.Equal(t, "real_estate", p.Sector)
}

func TestSubmitRequestDepartureNormalization(t *testing.T) {
	// Only a confirmed "yes" carries the departure into the profile.
	req := validSubmission()
	req.RecentDeparture = DepartureYes
	req.DaysSinceDeparture = intPtr(45)

	p := req.Profile()
	assert.True(t, p.RecentDeparture)
	assert.Equal(t, 45, *p.DaysSinceDeparture)

	// "not_sure" grants no grace credit, even with a day count supplied.
	req.RecentDeparture = DepartureNotSure
	p = req.Profile()
	assert.False(t, p.RecentDeparture)
	assert.Nil(t, p.DaysSinceDeparture)

	// "no" with a stray day count also drops it.
	req.RecentDeparture = DepartureNo
	p = req.Profile()
	assert.False(t, p.RecentDeparture)
	assert.Nil(t, p.DaysSinceDeparture)
}

func TestAssessmentRecordProfileRoundTrip(t *testing.T) {
	rec := AssessmentRecord{
		Jurisdiction:             risk.JurisdictionMainland,
		Sector:                   "construction",
		TotalEmployees:           35,
		SkilledEmployees:         10,
		CurrentQualifyingWorkers: 2,
		PayrollCompliant:         true,
		RecentDeparture:          true,
		DaysSinceDeparture:       intPtr(30),
	}

	p := rec.Profile()
	assert.Equal(t, rec.TotalEmployees, p.TotalEmployees)
	assert.Equal(t, rec.PayrollCompliant, p.PayrollComplianceConfirmed)
	assert.Equal(t, 30, *p.DaysSinceDeparture)
	assert.Empty(t, risk.ValidateProfile(p))
}
