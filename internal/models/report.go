package models

import "tawteen-backend/internal/risk"

// ── Assessment Report ────────────────────────────────────────────

// Report is the rendered view of one assessment: the computed numbers
// plus human-readable findings and a tier-dependent call to action.
// Pure formatting of the stored result — nothing here feeds back into
// the engine.
type Report struct {
	Reference   string          `json:"reference"`
	CompanyName string          `json:"companyName"`
	GeneratedAt string          `json:"generatedAt"`
	Result      risk.Assessment `json:"result"`

	Summary      string   `json:"summary"`
	Findings     []string `json:"findings"`
	NextSteps    []string `json:"nextSteps"`
	CallToAction CTA      `json:"callToAction"`
}

// CTA is the consultation prompt shown at the end of a report.
type CTA struct {
	Headline    string `json:"headline"`
	Body        string `json:"body"`
	ButtonLabel string `json:"buttonLabel"`
}
