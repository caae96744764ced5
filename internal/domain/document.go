package domain

import "time"

// ClinicalDocument is the structured note produced by the documentation
// pipeline. The persisted form is always de-identified; scrubbing happens
// before the store call, never after.
type ClinicalDocument struct {
	DocumentID string    `json:"document_id"`
	UserID     string    `json:"user_id"`
	SessionID  string    `json:"session_id"`
	CreatedAt  time.Time `json:"created_at"`

	// SOAP sections.
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`

	// Views derived from the structured sections above, never from raw history.
	PatientSummary   string `json:"patient_summary"`
	ClinicianSummary string `json:"clinician_summary"`
}
