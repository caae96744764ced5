// Package docpipe implements the clinical documentation pipeline:
// de-identification, SOAP structuring, and persistence.
package docpipe

import "regexp"

// redaction pairs a direct-identifier pattern with its replacement token.
type redaction struct {
	re    *regexp.Regexp
	token string
}

// Deidentifier removes direct identifiers from free text before it is
// persisted. Scrubbing always happens before the store call, never after.
type Deidentifier struct {
	redactions []redaction
}

// NewDeidentifier compiles the identifier patterns.
func NewDeidentifier() *Deidentifier {
	return &Deidentifier{
		redactions: []redaction{
			// Emails
			{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[REDACTED_EMAIL]"},
			// Phone numbers, with and without area code
			{regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`), "[REDACTED_PHONE]"},
			{regexp.MustCompile(`\b\d{3}[-.]\d{4}\b`), "[REDACTED_PHONE]"},
			// Dates
			{regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`), "[REDACTED_DATE]"},
			// Street addresses
			{regexp.MustCompile(`\d{1,5}\s[\w\s.,#-]+(?:Street|St|Avenue|Ave|Road|Rd|Lane|Ln|Blvd|Drive|Dr)\b`), "[REDACTED_ADDRESS]"},
			// MRN / ID-like patterns
			{regexp.MustCompile(`\bMRN[:\s]*\d+\b`), "[REDACTED_MRN]"},
			{regexp.MustCompile(`\bID[:\s]*\d+\b`), "[REDACTED_ID]"},
			// Person names (simple capitalized full-name heuristic)
			{regexp.MustCompile(`\b([A-Z][a-z]+(?:\s[A-Z][a-z]+)+)\b`), "[REDACTED_NAME]"},
		},
	}
}

// Scrub replaces every identifier match with its redaction token.
func (d *Deidentifier) Scrub(text string) string {
	for _, r := range d.redactions {
		text = r.re.ReplaceAllString(text, r.token)
	}
	return text
}

// Clean scrubs a segment and reports whether the result is safe to store.
// A segment that still matches an identifier pattern after scrubbing is not
// confidently parseable; the caller must omit it rather than store it raw.
func (d *Deidentifier) Clean(text string) (string, bool) {
	scrubbed := d.Scrub(text)
	for _, r := range d.redactions {
		if r.re.MatchString(scrubbed) {
			return "", false
		}
	}
	return scrubbed, true
}
