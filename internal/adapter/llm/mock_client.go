package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockGenerator is a deterministic Generator for tests and MOCK mode.
// Replies depend only on the request, so blocking and streaming runs over
// the same input produce identical text.
type MockGenerator struct{}

// NewMockGenerator creates a new mock generator.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns a canned reply. Classification prompts get a
// comma-separated handler list keyed off the input text; everything else
// gets a short synthetic answer.
func (m *MockGenerator) Generate(ctx context.Context, req *GenerateRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if strings.Contains(req.System, "comma-separated") {
		return m.classify(req.Input), nil
	}

	return fmt.Sprintf("[MOCK] Considered %q in context of %d prior turns. This is a synthetic reply.",
		truncate(req.Input, 80), len(req.History)), nil
}

func (m *MockGenerator) classify(input string) string {
	text := strings.ToLower(input)
	var names []string
	add := func(name string) {
		for _, n := range names {
			if n == name {
				return
			}
		}
		names = append(names, name)
	}

	for _, kw := range []string{"headache", "fever", "pain", "symptom", "cough", "nausea", "dizzy"} {
		if strings.Contains(text, kw) {
			add("symptom_analysis")
		}
	}
	for _, kw := range []string{"lab", "blood test", "result", "cholesterol", "a1c"} {
		if strings.Contains(text, kw) {
			add("lab_results")
		}
	}
	for _, kw := range []string{"medication", "drug", "pill", "prescription", "interaction"} {
		if strings.Contains(text, kw) {
			add("medication_interaction")
		}
	}
	for _, kw := range []string{"diet", "sleep", "exercise", "smoking", "alcohol", "lifestyle"} {
		if strings.Contains(text, kw) {
			add("lifestyle")
		}
	}
	for _, kw := range []string{"specialist", "referral", "refer"} {
		if strings.Contains(text, kw) {
			add("specialist_referral")
		}
	}
	if len(names) == 0 {
		add("symptom_analysis")
	}
	return strings.Join(names, ", ")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
