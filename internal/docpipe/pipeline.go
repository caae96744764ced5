package docpipe

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/drcloud/assistant/internal/adapter/docstore"
	"github.com/drcloud/assistant/internal/domain"
)

// Pipeline turns a session's history into a de-identified structured
// clinical document and persists it.
type Pipeline struct {
	docs docstore.DocStore
	deid *Deidentifier
}

// New creates a documentation pipeline over the given document store.
func New(docs docstore.DocStore) *Pipeline {
	return &Pipeline{
		docs: docs,
		deid: NewDeidentifier(),
	}
}

// Handler names whose output lands in each SOAP section.
var (
	objectiveHandlers  = map[string]bool{"lab_results": true}
	assessmentHandlers = map[string]bool{"symptom_analysis": true, "specialist_referral": true}
	planHandlers       = map[string]bool{"medication_interaction": true, "lifestyle": true}
)

// Run executes the pipeline for one session. The returned error is a
// persistence failure; the conversational turn must still complete, so
// callers log it and degrade rather than abort.
func (p *Pipeline) Run(ctx context.Context, userID, sessionID string, history []domain.Turn) (*domain.ClinicalDocument, error) {
	var subjective, objective, assessment, plan []string

	for _, turn := range history {
		// De-identify before anything else touches storage-bound text. A
		// segment that cannot be scrubbed confidently is dropped, not stored raw.
		text, ok := p.deid.Clean(turn.Content)
		if !ok {
			log.Printf("WARN: dropping unscrubable segment from turn %s", turn.TurnID)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		switch {
		case turn.Role == domain.RoleUser:
			subjective = append(subjective, text)
		case objectiveHandlers[turn.Handler]:
			objective = append(objective, text)
		case assessmentHandlers[turn.Handler]:
			assessment = append(assessment, text)
		case planHandlers[turn.Handler]:
			plan = append(plan, text)
		}
	}

	doc := &domain.ClinicalDocument{
		UserID:     userID,
		SessionID:  sessionID,
		CreatedAt:  time.Now().UTC(),
		Subjective: strings.Join(subjective, "\n"),
		Objective:  strings.Join(objective, "\n"),
		Assessment: strings.Join(assessment, "\n"),
		Plan:       strings.Join(plan, "\n"),
	}
	// Both views derive from the structured document only.
	doc.PatientSummary = patientView(doc)
	doc.ClinicianSummary = clinicianView(doc)

	if _, err := p.docs.Put(ctx, docstore.CollectionClinicalDocuments, doc); err != nil {
		return nil, fmt.Errorf("failed to persist document: %w", err)
	}
	return doc, nil
}

// Result wraps a pipeline outcome as a HandlerResult for the router.
func Result(doc *domain.ClinicalDocument, err error) *domain.HandlerResult {
	if err != nil {
		return &domain.HandlerResult{
			Text:    "Your visit summary could not be stored right now. Your conversation is unaffected.",
			Payload: json.RawMessage(`{"stored": false}`),
			Stop:    true,
		}
	}
	payload, _ := json.Marshal(map[string]any{
		"stored":      true,
		"document_id": doc.DocumentID,
	})
	return &domain.HandlerResult{
		Text:    "A summary of this visit has been recorded.",
		Payload: payload,
		Stop:    true,
	}
}

func patientView(doc *domain.ClinicalDocument) string {
	var b strings.Builder
	b.WriteString("Here is a plain-language summary of your visit.\n")
	if doc.Subjective != "" {
		b.WriteString("\nWhat you told us:\n" + doc.Subjective + "\n")
	}
	if doc.Assessment != "" {
		b.WriteString("\nWhat we found:\n" + doc.Assessment + "\n")
	}
	if doc.Plan != "" {
		b.WriteString("\nNext steps:\n" + doc.Plan + "\n")
	}
	return b.String()
}

func clinicianView(doc *domain.ClinicalDocument) string {
	var b strings.Builder
	b.WriteString("Encounter note (de-identified).\n")
	b.WriteString("\nS: " + emptyDash(doc.Subjective))
	b.WriteString("\nO: " + emptyDash(doc.Objective))
	b.WriteString("\nA: " + emptyDash(doc.Assessment))
	b.WriteString("\nP: " + emptyDash(doc.Plan))
	return b.String()
}

func emptyDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
