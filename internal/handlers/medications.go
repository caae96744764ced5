package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/drcloud/assistant/internal/adapter/llm"
	"github.com/drcloud/assistant/internal/domain"
)

// MedicationHandler checks a medication list for pairwise interactions.
// Its structured payload carries the interaction table when the generator
// emits one.
type MedicationHandler struct {
	gen llm.Generator
}

// NewMedicationHandler creates the medication interaction specialist.
func NewMedicationHandler(gen llm.Generator) *MedicationHandler {
	return &MedicationHandler{gen: gen}
}

func (h *MedicationHandler) Name() string { return HandlerMedicationInteraction }

func (h *MedicationHandler) InputSource() domain.InputSource { return domain.InputUser }

func (h *MedicationHandler) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.HandlerResult, error) {
	reply, err := h.gen.Generate(ctx, &llm.GenerateRequest{
		System:  medicationPrompt,
		History: inv.History,
		Input:   inv.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("medication check failed: %w", err)
	}

	text, payload := splitTrailingJSON(reply)
	return &domain.HandlerResult{Text: text, Payload: payload}, nil
}

// splitTrailingJSON separates a trailing JSON object from the display text.
// Generators are asked to emit structured data on its own line; anything
// unparseable stays in the text untouched.
func splitTrailingJSON(reply string) (string, json.RawMessage) {
	start := strings.Index(reply, "{")
	if start < 0 {
		return strings.TrimSpace(reply), nil
	}
	candidate := strings.TrimSpace(reply[start:])
	if !json.Valid([]byte(candidate)) {
		return strings.TrimSpace(reply), nil
	}
	return strings.TrimSpace(reply[:start]), json.RawMessage(candidate)
}
