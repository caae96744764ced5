package handlers

import (
	"context"
	"fmt"

	"github.com/drcloud/assistant/internal/adapter/llm"
	"github.com/drcloud/assistant/internal/domain"
)

// SymptomHandler sketches likely explanations for free-text symptoms.
type SymptomHandler struct {
	gen llm.Generator
}

// NewSymptomHandler creates the symptom analysis specialist.
func NewSymptomHandler(gen llm.Generator) *SymptomHandler {
	return &SymptomHandler{gen: gen}
}

func (h *SymptomHandler) Name() string { return HandlerSymptomAnalysis }

func (h *SymptomHandler) InputSource() domain.InputSource { return domain.InputUser }

func (h *SymptomHandler) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.HandlerResult, error) {
	reply, err := h.gen.Generate(ctx, &llm.GenerateRequest{
		System:  symptomPrompt,
		History: inv.History,
		Input:   inv.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("symptom analysis failed: %w", err)
	}
	return &domain.HandlerResult{Text: reply}, nil
}
