package handlers

import (
	"context"
	"fmt"

	"github.com/drcloud/assistant/internal/adapter/llm"
	"github.com/drcloud/assistant/internal/domain"
)

// LabHandler interprets lab values mentioned by the patient.
type LabHandler struct {
	gen llm.Generator
}

// NewLabHandler creates the lab result interpreter.
func NewLabHandler(gen llm.Generator) *LabHandler {
	return &LabHandler{gen: gen}
}

func (h *LabHandler) Name() string { return HandlerLabResults }

func (h *LabHandler) InputSource() domain.InputSource { return domain.InputUser }

func (h *LabHandler) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.HandlerResult, error) {
	reply, err := h.gen.Generate(ctx, &llm.GenerateRequest{
		System:  labPrompt,
		History: inv.History,
		Input:   inv.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("lab interpretation failed: %w", err)
	}
	return &domain.HandlerResult{Text: reply}, nil
}
