package handlers

import (
	"context"
	"fmt"

	"github.com/drcloud/assistant/internal/adapter/llm"
	"github.com/drcloud/assistant/internal/domain"
)

// LifestyleHandler gives practical recommendations on habits.
type LifestyleHandler struct {
	gen llm.Generator
}

// NewLifestyleHandler creates the lifestyle specialist.
func NewLifestyleHandler(gen llm.Generator) *LifestyleHandler {
	return &LifestyleHandler{gen: gen}
}

func (h *LifestyleHandler) Name() string { return HandlerLifestyle }

func (h *LifestyleHandler) InputSource() domain.InputSource { return domain.InputUser }

func (h *LifestyleHandler) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.HandlerResult, error) {
	reply, err := h.gen.Generate(ctx, &llm.GenerateRequest{
		System:  lifestylePrompt,
		History: inv.History,
		Input:   inv.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("lifestyle advice failed: %w", err)
	}
	return &domain.HandlerResult{Text: reply}, nil
}
