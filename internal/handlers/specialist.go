package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/drcloud/assistant/internal/adapter/llm"
	"github.com/drcloud/assistant/internal/domain"
)

// SpecialistHandler decides whether the findings gathered so far warrant a
// referral. It consumes the accumulated chain output rather than the raw
// user message.
type SpecialistHandler struct {
	gen llm.Generator
}

// NewSpecialistHandler creates the referral advisor.
func NewSpecialistHandler(gen llm.Generator) *SpecialistHandler {
	return &SpecialistHandler{gen: gen}
}

func (h *SpecialistHandler) Name() string { return HandlerSpecialistReferral }

func (h *SpecialistHandler) InputSource() domain.InputSource { return domain.InputChain }

type referralPayload struct {
	Refer     bool   `json:"refer"`
	Specialty string `json:"specialty"`
	Urgency   string `json:"urgency"`
	Emergency bool   `json:"emergency"`
}

func (h *SpecialistHandler) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.HandlerResult, error) {
	reply, err := h.gen.Generate(ctx, &llm.GenerateRequest{
		System:  specialistPrompt,
		History: inv.History,
		Input:   inv.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("referral assessment failed: %w", err)
	}

	text, payload := splitTrailingJSON(reply)
	result := &domain.HandlerResult{Text: text, Payload: payload}

	if len(payload) > 0 {
		var ref referralPayload
		if err := json.Unmarshal(payload, &ref); err == nil && ref.Emergency {
			result.Emergency = true
		}
	}
	return result, nil
}
