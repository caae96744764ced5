package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/drcloud/assistant/internal/adapter/llm"
	"github.com/drcloud/assistant/internal/domain"
)

// RootHandler classifies the inbound message and delegates. It never
// answers domain questions itself; its only output is a delegation hint.
type RootHandler struct {
	gen llm.Generator
}

// NewRootHandler creates the classifying handler.
func NewRootHandler(gen llm.Generator) *RootHandler {
	return &RootHandler{gen: gen}
}

func (h *RootHandler) Name() string { return HandlerRoot }

func (h *RootHandler) InputSource() domain.InputSource { return domain.InputUser }

// Invoke asks the generator for an ordered specialist list. The reply is
// parsed leniently; validation of the names is the router's job.
func (h *RootHandler) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.HandlerResult, error) {
	reply, err := h.gen.Generate(ctx, &llm.GenerateRequest{
		System:  rootPrompt,
		History: inv.History,
		Input:   inv.Input,
	})
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	names := parseHandlerList(reply)
	if len(names) == 0 {
		names = fallbackClassify(inv.Input)
	}
	return &domain.HandlerResult{Delegates: names}, nil
}

// parseHandlerList extracts handler name tokens from a classification reply.
func parseHandlerList(reply string) []string {
	var names []string
	for _, line := range strings.Split(reply, "\n") {
		for _, token := range strings.Split(line, ",") {
			token = strings.ToLower(strings.Trim(strings.TrimSpace(token), "`'\"."))
			if token == "" {
				continue
			}
			// Reject prose: names are single snake_case words.
			if strings.ContainsAny(token, " \t") {
				continue
			}
			names = append(names, token)
		}
	}
	return names
}

// fallbackClassify picks specialists by keyword when the generator reply
// parses to nothing. Deterministic, so degraded classification is stable.
func fallbackClassify(input string) []string {
	text := strings.ToLower(input)
	var names []string
	add := func(name string) { names = append(names, name) }

	if containsAny(text, "lab", "result", "blood test") {
		add(HandlerLabResults)
	}
	if containsAny(text, "medication", "drug", "prescription", "pill") {
		add(HandlerMedicationInteraction)
	}
	if containsAny(text, "diet", "sleep", "exercise", "smoking", "alcohol") {
		add(HandlerLifestyle)
	}
	if containsAny(text, "referral", "specialist") {
		add(HandlerSpecialistReferral)
	}
	if len(names) == 0 {
		add(HandlerSymptomAnalysis)
	}
	return names
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
