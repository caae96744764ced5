// Package llm provides an abstraction for the text-generation capability.
package llm

import (
	"context"

	"github.com/drcloud/assistant/internal/domain"
)

// GenerateRequest carries one generation call: a handler's system prompt,
// the conversation context, and the text being handled.
type GenerateRequest struct {
	System  string
	History []domain.Turn
	Input   string
}

// Generator defines the text-generation capability boundary. Failures are
// reported as domain.ErrGeneratorUnavailable or domain.ErrGeneratorRateLimited
// and are handler-level, never fatal to a turn.
type Generator interface {
	Generate(ctx context.Context, req *GenerateRequest) (string, error)
}

// Ensure implementations satisfy the interface.
var (
	_ Generator = (*Client)(nil)
	_ Generator = (*MockGenerator)(nil)
)
