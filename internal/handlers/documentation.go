package handlers

import (
	"context"
	"log"

	"github.com/drcloud/assistant/internal/docpipe"
	"github.com/drcloud/assistant/internal/domain"
)

// DocumentationHandler is the terminal stage: it runs the documentation
// pipeline over the full session history. A persistence failure degrades to
// a notice in the reply; the conversational turn still completes.
type DocumentationHandler struct {
	pipe *docpipe.Pipeline
}

// NewDocumentationHandler creates the documentation stage.
func NewDocumentationHandler(pipe *docpipe.Pipeline) *DocumentationHandler {
	return &DocumentationHandler{pipe: pipe}
}

func (h *DocumentationHandler) Name() string { return HandlerClinicalDocumentation }

func (h *DocumentationHandler) InputSource() domain.InputSource { return domain.InputChain }

func (h *DocumentationHandler) Invoke(ctx context.Context, inv *domain.Invocation) (*domain.HandlerResult, error) {
	doc, err := h.pipe.Run(ctx, inv.UserID, inv.SessionID, inv.History)
	if err != nil {
		// Persistence failure is localized here. Favor a degraded
		// confirmation over aborting the turn.
		log.Printf("ERROR: documentation pipeline failed: %v", err)
	}
	return docpipe.Result(doc, err), nil
}
