// Package handlers defines the handler capability contract and the fixed
// registry of specialized reasoning handlers.
package handlers

import (
	"context"

	"github.com/drcloud/assistant/internal/adapter/llm"
	"github.com/drcloud/assistant/internal/docpipe"
	"github.com/drcloud/assistant/internal/domain"
)

// Registered handler names. The set is fixed at process start; adding a
// handler is a compile-time registry change.
const (
	HandlerRoot                  = "dr_cloud"
	HandlerSymptomAnalysis       = "symptom_analysis"
	HandlerLabResults            = "lab_results"
	HandlerMedicationInteraction = "medication_interaction"
	HandlerLifestyle             = "lifestyle"
	HandlerSpecialistReferral    = "specialist_referral"
	HandlerClinicalDocumentation = "clinical_documentation"
)

// Handler is the single capability every specialized handler implements.
// Handlers are stateless between invocations; all state arrives in the
// Invocation.
type Handler interface {
	Name() string
	// InputSource reports whether the handler consumes the raw user message
	// or the accumulated output of prior handlers in the same decision.
	InputSource() domain.InputSource
	Invoke(ctx context.Context, inv *domain.Invocation) (*domain.HandlerResult, error)
}

// Registry is the static mapping from handler name to implementation.
type Registry struct {
	root     Handler
	handlers map[string]Handler
	names    []string
}

// New builds a registry from a root handler and a set of specialists.
func New(root Handler, specialists ...Handler) *Registry {
	r := &Registry{
		root:     root,
		handlers: make(map[string]Handler, len(specialists)),
	}
	for _, h := range specialists {
		r.handlers[h.Name()] = h
		r.names = append(r.names, h.Name())
	}
	return r
}

// NewRegistry builds the standard handler set over one generator and one
// documentation pipeline.
func NewRegistry(gen llm.Generator, pipe *docpipe.Pipeline) *Registry {
	return New(
		NewRootHandler(gen),
		NewSymptomHandler(gen),
		NewLabHandler(gen),
		NewMedicationHandler(gen),
		NewLifestyleHandler(gen),
		NewSpecialistHandler(gen),
		NewDocumentationHandler(pipe),
	)
}

// Root returns the classifying/delegating handler.
func (r *Registry) Root() Handler {
	return r.root
}

// Get looks up a specialist by name.
func (r *Registry) Get(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names returns the specialist names in registration order.
func (r *Registry) Names() []string {
	return r.names
}
