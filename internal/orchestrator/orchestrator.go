// Package orchestrator implements the routing state machine: it classifies
// each inbound message, sequences handler invocations, merges their outputs,
// and appends the resulting assistant turn. One code path serves both the
// blocking and the streaming delivery modes.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/drcloud/assistant/config"
	"github.com/drcloud/assistant/internal/domain"
	"github.com/drcloud/assistant/internal/handlers"
	"github.com/drcloud/assistant/internal/store"
	"github.com/drcloud/assistant/policy"
)

// fallbackSegment replaces the output of a failed handler invocation.
const fallbackSegment = "Sorry, that part of your question could not be answered right now."

// emergencyAdvisory leads the reply when any handler reports a
// life-threatening finding.
const emergencyAdvisory = "Some findings may need urgent attention. If this is an emergency, call your local emergency number now."

// EmitFunc receives delivery events strictly in state-machine order. A
// non-nil return stops further emission; it never aborts orchestration.
type EmitFunc func(domain.Event) error

// Orchestrator is the router over the conversation store, the handler
// registry, and the encounter policy.
type Orchestrator struct {
	store    store.Store
	registry *handlers.Registry
	policy   *policy.Engine
	cfg      *config.Config
}

// New creates an orchestrator.
func New(st store.Store, registry *handlers.Registry, pol *policy.Engine, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		store:    st,
		registry: registry,
		policy:   pol,
		cfg:      cfg,
	}
}

// Chat runs the state machine to completion and returns the single reply.
func (o *Orchestrator) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	return o.run(ctx, req, nil)
}

// ChatStream runs the same state machine, emitting one thinking event per
// handler start, one response event per handler completion, and exactly one
// terminal complete or error event.
func (o *Orchestrator) ChatStream(ctx context.Context, req *domain.ChatRequest, emit EmitFunc) error {
	sink := &eventSink{emit: emit}
	resp, err := o.run(ctx, req, sink.send)
	if err != nil {
		sink.send(domain.Event{
			Type:    domain.EventTypeError,
			Content: err.Error(),
			Metadata: map[string]any{
				"kind": string(domain.KindOf(err)),
			},
		})
		return err
	}
	sink.send(domain.Event{
		Type:     domain.EventTypeComplete,
		Content:  resp.Response,
		Author:   handlers.HandlerRoot,
		Metadata: resp.Metadata,
	})
	return nil
}

// eventSink disables itself after the first emit error: a disconnected
// consumer stops emission but never rolls back appended turns.
type eventSink struct {
	emit    EmitFunc
	stopped bool
}

func (s *eventSink) send(ev domain.Event) error {
	if s.emit == nil || s.stopped {
		return nil
	}
	if err := s.emit(ev); err != nil {
		log.Printf("WARN: event consumer gone, stopping emission: %v", err)
		s.stopped = true
	}
	return nil
}

func (o *Orchestrator) run(ctx context.Context, req *domain.ChatRequest, emit EmitFunc) (*domain.ChatResponse, error) {
	// Received
	if req.UserID == "" || req.SessionID == "" || strings.TrimSpace(req.Message) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if _, err := o.store.GetSession(ctx, req.UserID, req.SessionID); err != nil {
		return nil, err
	}
	history, err := o.store.GetHistory(ctx, req.UserID, req.SessionID)
	if err != nil {
		return nil, err
	}

	// Classifying
	if emit != nil {
		emit(domain.Event{Type: domain.EventTypeThinking, Author: o.registry.Root().Name()})
	}
	decision, delegates, err := o.classify(ctx, req, history)
	if err != nil {
		return nil, err
	}

	// Encounter policy: may force the documentation stage onto the decision.
	o.applyPolicy(ctx, req, history, delegates, decision)

	// The turn is now answerable: record the user message.
	userTurn := &domain.Turn{Role: domain.RoleUser, Content: req.Message}
	if err := o.store.AppendTurn(ctx, req.UserID, req.SessionID, userTurn); err != nil {
		return nil, err
	}
	history = append(history, *userTurn)

	// Dispatching
	out := o.dispatch(ctx, req, history, decision, emit)

	// Merging: deterministic invocation order, never completion order.
	text := strings.Join(out.segments, "\n\n")
	if out.emergency {
		text = emergencyAdvisory + "\n\n" + text
	}

	metadata := map[string]any{
		"handlers":  out.calls,
		"truncated": out.truncated,
	}
	if out.emergency {
		metadata["escalation"] = true
	}
	if len(out.document) > 0 {
		metadata["document"] = out.document
	}

	// Completed: the merged text becomes the assistant turn.
	assistantTurn := &domain.Turn{
		Role:    domain.RoleAssistant,
		Handler: strings.Join(out.authors, ","),
		Content: text,
	}
	if err := o.store.AppendTurn(ctx, req.UserID, req.SessionID, assistantTurn); err != nil {
		return nil, err
	}

	return &domain.ChatResponse{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Response:  text,
		Metadata:  metadata,
	}, nil
}

// classify invokes the root handler and validates its delegation hint into
// a RoutingDecision. Unknown names fail the turn with a routing error.
func (o *Orchestrator) classify(ctx context.Context, req *domain.ChatRequest, history []domain.Turn) (*domain.RoutingDecision, []string, error) {
	stepCtx, cancel := context.WithTimeout(ctx, o.cfg.HandlerTimeout)
	defer cancel()

	result, err := o.registry.Root().Invoke(stepCtx, &domain.Invocation{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		History:   history,
		Input:     req.Message,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrClassificationFailed, err)
	}

	decision := &domain.RoutingDecision{}
	group := 0
	prevChained := false
	for _, name := range result.Delegates {
		h, ok := o.registry.Get(name)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownHandler, name)
		}
		// Chain-input steps depend on everything before them; each gets its
		// own group. User-input steps are independent and share one.
		if h.InputSource() == domain.InputChain || prevChained {
			group++
		}
		prevChained = h.InputSource() == domain.InputChain
		decision.Steps = append(decision.Steps, domain.RoutingStep{
			Handler: name,
			Input:   h.InputSource(),
			Group:   group,
		})
	}
	return decision, result.Delegates, nil
}

// applyPolicy appends the documentation stage when the encounter policy
// says the conversation has reached its closing point.
func (o *Orchestrator) applyPolicy(ctx context.Context, req *domain.ChatRequest, history []domain.Turn, delegates []string, decision *domain.RoutingDecision) {
	verdict, err := o.policy.Evaluate(ctx, policy.Input{
		Message:   req.Message,
		Delegates: delegates,
		TurnCount: len(history),
	})
	if err != nil {
		log.Printf("WARN: encounter policy evaluation failed: %v", err)
		return
	}
	if verdict != policy.DecisionDocument {
		return
	}
	for _, step := range decision.Steps {
		if step.Handler == handlers.HandlerClinicalDocumentation {
			return
		}
	}
	group := 0
	if n := len(decision.Steps); n > 0 {
		group = decision.Steps[n-1].Group + 1
	}
	decision.Steps = append(decision.Steps, domain.RoutingStep{
		Handler: handlers.HandlerClinicalDocumentation,
		Input:   domain.InputChain,
		Group:   group,
	})
}

// dispatchOutput accumulates the results of one decision.
type dispatchOutput struct {
	segments  []string
	authors   []string
	calls     *domain.CallMetadata
	truncated bool
	emergency bool
	document  json.RawMessage
}

type stepResult struct {
	result *domain.HandlerResult
	err    error
}

// dispatch invokes the decided steps. Steps sharing a group run
// concurrently; results are merged by step order. Delegation hints extend
// the chain up to the configured depth bound.
func (o *Orchestrator) dispatch(ctx context.Context, req *domain.ChatRequest, history []domain.Turn, decision *domain.RoutingDecision, emit EmitFunc) *dispatchOutput {
	out := &dispatchOutput{calls: domain.NewCallMetadata()}
	out.truncated = decision.Truncated

	steps := decision.Steps
	invocations := 0

	for len(steps) > 0 {
		// Collect the leading group.
		group := []domain.RoutingStep{steps[0]}
		for len(group) < len(steps) && steps[len(group)].Group == steps[0].Group {
			group = append(group, steps[len(group)])
		}
		steps = steps[len(group):]

		chainInput := strings.Join(out.segments, "\n\n")
		if chainInput == "" {
			chainInput = req.Message
		}

		for _, step := range group {
			if emit != nil {
				emit(domain.Event{Type: domain.EventTypeThinking, Author: step.Handler})
			}
		}

		results := make([]stepResult, len(group))
		var wg sync.WaitGroup
		for i, step := range group {
			wg.Add(1)
			go func(i int, step domain.RoutingStep) {
				defer wg.Done()
				results[i] = o.invokeStep(ctx, req, history, step, chainInput)
			}(i, step)
		}
		wg.Wait()
		invocations += len(group)

		// Fold results in step order, never completion order.
		for i, step := range group {
			res := results[i]
			out.calls.Record(step.Handler, res.err)

			if res.err != nil {
				log.Printf("WARN: handler %s failed: %v", step.Handler, res.err)
				out.segments = append(out.segments, fallbackSegment)
				out.authors = append(out.authors, step.Handler)
				if emit != nil {
					emit(domain.Event{Type: domain.EventTypeResponse, Author: step.Handler, Content: fallbackSegment})
				}
				continue
			}

			result := res.result
			if result.Emergency {
				out.emergency = true
			}
			if step.Handler == handlers.HandlerClinicalDocumentation {
				out.document = result.Payload
			}
			if result.Text != "" {
				out.segments = append(out.segments, result.Text)
				out.authors = append(out.authors, step.Handler)
				if emit != nil {
					emit(domain.Event{Type: domain.EventTypeResponse, Author: step.Handler, Content: result.Text})
				}
				// Handler-internal turn: the documentation pipeline and later
				// chain steps read these back out of history.
				turn := &domain.Turn{
					Role:    domain.RoleHandler,
					Handler: step.Handler,
					Content: result.Text,
					Payload: result.Payload,
				}
				if err := o.store.AppendTurn(ctx, req.UserID, req.SessionID, turn); err != nil {
					log.Printf("ERROR: failed to record handler turn: %v", err)
				} else {
					history = append(history, *turn)
				}
			}

			// Delegation hints extend the chain, bounded to guarantee
			// termination even when handlers form a hint cycle.
			if result.Stop {
				continue
			}
			for _, name := range result.Delegates {
				next, ok := o.registry.Get(name)
				if !ok {
					log.Printf("WARN: handler %s hinted unknown handler %q, ignoring", step.Handler, name)
					continue
				}
				if invocations+len(steps) >= o.cfg.MaxChainDepth {
					out.truncated = true
					continue
				}
				nextGroup := step.Group + 1
				if n := len(steps); n > 0 {
					nextGroup = steps[n-1].Group + 1
				}
				steps = append(steps, domain.RoutingStep{
					Handler: name,
					Input:   next.InputSource(),
					Group:   nextGroup,
				})
			}
		}
	}

	return out
}

// invokeStep runs one handler invocation under the per-step timeout.
func (o *Orchestrator) invokeStep(ctx context.Context, req *domain.ChatRequest, history []domain.Turn, step domain.RoutingStep, chainInput string) stepResult {
	stepCtx, cancel := context.WithTimeout(ctx, o.cfg.HandlerTimeout)
	defer cancel()

	h, ok := o.registry.Get(step.Handler)
	if !ok {
		return stepResult{err: fmt.Errorf("%w: %q", domain.ErrUnknownHandler, step.Handler)}
	}

	input := req.Message
	if step.Input == domain.InputChain {
		input = chainInput
	}

	result, err := h.Invoke(stepCtx, &domain.Invocation{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		History:   history,
		Input:     input,
	})
	if err != nil {
		return stepResult{err: err}
	}
	return stepResult{result: result}
}
