package domain

import "encoding/json"

// RoutingStep is one planned handler invocation. Steps sharing a Group have
// no dependency edge between them and may run concurrently; their results
// are still merged in step order.
type RoutingStep struct {
	Handler string
	Input   InputSource
	Group   int
}

// RoutingDecision is the ordered set of handler invocations computed for one
// inbound message. It is ephemeral and recomputed every turn.
type RoutingDecision struct {
	Steps     []RoutingStep
	Truncated bool
}

// Invocation is the input to one handler call. Handlers are stateless; all
// conversational state arrives here.
type Invocation struct {
	UserID    string
	SessionID string
	History   []Turn
	Input     string
	Payload   json.RawMessage
}

// HandlerResult is the output of one handler invocation. It is consumed by
// the router within the current RoutingDecision; only the display text
// survives as part of the assistant turn.
type HandlerResult struct {
	Text      string
	Payload   json.RawMessage
	Delegates []string // delegation hint: invoke these handlers next
	Stop      bool     // hint: do not extend the chain further
	Emergency bool     // life-threatening finding, escalate in the reply
}

// CallMetadata tracks which handlers ran for a turn and any errors, for
// transparency in the response metadata.
type CallMetadata struct {
	Called map[string]CallStatus `json:"called"`
	Errors map[string]string     `json:"errors,omitempty"`
}

// NewCallMetadata returns an empty call record.
func NewCallMetadata() *CallMetadata {
	return &CallMetadata{
		Called: make(map[string]CallStatus),
		Errors: make(map[string]string),
	}
}

// Record marks one handler invocation outcome.
func (m *CallMetadata) Record(handler string, err error) {
	if err != nil {
		m.Called[handler] = CallStatusFailed
		m.Errors[handler] = err.Error()
		return
	}
	m.Called[handler] = CallStatusSuccess
}
