// Package domain defines the core domain models for the assistant.
package domain

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleHandler   Role = "handler"
)

// TurnState represents the state of the routing state machine for one turn.
type TurnState string

const (
	TurnStateReceived    TurnState = "RECEIVED"
	TurnStateClassifying TurnState = "CLASSIFYING"
	TurnStateDispatching TurnState = "DISPATCHING"
	TurnStateMerging     TurnState = "MERGING"
	TurnStateCompleted   TurnState = "COMPLETED"
	TurnStateFailed      TurnState = "FAILED"
)

// EventType represents the type of a delivery event.
type EventType string

const (
	EventTypeThinking EventType = "thinking"
	EventTypeResponse EventType = "response"
	EventTypeComplete EventType = "complete"
	EventTypeError    EventType = "error"
)

// InputSource describes where a routing step takes its input from.
type InputSource string

const (
	// InputUser feeds the step the raw user message.
	InputUser InputSource = "user"
	// InputChain feeds the step the accumulated output of prior steps.
	InputChain InputSource = "chain"
)

// CallStatus records the outcome of one handler invocation.
type CallStatus string

const (
	CallStatusSuccess CallStatus = "success"
	CallStatusFailed  CallStatus = "failed"
)
