package domain

import (
	"encoding/json"
	"time"
)

// Session represents one conversation between a user and the assistant.
type Session struct {
	SessionID    string          `json:"session_id"`
	UserID       string          `json:"user_id"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActiveAt time.Time       `json:"last_active_at"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

// Turn is a single immutable message in a session. Seq is assigned by the
// store and is the sole ordering guarantee for history.
type Turn struct {
	TurnID    string          `json:"turn_id"`
	SessionID string          `json:"session_id"`
	UserID    string          `json:"user_id"`
	Seq       int64           `json:"seq"`
	Role      Role            `json:"role"`
	Handler   string          `json:"handler,omitempty"` // originating handler for assistant turns
	Content   string          `json:"content"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Event is one item of the streaming delivery sequence.
type Event struct {
	Type     EventType      `json:"type"`
	Content  string         `json:"content,omitempty"`
	Author   string         `json:"author,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// ChatRequest is the inbound chat message.
type ChatRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the blocking-mode reply.
type ChatResponse struct {
	UserID    string         `json:"user_id"`
	SessionID string         `json:"session_id"`
	Response  string         `json:"response"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// SessionState is the history/metadata snapshot returned by session/state.
type SessionState struct {
	UserID       string    `json:"user_id"`
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	Turns        []Turn    `json:"turns"`
}
