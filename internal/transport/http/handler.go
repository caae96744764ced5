// Package http provides the HTTP surface of the assistant: session
// lifecycle, blocking and streaming chat, and document retrieval.
package http

import (
	"net/http"
	"sync/atomic"

	"github.com/labstack/echo/v4"

	"github.com/drcloud/assistant/internal/adapter/docstore"
	"github.com/drcloud/assistant/internal/domain"
	"github.com/drcloud/assistant/internal/orchestrator"
	"github.com/drcloud/assistant/internal/store"
)

// Handler handles HTTP requests.
type Handler struct {
	store store.Store
	orch  *orchestrator.Orchestrator
	docs  docstore.DocStore
	ready atomic.Bool
}

// NewHandler creates a new handler.
func NewHandler(st store.Store, orch *orchestrator.Orchestrator, docs docstore.DocStore) *Handler {
	return &Handler{
		store: st,
		orch:  orch,
		docs:  docs,
	}
}

// MarkReady flips the health endpoint from 503 to 200. Called once all
// dependencies are wired.
func (h *Handler) MarkReady() {
	h.ready.Store(true)
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/session/new", h.NewSession)
	e.GET("/api/v1/session/state", h.SessionState)
	e.DELETE("/api/v1/session", h.DeleteSession)

	e.POST("/api/v1/chat", h.Chat)
	e.POST("/api/v1/chat/stream", h.ChatStream)

	e.GET("/api/v1/documents", h.ListDocuments)

	e.GET("/health", h.Health)
	e.GET("/", h.Health)
}

// Health returns health status: 503 until the service is fully wired.
func (h *Handler) Health(c echo.Context) error {
	if !h.ready.Load() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "starting"})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// errorBody is the uniform error envelope.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// errorJSON maps an error to its HTTP status by kind.
func errorJSON(c echo.Context, err error) error {
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindRouting:
		status = http.StatusUnprocessableEntity
	}
	return c.JSON(status, errorBody{Error: errorDetail{
		Kind:    string(kind),
		Message: err.Error(),
	}})
}
