package http

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/drcloud/assistant/internal/domain"
)

type newSessionRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// NewSession creates a session. Blank ids are generated by the store.
// POST /api/v1/session/new
func (h *Handler) NewSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req newSessionRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, domain.ErrInvalidRequest)
	}

	session, err := h.store.CreateSession(ctx, req.UserID, req.SessionID)
	if err != nil {
		log.Printf("ERROR: failed to create session: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, session)
}

// SessionState returns the session metadata and full ordered history.
// GET /api/v1/session/state?user_id=...&session_id=...
func (h *Handler) SessionState(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.QueryParam("user_id")
	sessionID := c.QueryParam("session_id")
	if userID == "" || sessionID == "" {
		return errorJSON(c, domain.ErrInvalidRequest)
	}

	session, err := h.store.GetSession(ctx, userID, sessionID)
	if err != nil {
		return errorJSON(c, err)
	}
	turns, err := h.store.GetHistory(ctx, userID, sessionID)
	if err != nil {
		log.Printf("ERROR: failed to get history: %v", err)
		return errorJSON(c, err)
	}

	return c.JSON(http.StatusOK, domain.SessionState{
		UserID:       session.UserID,
		SessionID:    session.SessionID,
		CreatedAt:    session.CreatedAt,
		LastActiveAt: session.LastActiveAt,
		Turns:        turns,
	})
}

// DeleteSession removes a session and its history. Deleting an absent
// session succeeds unless strict=true is passed.
// DELETE /api/v1/session?user_id=...&session_id=...&strict=true
func (h *Handler) DeleteSession(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.QueryParam("user_id")
	sessionID := c.QueryParam("session_id")
	if userID == "" || sessionID == "" {
		return errorJSON(c, domain.ErrInvalidRequest)
	}
	strict := c.QueryParam("strict") == "true"

	if err := h.store.DeleteSession(ctx, userID, sessionID, strict); err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
