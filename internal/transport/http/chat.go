package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/drcloud/assistant/internal/domain"
)

// Chat handles a blocking chat turn: the response body carries the single
// merged reply.
// POST /api/v1/chat
func (h *Handler) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, domain.ErrInvalidRequest)
	}

	resp, err := h.orch.Chat(ctx, &req)
	if err != nil {
		log.Printf("ERROR: chat turn failed: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// ChatStream handles the same turn over SSE: thinking and per-handler
// response events first, then exactly one terminal complete or error event.
// POST /api/v1/chat/stream
func (h *Handler) ChatStream(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.ChatRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, domain.ErrInvalidRequest)
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return errorJSON(c, fmt.Errorf("streaming not supported"))
	}

	err := h.orch.ChatStream(ctx, &req, func(ev domain.Event) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response().Writer, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// The error already went down the stream as a terminal event; the
		// response status is committed, so just log here.
		log.Printf("ERROR: streamed chat turn failed: %v", err)
	}

	fmt.Fprintf(c.Response().Writer, "data: [DONE]\n\n")
	flusher.Flush()
	return nil
}
