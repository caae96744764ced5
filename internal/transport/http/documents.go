package http

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/drcloud/assistant/internal/adapter/docstore"
	"github.com/drcloud/assistant/internal/domain"
)

// ListDocuments returns the clinical documents recorded for a session.
// GET /api/v1/documents?user_id=...&session_id=...
func (h *Handler) ListDocuments(c echo.Context) error {
	ctx := c.Request().Context()
	userID := c.QueryParam("user_id")
	sessionID := c.QueryParam("session_id")
	if userID == "" || sessionID == "" {
		return errorJSON(c, domain.ErrInvalidRequest)
	}

	docs, err := h.docs.ListBySession(ctx, docstore.CollectionClinicalDocuments, userID, sessionID)
	if err != nil {
		log.Printf("ERROR: failed to list documents: %v", err)
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"documents": docs,
	})
}
