package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcloud/assistant/config"
	"github.com/drcloud/assistant/internal/adapter/docstore"
	"github.com/drcloud/assistant/internal/adapter/llm"
	"github.com/drcloud/assistant/internal/docpipe"
	"github.com/drcloud/assistant/internal/domain"
	"github.com/drcloud/assistant/internal/handlers"
	"github.com/drcloud/assistant/internal/orchestrator"
	"github.com/drcloud/assistant/internal/store"
	"github.com/drcloud/assistant/policy"
)

// newTestHandler wires the full service over an in-memory store and the
// deterministic mock generator.
func newTestHandler(t *testing.T) (*Handler, *echo.Echo, store.Store) {
	t.Helper()

	st, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	docs := docstore.NewMemDocStore()
	gen := llm.NewMockGenerator()
	pipe := docpipe.New(docs)

	pol, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	cfg := &config.Config{
		HandlerTimeout: 5 * time.Second,
		MaxChainDepth:  5,
	}
	orch := orchestrator.New(st, handlers.NewRegistry(gen, pipe), pol, cfg)

	h := NewHandler(st, orch, docs)
	h.MarkReady()

	e := echo.New()
	h.RegisterRoutes(e)
	return h, e, st
}

func doJSON(e *echo.Echo, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, e *echo.Echo) *domain.Session {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/v1/session/new", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var session domain.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	require.NotEmpty(t, session.UserID)
	require.NotEmpty(t, session.SessionID)
	return &session
}

func TestHealthReadiness(t *testing.T) {
	_, e, _ := newTestHandler(t)

	// A fresh handler that has not been marked ready reports 503.
	cold := NewHandler(nil, nil, nil)
	coldEcho := echo.New()
	cold.RegisterRoutes(coldEcho)
	rec := doJSON(coldEcho, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewSessionAndState(t *testing.T) {
	_, e, _ := newTestHandler(t)
	session := createSession(t, e)

	rec := doJSON(e, http.MethodGet,
		"/api/v1/session/state?user_id="+session.UserID+"&session_id="+session.SessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var state domain.SessionState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, session.SessionID, state.SessionID)
	assert.NotNil(t, state.Turns)
	assert.Empty(t, state.Turns)
}

func TestNewSessionDuplicate(t *testing.T) {
	_, e, _ := newTestHandler(t)
	session := createSession(t, e)

	body := `{"user_id":"` + session.UserID + `","session_id":"` + session.SessionID + `"}`
	rec := doJSON(e, http.MethodPost, "/api/v1/session/new", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndToEnd(t *testing.T) {
	_, e, st := newTestHandler(t)
	session := createSession(t, e)

	body := `{"user_id":"` + session.UserID + `","session_id":"` + session.SessionID +
		`","message":"I have a headache and a fever"}`
	rec := doJSON(e, http.MethodPost, "/api/v1/chat", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp domain.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Response)
	assert.Equal(t, session.SessionID, resp.SessionID)

	history, err := st.GetHistory(context.Background(), session.UserID, session.SessionID)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, domain.RoleAssistant, history[len(history)-1].Role)
}

func TestChatUnknownSession(t *testing.T) {
	_, e, st := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/chat",
		`{"user_id":"ghost","session_id":"nope","message":"hello"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(domain.KindNotFound), body.Error.Kind)

	// Nothing was appended anywhere.
	_, err := st.GetHistory(context.Background(), "ghost", "nope")
	assert.Error(t, err)
}

func TestChatValidation(t *testing.T) {
	_, e, _ := newTestHandler(t)
	session := createSession(t, e)

	body := `{"user_id":"` + session.UserID + `","session_id":"` + session.SessionID + `","message":""}`
	rec := doJSON(e, http.MethodPost, "/api/v1/chat", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatStream(t *testing.T) {
	_, e, _ := newTestHandler(t)
	session := createSession(t, e)

	body := `{"user_id":"` + session.UserID + `","session_id":"` + session.SessionID +
		`","message":"I have a headache"}`
	rec := doJSON(e, http.MethodPost, "/api/v1/chat/stream", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	raw := rec.Body.String()
	assert.True(t, strings.HasSuffix(strings.TrimSpace(raw), "data: [DONE]"))

	var events []domain.Event
	for _, line := range strings.Split(raw, "\n") {
		if !strings.HasPrefix(line, "data: ") || line == "data: [DONE]" {
			continue
		}
		var ev domain.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
		events = append(events, ev)
	}
	require.NotEmpty(t, events)
	assert.Equal(t, domain.EventTypeThinking, events[0].Type)
	assert.Equal(t, domain.EventTypeComplete, events[len(events)-1].Type)
	assert.NotEmpty(t, events[len(events)-1].Content)
}

func TestChatStreamUnknownSessionEmitsError(t *testing.T) {
	_, e, _ := newTestHandler(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/chat/stream",
		`{"user_id":"ghost","session_id":"nope","message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code, "status is committed before the failure")
	assert.Contains(t, rec.Body.String(), `"type":"error"`)
	assert.Contains(t, rec.Body.String(), string(domain.KindNotFound))
}

func TestDeleteSession(t *testing.T) {
	_, e, _ := newTestHandler(t)
	session := createSession(t, e)

	target := "/api/v1/session?user_id=" + session.UserID + "&session_id=" + session.SessionID
	rec := doJSON(e, http.MethodDelete, target, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Idempotent by default.
	rec = doJSON(e, http.MethodDelete, target, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Strict mode surfaces the absence.
	rec = doJSON(e, http.MethodDelete, target+"&strict=true", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodGet,
		"/api/v1/session/state?user_id="+session.UserID+"&session_id="+session.SessionID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListDocumentsEmpty(t *testing.T) {
	_, e, _ := newTestHandler(t)
	session := createSession(t, e)

	rec := doJSON(e, http.MethodGet,
		"/api/v1/documents?user_id="+session.UserID+"&session_id="+session.SessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Documents []domain.ClinicalDocument `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Documents)
}
