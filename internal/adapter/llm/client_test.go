package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcloud/assistant/internal/domain"
)

func TestClientGenerate(t *testing.T) {
	var gotReq completionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "a reply"}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", "test-model", 5*time.Second)
	text, err := client.Generate(context.Background(), &GenerateRequest{
		System: "system prompt",
		History: []domain.Turn{
			{Role: domain.RoleUser, Content: "earlier"},
			{Role: domain.RoleAssistant, Content: "noted"},
		},
		Input: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "a reply", text)

	require.Len(t, gotReq.Messages, 4)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
	assert.Equal(t, "assistant", gotReq.Messages[2].Role)
	assert.Equal(t, "hello", gotReq.Messages[3].Content)
	assert.Equal(t, "test-model", gotReq.Model)
}

func TestClientGenerateRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "m", 5*time.Second)
	_, err := client.Generate(context.Background(), &GenerateRequest{Input: "hi"})
	assert.True(t, errors.Is(err, domain.ErrGeneratorRateLimited))
}

func TestClientGenerateUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "m", 5*time.Second)
	_, err := client.Generate(context.Background(), &GenerateRequest{Input: "hi"})
	assert.True(t, errors.Is(err, domain.ErrGeneratorUnavailable))
}

func TestMockGeneratorClassification(t *testing.T) {
	mock := NewMockGenerator()

	reply, err := mock.Generate(context.Background(), &GenerateRequest{
		System: "Reply with a comma-separated list of handler names.",
		Input:  "I have a headache and my medication list changed",
	})
	require.NoError(t, err)
	assert.Equal(t, "symptom_analysis, medication_interaction", reply)

	reply, err = mock.Generate(context.Background(), &GenerateRequest{
		System: "Reply with a comma-separated list of handler names.",
		Input:  "unclassifiable input",
	})
	require.NoError(t, err)
	assert.Equal(t, "symptom_analysis", reply)
}
