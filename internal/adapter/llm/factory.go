package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvAssistantMode is the environment variable name for mode selection.
	EnvAssistantMode = "ASSISTANT_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewGenerator creates a Generator based on the ASSISTANT_MODE environment
// variable. If ASSISTANT_MODE=MOCK, returns a MockGenerator; otherwise
// returns a real Client.
func NewGenerator(baseURL, apiKey, model string, timeout time.Duration) Generator {
	if os.Getenv(EnvAssistantMode) == ModeMock {
		log.Println("ASSISTANT_MODE=MOCK detected, using mock generator")
		return NewMockGenerator()
	}
	return NewClient(baseURL, apiKey, model, timeout)
}
