package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(context.Background(), DefaultPolicy)
	require.NoError(t, err)
	return engine
}

func TestPolicyDoneCommandTriggersDocumentation(t *testing.T) {
	engine := newTestEngine(t)

	for _, msg := range []string{"DONE", "done", "  Done  "} {
		decision, err := engine.Evaluate(context.Background(), Input{Message: msg})
		require.NoError(t, err)
		assert.Equal(t, DecisionDocument, decision, "message %q", msg)
	}
}

func TestPolicyDocumentationHintTriggers(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		Message:   "thanks for the help",
		Delegates: []string{"symptom_analysis", "clinical_documentation"},
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionDocument, decision)
}

func TestPolicyPlainMessagePasses(t *testing.T) {
	engine := newTestEngine(t)

	decision, err := engine.Evaluate(context.Background(), Input{
		Message:   "I have a headache",
		Delegates: []string{"symptom_analysis"},
		TurnCount: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, DecisionPass, decision)
}
