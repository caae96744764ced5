package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drcloud/assistant/internal/domain"
)

func TestMedicationHandlerExtractsPayload(t *testing.T) {
	reply := "Warfarin and aspirin together raise bleeding risk.\n" +
		`{"interactions": [{"drug_a": "warfarin", "drug_b": "aspirin", "severity": "major"}], "summary": "STOP"}`
	h := NewMedicationHandler(&stubGenerator{reply: reply})

	result, err := h.Invoke(context.Background(), &domain.Invocation{Input: "warfarin, aspirin"})
	require.NoError(t, err)
	assert.Equal(t, "Warfarin and aspirin together raise bleeding risk.", result.Text)
	assert.Contains(t, string(result.Payload), `"summary": "STOP"`)
}

func TestMedicationHandlerKeepsTextWithoutPayload(t *testing.T) {
	h := NewMedicationHandler(&stubGenerator{reply: "No interactions found."})

	result, err := h.Invoke(context.Background(), &domain.Invocation{Input: "vitamin d"})
	require.NoError(t, err)
	assert.Equal(t, "No interactions found.", result.Text)
	assert.Nil(t, result.Payload)
}

func TestSpecialistHandlerEmergencyFlag(t *testing.T) {
	reply := "These findings suggest an acute cardiac event.\n" +
		`{"refer": true, "specialty": "Cardiology", "urgency": "urgent", "emergency": true}`
	h := NewSpecialistHandler(&stubGenerator{reply: reply})

	result, err := h.Invoke(context.Background(), &domain.Invocation{Input: "chest pain findings"})
	require.NoError(t, err)
	assert.True(t, result.Emergency)
	assert.Equal(t, domain.InputChain, h.InputSource())
}

func TestSpecialistHandlerRoutineReferral(t *testing.T) {
	reply := "A routine dermatology referral is reasonable.\n" +
		`{"refer": true, "specialty": "Dermatology", "urgency": "routine", "emergency": false}`
	h := NewSpecialistHandler(&stubGenerator{reply: reply})

	result, err := h.Invoke(context.Background(), &domain.Invocation{Input: "persistent rash findings"})
	require.NoError(t, err)
	assert.False(t, result.Emergency)
	assert.Contains(t, string(result.Payload), "Dermatology")
}

func TestSplitTrailingJSONMalformed(t *testing.T) {
	text, payload := splitTrailingJSON("Take care {not json")
	assert.Equal(t, "Take care {not json", text)
	assert.Nil(t, payload)
}
