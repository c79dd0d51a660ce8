package engine_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turnos/schedule-engine/engine"
)

func TestNormalize_NilAndEmpty(t *testing.T) {
	assert.Empty(t, engine.Normalize(nil))
	assert.Empty(t, engine.Normalize([]any{}))
	assert.Empty(t, engine.Normalize([]string{}))
	assert.Empty(t, engine.Normalize(42)) // unrecognized shape degrades, never errors
}

func TestNormalize_LegacyStringIDs(t *testing.T) {
	// GIVEN: the legacy cell shape, an array of bare shift-id strings
	got := engine.Normalize([]string{"morning", "evening"})

	// THEN: every string becomes a shift assignment
	require.Len(t, got, 2)
	assert.Equal(t, engine.Assignment{Type: engine.TypeShift, ShiftID: "morning"}, got[0])
	assert.Equal(t, engine.Assignment{Type: engine.TypeShift, ShiftID: "evening"}, got[1])
}

func TestNormalize_MixedDecodedJSON(t *testing.T) {
	// Cells decoded from JSON arrive as []any with strings and maps mixed.
	var raw any
	require.NoError(t, json.Unmarshal([]byte(`[
		"morning",
		{"type": "franco"},
		{"shiftId": "evening", "startTime": "16:00", "endTime": "22:00"},
		{"type": "nota", "texto": "cubre a Ana"}
	]`), &raw))

	got := engine.Normalize(raw)
	require.Len(t, got, 4)
	assert.Equal(t, engine.TypeShift, got[0].Type)
	assert.Equal(t, "morning", got[0].ShiftID)
	assert.Equal(t, engine.TypeFranco, got[1].Type)
	// Missing type defaults to shift
	assert.Equal(t, engine.TypeShift, got[2].Type)
	assert.Equal(t, "16:00", got[2].StartTime)
	assert.Equal(t, engine.TypeNota, got[3].Type)
	assert.Equal(t, "cubre a Ana", got[3].Texto)
}

func TestNormalize_StructuredPassthrough(t *testing.T) {
	in := []engine.Assignment{
		{ShiftID: "x"}, // no type: defaults to shift
		{Type: engine.TypeMedioFranco, StartTime: "08:00", EndTime: "12:00"},
	}
	got := engine.Normalize(in)
	require.Len(t, got, 2)
	assert.Equal(t, engine.TypeShift, got[0].Type)
	assert.Equal(t, engine.TypeMedioFranco, got[1].Type)

	// The input slice is never mutated.
	assert.Equal(t, engine.AssignmentType(""), in[0].Type)
}

func TestNormalize_SkipsUnusableElements(t *testing.T) {
	got := engine.Normalize([]any{"", 7, true, "morning"})
	require.Len(t, got, 1)
	assert.Equal(t, "morning", got[0].ShiftID)
}

func TestAssignment_EmptyFieldsStrippedOnMarshal(t *testing.T) {
	// The persistence collaborator rejects undefined values; marshaling
	// must therefore drop every unset field.
	payload, err := json.Marshal(engine.Assignment{Type: engine.TypeFranco})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"franco"}`, string(payload))
}
