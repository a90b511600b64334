package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "mindcast/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the shared parsing invariant:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseRunID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		_, err := ParseRunID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects the nil uuid", func(t *testing.T) {
		_, err := ParseTopicID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("round trips a valid uuid", func(t *testing.T) {
		raw := uuid.NewString()
		id, err := ParseRunID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, id.String())
		assert.False(t, id.IsZero())
	})
}

func TestIDs_JSON(t *testing.T) {
	t.Run("marshals as a uuid string", func(t *testing.T) {
		id := NewRunID()
		raw, err := json.Marshal(id)
		require.NoError(t, err)
		assert.Equal(t, `"`+id.String()+`"`, string(raw))
	})

	t.Run("unmarshals back", func(t *testing.T) {
		id := NewTopicID()
		raw, err := json.Marshal(id)
		require.NoError(t, err)

		var got TopicID
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, id, got)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		var got RunID
		assert.Error(t, json.Unmarshal([]byte(`"nope"`), &got))
	})
}

func TestStage(t *testing.T) {
	t.Run("stages run in pipeline order", func(t *testing.T) {
		assert.Equal(t, []Stage{StageTrends, StageScript, StageVideo, StagePublish}, Stages())
	})

	t.Run("parse accepts known stages", func(t *testing.T) {
		for _, stage := range Stages() {
			got, err := ParseStage(string(stage))
			require.NoError(t, err)
			assert.Equal(t, stage, got)
		}
	})

	t.Run("parse rejects unknown input", func(t *testing.T) {
		_, err := ParseStage("deploy")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

		_, err = ParseStage("")
		require.Error(t, err)
	})

	t.Run("terminal statuses", func(t *testing.T) {
		assert.True(t, StatusSucceeded.Terminal())
		assert.True(t, StatusFailed.Terminal())
		assert.False(t, StatusPending.Terminal())
		assert.False(t, StatusRunning.Terminal())
	})
}
