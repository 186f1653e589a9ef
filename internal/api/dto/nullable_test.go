package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullableIDUnmarshal(t *testing.T) {
	type payload struct {
		AssignedToID NullableID `json:"assigned_to_id"`
	}

	tests := []struct {
		name        string
		body        string
		wantPresent bool
		wantValue   *int64
	}{
		{"absent key", `{}`, false, nil},
		{"explicit null clears", `{"assigned_to_id": null}`, true, nil},
		{"zero clears", `{"assigned_to_id": 0}`, true, nil},
		{"value assigns", `{"assigned_to_id": 42}`, true, int64Ptr(42)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			require.NoError(t, json.Unmarshal([]byte(tt.body), &p))
			assert.Equal(t, tt.wantPresent, p.AssignedToID.Present)
			if tt.wantValue == nil {
				assert.Nil(t, p.AssignedToID.Value)
			} else {
				require.NotNil(t, p.AssignedToID.Value)
				assert.Equal(t, *tt.wantValue, *p.AssignedToID.Value)
			}
		})
	}
}

func TestNullableIDUnmarshalRejectsNonNumbers(t *testing.T) {
	var n NullableID
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &n))
}

func TestNullableIDMarshal(t *testing.T) {
	id := int64(9)

	out, err := json.Marshal(NullableID{Present: true, Value: &id})
	require.NoError(t, err)
	assert.Equal(t, "9", string(out))

	out, err = json.Marshal(NullableID{Present: true})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func int64Ptr(v int64) *int64 { return &v }
