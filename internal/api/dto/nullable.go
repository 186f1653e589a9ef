package dto

import (
	"bytes"
	"encoding/json"
)

// NullableID distinguishes an absent JSON field from an explicit null.
// Absent leaves Present false; `null` (or 0, matching the form widget's
// "unassigned" value) sets Present with a nil Value, which clears the
// relation; any other number sets Present with that id.
type NullableID struct {
	Present bool
	Value   *int64
}

// UnmarshalJSON is only invoked when the key exists in the payload, so
// Present captures key presence.
func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Present = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	if id == 0 {
		n.Value = nil
		return nil
	}
	n.Value = &id
	return nil
}

// MarshalJSON round-trips the tri-state as value/null.
func (n NullableID) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}
