package spotify

import (
	"bytes"
	"encoding/json"
)

// Field holds an attribute that may be absent from a simplified
// representation. Valid is false when the key was missing or null.
type Field[T any] struct {
	Value T
	Valid bool
}

// Get returns the value and whether it was present.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Valid
}

// Or returns the value, or def when absent.
func (f Field[T]) Or(def T) T {
	if !f.Valid {
		return def
	}
	return f.Value
}

// UnmarshalJSON implements json.Unmarshaler. A null literal leaves the field
// invalid.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Field[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = v
	f.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
