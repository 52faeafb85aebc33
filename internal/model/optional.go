package model

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an omitted JSON field from one explicitly set to
// null. Set is true whenever the key was present in the document.
type Optional[T any] struct {
	Set   bool
	Value *T
}

// Some returns a present, non-null Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: &v}
}

// Null returns a present Optional holding JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

// UnmarshalJSON is only invoked when the key exists, including for null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// IsNull reports whether the field was present with a null value.
func (o Optional[T]) IsNull() bool {
	return o.Set && o.Value == nil
}

// Coalesce returns the supplied value when non-null, otherwise current.
func (o Optional[T]) Coalesce(current *T) *T {
	if o.Value != nil {
		return o.Value
	}
	return current
}
