package dto

import (
	"bytes"
	"encoding/json"
)

// Nullable tells an absent JSON field (Set false) from an explicit null
// (Set true, Value nil) in partial updates.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// Of returns a Nullable holding v.
func Of[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns an explicit null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}
