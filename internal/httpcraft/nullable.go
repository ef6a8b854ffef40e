package httpcraft

import (
	"encoding/json"

	yaml "gopkg.in/yaml.v3"
)

// Nullable is a configuration value which may be absent. Absent values are
// encoded as null in both JSON and YAML.
type Nullable[T any] struct {
	value T
	exist bool
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{}
}

func NullableValue[T any](v T) Nullable[T] {
	return Nullable[T]{value: v, exist: true}
}

func (v Nullable[T]) Value() (T, bool) {
	return v.value, v.exist
}

func (v Nullable[T]) MarshalJSON() ([]byte, error) {
	if !v.exist {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}

func (v Nullable[T]) MarshalYAML() (any, error) {
	if !v.exist {
		return nil, nil
	}
	return v.value, nil
}

func (v *Nullable[T]) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = Null[T]()
		return nil
	}
	var value T
	if err := json.Unmarshal(b, &value); err != nil {
		*v = Null[T]()
		return err
	}
	*v = NullableValue(value)
	return nil
}

func (v *Nullable[T]) UnmarshalYAML(node *yaml.Node) error {
	switch node.Value {
	case "", "~", "null":
		*v = Null[T]()
		return nil
	}
	var value T
	if err := node.Decode(&value); err != nil {
		*v = Null[T]()
		return err
	}
	*v = NullableValue(value)
	return nil
}
