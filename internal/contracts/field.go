package contracts

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type fieldState uint8

const (
	fieldUnset fieldState = iota
	fieldClear
	fieldSet
)

// Field is a tri-state override value: Unset keeps the base value, Clear
// drops it, Set replaces it. In JSON an absent key is Unset and an explicit
// null is Clear, which removes the historical null-vs-absent ambiguity in
// override payloads.
type Field[T any] struct {
	state fieldState
	value T
}

// Set returns a field carrying an explicit replacement value
func Set[T any](v T) Field[T] {
	return Field[T]{state: fieldSet, value: v}
}

// Clear returns a field that explicitly drops the base value
func Clear[T any]() Field[T] {
	return Field[T]{state: fieldClear}
}

// IsSet reports whether the field carries a replacement value
func (f Field[T]) IsSet() bool { return f.state == fieldSet }

// IsClear reports whether the field explicitly drops the base value
func (f Field[T]) IsClear() bool { return f.state == fieldClear }

// IsUnset reports whether the field leaves the base value alone
func (f Field[T]) IsUnset() bool { return f.state == fieldUnset }

// Value returns the replacement value and whether one is present
func (f Field[T]) Value() (T, bool) {
	return f.value, f.state == fieldSet
}

// Resolve applies the field to a base value: Set replaces it, Clear zeroes
// it, Unset keeps it.
func (f Field[T]) Resolve(base T) T {
	switch f.state {
	case fieldSet:
		return f.value
	case fieldClear:
		var zero T
		return zero
	default:
		return base
	}
}

// MarshalJSON encodes Set fields as their value and everything else as null
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state == fieldSet {
		return json.Marshal(f.value)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes null as Clear and a value as Set. Numeric fields
// sometimes arrive as strings from spreadsheet-style clients; those are
// coerced when parseable and treated as Unset (never zero) when not.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		f.state = fieldClear
		return nil
	}

	if err := json.Unmarshal(data, &f.value); err == nil {
		f.state = fieldSet
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		switch p := any(&f.value).(type) {
		case *float64:
			if v, err := strconv.ParseFloat(s, 64); err == nil {
				*p = v
				f.state = fieldSet
				return nil
			}
			f.state = fieldUnset
			return nil
		case *int:
			if v, err := strconv.Atoi(s); err == nil {
				*p = v
				f.state = fieldSet
				return nil
			}
			f.state = fieldUnset
			return nil
		}
	}

	return fmt.Errorf("field: cannot decode %s", string(data))
}
