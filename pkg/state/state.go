// Package state holds the published form snapshot: the Value union for field
// values, FormState, and the Update envelope that marks which parts of a
// publish are authoritative.
package state

import (
	"maps"

	"github.com/google/go-cmp/cmp"
)

// FormState is the snapshot published to callers. Every publish hands out
// copies, so a received FormState is never mutated afterwards.
type FormState struct {
	Values       map[string]Value  `json:"values"`
	Errors       map[string]string `json:"errors"`
	Touched      map[string]bool   `json:"touched"`
	Dirty        map[string]bool   `json:"dirty"`
	Blurred      map[string]bool   `json:"blurred"`
	IsValidating bool              `json:"isValidating"`
	IsDirty      bool              `json:"isDirty"`
	IsValid      bool              `json:"isValid"`
	SubmitCount  int               `json:"submitCount"`
}

// Default returns the state callers should render before the first publish.
func Default() FormState {
	return FormState{
		Values:  map[string]Value{},
		Errors:  map[string]string{},
		Touched: map[string]bool{},
		Dirty:   map[string]bool{},
		Blurred: map[string]bool{},
	}
}

// Clone deep-copies the state. Values are immutable, so copying the maps is
// enough.
func (s FormState) Clone() FormState {
	out := s
	out.Values = cloneMap(s.Values)
	out.Errors = cloneMap(s.Errors)
	out.Touched = cloneMap(s.Touched)
	out.Dirty = cloneMap(s.Dirty)
	out.Blurred = cloneMap(s.Blurred)
	return out
}

// ErrorFor returns the message recorded for a field.
func (s FormState) ErrorFor(name string) (string, bool) {
	msg, ok := s.Errors[name]
	return msg, ok
}

// ValuesEqual compares two value maps; Value.Equal decides per field.
func ValuesEqual(a, b map[string]Value) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return cmp.Equal(a, b)
}

// CloneValues copies a value map, returning an empty map for nil input.
func CloneValues(src map[string]Value) map[string]Value {
	return cloneMap(src)
}

func cloneMap[V any](src map[string]V) map[string]V {
	if len(src) == 0 {
		return make(map[string]V)
	}
	return maps.Clone(src)
}
