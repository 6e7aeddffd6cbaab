package coordinator

import (
	"maps"

	"github.com/google/uuid"

	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// Session is the mutable bookkeeping of one mounted form. The coordinator
// owns it and mutates it only from event handlers running on its scheduler.
type Session struct {
	ID string

	// Baseline holds the values captured at mount (or by the last reset).
	// Nil until mounted.
	Baseline map[string]state.Value

	// Fields names every field present at mount. Reset keeps these even
	// when they have no baseline value.
	Fields map[string]bool

	Touched     map[string]bool
	Dirty       map[string]bool
	Blurred     map[string]bool
	SubmitCount int

	// BlurErrors are messages committed by on-blur validators. A change to
	// the field clears its entry.
	BlurErrors map[string]string

	Tracker *validate.Tracker
}

// NewSession constructs an unmounted session with a fresh ID.
func NewSession() *Session {
	return &Session{
		ID:         uuid.NewString(),
		Touched:    make(map[string]bool),
		Dirty:      make(map[string]bool),
		Blurred:    make(map[string]bool),
		BlurErrors: make(map[string]string),
		Tracker:    validate.NewTracker(),
	}
}

// Mounted reports whether a baseline was captured.
func (s *Session) Mounted() bool {
	return s.Baseline != nil
}

// Reset clears the bookkeeping in one step and invalidates in-flight blur
// validations. The baseline is left for the caller to replace.
func (s *Session) Reset() {
	s.SubmitCount = 0
	s.Touched = make(map[string]bool)
	s.Dirty = make(map[string]bool)
	s.Blurred = make(map[string]bool)
	s.BlurErrors = make(map[string]string)
	s.Tracker.Invalidate()
}

// mark sets name in one of the bookkeeping maps. Empty names are ignored.
func mark(m map[string]bool, name string) bool {
	if name == "" {
		return false
	}
	m[name] = true
	return true
}

// Bookkeeping copies the touched/dirty/blurred maps into st.
func (s *Session) Bookkeeping(st *state.FormState) {
	st.Touched = maps.Clone(s.Touched)
	st.Dirty = maps.Clone(s.Dirty)
	st.Blurred = maps.Clone(s.Blurred)
	st.SubmitCount = s.SubmitCount
	st.IsValidating = s.Tracker.Validating()
}
