package validate

// Ticket identifies one blur-validator invocation.
type Ticket struct {
	Field      string
	Generation uint64
}

// Tracker holds the current validation generation per field. Only the
// holder of the current ticket may commit; older tickets are stale.
//
// Tracker is not safe for concurrent use. It belongs to the event loop.
type Tracker struct {
	generations map[string]uint64
	pending     map[string]uint64
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		generations: make(map[string]uint64),
		pending:     make(map[string]uint64),
	}
}

// Begin starts a new generation for field, superseding any outstanding one,
// and marks it pending.
func (t *Tracker) Begin(field string) Ticket {
	t.generations[field]++
	gen := t.generations[field]
	t.pending[field] = gen
	return Ticket{Field: field, Generation: gen}
}

// Current reports whether ticket is still the field's active generation.
func (t *Tracker) Current(ticket Ticket) bool {
	return t.generations[ticket.Field] == ticket.Generation
}

// Settle clears the pending mark for a current ticket and reports whether
// the caller may commit. Stale tickets change nothing.
func (t *Tracker) Settle(ticket Ticket) bool {
	if !t.Current(ticket) {
		return false
	}
	if t.pending[ticket.Field] == ticket.Generation {
		delete(t.pending, ticket.Field)
	}
	return true
}

// Validating reports whether any field's current generation is in flight.
func (t *Tracker) Validating() bool {
	return len(t.pending) > 0
}

// PendingFields returns the names of in-flight fields.
func (t *Tracker) PendingFields() []string {
	out := make([]string, 0, len(t.pending))
	for name := range t.pending {
		out = append(out, name)
	}
	return out
}

// Invalidate makes every outstanding ticket stale and clears pending marks.
// Used on form reset.
func (t *Tracker) Invalidate() {
	for name := range t.pending {
		t.generations[name]++
	}
	clear(t.pending)
}
