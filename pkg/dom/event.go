package dom

// EventKind enumerates the form events the coordinator reacts to.
type EventKind uint8

const (
	EventFocus EventKind = iota + 1
	EventBlur
	EventChange
	EventReset
	EventSubmit
)

func (k EventKind) String() string {
	switch k {
	case EventFocus:
		return "focus"
	case EventBlur:
		return "blur"
	case EventChange:
		return "change"
	case EventReset:
		return "reset"
	case EventSubmit:
		return "submit"
	default:
		return "unknown"
	}
}

// Event is a native event bubbling up to the form. Target is nil for
// form-level events (reset, submit).
type Event struct {
	Kind   EventKind
	Target Control

	defaultPrevented bool
}

// NewEvent builds an event for the given target.
func NewEvent(kind EventKind, target Control) *Event {
	return &Event{Kind: kind, Target: target}
}

// PreventDefault suppresses the host's default action (native submission).
func (e *Event) PreventDefault() {
	if e != nil {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e != nil && e.defaultPrevented
}

// TargetName returns the name of the event target or "".
func (e *Event) TargetName() string {
	if e == nil || e.Target == nil {
		return ""
	}
	return e.Target.Name()
}

// Listener receives form events.
type Listener func(*Event)

// EventSource is a Form that can deliver its events to a listener. The
// returned function removes the subscription.
type EventSource interface {
	Form
	Subscribe(listener Listener) (unsubscribe func())
}
