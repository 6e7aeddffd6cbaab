// Package memdom is an in-memory host document for the form-state layer. It
// keeps live element state, runs a native constraint engine modelled on the
// HTML constraint-validation API, and dispatches form events in the order a
// browser does (the reset event fires before controls are restored).
//
// The user-interaction helpers (Type, Click, Choose, FocusOn, BlurFrom,
// Reset, Submit) exist so tests and terminal hosts can drive a form the way
// a person would.
package memdom

import (
	"github.com/goliatone/go-formstate/pkg/dom"
)

// Form is an in-memory form. It satisfies dom.EventSource.
type Form struct {
	elements   []*Element
	noValidate bool
	focused    *Element

	listeners map[int]dom.Listener
	order     []int
	nextID    int
}

var _ dom.EventSource = (*Form)(nil)

// NewForm builds a form owning the given elements in document order.
func NewForm(elements ...*Element) *Form {
	f := &Form{listeners: make(map[int]dom.Listener)}
	for _, el := range elements {
		f.Append(el)
	}
	return f
}

// Append adds an element at the end of the document.
func (f *Form) Append(el *Element) {
	if el == nil {
		return
	}
	el.form = f
	f.elements = append(f.elements, el)
}

// Remove detaches an element.
func (f *Form) Remove(el *Element) {
	for i, candidate := range f.elements {
		if candidate == el {
			f.elements = append(f.elements[:i], f.elements[i+1:]...)
			el.form = nil
			if f.focused == el {
				f.focused = nil
			}
			return
		}
	}
}

// Controls implements dom.Form.
func (f *Form) Controls() []dom.Control {
	out := make([]dom.Control, len(f.elements))
	for i, el := range f.elements {
		out[i] = el
	}
	return out
}

// Elements returns the elements sharing a name in document order.
func (f *Form) Elements(name string) []*Element {
	var out []*Element
	for _, el := range f.elements {
		if el.name == name {
			out = append(out, el)
		}
	}
	return out
}

// Element returns the first element with the given name, or nil.
func (f *Form) Element(name string) *Element {
	for _, el := range f.elements {
		if el.name == name {
			return el
		}
	}
	return nil
}

// All returns every element in document order.
func (f *Form) All() []*Element {
	return append([]*Element(nil), f.elements...)
}

// SetNoValidate implements dom.Form.
func (f *Form) SetNoValidate(noValidate bool) { f.noValidate = noValidate }

// NoValidate reports the novalidate flag.
func (f *Form) NoValidate() bool { return f.noValidate }

// Focused returns the element holding focus, or nil.
func (f *Form) Focused() *Element { return f.focused }

// Subscribe implements dom.EventSource.
func (f *Form) Subscribe(listener dom.Listener) func() {
	if listener == nil {
		return func() {}
	}
	id := f.nextID
	f.nextID++
	f.listeners[id] = listener
	f.order = append(f.order, id)
	return func() {
		delete(f.listeners, id)
		for i, candidate := range f.order {
			if candidate == id {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
	}
}

// Dispatch delivers an event to every listener in subscription order.
func (f *Form) Dispatch(ev *dom.Event) {
	for _, id := range append([]int(nil), f.order...) {
		if listener, ok := f.listeners[id]; ok {
			listener(ev)
		}
	}
}

// FocusOn moves focus to el, blurring the previously focused element.
func (f *Form) FocusOn(el *Element) {
	if f.focused == el {
		return
	}
	if prev := f.focused; prev != nil {
		f.focused = nil
		f.Dispatch(dom.NewEvent(dom.EventBlur, prev))
	}
	f.focused = el
	if el != nil {
		f.Dispatch(dom.NewEvent(dom.EventFocus, el))
	}
}

// BlurFrom removes focus from the focused element.
func (f *Form) BlurFrom() {
	if prev := f.focused; prev != nil {
		f.focused = nil
		f.Dispatch(dom.NewEvent(dom.EventBlur, prev))
	}
}

// Type sets the element's value and fires change.
func (f *Form) Type(el *Element, value string) {
	el.SetValue(value)
	f.Dispatch(dom.NewEvent(dom.EventChange, el))
}

// Click toggles a checkbox, or checks a radio, and fires change.
func (f *Form) Click(el *Element) {
	switch el.typ {
	case "checkbox":
		el.SetChecked(!el.checked)
	case "radio":
		if el.checked {
			return
		}
		el.SetChecked(true)
	default:
		return
	}
	f.Dispatch(dom.NewEvent(dom.EventChange, el))
}

// Choose selects option values on a select and fires change.
func (f *Form) Choose(el *Element, values ...string) {
	el.SetSelected(values...)
	f.Dispatch(dom.NewEvent(dom.EventChange, el))
}

// Attach selects files on a file input and fires change.
func (f *Form) Attach(el *Element, files ...dom.FileRef) {
	el.SetFiles(files...)
	f.Dispatch(dom.NewEvent(dom.EventChange, el))
}

// Reset fires the reset event and then, unless it was cancelled, restores
// every element to its defaults.
func (f *Form) Reset() {
	ev := dom.NewEvent(dom.EventReset, nil)
	f.Dispatch(ev)
	if ev.DefaultPrevented() {
		return
	}
	for _, el := range f.elements {
		el.reset()
	}
}

// Submit runs interactive validation (unless novalidate is set) and fires the
// submit event. It reports whether native submission would proceed. An
// invalid form focuses its first invalid element and fires no event.
func (f *Form) Submit() bool {
	if !f.noValidate {
		for _, el := range f.elements {
			if !el.CheckValidity() {
				el.Focus()
				return false
			}
		}
	}
	ev := dom.NewEvent(dom.EventSubmit, nil)
	f.Dispatch(ev)
	return !ev.DefaultPrevented()
}
