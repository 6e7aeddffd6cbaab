package memdom

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formstate/pkg/dom"
)

type elementKind uint8

const (
	kindInput elementKind = iota
	kindTextArea
	kindSelect
	kindButton
)

var dateLayouts = map[string]string{
	"date":           "2006-01-02",
	"month":          "2006-01",
	"time":           "15:04",
	"datetime-local": "2006-01-02T15:04",
}

// SelectOption is one <option> of a select element.
type SelectOption struct {
	Value    string `json:"value" yaml:"value"`
	Label    string `json:"label,omitempty" yaml:"label,omitempty"`
	Selected bool   `json:"selected,omitempty" yaml:"selected,omitempty"`
}

// Element is an in-memory form control. It satisfies dom.Control.
type Element struct {
	form *Form

	kind elementKind
	name string
	typ  string

	value        string
	defaultValue string
	dirtyValue   bool

	checked        bool
	defaultChecked bool
	indeterminate  bool

	options         []SelectOption
	defaultSelected []bool

	files    []dom.FileRef
	attrs    map[string]string
	rules    []Rule
	disabled bool

	customValidity string
}

var _ dom.Control = (*Element)(nil)

// ElementOption configures an element at construction time.
type ElementOption func(*Element)

// WithValue sets both the default and the current value.
func WithValue(value string) ElementOption {
	return func(e *Element) {
		e.value = value
		e.defaultValue = value
	}
}

// WithChecked marks a checkbox or radio as checked by default.
func WithChecked(checked bool) ElementOption {
	return func(e *Element) {
		e.checked = checked
		e.defaultChecked = checked
	}
}

// WithIndeterminate sets the indeterminate flag.
func WithIndeterminate() ElementOption {
	return func(e *Element) {
		e.indeterminate = true
	}
}

// WithAttr declares an attribute, e.g. dom.AttrValueAsNumber.
func WithAttr(name, value string) ElementOption {
	return func(e *Element) {
		if e.attrs == nil {
			e.attrs = make(map[string]string)
		}
		e.attrs[strings.TrimSpace(name)] = value
	}
}

// WithRules attaches native constraints.
func WithRules(rules ...Rule) ElementOption {
	return func(e *Element) {
		e.rules = append(e.rules, rules...)
	}
}

// WithRequired is shorthand for a required rule.
func WithRequired() ElementOption {
	return WithRules(Rule{Kind: RuleRequired})
}

// WithPattern is shorthand for a pattern rule.
func WithPattern(pattern string) ElementOption {
	return WithRules(Rule{Kind: RulePattern, Params: map[string]string{"pattern": pattern}})
}

// WithMin is shorthand for a min rule.
func WithMin(bound string) ElementOption {
	return WithRules(Rule{Kind: RuleMin, Params: map[string]string{"value": bound}})
}

// WithMax is shorthand for a max rule.
func WithMax(bound string) ElementOption {
	return WithRules(Rule{Kind: RuleMax, Params: map[string]string{"value": bound}})
}

// WithMinLength is shorthand for a minLength rule.
func WithMinLength(n int) ElementOption {
	return WithRules(Rule{Kind: RuleMinLength, Params: map[string]string{"value": strconv.Itoa(n)}})
}

// WithMaxLength is shorthand for a maxLength rule.
func WithMaxLength(n int) ElementOption {
	return WithRules(Rule{Kind: RuleMaxLength, Params: map[string]string{"value": strconv.Itoa(n)}})
}

// WithFiles preselects files on a file input.
func WithFiles(files ...dom.FileRef) ElementOption {
	return func(e *Element) {
		e.files = append([]dom.FileRef(nil), files...)
	}
}

// WithDisabled disables the element, barring it from constraint validation.
func WithDisabled() ElementOption {
	return func(e *Element) {
		e.disabled = true
	}
}

// Input builds an <input> element of the given type.
func Input(name, typ string, options ...ElementOption) *Element {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" {
		typ = "text"
	}
	e := &Element{kind: kindInput, name: name, typ: typ}
	if typ == "checkbox" || typ == "radio" {
		// Checkable inputs report "on" when no value attribute is present.
		e.value = "on"
		e.defaultValue = "on"
	}
	e.apply(options)
	return e
}

// Checkbox builds a checkbox with an explicit value attribute.
func Checkbox(name, value string, options ...ElementOption) *Element {
	return Input(name, "checkbox", append([]ElementOption{WithValue(value)}, options...)...)
}

// Radio builds a radio button with an explicit value attribute.
func Radio(name, value string, options ...ElementOption) *Element {
	return Input(name, "radio", append([]ElementOption{WithValue(value)}, options...)...)
}

// TextArea builds a <textarea>.
func TextArea(name string, options ...ElementOption) *Element {
	e := &Element{kind: kindTextArea, name: name, typ: "textarea"}
	e.apply(options)
	return e
}

// Select builds a <select>; multiple selects report "select-multiple".
func Select(name string, multiple bool, choices []SelectOption, options ...ElementOption) *Element {
	typ := "select-one"
	if multiple {
		typ = "select-multiple"
	}
	e := &Element{kind: kindSelect, name: name, typ: typ}
	e.options = append([]SelectOption(nil), choices...)
	e.defaultSelected = make([]bool, len(e.options))
	for i, opt := range e.options {
		e.defaultSelected[i] = opt.Selected
	}
	e.apply(options)
	return e
}

// Button builds a button of type button, submit or reset.
func Button(name, typ string, options ...ElementOption) *Element {
	if typ == "" {
		typ = "submit"
	}
	e := &Element{kind: kindButton, name: name, typ: strings.ToLower(typ)}
	e.apply(options)
	return e
}

func (e *Element) apply(options []ElementOption) {
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
}

func (e *Element) isCheckable() bool {
	return e.typ == "checkbox" || e.typ == "radio"
}

// Name implements dom.Control.
func (e *Element) Name() string { return e.name }

// HostType implements dom.Control.
func (e *Element) HostType() string { return e.typ }

// Type implements dom.Control.
func (e *Element) Type() dom.ControlType { return dom.ParseControlType(e.typ) }

// Value implements dom.Control. Single selects report their first selected
// option, falling back to the first option like browsers do.
func (e *Element) Value() string {
	if e.kind == kindSelect {
		selected := e.SelectedValues()
		if len(selected) > 0 {
			return selected[0]
		}
		if e.typ == "select-one" && len(e.options) > 0 {
			return e.options[0].Value
		}
		return ""
	}
	if e.typ == "file" {
		if len(e.files) == 0 {
			return ""
		}
		return `C:\fakepath\` + e.files[0].Name
	}
	return e.value
}

// Checked implements dom.Control.
func (e *Element) Checked() bool { return e.checked }

// Indeterminate implements dom.Control.
func (e *Element) Indeterminate() bool { return e.indeterminate }

// SelectedValues implements dom.Control.
func (e *Element) SelectedValues() []string {
	var out []string
	for _, opt := range e.options {
		if opt.Selected {
			out = append(out, opt.Value)
		}
	}
	return out
}

// Files implements dom.Control.
func (e *Element) Files() []dom.FileRef {
	if len(e.files) == 0 {
		return nil
	}
	return append([]dom.FileRef(nil), e.files...)
}

// ValueAsDate implements dom.Control for date, month and time inputs.
func (e *Element) ValueAsDate() (time.Time, bool) {
	switch e.typ {
	case "date", "month", "time":
	default:
		return time.Time{}, false
	}
	if e.value == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayouts[e.typ], e.value, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ValueAsNumber implements dom.Control. Date-like inputs report milliseconds
// since the epoch, numeric inputs their parsed value, everything else NaN.
func (e *Element) ValueAsNumber() float64 {
	switch e.typ {
	case "number", "range":
		f, err := strconv.ParseFloat(strings.TrimSpace(e.value), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case "date", "month", "time", "datetime-local":
		if e.value == "" {
			return math.NaN()
		}
		t, err := time.ParseInLocation(dateLayouts[e.typ], e.value, time.UTC)
		if err != nil {
			return math.NaN()
		}
		return float64(t.UnixMilli())
	default:
		return math.NaN()
	}
}

// ValidationMessage implements dom.Control. The message is computed from live
// state, so it is always current.
func (e *Element) ValidationMessage() string { return e.nativeMessage() }

// CheckValidity implements dom.Control.
func (e *Element) CheckValidity() bool { return e.nativeMessage() == "" }

// SetCustomValidity implements dom.Control.
func (e *Element) SetCustomValidity(message string) { e.customValidity = message }

// CustomValidity returns the current custom validity message.
func (e *Element) CustomValidity() string { return e.customValidity }

// SetDefaultValue implements dom.Control. Like the defaultValue IDL setter it
// also updates the current value while the user has not edited it.
func (e *Element) SetDefaultValue(value string) {
	e.defaultValue = value
	if e.isCheckable() || !e.dirtyValue {
		e.value = value
	}
}

// DefaultValue returns the default value.
func (e *Element) DefaultValue() string { return e.defaultValue }

// Attribute implements dom.Control.
func (e *Element) Attribute(name string) (string, bool) {
	if e.attrs == nil {
		return "", false
	}
	v, ok := e.attrs[name]
	return v, ok
}

// Focus implements dom.Control. Programmatic focus records the focused
// element but does not dispatch events.
func (e *Element) Focus() {
	if e.form != nil {
		e.form.focused = e
	}
}

// Disabled reports whether the element is disabled.
func (e *Element) Disabled() bool { return e.disabled }

// Options returns a copy of a select's options with their current selection.
func (e *Element) Options() []SelectOption {
	return append([]SelectOption(nil), e.options...)
}

// Rules returns the element's native constraints.
func (e *Element) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// SetValue replaces the value as if the user typed it.
func (e *Element) SetValue(value string) {
	e.value = value
	e.dirtyValue = true
}

// SetChecked toggles a checkable element. Checking a radio unchecks its
// same-named siblings.
func (e *Element) SetChecked(checked bool) {
	e.checked = checked
	e.indeterminate = false
	if !checked || e.typ != "radio" || e.form == nil {
		return
	}
	for _, sibling := range e.form.Elements(e.name) {
		if sibling != e && sibling.typ == "radio" {
			sibling.checked = false
		}
	}
}

// SetSelected selects exactly the given option values. Single selects keep
// only the first match.
func (e *Element) SetSelected(values ...string) {
	want := make(map[string]struct{}, len(values))
	for _, v := range values {
		want[v] = struct{}{}
	}
	picked := false
	for i := range e.options {
		_, ok := want[e.options[i].Value]
		if ok && e.typ == "select-one" && picked {
			ok = false
		}
		e.options[i].Selected = ok
		picked = picked || ok
	}
}

// SetFiles replaces the selected files.
func (e *Element) SetFiles(files ...dom.FileRef) {
	e.files = append([]dom.FileRef(nil), files...)
}

// reset restores the element to its defaults. Custom validity survives a
// reset, matching browsers.
func (e *Element) reset() {
	e.value = e.defaultValue
	e.dirtyValue = false
	e.checked = e.defaultChecked
	for i := range e.options {
		if i < len(e.defaultSelected) {
			e.options[i].Selected = e.defaultSelected[i]
		}
	}
	if e.typ == "file" {
		e.files = nil
	}
}
