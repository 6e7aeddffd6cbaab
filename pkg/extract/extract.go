// Package extract derives a form snapshot from live controls: one typed value
// per field name plus the native validity message of each field.
//
// Controls are visited in reverse document order. Whenever several controls
// contribute to the same field, the one earliest in the document is processed
// last and therefore wins; callers rely on this to focus the first invalid
// field in document order.
package extract

import (
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/state"
)

// Mode selects the extraction pass.
type Mode uint8

const (
	ModeNormal Mode = iota
	ModeResetting
	ModeSubmitting
)

func (m Mode) String() string {
	switch m {
	case ModeResetting:
		return "resetting"
	case ModeSubmitting:
		return "submitting"
	default:
		return "normal"
	}
}

// Field groups the controls contributing to one field name.
type Field struct {
	Name string
	// Controls in document order.
	Controls []dom.Control
	// ErrorControl is the earliest control reporting a native error, if any.
	ErrorControl dom.Control

	first int
}

// Primary returns the field's first control in document order.
func (f Field) Primary() dom.Control {
	if len(f.Controls) == 0 {
		return nil
	}
	return f.Controls[0]
}

// Snapshot is the result of one extraction pass.
type Snapshot struct {
	Values       map[string]state.Value
	NativeErrors map[string]string
	// Fields in reverse document order of their first control.
	Fields []Field
}

// Field looks up a field by name.
func (s Snapshot) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names returns the set of field names in the snapshot.
func (s Snapshot) Names() map[string]bool {
	out := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		out[f.Name] = true
	}
	return out
}

// Option configures an extraction pass.
type Option func(*config)

type config struct {
	logger        *slog.Logger
	pushOverrides bool
	dateLayouts   []string
	dateLocation  *time.Location
	mounted       map[string]bool
}

// WithLogger reports unknown control types at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOverridePush pushes data-errormessage overrides into the control's
// custom validity so the host displays them. Used with native validation
// display.
func WithOverridePush(enabled bool) Option {
	return func(c *config) {
		c.pushOverrides = enabled
	}
}

// WithDateLayouts replaces the layouts tried when a value-as-date control has
// no native date interpretation.
func WithDateLayouts(layouts ...string) Option {
	return func(c *config) {
		if len(layouts) > 0 {
			c.dateLayouts = append([]string(nil), layouts...)
		}
	}
}

// WithMountedNames lists the field names that existed when the form was
// mounted. In ModeResetting a name survives when it is in this set or in the
// baseline; fields with no baseline value (an unchecked radio group) need it.
func WithMountedNames(names map[string]bool) Option {
	return func(c *config) {
		c.mounted = names
	}
}

var defaultDateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// falsyTokens are the trimmed strings value-as-bool treats as false.
var falsyTokens = map[string]struct{}{
	"false":     {},
	"":          {},
	"0":         {},
	"undefined": {},
	"null":      {},
}

// Extract walks form's controls and builds a Snapshot. baseline is consulted
// only in ModeResetting, where it supplies the values to restore. Names found
// in neither the baseline nor WithMountedNames lose their value; their
// native errors and fields are kept.
func Extract(form dom.Form, baseline map[string]state.Value, mode Mode, options ...Option) Snapshot {
	cfg := config{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		dateLayouts:  defaultDateLayouts,
		dateLocation: time.UTC,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	snap := Snapshot{
		Values:       make(map[string]state.Value),
		NativeErrors: make(map[string]string),
	}
	if form == nil {
		return snap
	}

	controls := form.Controls()
	fields := make(map[string]*Field)
	var dropped map[string]struct{}

	for i := len(controls) - 1; i >= 0; i-- {
		control := controls[i]
		if control == nil {
			continue
		}
		control.SetCustomValidity("")

		kind := control.Type()
		if kind == dom.TypeButton {
			continue
		}
		name := control.Name()
		if name == "" {
			continue
		}

		field, ok := fields[name]
		if !ok {
			field = &Field{Name: name}
			fields[name] = field
		}
		field.Controls = append(field.Controls, control)
		field.first = i

		if mode == ModeResetting {
			prior, inBaseline := baseline[name]
			if !inBaseline && !cfg.mounted[name] {
				if dropped == nil {
					dropped = make(map[string]struct{})
				}
				dropped[name] = struct{}{}
			} else if inBaseline && prior.Truthy() {
				// Restoring must precede the value and error reads below.
				if prior.Kind() == state.KindString && (kind == dom.TypeText || kind == dom.TypeUnknown) {
					control.SetDefaultValue(prior.Str())
				}
				control.CheckValidity()
			}
		}

		if value, ok := baseValue(control, kind, snap.Values, cfg.logger); ok {
			snap.Values[name] = value
		}
		if value, ok := cfg.coerce(control); ok {
			snap.Values[name] = value
		}

		if msg := control.ValidationMessage(); msg != "" {
			if override, ok := control.Attribute(dom.AttrErrorMessage); ok {
				msg = override
				if cfg.pushOverrides {
					control.SetCustomValidity(msg)
				}
			}
			snap.NativeErrors[name] = msg
			field.ErrorControl = control
		}
	}

	for name := range dropped {
		delete(snap.Values, name)
	}

	snap.Fields = make([]Field, 0, len(fields))
	for _, field := range fields {
		slices.Reverse(field.Controls)
		snap.Fields = append(snap.Fields, *field)
	}
	slices.SortFunc(snap.Fields, func(a, b Field) int {
		return b.first - a.first
	})
	return snap
}

// baseValue applies the per-type extraction rule. It reports false when the
// control must not touch the field (an unchecked radio).
func baseValue(control dom.Control, kind dom.ControlType, values map[string]state.Value, logger *slog.Logger) (state.Value, bool) {
	name := control.Name()
	switch kind {
	case dom.TypeFile:
		return state.File(control.Value(), control.Files()), true

	case dom.TypeCheckbox:
		existing, ok := values[name]
		if !ok || !existing.Truthy() {
			switch {
			case control.Checked():
				if control.Value() == "on" {
					return state.Bool(true), true
				}
				return state.String(control.Value()), true
			case control.Indeterminate():
				return state.Undefined(), true
			default:
				return state.Bool(false), true
			}
		}
		// A second same-named checkbox turns the field into a group.
		list := existing
		if existing.Kind() != state.KindList {
			list = state.List(scalarString(existing))
		}
		if control.Checked() {
			list = list.Append(control.Value())
		}
		return list, true

	case dom.TypeRadio:
		if control.Checked() {
			return state.String(control.Value()), true
		}
		if control.Indeterminate() {
			if _, ok := values[name]; !ok {
				return state.Undefined(), true
			}
		}
		return state.Value{}, false

	case dom.TypeSelectMultiple:
		return state.List(control.SelectedValues()...), true

	case dom.TypeText, dom.TypeSelectOne:
		return state.String(control.Value()), true

	default:
		logger.Debug("extract.control.unknown_type",
			slog.String("name", name),
			slog.String("type", control.HostType()),
		)
		return state.String(control.Value()), true
	}
}

// scalarString seeds a group list from the scalar a previous checkbox left.
// Only truthy scalars get here: a falsy one is overwritten, so unchecked
// boxes never contribute. A checked box without a value attribute enters
// the list as "on".
func scalarString(v state.Value) string {
	switch v.Kind() {
	case state.KindString:
		return v.Str()
	case state.KindBool:
		if v.Bool() {
			return "on"
		}
		return "false"
	default:
		return v.String()
	}
}

// coerce applies the declared value-as-* directives in their fixed order:
// date, then bool, then number. Later directives win.
func (c config) coerce(control dom.Control) (state.Value, bool) {
	var (
		out     state.Value
		applied bool
	)
	if dom.HasAttribute(control, dom.AttrValueAsDate) {
		out, applied = c.asDate(control), true
	}
	if dom.HasAttribute(control, dom.AttrValueAsBool) {
		out, applied = AsBool(control.Value()), true
	}
	if dom.HasAttribute(control, dom.AttrValueAsNumber) {
		out, applied = state.Number(control.ValueAsNumber()), true
	}
	return out, applied
}

func (c config) asDate(control dom.Control) state.Value {
	if t, ok := control.ValueAsDate(); ok {
		return state.Date(t)
	}
	raw := strings.TrimSpace(control.Value())
	if raw == "" {
		return state.Undefined()
	}
	for _, layout := range c.dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, c.dateLocation); err == nil {
			return state.Date(t)
		}
	}
	return state.Undefined()
}

// AsBool evaluates raw against the falsy token set.
func AsBool(raw string) state.Value {
	_, falsy := falsyTokens[strings.TrimSpace(raw)]
	return state.Bool(!falsy)
}
