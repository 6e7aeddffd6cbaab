package dom

import (
	"strings"
	"time"
)

// ControlType is the closed set of control semantics the extractor knows how
// to read. Host type strings are folded into it by ParseControlType.
type ControlType uint8

const (
	// TypeUnknown is the explicit default arm: an unlisted host type. It is read
	// like a text-like control.
	TypeUnknown ControlType = iota
	TypeText
	TypeCheckbox
	TypeRadio
	TypeSelectOne
	TypeSelectMultiple
	TypeFile
	TypeButton
)

var controlTypeNames = map[ControlType]string{
	TypeUnknown:        "unknown",
	TypeText:           "text",
	TypeCheckbox:       "checkbox",
	TypeRadio:          "radio",
	TypeSelectOne:      "select-one",
	TypeSelectMultiple: "select-multiple",
	TypeFile:           "file",
	TypeButton:         "button",
}

func (t ControlType) String() string {
	if name, ok := controlTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseControlType maps a host `type` string (as reported by an element's
// type property) onto ControlType.
func ParseControlType(raw string) ControlType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "text", "email", "password", "search", "tel", "url", "hidden",
		"textarea", "number", "range", "date", "datetime-local", "month",
		"week", "time", "color":
		return TypeText
	case "checkbox":
		return TypeCheckbox
	case "radio":
		return TypeRadio
	case "select", "select-one":
		return TypeSelectOne
	case "select-multiple":
		return TypeSelectMultiple
	case "file":
		return TypeFile
	case "button", "submit", "reset", "image":
		return TypeButton
	default:
		return TypeUnknown
	}
}

// Declared directive attributes.
const (
	AttrValueAsDate   = "data-valueasdate"
	AttrValueAsNumber = "data-valueasnumber"
	AttrValueAsBool   = "data-valueasbool"
	AttrErrorMessage  = "data-errormessage"
)

// FileRef describes one selected file of a file control.
type FileRef struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	Type         string    `json:"type,omitempty"`
	LastModified time.Time `json:"lastModified,omitempty"`
}

// Control is a single form-participating element. Read methods must reflect
// live state; CheckValidity refreshes ValidationMessage.
type Control interface {
	Name() string
	// HostType is the raw type string (e.g. "email", "select-multiple").
	HostType() string
	Type() ControlType
	Value() string
	Checked() bool
	Indeterminate() bool
	// SelectedValues returns the values of selected options in option order.
	SelectedValues() []string
	Files() []FileRef
	// ValueAsDate reports false when the host cannot interpret the control as
	// a date (no native support or empty value).
	ValueAsDate() (time.Time, bool)
	// ValueAsNumber returns NaN when the value is not numeric.
	ValueAsNumber() float64
	ValidationMessage() string
	CheckValidity() bool
	SetCustomValidity(message string)
	SetDefaultValue(value string)
	Attribute(name string) (string, bool)
	Focus()
}

// Form is a live form-like object.
type Form interface {
	// Controls returns all controls in document order, buttons included.
	Controls() []Control
	// SetNoValidate toggles the host's native submit-time validation.
	SetNoValidate(noValidate bool)
}

// HasAttribute is a convenience over Control.Attribute.
func HasAttribute(c Control, name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Attribute(name)
	return ok
}
