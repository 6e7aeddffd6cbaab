package memdom

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Canonical constraint kinds. Numeric bounds and length limits carry their
// threshold in Params["value"]; pattern rules keep the expression in
// Params["pattern"].
const (
	RuleRequired  = "required"
	RuleMin       = "min"
	RuleMax       = "max"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RulePattern   = "pattern"
)

// Rule is a single native constraint attached to an element.
type Rule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Messages mirror the wording of Chromium's constraint validation UI.
const (
	msgValueMissing      = "Please fill out this field."
	msgCheckboxMissing   = "Please check this box if you want to proceed."
	msgRadioMissing      = "Please select one of these options."
	msgSelectMissing     = "Please select an item in the list."
	msgFileMissing       = "Please select a file."
	msgEmailMismatch     = "Please enter an email address."
	msgURLMismatch       = "Please enter a URL."
	msgBadNumber         = "Please enter a number."
	msgPatternMismatch   = "Please match the requested format."
	msgRangeUnderflowFmt = "Value must be greater than or equal to %s."
	msgRangeOverflowFmt  = "Value must be less than or equal to %s."
	msgTooShortFmt       = "Please lengthen this text to %d characters or more (you are currently using %d characters)."
	msgTooLongFmt        = "Please shorten this text to %d characters or less (you are currently using %d characters)."
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+$`)

// nativeMessage evaluates the element's constraints against its live state.
// Custom validity wins over every constraint, as in browsers.
func (e *Element) nativeMessage() string {
	if e.customValidity != "" {
		return e.customValidity
	}
	if e.barred() {
		return ""
	}

	if e.hasRule(RuleRequired) && e.valueMissing() {
		return e.missingMessage()
	}

	if e.kind == kindSelect || e.isCheckable() || e.typ == "file" {
		return ""
	}

	value := e.value
	if value == "" {
		return ""
	}

	switch e.typ {
	case "email":
		if !emailPattern.MatchString(value) {
			return msgEmailMismatch
		}
	case "url":
		if !strings.Contains(value, "://") {
			return msgURLMismatch
		}
	case "number", "range":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return msgBadNumber
		}
	}

	for _, rule := range e.rules {
		if msg := e.evalRule(rule, value); msg != "" {
			return msg
		}
	}
	return ""
}

func (e *Element) evalRule(rule Rule, value string) string {
	switch rule.Kind {
	case RulePattern:
		expr := rule.Params["pattern"]
		if expr == "" {
			return ""
		}
		re, err := regexp.Compile("^(?:" + expr + ")$")
		if err != nil {
			// Browsers ignore invalid patterns.
			return ""
		}
		if !re.MatchString(value) {
			return msgPatternMismatch
		}
	case RuleMinLength:
		limit, err := strconv.Atoi(rule.Params["value"])
		if err != nil {
			return ""
		}
		if n := utf8.RuneCountInString(value); n < limit {
			return fmt.Sprintf(msgTooShortFmt, limit, n)
		}
	case RuleMaxLength:
		limit, err := strconv.Atoi(rule.Params["value"])
		if err != nil {
			return ""
		}
		if n := utf8.RuneCountInString(value); n > limit {
			return fmt.Sprintf(msgTooLongFmt, limit, n)
		}
	case RuleMin, RuleMax:
		bound := rule.Params["value"]
		cmp, ok := e.compareBound(value, bound)
		if !ok {
			return ""
		}
		if rule.Kind == RuleMin && cmp < 0 {
			return fmt.Sprintf(msgRangeUnderflowFmt, bound)
		}
		if rule.Kind == RuleMax && cmp > 0 {
			return fmt.Sprintf(msgRangeOverflowFmt, bound)
		}
	}
	return ""
}

// compareBound compares the live value against a min/max bound using the
// element's numeric or date interpretation.
func (e *Element) compareBound(value, bound string) (int, bool) {
	switch e.typ {
	case "number", "range":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		b, err := strconv.ParseFloat(bound, 64)
		if err != nil {
			return 0, false
		}
		return compareFloat(v, b), true
	case "date", "month", "time", "datetime-local":
		layout := dateLayouts[e.typ]
		v, err := time.Parse(layout, value)
		if err != nil {
			return 0, false
		}
		b, err := time.Parse(layout, bound)
		if err != nil {
			return 0, false
		}
		return v.Compare(b), true
	default:
		return 0, false
	}
}

func compareFloat(a, b float64) int {
	switch {
	case math.IsNaN(a) || math.IsNaN(b):
		return 0
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (e *Element) valueMissing() bool {
	switch {
	case e.typ == "checkbox":
		return !e.checked
	case e.typ == "radio":
		if e.form == nil {
			return !e.checked
		}
		for _, sibling := range e.form.Elements(e.name) {
			if sibling.typ == "radio" && sibling.checked {
				return false
			}
		}
		return true
	case e.typ == "file":
		return len(e.files) == 0
	case e.kind == kindSelect:
		for _, value := range e.SelectedValues() {
			if value != "" {
				return false
			}
		}
		return true
	default:
		return e.value == ""
	}
}

func (e *Element) missingMessage() string {
	switch {
	case e.typ == "checkbox":
		return msgCheckboxMissing
	case e.typ == "radio":
		return msgRadioMissing
	case e.typ == "file":
		return msgFileMissing
	case e.kind == kindSelect:
		return msgSelectMissing
	default:
		return msgValueMissing
	}
}

// barred reports whether the element is excluded from constraint validation.
func (e *Element) barred() bool {
	if e.disabled {
		return true
	}
	switch e.typ {
	case "hidden", "button", "submit", "reset", "image":
		return true
	}
	_, readonly := e.attrs["readonly"]
	return readonly
}

func (e *Element) hasRule(kind string) bool {
	for _, rule := range e.rules {
		if rule.Kind == kind {
			return true
		}
	}
	return false
}
