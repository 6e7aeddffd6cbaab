package state

import (
	"encoding/json"
	"math"
	"slices"
	"time"

	"github.com/goliatone/go-formstate/pkg/dom"
)

// Kind discriminates the Value union.
type Kind uint8

const (
	KindUndefined Kind = iota
	KindString
	KindBool
	KindNumber
	KindDate
	KindList
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	case KindFile:
		return "file"
	default:
		return "undefined"
	}
}

// FileValue is the value of a file control.
type FileValue struct {
	RawValue string        `json:"rawValue"`
	Files    []dom.FileRef `json:"files"`
}

// Value is the derived value of one field. The zero Value is undefined.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  float64
	t    time.Time
	list []string
	file FileValue
}

// Undefined returns the value of an indeterminate control.
func Undefined() Value { return Value{} }

// String wraps a raw string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a numeric value; NaN is allowed.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Date wraps a date value.
func Date(t time.Time) Value { return Value{kind: KindDate, t: t} }

// List wraps an ordered list of strings (checkbox groups, multi-selects).
func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string{}, items...)}
}

// File wraps the value of a file control.
func File(raw string, files []dom.FileRef) Value {
	return Value{kind: KindFile, file: FileValue{RawValue: raw, Files: append([]dom.FileRef(nil), files...)}}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) Str() string       { return v.str }
func (v Value) Bool() bool        { return v.b }
func (v Value) Number() float64   { return v.num }
func (v Value) Time() time.Time   { return v.t }
func (v Value) List() []string    { return append([]string(nil), v.list...) }

func (v Value) File() FileValue {
	return FileValue{RawValue: v.file.RawValue, Files: append([]dom.FileRef(nil), v.file.Files...)}
}

// Truthy follows the JavaScript truthiness of the equivalent value. Lists and
// files are always truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0 && !math.IsNaN(v.num)
	case KindDate, KindList, KindFile:
		return true
	default:
		return false
	}
}

// Append returns a copy of a list value with item appended.
func (v Value) Append(item string) Value {
	out := make([]string, 0, len(v.list)+1)
	out = append(out, v.list...)
	return Value{kind: KindList, list: append(out, item)}
}

// Equal reports deep equality. NaN equals NaN and dates compare by instant,
// so an untouched numeric or date field never reads as dirty.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == other.str
	case KindBool:
		return v.b == other.b
	case KindNumber:
		if math.IsNaN(v.num) && math.IsNaN(other.num) {
			return true
		}
		return v.num == other.num
	case KindDate:
		return v.t.Equal(other.t)
	case KindList:
		return slices.Equal(v.list, other.list)
	case KindFile:
		return v.file.RawValue == other.file.RawValue && slices.EqualFunc(v.file.Files, other.file.Files, func(a, b dom.FileRef) bool {
			return a.Name == b.Name && a.Size == b.Size && a.Type == b.Type && a.LastModified.Equal(b.LastModified)
		})
	default:
		return true
	}
}

// Interface returns the natural Go representation: nil, string, bool,
// float64, time.Time, []string or FileValue.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindDate:
		return v.t
	case KindList:
		return v.List()
	case KindFile:
		return v.File()
	default:
		return nil
	}
}

// MarshalJSON encodes the value the way a browser would serialise it. NaN
// becomes null.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.kind == KindNumber && (math.IsNaN(v.num) || math.IsInf(v.num, 0)) {
		return []byte("null"), nil
	}
	return json.Marshal(v.Interface())
}

// String renders the value for logs and test failures.
func (v Value) String() string {
	if v.kind == KindUndefined {
		return "undefined"
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return v.kind.String()
	}
	return string(data)
}
