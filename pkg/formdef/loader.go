// Package formdef loads declarative form definitions (JSON or YAML) and
// builds in-memory forms from them. Definitions describe controls the way
// markup would: name, type, default value, native constraints and data
// directives.
package formdef

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/dom/memdom"
)

// LabelAttr is the attribute labels are stored under on built elements.
const LabelAttr = "aria-label"

// Definition is a parsed form definition.
type Definition struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Controls []Control `json:"controls" yaml:"controls" validate:"min=1,dive"`

	Source string `json:"-" yaml:"-"`
}

// Control describes one control.
type Control struct {
	Name          string                `json:"name" yaml:"name"`
	Type          string                `json:"type" yaml:"type" validate:"controltype"`
	Label         string                `json:"label,omitempty" yaml:"label,omitempty"`
	Value         string                `json:"value,omitempty" yaml:"value,omitempty"`
	Checked       bool                  `json:"checked,omitempty" yaml:"checked,omitempty"`
	Indeterminate bool                  `json:"indeterminate,omitempty" yaml:"indeterminate,omitempty"`
	Disabled      bool                  `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Required      bool                  `json:"required,omitempty" yaml:"required,omitempty"`
	Pattern       string                `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min           string                `json:"min,omitempty" yaml:"min,omitempty"`
	Max           string                `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength     *int                  `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength     *int                  `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Rules         []memdom.Rule         `json:"rules,omitempty" yaml:"rules,omitempty"`
	Options       []memdom.SelectOption `json:"options,omitempty" yaml:"options,omitempty" validate:"required_if=Type select,required_if=Type select-one,required_if=Type select-multiple"`
	Attrs         map[string]string     `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	ErrorMessage  string                `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	ValueAs       string                `json:"valueAs,omitempty" yaml:"valueAs,omitempty" validate:"omitempty,oneof=date number bool"`
}

// Parse decodes a JSON or YAML definition. source names the payload in
// error messages.
func Parse(data []byte, source string) (Definition, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Definition{}, fmt.Errorf("formdef: %s is empty", source)
	}

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		def = Definition{}
		if yerr := yaml.Unmarshal(data, &def); yerr != nil {
			return Definition{}, fmt.Errorf("formdef: parse %s: invalid JSON or YAML: %w", source, yerr)
		}
	}
	def.Source = source

	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// LoadFile reads and parses a definition from disk.
func LoadFile(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("formdef: read %s: %w", path, err)
	}
	return Parse(data, filepath.Base(path))
}

// LoadFS reads and parses a definition from fsys.
func LoadFS(fsys fs.FS, path string) (Definition, error) {
	if fsys == nil {
		return Definition{}, fmt.Errorf("formdef: filesystem is nil")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Definition{}, fmt.Errorf("formdef: read %s: %w", path, err)
	}
	return Parse(data, path)
}

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func definitionValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("controltype", func(fl validator.FieldLevel) bool {
			return dom.ParseControlType(fl.Field().String()) != dom.TypeUnknown
		})
		structValidator = v
	})
	return structValidator
}

// Validate checks the definition for structural mistakes.
func (d Definition) Validate() error {
	err := definitionValidator().Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("formdef: validate %s: %w", d.sourceName(), err)
	}
	return fmt.Errorf("formdef: %s: %s", d.sourceName(), d.describe(fieldErrs[0]))
}

func (d Definition) describe(fe validator.FieldError) string {
	var idx int
	if _, err := fmt.Sscanf(fe.StructNamespace(), "Definition.Controls[%d]", &idx); err != nil || idx >= len(d.Controls) {
		if fe.StructField() == "Controls" {
			return "defines no controls"
		}
		return fe.Error()
	}
	ctrl := d.Controls[idx]
	switch fe.Tag() {
	case "controltype":
		return fmt.Sprintf("control %d (%q) has unsupported type %q", idx, ctrl.Name, ctrl.Type)
	case "required_if":
		return fmt.Sprintf("control %d (%q) is a select without options", idx, ctrl.Name)
	case "oneof":
		return fmt.Sprintf("control %d (%q) has unknown valueAs %q", idx, ctrl.Name, ctrl.ValueAs)
	}
	return fmt.Sprintf("control %d (%q): %s", idx, ctrl.Name, fe.Error())
}

func (d Definition) sourceName() string {
	if d.Source == "" {
		return "definition"
	}
	return d.Source
}
