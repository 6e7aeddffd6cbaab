// Package openapiform turns the request body of an OpenAPI operation into a
// form definition. Schema constraints (required, pattern, min/max,
// minLength/maxLength, enum) become native constraints on the generated
// controls, so the form-state layer sees them as host validation.
package openapiform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formstate/pkg/dom/memdom"
	"github.com/goliatone/go-formstate/pkg/formdef"
)

// ErrOperationNotFound is returned when no operation matches the id.
var ErrOperationNotFound = errors.New("openapiform: operation not found")

var mediaTypePreference = []string{
	"application/x-www-form-urlencoded",
	"multipart/form-data",
	"application/json",
}

// Option configures definition generation.
type Option func(*config)

type config struct {
	validate bool
}

// WithDocumentValidation validates the OpenAPI document before use.
func WithDocumentValidation(enabled bool) Option {
	return func(c *config) {
		c.validate = enabled
	}
}

// FromData loads an OpenAPI document and builds a definition for the
// operation identified by operationID.
func FromData(ctx context.Context, data []byte, operationID string, options ...Option) (formdef.Definition, error) {
	if err := ctx.Err(); err != nil {
		return formdef.Definition{}, err
	}
	cfg := config{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return formdef.Definition{}, fmt.Errorf("openapiform: load document: %w", err)
	}
	if cfg.validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return formdef.Definition{}, fmt.Errorf("openapiform: validate: %w", err)
		}
	}
	return FromDocument(doc, operationID)
}

// FromDocument builds a definition from an already loaded document.
func FromDocument(doc *openapi3.T, operationID string) (formdef.Definition, error) {
	if doc == nil || doc.Paths == nil {
		return formdef.Definition{}, errors.New("openapiform: document has no paths")
	}

	op, method, path := findOperation(doc, operationID)
	if op == nil {
		return formdef.Definition{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	schema := requestSchema(op)
	if schema == nil {
		return formdef.Definition{}, fmt.Errorf("openapiform: operation %q has no request body schema", operationID)
	}

	def := formdef.Definition{
		ID:     operationID,
		Title:  op.Summary,
		Source: strings.ToUpper(method) + " " + path,
	}
	def.Controls = controlsFor(schema, "", nil)
	if len(def.Controls) == 0 {
		return formdef.Definition{}, fmt.Errorf("openapiform: operation %q produced no controls", operationID)
	}
	if err := def.Validate(); err != nil {
		return formdef.Definition{}, err
	}
	return def, nil
}

func findOperation(doc *openapi3.T, operationID string) (*openapi3.Operation, string, string) {
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			if id == operationID {
				return op, method, path
			}
		}
	}
	return nil, "", ""
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range mediaTypePreference {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// controlsFor flattens an object schema into controls. Nested objects use
// dotted names.
func controlsFor(schema *openapi3.Schema, prefix string, out []formdef.Control) []formdef.Control {
	if schema == nil {
		return out
	}
	required := make(map[string]struct{}, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = struct{}{}
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		if prop.ReadOnly {
			continue
		}
		fullName := name
		if prefix != "" {
			fullName = prefix + "." + name
		}
		if schemaType(prop) == "object" {
			out = controlsFor(prop, fullName, out)
			continue
		}
		_, isRequired := required[name]
		if ctrl, ok := controlFor(fullName, prop, isRequired); ok {
			out = append(out, ctrl)
		}
	}
	return out
}

func controlFor(name string, prop *openapi3.Schema, required bool) (formdef.Control, bool) {
	ctrl := formdef.Control{
		Name:     name,
		Label:    labelFor(name, prop),
		Required: required,
	}

	switch schemaType(prop) {
	case "string":
		ctrl.Type = stringInputType(prop.Format)
		if len(prop.Enum) > 0 {
			ctrl.Type = "select"
			ctrl.Options = enumOptions(prop.Enum, prop.Default)
		}
		if prop.Pattern != "" {
			ctrl.Pattern = prop.Pattern
		}
		if prop.MinLength > 0 {
			n := int(prop.MinLength)
			ctrl.MinLength = &n
		}
		if prop.MaxLength != nil {
			n := int(*prop.MaxLength)
			ctrl.MaxLength = &n
		}
		if prop.Format == "date" {
			ctrl.ValueAs = "date"
		}
	case "integer", "number":
		ctrl.Type = "number"
		ctrl.ValueAs = "number"
		if prop.Min != nil {
			ctrl.Min = formatFloat(*prop.Min)
		}
		if prop.Max != nil {
			ctrl.Max = formatFloat(*prop.Max)
		}
	case "boolean":
		ctrl.Type = "checkbox"
		if b, ok := prop.Default.(bool); ok && b {
			ctrl.Checked = true
		}
		// A required boolean only means "present"; it must not force the box
		// to be checked.
		ctrl.Required = false
	case "array":
		if prop.Items == nil || prop.Items.Value == nil || len(prop.Items.Value.Enum) == 0 {
			return formdef.Control{}, false
		}
		ctrl.Type = "select-multiple"
		ctrl.Options = enumOptions(prop.Items.Value.Enum, nil)
	default:
		return formdef.Control{}, false
	}

	if ctrl.Type != "select" && ctrl.Type != "checkbox" && prop.Default != nil {
		ctrl.Value = fmt.Sprint(prop.Default)
	}
	return ctrl, true
}

func stringInputType(format string) string {
	switch format {
	case "email":
		return "email"
	case "uri", "url":
		return "url"
	case "date":
		return "date"
	case "date-time":
		return "datetime-local"
	case "time":
		return "time"
	case "password":
		return "password"
	case "binary":
		return "file"
	default:
		return "text"
	}
}

func enumOptions(values []any, def any) []memdom.SelectOption {
	out := make([]memdom.SelectOption, 0, len(values))
	defValue := ""
	if def != nil {
		defValue = fmt.Sprint(def)
	}
	for _, v := range values {
		value := fmt.Sprint(v)
		out = append(out, memdom.SelectOption{
			Value:    value,
			Label:    value,
			Selected: defValue != "" && value == defValue,
		})
	}
	return out
}

func labelFor(name string, prop *openapi3.Schema) string {
	if prop.Title != "" {
		return prop.Title
	}
	last := name
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		last = name[idx+1:]
	}
	return strings.ReplaceAll(last, "_", " ")
}

func schemaType(s *openapi3.Schema) string {
	if s == nil || s.Type == nil {
		if s != nil && len(s.Properties) > 0 {
			return "object"
		}
		return ""
	}
	for _, t := range s.Type.Slice() {
		if t != "null" {
			return t
		}
	}
	return ""
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
