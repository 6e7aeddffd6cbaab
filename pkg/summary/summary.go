// Package summary renders a FormState's errors as an HTML summary block.
// Messages come from validators and host constraints, so they are sanitized
// before they reach the template.
package summary

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/state"
)

//go:embed templates/*.tpl
var embedded embed.FS

// DefaultTemplate is the embedded template name.
const DefaultTemplate = "templates/summary.tpl"

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy
)

// Field names a control and its human label, in document order.
type Field struct {
	Name  string
	Label string
}

// Entry is one rendered error row.
type Entry struct {
	Name    string
	Label   string
	Message string
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	name      string
	source    string
}

// WithTemplateFS loads the named template from fsys instead of the embedded
// one.
func WithTemplateFS(fsys fs.FS, name string) Option {
	return func(c *config) {
		c.templates = fsys
		c.name = name
	}
}

// WithTemplateString uses an inline template.
func WithTemplateString(source string) Option {
	return func(c *config) {
		c.source = source
	}
}

// Renderer renders error summaries. It is safe for concurrent use.
type Renderer struct {
	tmpl *pongo2.Template
}

// New compiles the configured template.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{
		templates: embedded,
		name:      DefaultTemplate,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	if cfg.templates == nil && cfg.source == "" {
		return nil, errors.New("summary: need a template filesystem or source")
	}

	set := pongo2.NewSet("formstate-summary", pongo2.NewFSLoader(cfg.templates))

	var (
		tmpl *pongo2.Template
		err  error
	)
	if cfg.source != "" {
		tmpl, err = set.FromString(cfg.source)
	} else {
		tmpl, err = set.FromFile(cfg.name)
	}
	if err != nil {
		return nil, fmt.Errorf("summary: load template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the summary for st. Errors follow the order of fields;
// errors for names not listed are appended by name. An empty string means
// the state has no errors.
func (r *Renderer) Render(st state.FormState, fields []Field, out ...io.Writer) (string, error) {
	if r == nil || r.tmpl == nil {
		return "", errors.New("summary: renderer is nil")
	}
	entries := Entries(st, fields)

	ctx := pongo2.Context{
		"errors":      entries,
		"count":       len(entries),
		"submitCount": st.SubmitCount,
		"validating":  st.IsValidating,
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteWriter(ctx, &buf); err != nil {
		return "", fmt.Errorf("summary: execute template: %w", err)
	}
	rendered := strings.TrimSpace(buf.String())
	for _, w := range out {
		if _, err := io.WriteString(w, rendered); err != nil {
			return "", fmt.Errorf("summary: write output: %w", err)
		}
	}
	return rendered, nil
}

// Entries orders and sanitizes the errors of st.
func Entries(st state.FormState, fields []Field) []Entry {
	if len(st.Errors) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(st.Errors))
	out := make([]Entry, 0, len(st.Errors))
	for _, f := range fields {
		msg, ok := st.Errors[f.Name]
		if !ok || seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		out = append(out, entry(f.Name, f.Label, msg))
	}

	var rest []string
	for name := range st.Errors {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, entry(name, "", st.Errors[name]))
	}
	return out
}

// FieldsFrom lists the named controls of form in document order. Labels are
// read from labelAttr and fall back to the control name.
func FieldsFrom(form dom.Form, labelAttr string) []Field {
	if form == nil {
		return nil
	}
	var out []Field
	seen := make(map[string]bool)
	for _, ctrl := range form.Controls() {
		name := ctrl.Name()
		if name == "" || seen[name] || ctrl.Type() == dom.TypeButton {
			continue
		}
		seen[name] = true
		label, _ := ctrl.Attribute(labelAttr)
		out = append(out, Field{Name: name, Label: label})
	}
	return out
}

func entry(name, label, msg string) Entry {
	if strings.TrimSpace(label) == "" {
		label = name
	}
	return Entry{
		Name:    name,
		Label:   label,
		Message: Sanitize(msg),
	}
}

// Sanitize strips everything but inline emphasis from a message.
func Sanitize(msg string) string {
	return strings.TrimSpace(sanitizer().Sanitize(msg))
}

func sanitizer() *bluemonday.Policy {
	messagePolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "code")
		messagePolicy = policy
	})
	return messagePolicy
}
