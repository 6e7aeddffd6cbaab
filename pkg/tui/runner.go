// Package tui fills an in-memory form from terminal prompts. Every answer is
// applied as a user interaction (focus, change, blur) so the coordinator sees
// the same event stream a browser would produce, including async blur
// validation and a final submit.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formstate/pkg/coordinator"
	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/dom/memdom"
	"github.com/goliatone/go-formstate/pkg/state"
)

// Pump drives deferred coordinator work from the prompt goroutine.
// loop.Manual implements it.
type Pump interface {
	Flush() int
	Next(ctx context.Context) error
}

// Theme holds optional message prefixes.
type Theme struct {
	ErrorPrefix string
}

// Result is the outcome of a Fill.
type Result struct {
	State state.FormState
	// Submitted reports whether the host would submit natively.
	Submitted bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Runner) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Runner) {
		r.theme = theme
	}
}

// WithMaxAttempts bounds how often a field with an error is re-prompted.
func WithMaxAttempts(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLabelAttr names the attribute prompts read labels from.
func WithLabelAttr(attr string) Option {
	return func(r *Runner) {
		if attr != "" {
			r.labelAttr = attr
		}
	}
}

// WithLogger sets the slog logger. If not provided, logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runner prompts for every named control of a form.
type Runner struct {
	driver      PromptDriver
	theme       Theme
	maxAttempts int
	labelAttr   string
	logger      *slog.Logger
}

// New constructs a Runner backed by survey unless a driver is supplied.
func New(options ...Option) *Runner {
	r := &Runner{
		maxAttempts: 3,
		labelAttr:   "aria-label",
		theme:       Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver()
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r
}

type group struct {
	name     string
	elements []*memdom.Element
}

// Fill walks the form's fields in document order, prompting until each is
// valid or attempts run out, then submits. coord must be mounted, bound to
// form and scheduled on a Pump.
func (r *Runner) Fill(ctx context.Context, form *memdom.Form, coord *coordinator.Coordinator) (Result, error) {
	if form == nil || coord == nil {
		return Result{}, errors.New("tui: form and coordinator are required")
	}
	pump, ok := coord.Scheduler().(Pump)
	if !ok {
		return Result{}, ErrNotPumpable
	}

	for _, g := range groups(form) {
		if err := r.fillGroup(ctx, form, coord, pump, g); err != nil {
			return Result{}, err
		}
	}

	submitted := form.Submit()
	if err := settle(ctx, coord, pump); err != nil {
		return Result{}, err
	}
	st := coord.State()
	if !submitted {
		if focused := form.Focused(); focused != nil {
			msg, _ := st.ErrorFor(focused.Name())
			if msg == "" {
				msg = focused.ValidationMessage()
			}
			r.info(ctx, r.theme.ErrorPrefix+fmt.Sprintf("%s: %s", r.label(focused), msg))
		}
	}
	return Result{State: st, Submitted: submitted}, nil
}

func (r *Runner) fillGroup(ctx context.Context, form *memdom.Form, coord *coordinator.Coordinator, pump Pump, g group) error {
	for attempt := 1; ; attempt++ {
		form.FocusOn(g.elements[0])
		if err := settle(ctx, coord, pump); err != nil {
			return err
		}
		if err := r.prompt(ctx, form, g); err != nil {
			return err
		}
		form.BlurFrom()
		if err := settle(ctx, coord, pump); err != nil {
			return err
		}

		msg, _ := coord.State().ErrorFor(g.name)
		if msg == "" {
			return nil
		}
		r.info(ctx, r.theme.ErrorPrefix+msg)
		if attempt >= r.maxAttempts {
			r.logger.DebugContext(ctx, "tui.field.give_up",
				slog.String("field", g.name),
				slog.Int("attempts", attempt),
			)
			return nil
		}
	}
}

func (r *Runner) prompt(ctx context.Context, form *memdom.Form, g group) error {
	el := g.elements[0]
	label := r.label(el)
	help, _ := el.Attribute("title")

	switch el.Type() {
	case dom.TypeCheckbox:
		if len(g.elements) == 1 {
			want, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: el.Checked(), Help: help})
			if err != nil {
				return err
			}
			if want != el.Checked() {
				form.Click(el)
			}
			return nil
		}
		return r.promptCheckboxGroup(ctx, form, g, label, help)
	case dom.TypeRadio:
		options := make([]string, len(g.elements))
		def := 0
		for i, radio := range g.elements {
			options[i] = r.optionLabel(radio)
			if radio.Checked() {
				def = i
			}
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: def, Help: help})
		if err != nil {
			return err
		}
		if idx >= 0 && idx < len(g.elements) {
			form.Click(g.elements[idx])
		}
		return nil
	case dom.TypeSelectOne, dom.TypeSelectMultiple:
		return r.promptSelect(ctx, form, el, label, help)
	case dom.TypeFile:
		raw, err := r.driver.Input(ctx, InputConfig{Message: label + " (paths, comma separated)", Help: help})
		if err != nil {
			return err
		}
		files, err := fileRefs(raw)
		if err != nil {
			return err
		}
		form.Attach(el, files...)
		return nil
	}

	var (
		value string
		err   error
	)
	switch el.HostType() {
	case "textarea":
		value, err = r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: el.Value(), Help: help})
	case "password":
		value, err = r.driver.Password(ctx, InputConfig{Message: label, Help: help})
	default:
		value, err = r.driver.Input(ctx, InputConfig{Message: label, Default: el.Value(), Help: help})
	}
	if err != nil {
		return err
	}
	if value != el.Value() {
		form.Type(el, value)
	}
	return nil
}

func (r *Runner) promptCheckboxGroup(ctx context.Context, form *memdom.Form, g group, label, help string) error {
	options := make([]string, len(g.elements))
	var defaults []int
	for i, box := range g.elements {
		options[i] = r.optionLabel(box)
		if box.Checked() {
			defaults = append(defaults, i)
		}
	}
	picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: options, Defaults: defaults, Help: help})
	if err != nil {
		return err
	}
	want := make(map[int]bool, len(picked))
	for _, idx := range picked {
		want[idx] = true
	}
	for i, box := range g.elements {
		if box.Checked() != want[i] {
			form.Click(box)
		}
	}
	return nil
}

func (r *Runner) promptSelect(ctx context.Context, form *memdom.Form, el *memdom.Element, label, help string) error {
	choices := el.Options()
	if len(choices) == 0 {
		return nil
	}
	options := make([]string, len(choices))
	var defaults []int
	for i, opt := range choices {
		options[i] = opt.Label
		if options[i] == "" {
			options[i] = opt.Value
		}
		if opt.Selected {
			defaults = append(defaults, i)
		}
	}

	if el.Type() == dom.TypeSelectMultiple {
		picked, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: options, Defaults: defaults, Help: help})
		if err != nil {
			return err
		}
		values := make([]string, 0, len(picked))
		for _, idx := range picked {
			if idx >= 0 && idx < len(choices) {
				values = append(values, choices[idx].Value)
			}
		}
		form.Choose(el, values...)
		return nil
	}

	def := 0
	if len(defaults) > 0 {
		def = defaults[0]
	}
	idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: def, Help: help})
	if err != nil {
		return err
	}
	if idx >= 0 && idx < len(choices) {
		form.Choose(el, choices[idx].Value)
	}
	return nil
}

func (r *Runner) label(el *memdom.Element) string {
	if label, ok := el.Attribute(r.labelAttr); ok && strings.TrimSpace(label) != "" {
		return label
	}
	return el.Name()
}

func (r *Runner) optionLabel(el *memdom.Element) string {
	if label, ok := el.Attribute(r.labelAttr); ok && strings.TrimSpace(label) != "" {
		return label
	}
	return el.Value()
}

func (r *Runner) info(ctx context.Context, msg string) {
	if err := r.driver.Info(ctx, msg); err != nil {
		r.logger.WarnContext(ctx, "tui.info.fail", slog.String("err", err.Error()))
	}
}

// settle runs queued work and waits for in-flight blur validators.
func settle(ctx context.Context, coord *coordinator.Coordinator, pump Pump) error {
	pump.Flush()
	for coord.State().IsValidating {
		if err := pump.Next(ctx); err != nil {
			return err
		}
		pump.Flush()
	}
	return nil
}

func groups(form *memdom.Form) []group {
	var out []group
	index := make(map[string]int)
	for _, el := range form.All() {
		name := el.Name()
		if name == "" || el.Type() == dom.TypeButton || el.Disabled() {
			continue
		}
		if idx, ok := index[name]; ok {
			out[idx].elements = append(out[idx].elements, el)
			continue
		}
		index[name] = len(out)
		out = append(out, group{name: name, elements: []*memdom.Element{el}})
	}
	return out
}

func fileRefs(raw string) ([]dom.FileRef, error) {
	var out []dom.FileRef
	for _, part := range strings.Split(raw, ",") {
		path := strings.TrimSpace(part)
		if path == "" {
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("tui: stat %s: %w", path, err)
		}
		out = append(out, dom.FileRef{
			Name:         filepath.Base(path),
			Size:         info.Size(),
			Type:         mime.TypeByExtension(filepath.Ext(path)),
			LastModified: info.ModTime(),
		})
	}
	return out, nil
}
