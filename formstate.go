// Package formstate keeps an uncontrolled form's state in sync with its live
// controls. It observes change/focus/blur/reset/submit events, derives a
// normalized snapshot of values and validation state, and publishes it to
// caller callbacks.
//
// The root package re-exports the types most callers need; the pipeline
// lives in pkg/extract, pkg/validate and pkg/coordinator.
package formstate

import (
	"context"

	"github.com/goliatone/go-formstate/pkg/coordinator"
	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// FormState aliases state.FormState.
type FormState = state.FormState

// Update aliases state.Update for OnData callbacks.
type Update = state.Update

// Value aliases the field value union.
type Value = state.Value

// Validator is an on-change validator.
type Validator = validate.Func

// BlurValidator is an on-blur validator that may settle asynchronously.
type BlurValidator = validate.AsyncFunc

// Coordinator aliases coordinator.Coordinator.
type Coordinator = coordinator.Coordinator

// Option aliases coordinator.Option.
type Option = coordinator.Option

// New constructs an unmounted coordinator for form.
func New(form dom.Form, options ...Option) (*Coordinator, error) {
	return coordinator.New(form, options...)
}

// Attach builds a coordinator for src, captures the baseline snapshot and
// subscribes to src's events. Call Close on the result when the form goes
// away.
func Attach(ctx context.Context, src dom.EventSource, options ...Option) (*Coordinator, error) {
	c, err := coordinator.New(src, options...)
	if err != nil {
		return nil, err
	}
	if _, err := c.Mount(ctx); err != nil {
		return nil, err
	}
	c.Bind(src)
	return c, nil
}

// DefaultState returns the state to render before the first publish.
func DefaultState() FormState {
	return state.Default()
}
