// Package validate runs caller-registered validators against an extracted
// snapshot. On-change validators run inline; on-blur validators may settle
// later, and only the latest invocation per field may commit its message.
package validate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/extract"
	"github.com/goliatone/go-formstate/pkg/loop"
	"github.com/goliatone/go-formstate/pkg/state"
)

// FailurePolicy decides what a failing validator (error or panic) means.
type FailurePolicy uint8

const (
	// FailOpen treats a failure as "no message".
	FailOpen FailurePolicy = iota
	// FailClosed records the failure message as the field error.
	FailClosed
)

// DefaultFailureMessage is recorded under FailClosed unless overridden.
const DefaultFailureMessage = "validation failed"

// ErrValidatorPanic wraps a recovered validator panic.
var ErrValidatorPanic = errors.New("validate: validator panicked")

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithChange registers on-change validators keyed by field name.
func WithChange(validators map[string]Func) Option {
	return func(o *Orchestrator) {
		for name, fn := range validators {
			if fn != nil {
				o.change[name] = fn
			}
		}
	}
}

// WithBlur registers on-blur validators keyed by field name.
func WithBlur(validators map[string]AsyncFunc) Option {
	return func(o *Orchestrator) {
		for name, fn := range validators {
			if fn != nil {
				o.blur[name] = fn
			}
		}
	}
}

// WithNativeDisplay pushes messages into the host's custom validity instead
// of focusing the first invalid control on submit.
func WithNativeDisplay(enabled bool) Option {
	return func(o *Orchestrator) {
		o.native = enabled
	}
}

// WithFailurePolicy selects how validator failures are recorded.
func WithFailurePolicy(policy FailurePolicy, message string) Option {
	return func(o *Orchestrator) {
		o.policy = policy
		if message != "" {
			o.failureMessage = message
		}
	}
}

// WithLogger sets the logger used for validator failures and stale results.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator merges validator output into a snapshot's errors.
type Orchestrator struct {
	change         map[string]Func
	blur           map[string]AsyncFunc
	native         bool
	policy         FailurePolicy
	failureMessage string
	logger         *slog.Logger
}

// New constructs an Orchestrator.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		change:         make(map[string]Func),
		blur:           make(map[string]AsyncFunc),
		failureMessage: DefaultFailureMessage,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// NativeDisplay reports whether native validation display is enabled.
func (o *Orchestrator) NativeDisplay() bool { return o.native }

// HasBlur reports whether field has an on-blur validator.
func (o *Orchestrator) HasBlur(field string) bool {
	_, ok := o.blur[field]
	return ok
}

// Outcome is the merged result of an on-change pass.
type Outcome struct {
	Errors map[string]string
	// Focus is the control that should receive focus on submit, or nil.
	Focus dom.Control
}

// RunChange runs on-change validators for every field in snap and merges
// their messages over the native errors. sticky carries messages committed
// by on-blur validators for the field's current value; they win over
// everything else for their field.
// When submitting without native display, the first invalid field in
// document order is focused.
func (o *Orchestrator) RunChange(ctx context.Context, snap extract.Snapshot, submitting bool, sticky map[string]string) Outcome {
	errs := maps.Clone(snap.NativeErrors)
	if errs == nil {
		errs = make(map[string]string)
	}

	var target dom.Control
	// Fields arrive in reverse document order, so the last assignment to
	// target is the earliest invalid field.
	for _, field := range snap.Fields {
		name := field.Name
		control := field.Primary()

		if fn, ok := o.change[name]; ok {
			if msg := o.call(ctx, name, "change", func(ctx context.Context) (string, error) {
				return fn(ctx, snap.Values[name])
			}); msg != "" {
				errs[name] = msg
				o.display(control, msg)
			}
		}

		if msg, ok := sticky[name]; ok && msg != "" {
			errs[name] = msg
			o.display(control, msg)
		}

		if errs[name] == "" {
			delete(errs, name)
			continue
		}
		if field.ErrorControl != nil && errs[name] == snap.NativeErrors[name] {
			target = field.ErrorControl
		} else {
			target = control
		}
	}

	if !submitting || o.native {
		target = nil
	}
	if target != nil {
		target.Focus()
	}
	return Outcome{Errors: errs, Focus: target}
}

func (o *Orchestrator) display(control dom.Control, msg string) {
	if o.native && control != nil {
		control.SetCustomValidity(msg)
	}
}

// Settled is a blur validation answer ready to commit.
type Settled struct {
	Ticket  Ticket
	Message string
}

// DispatchBlur starts the on-blur validator for field. Immediate results are
// passed to commit before DispatchBlur returns. Pending results settle on
// their own goroutine and are posted to sched; commit runs there only if the
// ticket is still current in tracker. It reports whether a validator ran and
// whether it is still pending.
func (o *Orchestrator) DispatchBlur(ctx context.Context, tracker *Tracker, sched loop.Scheduler, field string, value state.Value, commit func(Settled)) (dispatched, pending bool) {
	fn, ok := o.blur[field]
	if !ok {
		return false, false
	}

	ticket := tracker.Begin(field)
	var result Result
	msg := o.call(ctx, field, "blur", func(ctx context.Context) (string, error) {
		result = fn(ctx, value)
		return result.message, result.err
	})

	if !result.Pending() {
		if tracker.Settle(ticket) {
			commit(Settled{Ticket: ticket, Message: msg})
		}
		return true, false
	}

	go func() {
		settledMsg := o.call(ctx, field, "blur", result.later)
		sched.Post(func() {
			if !tracker.Settle(ticket) {
				o.logger.Debug("validator.blur.stale",
					slog.String("field", field),
					slog.Uint64("generation", ticket.Generation),
				)
				return
			}
			commit(Settled{Ticket: ticket, Message: settledMsg})
		})
	}()
	return true, true
}

// call invokes fn, converting errors and panics according to the policy.
func (o *Orchestrator) call(ctx context.Context, field, hook string, fn func(context.Context) (string, error)) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = o.failure(ctx, field, hook, fmt.Errorf("%w: %v", ErrValidatorPanic, r))
		}
	}()
	out, err := fn(ctx)
	if err != nil {
		return o.failure(ctx, field, hook, err)
	}
	return out
}

func (o *Orchestrator) failure(ctx context.Context, field, hook string, err error) string {
	o.logger.WarnContext(ctx, "validator.fail",
		slog.String("field", field),
		slog.String("hook", hook),
		slog.String("err", err.Error()),
	)
	if o.policy == FailClosed {
		return o.failureMessage
	}
	return ""
}
