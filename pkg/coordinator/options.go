package coordinator

import (
	"log/slog"

	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/loop"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/pkg/validate"
)

// DataFunc receives every publish, partial or full.
type DataFunc func(update state.Update, form dom.Form)

// DataEventFunc receives a full snapshot together with the triggering event.
type DataEventFunc func(ev *dom.Event, st state.FormState, form dom.Form)

// Listeners are raw event passthroughs.
type Listeners struct {
	OnChange func(*dom.Event)
	OnFocus  func(*dom.Event)
	OnBlur   func(*dom.Event)
	OnReset  func(*dom.Event)
	OnSubmit func(*dom.Event)
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithNativeValidation selects native browser display of validation
// messages. When disabled (the default) the host's novalidate flag is set
// and the first invalid control is focused on submit.
func WithNativeValidation(enabled bool) Option {
	return func(c *Coordinator) {
		c.native = enabled
	}
}

// WithChangeValidators registers on-change validators by field name.
func WithChangeValidators(validators map[string]validate.Func) Option {
	return func(c *Coordinator) {
		c.validateOptions = append(c.validateOptions, validate.WithChange(validators))
	}
}

// WithBlurValidators registers on-blur validators by field name.
func WithBlurValidators(validators map[string]validate.AsyncFunc) Option {
	return func(c *Coordinator) {
		c.validateOptions = append(c.validateOptions, validate.WithBlur(validators))
	}
}

// WithFailurePolicy selects how failing validators are recorded. message is
// used under validate.FailClosed; empty keeps the default.
func WithFailurePolicy(policy validate.FailurePolicy, message string) Option {
	return func(c *Coordinator) {
		c.validateOptions = append(c.validateOptions, validate.WithFailurePolicy(policy, message))
	}
}

// WithValidateOnMount runs on-change validators for the mount snapshot.
func WithValidateOnMount(enabled bool) Option {
	return func(c *Coordinator) {
		c.validateOnMount = enabled
	}
}

// WithScheduler sets the queue deferred resets and async settlements run on.
// Every Coordinator method must be called from that queue's goroutine.
func WithScheduler(sched loop.Scheduler) Option {
	return func(c *Coordinator) {
		if sched != nil {
			c.sched = sched
		}
	}
}

// WithLogger sets the slog logger. If not provided, logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSession supplies the session to use, e.g. to inspect it in tests.
func WithSession(session *Session) Option {
	return func(c *Coordinator) {
		if session != nil {
			c.session = session
		}
	}
}

// WithListeners registers raw event passthroughs.
func WithListeners(listeners Listeners) Option {
	return func(c *Coordinator) {
		c.listeners = listeners
	}
}

// WithOnData registers the callback receiving every publish.
func WithOnData(fn DataFunc) Option {
	return func(c *Coordinator) {
		c.onData = fn
	}
}

// WithOnChangeWithData registers the change callback.
func WithOnChangeWithData(fn DataEventFunc) Option {
	return func(c *Coordinator) {
		c.onChangeWithData = fn
	}
}

// WithOnResetWithData registers the reset callback.
func WithOnResetWithData(fn DataEventFunc) Option {
	return func(c *Coordinator) {
		c.onResetWithData = fn
	}
}

// WithOnSubmitWithData registers the submit callback. Registering one
// suppresses native submission.
func WithOnSubmitWithData(fn DataEventFunc) Option {
	return func(c *Coordinator) {
		c.onSubmitWithData = fn
	}
}
