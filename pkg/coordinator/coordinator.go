// Package coordinator binds the snapshot extractor and the validation
// orchestrator to a form's focus/change/blur/reset/submit events, keeps the
// touched/dirty/blurred/submit-count bookkeeping for one mount, and publishes
// the resulting FormState to the caller's callbacks.
package coordinator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"

	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/extract"
	"github.com/goliatone/go-formstate/pkg/loop"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/pkg/validate"
)

var (
	// ErrNoForm is returned when a coordinator is built without a form.
	ErrNoForm = errors.New("coordinator: form is required")
	// ErrAlreadyMounted is returned by a second Mount.
	ErrAlreadyMounted = errors.New("coordinator: already mounted")
)

// Coordinator drives one mounted form. It is not safe for concurrent use:
// every method must run on the goroutine of its scheduler.
type Coordinator struct {
	form    dom.Form
	session *Session
	orch    *validate.Orchestrator
	sched   loop.Scheduler
	logger  *slog.Logger

	native          bool
	validateOnMount bool
	validateOptions []validate.Option

	listeners        Listeners
	onData           DataFunc
	onChangeWithData DataEventFunc
	onResetWithData  DataEventFunc
	onSubmitWithData DataEventFunc

	ctx         context.Context
	cancel      context.CancelFunc
	current     state.FormState
	unsubscribe func()
}

// New constructs a Coordinator for form. The scheduler defaults to a
// loop.Manual the caller must flush.
func New(form dom.Form, options ...Option) (*Coordinator, error) {
	if form == nil {
		return nil, ErrNoForm
	}
	c := &Coordinator{
		form:    form,
		current: state.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	if c.session == nil {
		c.session = NewSession()
	}
	if c.sched == nil {
		c.sched = loop.NewManual()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c.logger = c.logger.With(slog.String("session", c.session.ID))

	orchOptions := append([]validate.Option{
		validate.WithNativeDisplay(c.native),
		validate.WithLogger(c.logger),
	}, c.validateOptions...)
	c.orch = validate.New(orchOptions...)
	return c, nil
}

// Form returns the form handle.
func (c *Coordinator) Form() dom.Form { return c.form }

// Session returns the live session. Callers must not mutate it.
func (c *Coordinator) Session() *Session { return c.session }

// Scheduler returns the scheduler the coordinator posts to.
func (c *Coordinator) Scheduler() loop.Scheduler { return c.sched }

// State returns a copy of the latest published state.
func (c *Coordinator) State() state.FormState { return c.current.Clone() }

// Mount captures the baseline snapshot and publishes it as the initial state.
func (c *Coordinator) Mount(ctx context.Context) (state.FormState, error) {
	if c.session.Mounted() {
		return state.FormState{}, ErrAlreadyMounted
	}
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.form.SetNoValidate(!c.native)

	c.current = c.snapshot(extract.ModeNormal, c.validateOnMount)
	c.session.Baseline = state.CloneValues(c.current.Values)
	c.logger.DebugContext(c.ctx, "form.mount", slog.Int("fields", len(c.current.Values)))
	c.publish(state.PartFull)
	return c.current.Clone(), nil
}

// Bind subscribes the coordinator to src's events. It replaces any earlier
// binding.
func (c *Coordinator) Bind(src dom.EventSource) {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	c.unsubscribe = src.Subscribe(c.HandleEvent)
}

// Close unbinds the coordinator and cancels the context handed to validators.
func (c *Coordinator) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.cancel != nil {
		c.cancel()
	}
}

// HandleEvent routes a native form event. Events before Mount are ignored.
func (c *Coordinator) HandleEvent(ev *dom.Event) {
	if ev == nil {
		return
	}
	if !c.session.Mounted() {
		c.logger.Debug("form.event.unmounted", slog.String("event", ev.Kind.String()))
		return
	}
	switch ev.Kind {
	case dom.EventFocus:
		c.handleFocus(ev)
	case dom.EventChange:
		c.handleChange(ev)
	case dom.EventBlur:
		c.handleBlur(ev)
	case dom.EventReset:
		c.handleReset(ev)
	case dom.EventSubmit:
		c.handleSubmit(ev)
	}
}

func (c *Coordinator) handleFocus(ev *dom.Event) {
	if mark(c.session.Touched, ev.TargetName()) {
		c.current.Touched = maps.Clone(c.session.Touched)
	}
	call(c.listeners.OnFocus, ev)
	c.publish(state.PartTouched)
}

func (c *Coordinator) handleChange(ev *dom.Event) {
	name := ev.TargetName()
	mark(c.session.Dirty, name)
	// A blur message describes the value that was blurred; an edit retires it.
	delete(c.session.BlurErrors, name)
	c.current = c.snapshot(extract.ModeNormal, true)

	call(c.listeners.OnChange, ev)
	c.publish(state.PartFull)
	if c.onChangeWithData != nil {
		c.onChangeWithData(ev, c.current.Clone(), c.form)
	}
}

func (c *Coordinator) handleBlur(ev *dom.Event) {
	call(c.listeners.OnBlur, ev)

	name := ev.TargetName()
	if !mark(c.session.Blurred, name) {
		return
	}
	c.current.Blurred = maps.Clone(c.session.Blurred)
	c.publish(state.PartBlurred)

	if !c.orch.HasBlur(name) {
		return
	}

	// The full pass gives the validator the field's current value and
	// re-applies custom validity before anything is published.
	c.current = c.snapshot(extract.ModeNormal, true)

	inline := true
	_, pending := c.orch.DispatchBlur(c.ctx, c.session.Tracker, c.sched, name, c.current.Values[name], func(settled validate.Settled) {
		if !inline && c.ctx.Err() != nil {
			return
		}
		c.commitBlur(settled)
		if !inline {
			c.current = c.snapshot(extract.ModeNormal, true)
			c.publish(state.PartFull)
		}
	})
	inline = false

	if pending {
		c.current.IsValidating = true
		c.publish(state.PartValidating)
		return
	}
	c.current = c.snapshot(extract.ModeNormal, true)
	c.publish(state.PartFull)
}

func (c *Coordinator) commitBlur(settled validate.Settled) {
	name := settled.Ticket.Field
	if settled.Message != "" {
		c.session.BlurErrors[name] = settled.Message
		return
	}
	delete(c.session.BlurErrors, name)
}

// handleReset defers one task so the host finishes restoring its controls
// before the snapshot is taken.
func (c *Coordinator) handleReset(ev *dom.Event) {
	c.sched.Post(func() {
		if c.ctx != nil && c.ctx.Err() != nil {
			return
		}
		c.session.Reset()
		c.current = c.snapshot(extract.ModeResetting, true)
		c.session.Baseline = state.CloneValues(c.current.Values)

		call(c.listeners.OnReset, ev)
		c.publish(state.PartFull)
		if c.onResetWithData != nil {
			c.onResetWithData(ev, c.current.Clone(), c.form)
		}
	})
}

func (c *Coordinator) handleSubmit(ev *dom.Event) {
	c.session.SubmitCount++
	c.current = c.snapshot(extract.ModeSubmitting, true)

	call(c.listeners.OnSubmit, ev)
	c.publish(state.PartFull)
	if c.onSubmitWithData != nil {
		ev.PreventDefault()
		c.onSubmitWithData(ev, c.current.Clone(), c.form)
	}
}

// snapshot runs extraction plus orchestration and folds in the session's
// bookkeeping. withValidators=false records native errors only.
func (c *Coordinator) snapshot(mode extract.Mode, withValidators bool) state.FormState {
	snap := extract.Extract(c.form, c.session.Baseline, mode,
		extract.WithLogger(c.logger),
		extract.WithOverridePush(c.native),
		extract.WithMountedNames(c.session.Fields),
	)
	if !c.session.Mounted() {
		c.session.Fields = snap.Names()
	}

	var errs map[string]string
	if withValidators {
		errs = c.orch.RunChange(c.ctx, snap, mode == extract.ModeSubmitting, c.session.BlurErrors).Errors
	} else {
		errs = maps.Clone(snap.NativeErrors)
	}

	st := state.FormState{
		Values:  snap.Values,
		Errors:  errs,
		IsValid: len(errs) == 0,
	}
	if c.session.Mounted() && mode != extract.ModeResetting {
		st.IsDirty = !state.ValuesEqual(snap.Values, c.session.Baseline)
	}
	c.session.Bookkeeping(&st)
	return st
}

func (c *Coordinator) publish(parts state.Parts) {
	if c.onData == nil {
		return
	}
	c.onData(state.Update{Parts: parts, State: c.current.Clone()}, c.form)
}

func call(fn func(*dom.Event), ev *dom.Event) {
	if fn != nil {
		fn(ev)
	}
}
