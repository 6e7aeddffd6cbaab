// Package testsupport holds helpers shared by package tests: a recorder for
// published updates, a mounted-coordinator harness and golden-file helpers.
package testsupport

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/coordinator"
	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/dom/memdom"
	"github.com/goliatone/go-formstate/pkg/formdef"
	"github.com/goliatone/go-formstate/pkg/loop"
	"github.com/goliatone/go-formstate/pkg/state"
)

// Recorder collects every update a coordinator publishes.
type Recorder struct {
	updates []state.Update
}

// OnData satisfies coordinator.DataFunc.
func (r *Recorder) OnData(update state.Update, _ dom.Form) {
	r.updates = append(r.updates, update)
}

// Updates returns the recorded updates in publish order.
func (r *Recorder) Updates() []state.Update {
	return append([]state.Update(nil), r.updates...)
}

// Len reports how many updates were recorded.
func (r *Recorder) Len() int { return len(r.updates) }

// Last returns the most recent update. It fails the test when nothing was
// published.
func (r *Recorder) Last(t *testing.T) state.Update {
	t.Helper()
	if len(r.updates) == 0 {
		t.Fatalf("no updates recorded")
	}
	return r.updates[len(r.updates)-1]
}

// Parts lists the parts mask of every recorded update.
func (r *Recorder) Parts() []state.Parts {
	out := make([]state.Parts, len(r.updates))
	for i, u := range r.updates {
		out[i] = u.Parts
	}
	return out
}

// Reset forgets recorded updates.
func (r *Recorder) Reset() { r.updates = nil }

// Harness is a mounted coordinator driven by a manual scheduler.
type Harness struct {
	Form        *memdom.Form
	Coordinator *coordinator.Coordinator
	Scheduler   *loop.Manual
	Recorder    *Recorder
}

// Mount builds, mounts and binds a coordinator for form. The recorder and a
// manual scheduler are installed ahead of options, so options may override
// neither the scheduler nor OnData.
func Mount(t *testing.T, form *memdom.Form, options ...coordinator.Option) *Harness {
	t.Helper()

	h := &Harness{
		Form:      form,
		Scheduler: loop.NewManual(),
		Recorder:  &Recorder{},
	}
	opts := append([]coordinator.Option{}, options...)
	opts = append(opts,
		coordinator.WithScheduler(h.Scheduler),
		coordinator.WithOnData(h.Recorder.OnData),
	)

	coord, err := coordinator.New(form, opts...)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if _, err := coord.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	coord.Bind(form)
	t.Cleanup(coord.Close)

	h.Coordinator = coord
	return h
}

// State returns the coordinator's latest state.
func (h *Harness) State() state.FormState {
	return h.Coordinator.State()
}

// Settle runs queued tasks, then waits for every in-flight blur validator to
// settle.
func (h *Harness) Settle(t *testing.T) {
	t.Helper()
	h.Scheduler.Flush()
	for h.Coordinator.State().IsValidating {
		if err := h.Scheduler.Next(Context(t)); err != nil {
			t.Fatalf("waiting for validators: %v", err)
		}
		h.Scheduler.Flush()
	}
}

// MustLoadDefinition parses a definition fixture.
func MustLoadDefinition(t *testing.T, path string) formdef.Definition {
	t.Helper()
	def, err := formdef.LoadFile(path)
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}
	return def
}

// Context returns a context cancelled when the test ends.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGoldenString reads a golden file.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return string(data)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureOutput runs a render function that writes to an io.Writer and
// returns both the string result and the writer contents.
func CaptureOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out, buf.String()
}
