package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/coordinator"
	"github.com/goliatone/go-formstate/pkg/dom/memdom"
	"github.com/goliatone/go-formstate/pkg/loop"
	"github.com/goliatone/go-formstate/pkg/state"
	"github.com/goliatone/go-formstate/pkg/validate"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
	err          error
}

func (s *stubDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func signupForm() *memdom.Form {
	return memdom.NewForm(
		memdom.Input("name", "text", memdom.WithRequired(), memdom.WithAttr("aria-label", "Name")),
		memdom.Checkbox("terms", "yes"),
		memdom.Select("color", false, []memdom.SelectOption{
			{Value: "red", Label: "Red"},
			{Value: "blue", Label: "Blue"},
		}),
		memdom.Radio("size", "s"),
		memdom.Radio("size", "m"),
		memdom.Checkbox("tags", "a"),
		memdom.Checkbox("tags", "b"),
		memdom.Button("go", "submit"),
	)
}

func mounted(t *testing.T, form *memdom.Form, options ...coordinator.Option) *coordinator.Coordinator {
	t.Helper()
	coord, err := coordinator.New(form, options...)
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	if _, err := coord.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	coord.Bind(form)
	t.Cleanup(coord.Close)
	return coord
}

func TestFill_RepromptsUntilBlurValidatorPasses(t *testing.T) {
	form := signupForm()
	coord := mounted(t, form, coordinator.WithBlurValidators(map[string]validate.AsyncFunc{
		"name": validate.Async(func(_ context.Context, v state.Value) (string, error) {
			if v.Str() == "bob" {
				return "taken", nil
			}
			return "", nil
		}),
	}))

	driver := &stubDriver{
		inputs:    []string{"bob", "alice"},
		confirm:   []bool{true},
		selectIdx: []int{1, 1},
		multiIdx:  [][]int{{0, 1}},
	}
	result, err := New(WithPromptDriver(driver)).Fill(context.Background(), form, coord)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}

	if !result.Submitted {
		t.Fatalf("expected native submission to proceed")
	}
	want := map[string]state.Value{
		"name":  state.String("alice"),
		"terms": state.String("yes"),
		"color": state.String("blue"),
		"size":  state.String("m"),
		"tags":  state.List("b", "a"),
	}
	if diff := cmp.Diff(want, result.State.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"! taken"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	if result.State.SubmitCount != 1 {
		t.Fatalf("expected one submit, got %d", result.State.SubmitCount)
	}
	if len(result.State.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.State.Errors)
	}
}

func TestFill_GivesUpAfterMaxAttempts(t *testing.T) {
	form := memdom.NewForm(memdom.Input("code", "text", memdom.WithPattern("[0-9]{4}")))
	coord := mounted(t, form, coordinator.WithNativeValidation(true))

	driver := &stubDriver{inputs: []string{"x", "y"}}
	result, err := New(WithPromptDriver(driver), WithMaxAttempts(2)).Fill(context.Background(), form, coord)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if driver.inputPos != 2 {
		t.Fatalf("expected 2 prompts, got %d", driver.inputPos)
	}
	if result.Submitted {
		t.Fatalf("expected submission to be blocked")
	}
	if result.State.SubmitCount != 0 {
		t.Fatalf("blocked submit must not count, got %d", result.State.SubmitCount)
	}
	if got := result.State.Errors["code"]; got != "Please match the requested format." {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestFill_PropagatesAbort(t *testing.T) {
	form := memdom.NewForm(memdom.Input("name", "text"))
	coord := mounted(t, form)

	_, err := New(WithPromptDriver(&stubDriver{err: ErrAborted})).Fill(context.Background(), form, coord)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestFill_RequiresPumpableScheduler(t *testing.T) {
	form := memdom.NewForm(memdom.Input("name", "text"))
	coord := mounted(t, form, coordinator.WithScheduler(loop.New()))

	_, err := New(WithPromptDriver(&stubDriver{})).Fill(context.Background(), form, coord)
	if !errors.Is(err, ErrNotPumpable) {
		t.Fatalf("expected ErrNotPumpable, got %v", err)
	}
}
