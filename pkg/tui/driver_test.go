package tui

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
)

func TestSurveyDriver_PageSize(t *testing.T) {
	d := NewSurveyDriver(WithPageSize(0))
	if got := d.pageSizeFor(SelectConfig{}); got != 7 {
		t.Fatalf("default page size = %d", got)
	}
	d = NewSurveyDriver(WithPageSize(12))
	if got := d.pageSizeFor(SelectConfig{}); got != 12 {
		t.Fatalf("configured page size = %d", got)
	}
	if got := d.pageSizeFor(SelectConfig{PageSize: 3}); got != 3 {
		t.Fatalf("per-prompt page size = %d", got)
	}
}

func TestSurveyDriver_CancelledContextSkipsTerminal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errOut bytes.Buffer
	d := NewSurveyDriver(WithStdio(os.Stdin, os.Stdout, &errOut))

	if _, err := d.Input(ctx, InputConfig{Message: "name"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("input error = %v", err)
	}
	if idx, err := d.Select(ctx, SelectConfig{Message: "size", Options: []string{"s"}}); idx != -1 || !errors.Is(err, context.Canceled) {
		t.Fatalf("select = %d, %v", idx, err)
	}
	if err := d.Info(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Fatalf("info error = %v", err)
	}
	if errOut.Len() != 0 {
		t.Fatalf("nothing should be written, got %q", errOut.String())
	}
}
