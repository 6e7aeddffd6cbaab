package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	formstate "github.com/goliatone/go-formstate"
	"github.com/goliatone/go-formstate/pkg/coordinator"
	"github.com/goliatone/go-formstate/pkg/dom"
	"github.com/goliatone/go-formstate/pkg/formdef"
	"github.com/goliatone/go-formstate/pkg/openapiform"
	"github.com/goliatone/go-formstate/pkg/summary"
	"github.com/goliatone/go-formstate/pkg/tui"
)

func main() {
	defPath := flag.String("def", "", "form definition (JSON or YAML)")
	source := flag.String("source", "", "OpenAPI document to build the form from")
	opID := flag.String("operation", "", "operation ID whose request body becomes the form")
	native := flag.Bool("native", false, "let the host block invalid submissions")
	format := flag.String("format", "json", "result format: json or html")
	output := flag.String("output", "", "output file (stdout if empty)")
	verbose := flag.Bool("v", false, "log coordinator activity to stderr")
	schema := flag.Bool("schema", false, "print the definition JSON Schema and exit")
	flag.Parse()

	if *schema {
		data, err := formdef.SchemaJSON()
		if err != nil {
			log.Fatalf("Failed to build schema: %v", err)
		}
		fmt.Println(string(data))
		return
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	def, err := loadDefinition(ctx, *defPath, *source, *opID)
	if err != nil {
		log.Fatalf("Failed to load form: %v", err)
	}

	form := def.Build()
	coord, err := formstate.Attach(ctx, form,
		coordinator.WithNativeValidation(*native),
		coordinator.WithLogger(logger),
		coordinator.WithOnData(func(update formstate.Update, _ dom.Form) {
			logger.Debug("form.publish",
				slog.String("parts", update.Parts.String()),
				slog.Bool("valid", update.State.IsValid),
				slog.Bool("validating", update.State.IsValidating),
			)
		}),
	)
	if err != nil {
		log.Fatalf("Failed to attach: %v", err)
	}
	defer coord.Close()

	runner := tui.New(tui.WithLogger(logger), tui.WithLabelAttr(formdef.LabelAttr))
	result, err := runner.Fill(ctx, form, coord)
	if errors.Is(err, tui.ErrAborted) {
		os.Exit(130)
	}
	if err != nil {
		log.Fatalf("Failed to fill form: %v", err)
	}

	payload, err := render(result, *format, summary.FieldsFrom(form, formdef.LabelAttr))
	if err != nil {
		log.Fatalf("Failed to render result: %v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, payload, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Result written to %s\n", *output)
		return
	}
	fmt.Println(string(payload))
}

func loadDefinition(ctx context.Context, defPath, source, opID string) (formdef.Definition, error) {
	switch {
	case strings.TrimSpace(defPath) != "":
		return formdef.LoadFile(defPath)
	case strings.TrimSpace(source) != "":
		if opID == "" {
			return formdef.Definition{}, errors.New("-operation is required with -source")
		}
		data, err := os.ReadFile(source)
		if err != nil {
			return formdef.Definition{}, fmt.Errorf("read %s: %w", source, err)
		}
		return openapiform.FromData(ctx, data, opID)
	default:
		return formdef.Definition{}, errors.New("one of -def or -source is required")
	}
}

func render(result tui.Result, format string, fields []summary.Field) ([]byte, error) {
	switch format {
	case "html":
		renderer, err := summary.New()
		if err != nil {
			return nil, err
		}
		out, err := renderer.Render(result.State, fields)
		if err != nil {
			return nil, err
		}
		return []byte(out), nil
	case "json", "":
		return json.MarshalIndent(struct {
			Submitted bool                `json:"submitted"`
			State     formstate.FormState `json:"state"`
		}{result.Submitted, result.State}, "", "  ")
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
