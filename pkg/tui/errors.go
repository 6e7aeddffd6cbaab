package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNotPumpable is returned when the coordinator's scheduler cannot be
	// driven from the prompt loop.
	ErrNotPumpable = errors.New("tui: coordinator scheduler must be a loop.Manual")
)
