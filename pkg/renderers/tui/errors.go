package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrInvalid is returned when the submission still fails validation after
	// the last correction round.
	ErrInvalid = errors.New("tui: submission still invalid")
)
