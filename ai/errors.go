package ai

import "errors"

var (
	// ErrEmptyInput is returned when text submitted for embedding is empty
	// or whitespace-only.
	ErrEmptyInput = errors.New("embedding input cannot be empty")
)
