package query

import "errors"

var (
	// ErrEmptyQuery indicates the input contained nothing but whitespace.
	ErrEmptyQuery = errors.New("empty query")

	// ErrNoFields indicates a structured query resolved to zero fields.
	// It is recoverable: the caller should ask the user to name fields.
	ErrNoFields = errors.New("no fields specified")
)
