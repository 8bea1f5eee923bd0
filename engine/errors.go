package engine

import "errors"

var (
	// ErrLookupRequired is returned when no structured lookup is provided.
	ErrLookupRequired = errors.New("lookup required")

	// ErrSearcherRequired is returned when no semantic searcher is provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrAnswererRequired is returned when no answer generator is provided.
	ErrAnswererRequired = errors.New("answer generator required")

	// ErrPanic wraps a panic recovered inside a turn.
	ErrPanic = errors.New("unexpected failure")
)

// Subsystem names reported in error responses.
const (
	SubsystemDatabase = "database"
	SubsystemAI       = "AI service"
)
