package answer

import "errors"

var (
	// ErrGeneratorRequired is returned when no ai.Generator is provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrGeneration wraps any failure of the text-generation service.
	ErrGeneration = errors.New("answer generation failed")
)
