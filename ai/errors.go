package ai

import "errors"

var (
	// ErrNoEmbedding indicates the embedding service returned no vector.
	ErrNoEmbedding = errors.New("embedding service returned no vector")

	// ErrUnknownProvider indicates Config.Provider names no known backend.
	ErrUnknownProvider = errors.New("unknown AI provider")
)
