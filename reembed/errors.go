package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when a Backoff allows no attempts.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrZeroVector is returned when a vector has no direction to normalize.
	ErrZeroVector = errors.New("cannot normalize zero vector")

	// ErrStoreRequired is returned when a Reembedder is built without a store.
	ErrStoreRequired = errors.New("document store is required")

	// ErrEmbedderRequired is returned when a Reembedder is built without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")
)
