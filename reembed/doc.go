// Package reembed recomputes the embedding of every stored log document.
//
// It is used after switching embedding models or changing the embedding
// text rendering. Documents are walked in batches, embedded with retry and
// exponential backoff, normalized to unit length and written back in place.
// Documents whose new vector fails validation keep their previous one.
package reembed
