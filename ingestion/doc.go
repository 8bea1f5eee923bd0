// Package ingestion loads device-log dumps into a log repository.
//
// Dumps are JSON arrays, single JSON objects, or line-delimited JSON
// (.jsonl, .ndjson), optionally compressed with gzip (.gz) or zstd (.zst).
// Records that already carry an embedding of the configured dimension keep
// it. All others are stored immediately and embedded asynchronously on a
// bounded worker pool, with embedding calls throttled by a token bucket.
//
// A Watcher reloads dumps dropped into a directory. Document IDs are
// derived from content, so loading the same file twice is harmless.
package ingestion
