// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package storage provides the storage abstraction layer for logscope.
//
// Device-log documents are schemaless JSON objects addressed by dotted
// field paths. This package defines narrow capability interfaces over them
// so retrieval code can depend on exactly what it uses:
//
//   - Finder: filtered, projected lookups
//   - DistinctFinder: distinct values of one field
//   - VectorSearcher: hybrid filtered similarity search
//   - Writer: document and embedding upserts
//   - Scanner: batched full walks (re-embedding, backfill)
//
// LogRepository aggregates all of them and is what backends implement.
//
// # Constructor Return Type Pattern
//
// Public backend constructors return the interface:
//
//	repo, err := badger.NewRepository(path)  // returns storage.LogRepository
//	repo, err := qdrant.NewRepository(ctx, cfg)
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Filters
//
// Filters are core.Filter values. Exact predicates compare the rendered
// value case-sensitively; pattern predicates compare case-insensitively as
// whole-value or substring matches. A document missing a filtered field
// never matches.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
