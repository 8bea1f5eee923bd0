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

package search

import "errors"

var (
	// ErrRepositoryRequired is returned when a log repository is not provided.
	ErrRepositoryRequired = errors.New("log repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrNoFields is returned when a projection names no fields.
	ErrNoFields = errors.New("no fields to project")

	// ErrStorage wraps any failure of the log store.
	ErrStorage = errors.New("log store unavailable")

	// ErrEmbedding wraps any failure to embed a question, including an empty
	// vector or one of the wrong dimensionality.
	ErrEmbedding = errors.New("embedding failed")
)
