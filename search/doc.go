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

// Package search implements the two retrieval paths over stored device logs.
//
// Lookup serves the structured path: projected listings, unique values of
// one field, and full-record dumps, all driven by a core.Filter.
//
// Searcher serves the semantic path. It embeds the question and runs one
// hybrid similarity search in which the optional filter is applied in the
// same storage call as the vector comparison. Results are returned in the
// order the backend ranked them.
//
// Storage failures surface as ErrStorage and embedding failures as
// ErrEmbedding, so callers can tell a broken dependency apart from an
// empty result.
package search
