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

// Package engine runs one question-answering turn.
//
// A turn classifies the raw input, dispatches it to the structured or the
// semantic retrieval path, and returns a typed Response the caller can
// render. Failures never escape a turn: they are folded into guidance,
// empty-result or error responses so an interactive loop can continue.
//
// Error responses name the failing subsystem ("database" or "AI service")
// so the user can tell a broken dependency apart from an empty result.
package engine
