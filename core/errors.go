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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation or could not be parsed.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrNotObject indicates a document body is valid JSON but not an object.
	ErrNotObject = errors.New("document must be a JSON object")

	// ErrEmptyDocument indicates the document body is empty.
	ErrEmptyDocument = errors.New("document cannot be empty")

	// ErrMissingDeviceID indicates a document has no DeviceId.
	ErrMissingDeviceID = errors.New("document has no DeviceId")

	// ErrInvalidEmbedding indicates an embedding vector failed validation.
	ErrInvalidEmbedding = errors.New("invalid embedding")

	// ErrDimensionMismatch indicates an embedding has the wrong number of dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
