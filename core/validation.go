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

import (
	"fmt"
	"math"
)

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Raw must be a non-empty JSON object
//   - DeviceId must be present
//
// NOT validated:
//   - Vector (can be empty until the embedding pipeline runs)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if len(doc.Raw) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyDocument)
	}

	v, err := doc.Value()
	if err != nil {
		return err
	}
	if _, err := v.Object(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrNotObject)
	}

	if doc.Text(FieldDeviceID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrMissingDeviceID)
	}

	return nil
}

// ValidateEmbedding checks that a vector is non-empty, finite and, when dim
// is positive, has exactly dim components.
func ValidateEmbedding(vector []float32, dim int) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: vector is empty", ErrInvalidEmbedding)
	}
	if dim > 0 && len(vector) != dim {
		return fmt.Errorf("%w: %w: got %d, want %d", ErrInvalidEmbedding, ErrDimensionMismatch, len(vector), dim)
	}
	for i, f := range vector {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return fmt.Errorf("%w: component %d is not finite", ErrInvalidEmbedding, i)
		}
	}
	return nil
}

// HasEmbedding reports whether a document is eligible for semantic retrieval.
func HasEmbedding(doc *Document, dim int) bool {
	return doc != nil && ValidateEmbedding(doc.Vector, dim) == nil
}
