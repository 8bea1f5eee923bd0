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

package reembed

import (
	"context"

	"github.com/poiesic/logscope/core"
	"github.com/poiesic/logscope/storage"
)

// DefaultBatchSize is the number of documents fetched and embedded together.
const DefaultBatchSize = 100

// DocumentIterator walks every stored document in fixed-size batches.
type DocumentIterator struct {
	scanner   storage.Scanner
	batchSize int
}

// NewDocumentIterator creates an iterator. Non-positive batch sizes use
// DefaultBatchSize.
func NewDocumentIterator(scanner storage.Scanner, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DocumentIterator{scanner: scanner, batchSize: batchSize}
}

// BatchSize returns the effective batch size.
func (it *DocumentIterator) BatchSize() int {
	return it.batchSize
}

// ForEach calls fn for each non-empty batch. Iteration stops at the first
// error from fn or the store. The context is checked between batches.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return it.scanner.ForEach(ctx, it.batchSize, func(batch []*core.Document) error {
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		return ctx.Err()
	})
}
