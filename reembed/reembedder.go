// Copyright 2025 Helvetic Systems
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
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/helvetic-systems/laborsense/ai"
	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/store"
)

// Config holds configuration for the backfill operation.
type Config struct {
	// BatchSize is the number of documents to embed per provider call
	BatchSize int

	// Concurrency is the number of batches embedded in parallel
	Concurrency int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      50,
		Concurrency:    4,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder backfills vectors for every document stored without one.
type Reembedder struct {
	store     *store.Store
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(st *store.Store, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	return &Reembedder{
		store:     st,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(st, embedder, config.MaxRetries, config.RetryDelay),
	}
}

// Run executes the backfill. Documents that already carry a vector and graph
// documents are left untouched. Batches run on a worker pool; the first
// batch error aborts the run after in-flight batches drain.
func (r *Reembedder) Run(ctx context.Context) error {
	pending := r.pendingDocuments()
	if len(pending) == 0 {
		fmt.Fprintf(r.progress, "No documents need embedding (0 pending)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting embedding backfill of %d documents (batch size: %d, concurrency: %d)\n",
		len(pending), r.config.BatchSize, r.config.Concurrency)

	tracker := NewProgressTracker(r.progress, len(pending), r.config.ReportInterval)
	tracker.Start()

	pool, err := ants.NewPool(r.config.Concurrency)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(pending); start += r.config.BatchSize {
		end := start + r.config.BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		mu.Lock()
		aborted := firstErr != nil
		mu.Unlock()
		if aborted || ctx.Err() != nil {
			break
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := r.processor.Process(ctx, batch); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			tracker.Increment(len(batch))
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to submit batch: %w", submitErr)
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tracker.Finish()
	r.store.Flush()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Backfill complete. Embedded %d documents in %v (%.1f documents/sec)\n",
		len(pending), elapsed.Round(time.Second), float64(len(pending))/elapsed.Seconds())

	return nil
}

// pendingDocuments returns every document without a vector, excluding the
// graph layer.
func (r *Reembedder) pendingDocuments() []*core.Document {
	var pending []*core.Document
	for _, doc := range r.store.Documents(nil) {
		if len(doc.Embedding) > 0 {
			continue
		}
		if strings.HasPrefix(doc.ID, "entity:") || strings.HasPrefix(doc.ID, "impact:") {
			continue
		}
		pending = append(pending, doc)
	}
	return pending
}
