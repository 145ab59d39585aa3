package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/helvetic-systems/laborsense/ai"
	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/store"
)

// BatchProcessor embeds one batch of documents and writes the vectors back.
type BatchProcessor struct {
	store          *store.Store
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(st *store.Store, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		store:          st,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of documents and updates them in
// the store. Vectors are normalized so cosine similarity reduces to a dot
// product against other normalized vectors.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}

	var embeddings []ai.Embedding
	err := ai.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(docs), len(embeddings))
	}

	for i, doc := range docs {
		bp.store.Update(doc.ID, store.Patch{
			Embedding: NormalizeVector(embeddings[i].Vector),
		})
	}

	return nil
}
