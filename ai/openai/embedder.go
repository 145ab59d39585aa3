package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/helvetic-systems/laborsense/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder against OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder embeddings.Embedder
	model    string
	logger   *slog.Logger
}

// NewEmbedder creates an embedder from the provided configuration.
//
// Returns the ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrProvider, err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ai.ErrProvider, err)
	}

	return &Embedder{
		embedder: embedder,
		model:    config.Model,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// EmbedText embeds a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) (ai.Embedding, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return ai.Embedding{}, fmt.Errorf("%w: %v", ai.ErrProvider, err)
	}
	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return ai.Embedding{Model: e.model}, nil
	}

	return e.wrap(vectors[0]), nil
}

// EmbedTexts embeds multiple texts in a batch. langchaingo preserves input
// order, so the results align with texts by index.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([]ai.Embedding, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("%w: %v", ai.ErrProvider, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: embedding count mismatch: expected %d, got %d",
			ai.ErrProvider, len(texts), len(vectors))
	}

	out := make([]ai.Embedding, len(vectors))
	for i, vector := range vectors {
		out[i] = e.wrap(vector)
	}
	return out, nil
}

func (e *Embedder) wrap(vector []float32) ai.Embedding {
	return ai.Embedding{Vector: vector, Model: e.model, Dimensions: len(vector)}
}
