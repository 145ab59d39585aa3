package ai

import "context"

// Embedding is the result of embedding one text: the vector plus the model
// identity that produced it.
type Embedding struct {
	Vector     []float32
	Model      string
	Dimensions int
}

// Embedder generates vector embeddings from text for semantic similarity
// search. Implementations must be safe for concurrent use.
type Embedder interface {
	// EmbedText embeds a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) (Embedding, error)

	// EmbedTexts embeds multiple texts in a batch. Results are returned in
	// input order regardless of the order responses arrive in. A batch
	// failure fails the whole batch; no input is silently dropped.
	EmbedTexts(ctx context.Context, texts []string) ([]Embedding, error)
}
