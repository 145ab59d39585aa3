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


package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/helvetic-systems/laborsense/ai"
	"github.com/helvetic-systems/laborsense/chunker"
	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/store"
)

// Pipeline turns raw documents into stored, searchable chunks:
// validate, chunk by document type, embed, insert.
//
// Embedding is best-effort. When the provider fails the chunks are stored
// without vectors and degrade to lexical-only search; a provider outage must
// never block ingestion.
type Pipeline struct {
	store    *store.Store
	embedder ai.Embedder
	chunking chunker.Options
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithEmbedder enables embedding of chunks during ingestion.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(p *Pipeline) {
		p.embedder = embedder
	}
}

// WithChunkerOptions overrides the default chunking parameters.
func WithChunkerOptions(opts chunker.Options) Option {
	return func(p *Pipeline) {
		p.chunking = opts
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
	}
}

// NewPipeline creates an ingestion pipeline over the given store.
func NewPipeline(st *store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:  st,
		logger: slog.Default().With("component", "ingestion"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest processes one document descriptor. The result always carries the
// document ID; failures are reported in the result's Error field, not as a
// panic or a dropped document.
func (p *Pipeline) Ingest(ctx context.Context, doc core.IngestDocument) core.IngestResult {
	if err := core.ValidateIngestDocument(&doc); err != nil {
		return failure(doc.ID, err)
	}

	chunks, err := p.chunk(doc)
	if err != nil {
		return failure(doc.ID, err)
	}
	if len(chunks) == 0 {
		return core.IngestResult{DocumentID: doc.ID, Success: true}
	}

	embeddings := p.embedChunks(ctx, doc.ID, chunks)

	docs := make([]*core.Document, len(chunks))
	for i, chunk := range chunks {
		meta := doc.Metadata.Clone()
		meta.Tags = append(meta.Tags, fmt.Sprintf("chunk:%d/%d", chunk.Index+1, chunk.TotalChunks))

		var vector []float32
		if i < len(embeddings) {
			vector = embeddings[i].Vector
		}
		docs[i] = &core.Document{
			ID:        chunk.ID,
			Content:   chunk.Content,
			Metadata:  meta,
			Embedding: vector,
		}
	}
	p.store.InsertBatch(docs)

	p.logger.Info("document ingested", "id", doc.ID, "chunks", len(chunks))
	return core.IngestResult{DocumentID: doc.ID, ChunksCreated: len(chunks), Success: true}
}

// IngestBatch processes documents sequentially, reporting per-document
// results. One failing document does not stop the batch.
func (p *Pipeline) IngestBatch(ctx context.Context, docs []core.IngestDocument) []core.IngestResult {
	p.logger.Info("starting batch ingestion", "documents", len(docs))

	results := make([]core.IngestResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, p.Ingest(ctx, doc))
	}

	successful, totalChunks := 0, 0
	for _, result := range results {
		if result.Success {
			successful++
		}
		totalChunks += result.ChunksCreated
	}
	p.logger.Info("batch ingestion complete",
		"successful", successful, "total", len(docs), "chunks", totalChunks)
	return results
}

// IngestDirectory ingests every .md, .json and .txt file in a directory.
// The file name (without extension) becomes the document ID, prefixed with
// the source.
func (p *Pipeline) IngestDirectory(ctx context.Context, dir, source string) ([]core.IngestResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ingestion: cannot read directory %s: %w", dir, err)
	}

	var docs []core.IngestDocument
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		var docType core.DocumentType
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".md":
			docType = core.DocumentTypeMarkdown
		case ".json":
			docType = core.DocumentTypeJSON
		case ".txt":
			docType = core.DocumentTypeText
		default:
			p.logger.Debug("skipping unsupported file", "file", entry.Name())
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			p.logger.Warn("cannot read file, skipping", "file", entry.Name(), "err", err)
			continue
		}

		name := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		docs = append(docs, core.IngestDocument{
			ID:      source + "-" + name,
			Content: string(content),
			Type:    docType,
			Metadata: core.Metadata{
				Source: source,
				Title:  name,
				Date:   time.Now().UTC().Format("2006-01-02"),
			},
		})
	}

	p.logger.Info("directory scan complete", "dir", dir, "documents", len(docs))
	return p.IngestBatch(ctx, docs), nil
}

func (p *Pipeline) chunk(doc core.IngestDocument) ([]core.Chunk, error) {
	switch doc.Type {
	case core.DocumentTypeMarkdown:
		return chunker.ChunkMarkdown(doc.Content, doc.ID, p.chunking), nil
	case core.DocumentTypeJSON:
		return chunker.ChunkJSON([]byte(doc.Content), doc.ID, p.chunking)
	default:
		return chunker.ChunkText(doc.Content, doc.ID, p.chunking), nil
	}
}

// embedChunks embeds all chunk texts in one batch. Any failure degrades the
// whole document to lexical-only chunks.
func (p *Pipeline) embedChunks(ctx context.Context, docID string, chunks []core.Chunk) []ai.Embedding {
	if p.embedder == nil {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Warn("embedding failed, storing chunks without vectors",
			"id", docID, "chunks", len(chunks), "err", err)
		return nil
	}
	return embeddings
}

func failure(docID string, err error) core.IngestResult {
	return core.IngestResult{DocumentID: docID, Success: false, Error: err.Error()}
}
