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


// Package laborsense is a knowledge base for the Swiss labor market under AI
// transformation: document storage with lexical and vector search, a
// click/feedback learning loop, an entity and impact graph, and curated
// statistical trends.
package laborsense

import (
	"log/slog"
	"path/filepath"

	"github.com/helvetic-systems/laborsense/ai"
	"github.com/helvetic-systems/laborsense/ai/openai"
	"github.com/helvetic-systems/laborsense/graph"
	"github.com/helvetic-systems/laborsense/ingestion"
	"github.com/helvetic-systems/laborsense/learning"
	"github.com/helvetic-systems/laborsense/relevance"
	"github.com/helvetic-systems/laborsense/store"
)

// KnowledgeBase wires the store, learner, relevance engine and ingestion
// pipeline over a single data directory.
type KnowledgeBase struct {
	store    *store.Store
	learner  *learning.Learner
	engine   *relevance.Engine
	embedder ai.Embedder
	logger   *slog.Logger
}

// KnowledgeBaseOption configures a KnowledgeBase.
type KnowledgeBaseOption func(*knowledgeBaseOptions)

type knowledgeBaseOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	logger   *slog.Logger
}

// WithAIConfig sets the embedding provider configuration. When neither this
// nor WithEmbedder is given and no credential is configured, the knowledge
// base runs lexical-only.
func WithAIConfig(config *ai.Config) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder injects a ready embedder, bypassing provider construction.
func WithEmbedder(embedder ai.Embedder) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.embedder = embedder
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) KnowledgeBaseOption {
	return func(o *knowledgeBaseOptions) {
		o.logger = logger
	}
}

// Open creates a knowledge base rooted at dataDir. The store and learning
// state live in JSON files under that directory; both load lazily on first
// use. Missing embedding credentials are not an error, search degrades to
// lexical scoring.
func Open(dataDir string, opts ...KnowledgeBaseOption) (*KnowledgeBase, error) {
	options := &knowledgeBaseOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	st := store.New(dataDir, store.WithLogger(options.logger))
	learner := learning.New(filepath.Join(dataDir, "learning"), learning.WithLogger(options.logger))

	embedder := options.embedder
	if embedder == nil {
		if err := options.aiConfig.Validate(); err == nil {
			var buildErr error
			embedder, buildErr = openai.NewEmbedder(options.aiConfig)
			if buildErr != nil {
				return nil, buildErr
			}
		} else {
			options.logger.Info("no embedding credentials, running lexical-only", "reason", err)
		}
	}

	engineOpts := []relevance.Option{relevance.WithLogger(options.logger)}
	if embedder != nil {
		engineOpts = append(engineOpts, relevance.WithEmbedder(embedder))
	}

	return &KnowledgeBase{
		store:    st,
		learner:  learner,
		engine:   relevance.New(st, learner, engineOpts...),
		embedder: embedder,
		logger:   options.logger,
	}, nil
}

// Close flushes and closes all state.
func (kb *KnowledgeBase) Close() {
	kb.learner.Close()
	kb.store.Close()
}

// Store exposes the document store.
func (kb *KnowledgeBase) Store() *store.Store {
	return kb.store
}

// Learner exposes the learning loop.
func (kb *KnowledgeBase) Learner() *learning.Learner {
	return kb.learner
}

// Engine exposes the relevance engine.
func (kb *KnowledgeBase) Engine() *relevance.Engine {
	return kb.engine
}

// Embedder returns the configured embedder, or nil in lexical-only mode.
func (kb *KnowledgeBase) Embedder() ai.Embedder {
	return kb.embedder
}

// NewIngestionPipeline builds an ingestion pipeline sharing the knowledge
// base's store and embedder.
func (kb *KnowledgeBase) NewIngestionPipeline(opts ...ingestion.Option) *ingestion.Pipeline {
	base := []ingestion.Option{ingestion.WithLogger(kb.logger)}
	if kb.embedder != nil {
		base = append(base, ingestion.WithEmbedder(kb.embedder))
	}
	return ingestion.NewPipeline(kb.store, append(base, opts...)...)
}

// BuildGraph extracts entities from all stored documents, computes impact
// scores and writes both layers back into the store.
func (kb *KnowledgeBase) BuildGraph() graph.BuildResult {
	return graph.Build(kb.store, kb.logger)
}
