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


package relevance

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/helvetic-systems/laborsense/ai"
	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/learning"
	"github.com/helvetic-systems/laborsense/refdata"
	"github.com/helvetic-systems/laborsense/store"
)

// Blend weights for the composite score:
//
//	composite = (lexicalWeight·lexical + vectorWeight·cosine) × (1 + learnedBoost)
//
// Lexical density scores land roughly in [0, 10] for this corpus while
// cosine similarity is bounded by 1, so the vector signal carries a 4x
// weight to matter at all. The weights are fixed; they are not tuned per
// query.
const (
	lexicalWeight = 1.0
	vectorWeight  = 4.0

	// variationDiscount down-weights results that only matched a
	// translated query variation, not the query itself.
	variationDiscount = 0.8

	defaultLimit = 10

	// candidateFactor over-fetches lexical results so the blend has
	// candidates to reorder before the limit is applied.
	candidateFactor = 3
)

// Engine ranks documents for a query by combining the store's lexical
// density score, cosine similarity against a query embedding, and the
// per-document learned boost. The embedder is optional: without one, or when
// embedding the query fails, the engine degrades to lexical-only scoring
// rather than failing the search.
type Engine struct {
	store    *store.Store
	learner  *learning.Learner
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithEmbedder enables vector scoring with the given embedder.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Engine) {
		e.embedder = embedder
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// New creates a relevance engine over the given store and learner.
func New(st *store.Store, learner *learning.Learner, opts ...Option) *Engine {
	e := &Engine{
		store:   st,
		learner: learner,
		logger:  slog.Default().With("component", "relevance"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query is one search request. Industry and canton accept free-form input
// (aliases, canton codes) and are normalized against the reference tables.
// Timeframe accepts "2024", "2020-2024" or "last_N_years" forms.
type Query struct {
	Text       string
	Limit      int
	Industry   string
	Canton     string
	SourceType string
	Timeframe  string

	// IncludeGraphDocs also returns entity and impact-score documents,
	// which the search surface hides by default.
	IncludeGraphDocs bool
}

// Filters is the normalized filter set a query resolved to.
type Filters struct {
	Industry   string `json:"industry,omitempty"`
	Canton     string `json:"canton,omitempty"`
	SourceType string `json:"sourceType,omitempty"`
	Timeframe  string `json:"timeframe,omitempty"`
}

// Result is one ranked search hit.
type Result struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Snippet  string        `json:"snippet"`
	Source   string        `json:"source"`
	URL      string        `json:"sourceUrl,omitempty"`
	Score    float64       `json:"relevanceScore"`
	Metadata core.Metadata `json:"metadata"`
}

// Response is a complete ranked answer for one query.
type Response struct {
	Query        string   `json:"query"`
	Filters      Filters  `json:"filters"`
	TotalResults int      `json:"totalResults"`
	Results      []Result `json:"results"`
	Suggestions  []string `json:"suggestions,omitempty"`
}

// Search ranks documents for the query and records a search event with the
// learner. It never returns an error: an unavailable embedding provider only
// drops the vector signal.
func (e *Engine) Search(ctx context.Context, q Query) Response {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	filters := e.normalizeFilters(q)
	filter := storeFilter(filters)

	scores := make(map[string]float64)
	docs := make(map[string]core.SearchResult)

	for _, hit := range e.store.Search(q.Text, store.SearchOptions{Limit: limit * candidateFactor, Filter: filter}) {
		scores[hit.ID] = lexicalWeight * hit.Score
		docs[hit.ID] = hit
	}

	// Widen with translated query variations at a discount, so a German
	// corpus still answers English queries and vice versa.
	for _, variation := range queryVariations(q.Text) {
		for _, hit := range e.store.Search(variation, store.SearchOptions{Limit: 5, Filter: filter}) {
			if _, seen := scores[hit.ID]; seen {
				continue
			}
			scores[hit.ID] = lexicalWeight * hit.Score * variationDiscount
			docs[hit.ID] = hit
		}
	}

	e.addVectorScores(ctx, q.Text, filter, scores, docs)

	results := make([]Result, 0, len(scores))
	for id, score := range scores {
		if !q.IncludeGraphDocs && isGraphDoc(id) {
			continue
		}
		doc := docs[id]
		boosted := score * (1 + e.learner.LearnedBoost(id))
		results = append(results, Result{
			ID:       id,
			Title:    titleFor(doc),
			Snippet:  ExtractSnippet(doc.Content, q.Text, snippetLength),
			Source:   doc.Metadata.Source,
			URL:      doc.Metadata.SourceURL,
			Score:    math.Round(boosted*100) / 100,
			Metadata: doc.Metadata,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}

	e.learner.RecordSearch(q.Text, len(results))

	resp := Response{
		Query:        q.Text,
		Filters:      filters,
		TotalResults: len(results),
		Results:      results,
	}
	if len(results) < 3 {
		resp.Suggestions = suggestions(q.Text, filters)
	}
	return resp
}

// addVectorScores embeds the query and blends cosine similarity into the
// candidate scores, scanning all filtered documents that carry a vector.
// Any embedding failure is logged and leaves the lexical scores untouched.
func (e *Engine) addVectorScores(ctx context.Context, query string, filter *store.Filter, scores map[string]float64, docs map[string]core.SearchResult) {
	if e.embedder == nil || strings.TrimSpace(query) == "" {
		return
	}

	embedding, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		e.logger.Warn("query embedding failed, lexical-only ranking", "err", err)
		return
	}
	if len(embedding.Vector) == 0 {
		return
	}

	for _, doc := range e.store.Documents(filter) {
		if len(doc.Embedding) == 0 {
			continue
		}
		cos := cosineSimilarity(embedding.Vector, doc.Embedding)
		if cos <= 0 {
			continue
		}
		scores[doc.ID] += vectorWeight * cos
		if _, seen := docs[doc.ID]; !seen {
			docs[doc.ID] = core.SearchResult{
				ID:       doc.ID,
				Content:  doc.Content,
				Metadata: doc.Metadata,
			}
		}
	}
}

func (e *Engine) normalizeFilters(q Query) Filters {
	filters := Filters{Timeframe: q.Timeframe}
	if q.Industry != "" {
		filters.Industry = refdata.StandardizeIndustry(q.Industry)
	}
	if q.Canton != "" {
		if name, ok := refdata.NormalizeCantonName(q.Canton); ok {
			filters.Canton = name
		} else {
			filters.Canton = q.Canton
		}
	}
	if q.SourceType != "" && q.SourceType != "all" {
		filters.SourceType = q.SourceType
	}
	return filters
}

func storeFilter(filters Filters) *store.Filter {
	from, to := ParseTimeframe(filters.Timeframe)
	f := &store.Filter{
		Source:   filters.SourceType,
		Industry: filters.Industry,
		Canton:   filters.Canton,
		DateFrom: from,
		DateTo:   to,
	}
	if f.Source == "" && f.Industry == "" && f.Canton == "" && f.DateFrom == "" && f.DateTo == "" {
		return nil
	}
	return f
}

func isGraphDoc(id string) bool {
	return strings.HasPrefix(id, "entity:") || strings.HasPrefix(id, "impact:")
}

func titleFor(doc core.SearchResult) string {
	if doc.Metadata.Title != "" {
		return doc.Metadata.Title
	}
	return ExtractTitle(doc.Content)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
