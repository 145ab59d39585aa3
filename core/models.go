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


package core

import (
	"maps"
	"slices"
	"time"
)

// Metadata carries the known labor-market document fields plus an open
// extension map for source-specific values. Known fields are validated at
// the ingestion boundary; Extra is passed through untouched.
type Metadata struct {
	Source    string         `json:"source,omitempty"`
	SourceURL string         `json:"sourceUrl,omitempty"`
	Title     string         `json:"title,omitempty"`
	Industry  string         `json:"industry,omitempty"`
	Canton    string         `json:"canton,omitempty"`
	Date      string         `json:"date,omitempty"` // ISO date (YYYY-MM-DD)
	Tags      []string       `json:"tags,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	out := m
	out.Tags = slices.Clone(m.Tags)
	if m.Extra != nil {
		out.Extra = maps.Clone(m.Extra)
	}
	return out
}

// Merge overlays patch onto m: non-empty scalar fields override, Tags are
// replaced when set, and Extra keys are merged key-by-key.
func (m *Metadata) Merge(patch Metadata) {
	if patch.Source != "" {
		m.Source = patch.Source
	}
	if patch.SourceURL != "" {
		m.SourceURL = patch.SourceURL
	}
	if patch.Title != "" {
		m.Title = patch.Title
	}
	if patch.Industry != "" {
		m.Industry = patch.Industry
	}
	if patch.Canton != "" {
		m.Canton = patch.Canton
	}
	if patch.Date != "" {
		m.Date = patch.Date
	}
	if patch.Tags != nil {
		m.Tags = slices.Clone(patch.Tags)
	}
	if patch.Extra != nil {
		if m.Extra == nil {
			m.Extra = make(map[string]any, len(patch.Extra))
		}
		maps.Copy(m.Extra, patch.Extra)
	}
}

// Document is a unit of indexed content: a chunk of an ingested source, an
// extracted entity, or an impact score record. The embedding is optional and
// absent when the embedding provider was unavailable at ingest time.
type Document struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := *d
	out.Metadata = d.Metadata.Clone()
	out.Embedding = slices.Clone(d.Embedding)
	return &out
}

// Relation is a directed, typed edge between two document IDs.
type Relation struct {
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// TripleKey identifies a relation by its (from, to, type) triple.
// Properties do not participate in identity.
func (r Relation) TripleKey() string {
	return r.From + "\x00" + r.To + "\x00" + r.Type
}

// ChunkMeta locates a chunk within its source document.
type ChunkMeta struct {
	SourceID  string `json:"sourceId"`
	StartChar int    `json:"startChar"`
	EndChar   int    `json:"endChar"`
	Type      string `json:"type"` // paragraph, section, or sentence
}

// Chunk is a bounded-size text segment produced by the chunker. Chunks are
// ephemeral: they only persist as Documents once inserted.
type Chunk struct {
	ID          string    `json:"id"`
	Content     string    `json:"content"`
	Index       int       `json:"index"`
	TotalChunks int       `json:"totalChunks"`
	Meta        ChunkMeta `json:"metadata"`
}

// SearchEvent records one search interaction for the learning module.
type SearchEvent struct {
	ID             string         `json:"id"`
	Timestamp      time.Time      `json:"timestamp"`
	Query          string         `json:"query"` // lowercased, trimmed
	ResultsCount   int            `json:"resultsCount"`
	ClickedIDs     []string       `json:"clickedIds"`
	FeedbackScores map[string]int `json:"feedbackScores"` // docID -> rating 1-5
}

// DocumentScore is the learned ranking state for a single document. Created
// lazily on the first click or feedback event, adjusted incrementally, and
// never deleted.
type DocumentScore struct {
	DocID         string    `json:"docId"`
	BaseScore     float64   `json:"baseScore"`
	LearnedBoost  float64   `json:"learnedBoost"` // clamped to [-0.3, 0.5]
	ClickCount    int       `json:"clickCount"`
	AvgFeedback   float64   `json:"avgFeedback"`
	FeedbackCount int       `json:"feedbackCount"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// SearchResult is a scored document returned by the store's lexical search
// and by the relevance engine.
type SearchResult struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
	Score    float64  `json:"score"`
}

// DocumentType identifies the ingestion format of a source document.
type DocumentType string

const (
	DocumentTypeText     DocumentType = "text"
	DocumentTypeMarkdown DocumentType = "markdown"
	DocumentTypeJSON     DocumentType = "json"
)

// IngestDocument is the descriptor accepted by the ingestion pipeline.
type IngestDocument struct {
	ID       string       `json:"id" validate:"required"`
	Content  string       `json:"content" validate:"required"`
	Type     DocumentType `json:"type" validate:"required,oneof=text markdown json"`
	Metadata Metadata     `json:"metadata"`
}

// IngestResult reports the outcome of ingesting a single document.
// Failures are reported in Error with Success false, never as a panic or
// unhandled error from the pipeline.
type IngestResult struct {
	DocumentID    string `json:"documentId"`
	ChunksCreated int    `json:"chunksCreated"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}
