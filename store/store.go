package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/helvetic-systems/laborsense/core"
)

const (
	documentsFile = "documents.json"
	relationsFile = "relations.json"

	// defaultFlushEvery is how many individual inserts may accumulate
	// before the store is flushed to disk. Batch inserts, updates and
	// removes always flush immediately.
	defaultFlushEvery = 50

	defaultSearchLimit = 10
)

// Store owns the in-memory document and relation maps and their on-disk JSON
// representation. It is the single writer: all mutation goes through the
// internal mutex, and every flush serializes the current full in-memory
// state. Persistence failures are logged and never propagated; the store
// keeps operating in memory.
type Store struct {
	mu sync.Mutex

	path        string
	documents   map[string]*core.Document
	relations   []core.Relation
	relationSet map[string]struct{}

	initialized    bool
	closed         bool
	insertsPending int
	flushEvery     int

	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithFlushEvery sets how many individual inserts accumulate before an
// automatic flush. Values below 1 flush on every insert.
func WithFlushEvery(n int) Option {
	return func(s *Store) {
		if n < 1 {
			n = 1
		}
		s.flushEvery = n
	}
}

// New creates a store rooted at path. No I/O happens until Init or the
// first operation.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:        path,
		documents:   make(map[string]*core.Document),
		relationSet: make(map[string]struct{}),
		flushEvery:  defaultFlushEvery,
		logger:      slog.Default().With("component", "store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init loads persisted documents and relations from disk if present.
// It is idempotent and safe to call from any operation; a missing or
// malformed file is logged and treated as no prior state.
func (s *Store) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
}

func (s *Store) initLocked() {
	if s.initialized {
		return
	}

	if err := os.MkdirAll(s.path, 0o755); err != nil {
		s.logger.Warn("cannot create storage directory, operating in-memory only", "path", s.path, "err", err)
	}

	if data, err := os.ReadFile(filepath.Join(s.path, documentsFile)); err == nil {
		var docs []*core.Document
		if err := json.Unmarshal(data, &docs); err != nil {
			s.logger.Warn("malformed documents file, starting empty", "err", err)
		} else {
			for _, doc := range docs {
				s.documents[doc.ID] = doc
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join(s.path, relationsFile)); err == nil {
		var rels []core.Relation
		if err := json.Unmarshal(data, &rels); err != nil {
			s.logger.Warn("malformed relations file, starting empty", "err", err)
		} else {
			for _, rel := range rels {
				if _, dup := s.relationSet[rel.TripleKey()]; dup {
					continue
				}
				s.relations = append(s.relations, rel)
				s.relationSet[rel.TripleKey()] = struct{}{}
			}
		}
	}

	s.initialized = true
	s.logger.Info("store initialized", "path", s.path,
		"documents", len(s.documents), "relations", len(s.relations))
}

// Insert upserts a document by ID (last write wins). Individual inserts are
// flushed every flushEvery-th call; use InsertBatch for an immediate flush.
func (s *Store) Insert(doc *core.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	s.documents[doc.ID] = doc.Clone()

	s.insertsPending++
	if s.insertsPending >= s.flushEvery {
		s.flushLocked()
	}
}

// InsertBatch upserts all documents and flushes immediately.
func (s *Store) InsertBatch(docs []*core.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	for _, doc := range docs {
		s.documents[doc.ID] = doc.Clone()
	}
	s.flushLocked()
}

// Get returns the document with the given ID. Absence is a normal outcome
// reported through the boolean, not an error.
func (s *Store) Get(id string) (*core.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	doc, ok := s.documents[id]
	if !ok {
		return nil, false
	}
	return doc.Clone(), true
}

// Patch describes a partial document update. Nil fields are left untouched;
// Metadata is deep-merged rather than replaced.
type Patch struct {
	Content   *string
	Embedding []float32
	Metadata  *core.Metadata
}

// Update applies a partial update to the document with the given ID and
// flushes. When the ID is absent the call is a silent no-op; callers that
// need to distinguish "updated" from "ignored" must Get first.
func (s *Store) Update(id string, patch Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	doc, ok := s.documents[id]
	if !ok {
		return
	}

	if patch.Content != nil {
		doc.Content = *patch.Content
	}
	if patch.Embedding != nil {
		doc.Embedding = patch.Embedding
	}
	if patch.Metadata != nil {
		doc.Metadata.Merge(*patch.Metadata)
	}
	s.flushLocked()
}

// Remove deletes the document if present and flushes. Always succeeds.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	delete(s.documents, id)
	s.flushLocked()
}

// Filter restricts search and listing to documents whose metadata matches.
// Source, Industry and Canton are exact-match predicates; DateFrom/DateTo
// bound the ISO metadata date inclusively when the document has one.
type Filter struct {
	Source   string
	Industry string
	Canton   string
	DateFrom string
	DateTo   string
}

func (f *Filter) matches(doc *core.Document) bool {
	if f == nil {
		return true
	}
	if f.Source != "" && doc.Metadata.Source != f.Source {
		return false
	}
	if f.Industry != "" && doc.Metadata.Industry != f.Industry {
		return false
	}
	if f.Canton != "" && doc.Metadata.Canton != f.Canton {
		return false
	}
	if f.DateFrom != "" || f.DateTo != "" {
		date := doc.Metadata.Date
		if date == "" {
			return false
		}
		if f.DateFrom != "" && date < f.DateFrom {
			return false
		}
		if f.DateTo != "" && date[:min(len(date), len(f.DateTo))] > f.DateTo {
			return false
		}
	}
	return true
}

// SearchOptions bound a lexical search.
type SearchOptions struct {
	Limit  int
	Filter *Filter
}

// Search performs a case-insensitive substring match of the full query
// against document content. Relevance is the occurrence count of the query
// substring divided by content length, scaled by 1000 (a term-density score,
// not tokenized IR ranking). Documents with no match are excluded; filters
// are applied before scoring.
func (s *Store) Search(query string, opts SearchOptions) []core.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	queryLower := strings.ToLower(strings.TrimSpace(query))
	if queryLower == "" {
		return nil
	}

	var results []core.SearchResult
	for _, doc := range s.documents {
		if !opts.Filter.matches(doc) {
			continue
		}
		contentLower := strings.ToLower(doc.Content)
		occurrences := strings.Count(contentLower, queryLower)
		if occurrences == 0 {
			continue
		}
		results = append(results, core.SearchResult{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata.Clone(),
			Score:    float64(occurrences) / float64(len(doc.Content)) * 1000,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Documents returns a snapshot of all documents matching the filter. Used by
// the relevance engine for its brute-force vector scan.
func (s *Store) Documents(filter *Filter) []*core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	out := make([]*core.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		if filter.matches(doc) {
			out = append(out, doc.Clone())
		}
	}
	return out
}

// CreateRelation inserts a directed typed edge unless the identical
// (from, to, type) triple already exists, in which case the call is a silent
// no-op and the new properties are discarded.
func (s *Store) CreateRelation(from, to, relType string, properties map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	rel := core.Relation{From: from, To: to, Type: relType, Properties: properties}
	if _, exists := s.relationSet[rel.TripleKey()]; exists {
		return
	}
	s.relations = append(s.relations, rel)
	s.relationSet[rel.TripleKey()] = struct{}{}
}

// GetRelations returns all relations touching id on either endpoint,
// optionally filtered by type (empty relType matches all).
func (s *Store) GetRelations(id, relType string) []core.Relation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	var out []core.Relation
	for _, rel := range s.relations {
		if rel.From != id && rel.To != id {
			continue
		}
		if relType != "" && rel.Type != relType {
			continue
		}
		out = append(out, rel)
	}
	return out
}

// Stats summarizes the store for observability endpoints.
type Stats struct {
	DocumentCount int `json:"documentCount"`
	RelationCount int `json:"relationCount"`
	IndexSize     int `json:"indexSize"` // serialized byte length, approximate
}

// Stats returns document and relation counts plus the approximate serialized
// size of the document set.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	docs := make([]*core.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	size := 0
	if data, err := json.Marshal(docs); err == nil {
		size = len(data)
	}
	return Stats{
		DocumentCount: len(s.documents),
		RelationCount: len(s.relations),
		IndexSize:     size,
	}
}

// Sweep removes documents whose metadata date is older than the cutoff.
// Best-effort and non-transactional: documents without a parseable date are
// left alone. Returns the number of documents removed.
func (s *Store) Sweep(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for id, doc := range s.documents {
		if doc.Metadata.Date == "" {
			continue
		}
		date, err := time.Parse("2006-01-02", doc.Metadata.Date)
		if err != nil {
			continue
		}
		if date.Before(cutoff) {
			delete(s.documents, id)
			removed++
		}
	}
	if removed > 0 {
		s.flushLocked()
		s.logger.Info("retention sweep complete", "removed", removed)
	}
	return removed
}

// Flush rewrites both JSON files from the current in-memory state.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()
	s.flushLocked()
}

func (s *Store) flushLocked() {
	s.insertsPending = 0

	docs := make([]*core.Document, 0, len(s.documents))
	for _, doc := range s.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	if data, err := json.MarshalIndent(docs, "", "  "); err != nil {
		s.logger.Error("cannot serialize documents", "err", err)
	} else if err := os.WriteFile(filepath.Join(s.path, documentsFile), data, 0o644); err != nil {
		s.logger.Error("cannot persist documents, data kept in memory", "err", err)
	}

	rels := s.relations
	if rels == nil {
		rels = []core.Relation{}
	}
	if data, err := json.MarshalIndent(rels, "", "  "); err != nil {
		s.logger.Error("cannot serialize relations", "err", err)
	} else if err := os.WriteFile(filepath.Join(s.path, relationsFile), data, 0o644); err != nil {
		s.logger.Error("cannot persist relations, data kept in memory", "err", err)
	}
}

// Close forces a final flush. Subsequent calls are safe no-ops.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.initialized {
		s.flushLocked()
	}
	s.closed = true
	s.logger.Info("store closed")
}
