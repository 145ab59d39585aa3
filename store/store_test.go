package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helvetic-systems/laborsense/core"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return New(dir), dir
}

func doc(id, content string) *core.Document {
	return &core.Document{ID: id, Content: content}
}

func TestStore_InsertAndGet(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.Insert(&core.Document{
		ID:      "doc-1",
		Content: "Die Beschäftigung im Finanzsektor wächst.",
		Metadata: core.Metadata{
			Source:   "bfs",
			Industry: "Finanzdienstleistungen",
			Canton:   "ZH",
		},
	})

	got, ok := st.Get("doc-1")
	require.True(t, ok)
	assert.Equal(t, "doc-1", got.ID)
	assert.Equal(t, "bfs", got.Metadata.Source)

	_, ok = st.Get("missing")
	assert.False(t, ok)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.Insert(doc("doc-1", "original"))

	got, ok := st.Get("doc-1")
	require.True(t, ok)
	got.Content = "mutated"
	got.Metadata.Source = "mutated"

	again, ok := st.Get("doc-1")
	require.True(t, ok)
	assert.Equal(t, "original", again.Content)
	assert.Empty(t, again.Metadata.Source)
}

func TestStore_InsertLastWriteWins(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.Insert(doc("doc-1", "first version"))
	st.Insert(doc("doc-1", "second version"))

	got, ok := st.Get("doc-1")
	require.True(t, ok)
	assert.Equal(t, "second version", got.Content)
	assert.Equal(t, 1, st.Stats().DocumentCount)
}

func TestStore_PersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	st := New(dir)
	st.InsertBatch([]*core.Document{
		doc("doc-1", "erster Inhalt"),
		doc("doc-2", "zweiter Inhalt"),
	})
	st.CreateRelation("doc-1", "doc-2", "RELATED_TO", map[string]any{"weight": 0.5})
	st.Close()

	reopened := New(dir)
	defer reopened.Close()

	got, ok := reopened.Get("doc-1")
	require.True(t, ok)
	assert.Equal(t, "erster Inhalt", got.Content)

	rels := reopened.GetRelations("doc-1", "")
	require.Len(t, rels, 1)
	assert.Equal(t, "RELATED_TO", rels[0].Type)
}

func TestStore_MalformedFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, documentsFile), []byte("{not json"), 0o644))

	st := New(dir)
	defer st.Close()

	assert.Equal(t, 0, st.Stats().DocumentCount)
}

func TestStore_FlushPolicy(t *testing.T) {
	dir := t.TempDir()
	st := New(dir, WithFlushEvery(3))

	docsPath := filepath.Join(dir, documentsFile)

	st.Insert(doc("doc-1", "a"))
	st.Insert(doc("doc-2", "b"))
	_, err := os.Stat(docsPath)
	assert.True(t, os.IsNotExist(err), "no flush before threshold")

	st.Insert(doc("doc-3", "c"))
	_, err = os.Stat(docsPath)
	assert.NoError(t, err, "third insert triggers flush")

	st.Close()
}

func TestStore_UpdateAppliesPatch(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.Insert(&core.Document{
		ID:      "doc-1",
		Content: "alt",
		Metadata: core.Metadata{
			Source: "bfs",
			Title:  "Alter Titel",
		},
	})

	newContent := "neu"
	st.Update("doc-1", Patch{
		Content:   &newContent,
		Embedding: []float32{0.1, 0.2},
		Metadata:  &core.Metadata{Title: "Neuer Titel"},
	})

	got, ok := st.Get("doc-1")
	require.True(t, ok)
	assert.Equal(t, "neu", got.Content)
	assert.Equal(t, []float32{0.1, 0.2}, got.Embedding)
	assert.Equal(t, "Neuer Titel", got.Metadata.Title)
	assert.Equal(t, "bfs", got.Metadata.Source, "unpatched metadata survives")
}

func TestStore_UpdateMissingIsNoOp(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	content := "anything"
	st.Update("missing", Patch{Content: &content})

	_, ok := st.Get("missing")
	assert.False(t, ok, "update must not create documents")
}

func TestStore_Remove(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.Insert(doc("doc-1", "content"))
	st.Remove("doc-1")
	st.Remove("doc-1") // removing twice is fine

	_, ok := st.Get("doc-1")
	assert.False(t, ok)
}

func TestStore_SearchScoresByDensity(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	// Same occurrence count, shorter document wins.
	st.InsertBatch([]*core.Document{
		doc("short", "KI verändert den Arbeitsmarkt."),
		doc("long", "KI verändert den Arbeitsmarkt. Dazu kommt noch sehr viel weiterer Text ohne die gesuchten Begriffe, der das Dokument verwässert."),
		doc("none", "Völlig anderes Thema."),
	})

	results := st.Search("arbeitsmarkt", SearchOptions{})
	require.Len(t, results, 2)
	assert.Equal(t, "short", results[0].ID)
	assert.Equal(t, "long", results[1].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestStore_SearchCaseInsensitive(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.Insert(doc("doc-1", "Künstliche Intelligenz in der Schweiz"))

	results := st.Search("KÜNSTLICHE INTELLIGENZ", SearchOptions{})
	require.Len(t, results, 1)
}

func TestStore_SearchEmptyQuery(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.Insert(doc("doc-1", "content"))
	assert.Empty(t, st.Search("   ", SearchOptions{}))
}

func TestStore_SearchWithFilter(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.InsertBatch([]*core.Document{
		{ID: "zh", Content: "Stellenmarkt Bericht", Metadata: core.Metadata{Canton: "ZH", Source: "bfs", Date: "2024-03-01"}},
		{ID: "ge", Content: "Stellenmarkt Bericht", Metadata: core.Metadata{Canton: "GE", Source: "news", Date: "2022-06-01"}},
	})

	results := st.Search("stellenmarkt", SearchOptions{Filter: &Filter{Canton: "ZH"}})
	require.Len(t, results, 1)
	assert.Equal(t, "zh", results[0].ID)

	results = st.Search("stellenmarkt", SearchOptions{Filter: &Filter{Source: "news"}})
	require.Len(t, results, 1)
	assert.Equal(t, "ge", results[0].ID)

	results = st.Search("stellenmarkt", SearchOptions{Filter: &Filter{DateFrom: "2023-01-01"}})
	require.Len(t, results, 1)
	assert.Equal(t, "zh", results[0].ID)

	results = st.Search("stellenmarkt", SearchOptions{Filter: &Filter{DateFrom: "2022-01-01", DateTo: "2022-12-31"}})
	require.Len(t, results, 1)
	assert.Equal(t, "ge", results[0].ID)
}

func TestStore_SearchLimit(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		st.Insert(doc(id, "relevanter Inhalt"))
	}

	results := st.Search("relevanter", SearchOptions{Limit: 2})
	assert.Len(t, results, 2)
}

func TestStore_CreateRelationIdempotent(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.CreateRelation("a", "b", "IMPACTS", map[string]any{"weight": 1.0})
	st.CreateRelation("a", "b", "IMPACTS", map[string]any{"weight": 99.0})

	rels := st.GetRelations("a", "IMPACTS")
	require.Len(t, rels, 1)
	assert.Equal(t, 1.0, rels[0].Properties["weight"], "duplicate triple keeps original properties")
}

func TestStore_GetRelationsUndirected(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.CreateRelation("a", "b", "EMPLOYS", nil)
	st.CreateRelation("c", "a", "IMPACTS", nil)
	st.CreateRelation("x", "y", "EMPLOYS", nil)

	assert.Len(t, st.GetRelations("a", ""), 2)
	assert.Len(t, st.GetRelations("a", "EMPLOYS"), 1)
	assert.Empty(t, st.GetRelations("z", ""))
}

func TestStore_Sweep(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	old := time.Now().AddDate(0, 0, -100).Format("2006-01-02")
	recent := time.Now().AddDate(0, 0, -5).Format("2006-01-02")

	st.InsertBatch([]*core.Document{
		{ID: "old", Content: "x", Metadata: core.Metadata{Date: old}},
		{ID: "recent", Content: "x", Metadata: core.Metadata{Date: recent}},
		{ID: "undated", Content: "x"},
	})

	removed := st.Sweep(90 * 24 * time.Hour)
	assert.Equal(t, 1, removed)

	_, ok := st.Get("old")
	assert.False(t, ok)
	_, ok = st.Get("recent")
	assert.True(t, ok)
	_, ok = st.Get("undated")
	assert.True(t, ok, "documents without a date are never swept")
}

func TestStore_Stats(t *testing.T) {
	st, _ := newTestStore(t)
	defer st.Close()

	st.InsertBatch([]*core.Document{doc("a", "x"), doc("b", "y")})
	st.CreateRelation("a", "b", "RELATED_TO", nil)

	stats := st.Stats()
	assert.Equal(t, 2, stats.DocumentCount)
	assert.Equal(t, 1, stats.RelationCount)
	assert.Greater(t, stats.IndexSize, 0)
}
