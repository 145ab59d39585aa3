package relevance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helvetic-systems/laborsense/ai"
	"github.com/helvetic-systems/laborsense/ai/mock"
	"github.com/helvetic-systems/laborsense/core"
	"github.com/helvetic-systems/laborsense/learning"
	"github.com/helvetic-systems/laborsense/store"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *store.Store, *learning.Learner) {
	t.Helper()
	st := store.New(t.TempDir())
	learner := learning.New(t.TempDir())
	t.Cleanup(func() {
		learner.Close()
		st.Close()
	})
	return New(st, learner, opts...), st, learner
}

func seedCorpus(st *store.Store) {
	st.InsertBatch([]*core.Document{
		{
			ID:      "bfs-finance",
			Content: "Künstliche Intelligenz verändert die Finanzdienstleistungen in Zürich grundlegend. Banken automatisieren Prozesse.",
			Metadata: core.Metadata{
				Source:   "bfs",
				Title:    "KI im Finanzsektor",
				Industry: "Finanzdienstleistungen",
				Canton:   "Zürich",
				Date:     "2024-03-15",
			},
		},
		{
			ID:      "news-jobs",
			Content: "Der Arbeitsmarkt zeigt sich robust trotz künstliche intelligenz und Automatisierung.",
			Metadata: core.Metadata{
				Source: "news",
				Title:  "Arbeitsmarkt robust",
				Date:   "2023-06-01",
			},
		},
		{
			ID:      "research-health",
			Content: "Gesundheitswesen und Pflegeberufe wachsen unabhängig von der Digitalisierung.",
			Metadata: core.Metadata{
				Source:   "research",
				Industry: "Gesundheitswesen",
				Date:     "2024-01-10",
			},
		},
	})
}

func TestEngine_LexicalSearch(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedCorpus(st)

	resp := engine.Search(context.Background(), Query{Text: "künstliche intelligenz"})

	require.Equal(t, 2, resp.TotalResults)
	ids := []string{resp.Results[0].ID, resp.Results[1].ID}
	assert.Contains(t, ids, "bfs-finance")
	assert.Contains(t, ids, "news-jobs")
	assert.NotEmpty(t, resp.Results[0].Snippet)
	assert.Equal(t, "KI im Finanzsektor", resultByID(t, resp, "bfs-finance").Title)
}

func TestEngine_FilterNormalization(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedCorpus(st)

	resp := engine.Search(context.Background(), Query{
		Text:     "künstliche intelligenz",
		Industry: "banking", // alias of Finanzdienstleistungen
		Canton:   "ZH",      // code resolves to full name
	})

	assert.Equal(t, "Finanzdienstleistungen", resp.Filters.Industry)
	assert.Equal(t, "Zürich", resp.Filters.Canton)
	require.Equal(t, 1, resp.TotalResults)
	assert.Equal(t, "bfs-finance", resp.Results[0].ID)
}

func TestEngine_TimeframeFilter(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedCorpus(st)

	resp := engine.Search(context.Background(), Query{
		Text:      "künstliche intelligenz",
		Timeframe: "2024",
	})

	require.Equal(t, 1, resp.TotalResults)
	assert.Equal(t, "bfs-finance", resp.Results[0].ID)
}

func TestEngine_LearnedBoostReranks(t *testing.T) {
	engine, st, learner := newTestEngine(t)

	// Identical content: without learning both score the same.
	st.InsertBatch([]*core.Document{
		{ID: "doc-a", Content: "Automatisierung im Detailhandel"},
		{ID: "doc-b", Content: "Automatisierung im Detailhandel"},
	})

	learner.RecordSearch("automatisierung", 2)
	for i := 0; i < 5; i++ {
		learner.RecordClick("doc-b", "automatisierung")
	}

	resp := engine.Search(context.Background(), Query{Text: "automatisierung"})
	require.Equal(t, 2, resp.TotalResults)
	assert.Equal(t, "doc-b", resp.Results[0].ID, "clicked document ranks first")
	assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
}

func TestEngine_VectorScoringBlends(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	engine, st, _ := newTestEngine(t, WithEmbedder(embedder))

	queryVec, err := embedder.EmbedText(context.Background(), "KI Einfluss")
	require.NoError(t, err)

	// No lexical match, but an embedding aligned with the query.
	st.InsertBatch([]*core.Document{
		{ID: "vector-only", Content: "Maschinen übernehmen Routinearbeit.", Embedding: queryVec.Vector},
		{ID: "plain", Content: "Völlig anderes Thema ohne Vektor."},
	})

	resp := engine.Search(context.Background(), Query{Text: "KI Einfluss"})

	require.Equal(t, 1, resp.TotalResults)
	assert.Equal(t, "vector-only", resp.Results[0].ID)
	assert.InDelta(t, 4.0, resp.Results[0].Score, 0.01, "pure cosine hit scores vectorWeight x 1")
}

func TestEngine_EmbedderFailureDegradesToLexical(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) (ai.Embedding, error) {
		return ai.Embedding{}, errors.New("provider down")
	}
	engine, st, _ := newTestEngine(t, WithEmbedder(embedder))
	seedCorpus(st)

	resp := engine.Search(context.Background(), Query{Text: "künstliche intelligenz"})

	assert.Equal(t, 2, resp.TotalResults, "lexical results survive an embedding outage")
}

func TestEngine_GraphDocsHiddenByDefault(t *testing.T) {
	engine, st, _ := newTestEngine(t)

	st.InsertBatch([]*core.Document{
		{ID: "entity:industry:finanzdienstleistungen", Content: "industry: Finanzdienstleistungen"},
		{ID: "news-1", Content: "Bericht über Finanzdienstleistungen"},
	})

	resp := engine.Search(context.Background(), Query{Text: "finanzdienstleistungen"})
	require.Equal(t, 1, resp.TotalResults)
	assert.Equal(t, "news-1", resp.Results[0].ID)

	resp = engine.Search(context.Background(), Query{Text: "finanzdienstleistungen", IncludeGraphDocs: true})
	assert.Equal(t, 2, resp.TotalResults)
}

func TestEngine_RecordsSearchEvent(t *testing.T) {
	engine, st, learner := newTestEngine(t)
	seedCorpus(st)

	engine.Search(context.Background(), Query{Text: "arbeitsmarkt"})

	stats := learner.Stats()
	assert.Equal(t, 1, stats.TotalSearches)
}

func TestEngine_SuggestionsOnFewResults(t *testing.T) {
	engine, st, _ := newTestEngine(t)
	seedCorpus(st)

	resp := engine.Search(context.Background(), Query{Text: "blockchain quantencomputer"})
	assert.Zero(t, resp.TotalResults)
	assert.NotEmpty(t, resp.Suggestions)
}

func TestEngine_LimitApplied(t *testing.T) {
	engine, st, _ := newTestEngine(t)

	var docs []*core.Document
	for _, id := range []string{"a", "b", "c", "d"} {
		docs = append(docs, &core.Document{ID: id, Content: "gleicher Inhalt über Automatisierung"})
	}
	st.InsertBatch(docs)

	resp := engine.Search(context.Background(), Query{Text: "automatisierung", Limit: 2})
	assert.Equal(t, 2, resp.TotalResults)
}

func resultByID(t *testing.T, resp Response, id string) Result {
	t.Helper()
	for _, result := range resp.Results {
		if result.ID == id {
			return result
		}
	}
	t.Fatalf("result %s not found", id)
	return Result{}
}
