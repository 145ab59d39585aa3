package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentID_Deterministic(t *testing.T) {
	first := ContentID("news", "https://example.ch/artikel")
	second := ContentID("news", "https://example.ch/artikel")
	other := ContentID("news", "https://example.ch/anders")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Regexp(t, `^news-[0-9a-f]{16}$`, first)
}

func TestChunkID(t *testing.T) {
	assert.Equal(t, "doc-chunk-0", ChunkID("doc", 0))
	assert.Equal(t, "doc-chunk-12", ChunkID("doc", 12))
}

func TestMetadata_Clone(t *testing.T) {
	original := Metadata{
		Source: "bfs",
		Tags:   []string{"a"},
		Extra:  map[string]any{"k": "v"},
	}

	clone := original.Clone()
	clone.Tags[0] = "mutated"
	clone.Extra["k"] = "mutated"

	assert.Equal(t, "a", original.Tags[0])
	assert.Equal(t, "v", original.Extra["k"])
}

func TestMetadata_Merge(t *testing.T) {
	m := Metadata{
		Source: "bfs",
		Title:  "Alter Titel",
		Tags:   []string{"alt"},
		Extra:  map[string]any{"keep": 1, "replace": "old"},
	}

	m.Merge(Metadata{
		Title: "Neuer Titel",
		Tags:  []string{"neu"},
		Extra: map[string]any{"replace": "new", "add": true},
	})

	assert.Equal(t, "bfs", m.Source, "unset fields survive")
	assert.Equal(t, "Neuer Titel", m.Title)
	assert.Equal(t, []string{"neu"}, m.Tags, "tags are replaced, not appended")
	assert.Equal(t, 1, m.Extra["keep"])
	assert.Equal(t, "new", m.Extra["replace"])
	assert.Equal(t, true, m.Extra["add"])
}

func TestDocument_Clone(t *testing.T) {
	doc := &Document{
		ID:        "doc-1",
		Content:   "Inhalt",
		Metadata:  Metadata{Tags: []string{"a"}},
		Embedding: []float32{0.1},
	}

	clone := doc.Clone()
	clone.Metadata.Tags[0] = "mutated"
	clone.Embedding[0] = 9

	assert.Equal(t, "a", doc.Metadata.Tags[0])
	assert.Equal(t, float32(0.1), doc.Embedding[0])
}

func TestRelation_TripleKey(t *testing.T) {
	a := Relation{From: "x", To: "y", Type: "IMPACTS", Properties: map[string]any{"w": 1}}
	b := Relation{From: "x", To: "y", Type: "IMPACTS"}
	c := Relation{From: "x", To: "y", Type: "EMPLOYS"}

	assert.Equal(t, a.TripleKey(), b.TripleKey(), "properties do not participate in identity")
	assert.NotEqual(t, a.TripleKey(), c.TripleKey())
}

func TestValidateIngestDocument(t *testing.T) {
	valid := &IngestDocument{
		ID:      "doc",
		Content: "Inhalt",
		Type:    DocumentTypeText,
		Metadata: Metadata{
			Date: "2024-03-15",
		},
	}
	require.NoError(t, ValidateIngestDocument(valid))

	assert.ErrorIs(t, ValidateIngestDocument(nil), ErrInvalidIngestDocument)

	missingID := &IngestDocument{Content: "x", Type: DocumentTypeText}
	assert.ErrorIs(t, ValidateIngestDocument(missingID), ErrEmptyID)

	missingContent := &IngestDocument{ID: "doc", Type: DocumentTypeText}
	assert.ErrorIs(t, ValidateIngestDocument(missingContent), ErrEmptyContent)

	badType := &IngestDocument{ID: "doc", Content: "x", Type: "pdf"}
	assert.ErrorIs(t, ValidateIngestDocument(badType), ErrInvalidDocumentType)

	badDate := &IngestDocument{
		ID: "doc", Content: "x", Type: DocumentTypeText,
		Metadata: Metadata{Date: "15.03.2024"},
	}
	assert.ErrorIs(t, ValidateIngestDocument(badDate), ErrInvalidDate)
}
