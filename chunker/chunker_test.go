package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_EmptyInput(t *testing.T) {
	assert.Nil(t, ChunkText("", "doc", Options{}))
	assert.Nil(t, ChunkText("   \n\n  ", "doc", Options{}))
}

func TestChunkText_ShortInputSingleChunk(t *testing.T) {
	chunks := ChunkText("Kurzer Text.", "doc", Options{})

	require.Len(t, chunks, 1)
	assert.Equal(t, "Kurzer Text.", chunks[0].Content)
	assert.Equal(t, "doc-chunk-0", chunks[0].ID)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[0].TotalChunks)
}

func TestChunkText_ParagraphsPacked(t *testing.T) {
	para := strings.Repeat("Wort ", 60) // ~300 chars
	text := para + "\n\n" + para + "\n\n" + para

	chunks := ChunkText(text, "doc", Options{MaxChunkSize: 700, MinChunkSize: 100})

	require.Len(t, chunks, 2, "two paragraphs fit in the first chunk, one in the second")
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 700)
		assert.Equal(t, i, chunk.Index)
		assert.Equal(t, 2, chunk.TotalChunks)
		assert.Equal(t, "paragraph", chunk.Meta.Type)
		assert.Equal(t, "doc", chunk.Meta.SourceID)
	}
}

func TestChunkText_OversizedParagraphHardSplit(t *testing.T) {
	text := strings.Repeat("x", 2500) // single paragraph far over the cap

	chunks := ChunkText(text, "doc", Options{MaxChunkSize: 1000, MinChunkSize: 100})

	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 1000)
	}
}

func TestChunkText_UndersizedTrailingPackMerged(t *testing.T) {
	big := strings.Repeat("a", 400)
	small := strings.Repeat("b", 50) // below min, fits into previous
	text := big + "\n\n" + small

	chunks := ChunkText(text, "doc", Options{MaxChunkSize: 500, MinChunkSize: 100})

	require.Len(t, chunks, 1)
	assert.Contains(t, chunks[0].Content, small)
}

func TestChunkText_SentenceStrategy(t *testing.T) {
	text := "Der erste Satz handelt von künstlicher Intelligenz und ihren Auswirkungen auf den Arbeitsmarkt in der Schweiz. " +
		"Der zweite Satz beschreibt die Entwicklung der Beschäftigung im Finanzsektor über die letzten Jahre hinweg. " +
		"Der dritte Satz erwähnt den Fachkräftemangel in technischen Berufen und die Bedeutung von Weiterbildung."

	chunks := ChunkText(text, "doc", Options{
		Strategy:     StrategySentence,
		MaxChunkSize: 150,
		MinChunkSize: 50,
	})

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 150)
		assert.Equal(t, "sentence", chunk.Meta.Type)
	}
	assert.GreaterOrEqual(t, len(chunks), 2, "sentences must actually split")
}

func TestChunkText_FixedStrategyOverlap(t *testing.T) {
	text := strings.Repeat("abcdefghij", 50) // 500 chars

	chunks := ChunkText(text, "doc", Options{
		Strategy:     StrategyFixed,
		MaxChunkSize: 200,
		MinChunkSize: 50,
		Overlap:      40,
	})

	require.GreaterOrEqual(t, len(chunks), 2)
	// Window steps by max-overlap.
	assert.Equal(t, 0, chunks[0].Meta.StartChar)
	assert.Equal(t, 160, chunks[1].Meta.StartChar)
}

func TestChunkMarkdown_SplitsOnHeaders(t *testing.T) {
	section := strings.Repeat("Inhalt über den Arbeitsmarkt. ", 5)
	md := "# Titel\n\n" + section + "\n## Abschnitt Eins\n\n" + section + "\n### Unterabschnitt\n\n" + section

	chunks := ChunkMarkdown(md, "doc", Options{MaxChunkSize: 1000, MinChunkSize: 50})

	require.Len(t, chunks, 3)
	assert.Contains(t, chunks[0].Content, "# Titel")
	assert.Contains(t, chunks[1].Content, "## Abschnitt Eins")
	assert.Contains(t, chunks[2].Content, "### Unterabschnitt")
	for _, chunk := range chunks {
		assert.Equal(t, "section", chunk.Meta.Type)
	}
}

func TestChunkMarkdown_OversizedSectionRecursesToParagraphs(t *testing.T) {
	para := strings.Repeat("Absatztext ", 30)
	md := "## Grosser Abschnitt\n\n" + para + "\n\n" + para + "\n\n" + para

	chunks := ChunkMarkdown(md, "doc", Options{MaxChunkSize: 400, MinChunkSize: 50})

	require.GreaterOrEqual(t, len(chunks), 2)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk.Content), 400)
	}
}

func TestChunkMarkdown_ShortInputSingleChunk(t *testing.T) {
	chunks := ChunkMarkdown("## Nur ein Titel", "doc", Options{})

	require.Len(t, chunks, 1)
	assert.Equal(t, "## Nur ein Titel", chunks[0].Content)
}

func TestChunkJSON_FlattensStringLeaves(t *testing.T) {
	raw := []byte(`{
		"b": "zweiter Wert",
		"a": "erster Wert",
		"nested": {"deep": ["Liste eins", "Liste zwei"]},
		"count": 42
	}`)

	chunks, err := ChunkJSON(raw, "doc", Options{})
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	content := chunks[0].Content
	assert.Contains(t, content, "erster Wert")
	assert.Contains(t, content, "Liste zwei")
	assert.NotContains(t, content, "42", "non-string leaves are dropped")
	// Sorted key order makes the output deterministic.
	assert.Less(t, strings.Index(content, "erster Wert"), strings.Index(content, "zweiter Wert"))
}

func TestChunkJSON_InvalidInput(t *testing.T) {
	_, err := ChunkJSON([]byte("{broken"), "doc", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid json")
}

func TestOptions_Normalized(t *testing.T) {
	opts := Options{}.normalized()
	assert.Equal(t, 1000, opts.MaxChunkSize)
	assert.Equal(t, 100, opts.MinChunkSize)
	assert.Equal(t, 100, opts.Overlap)
	assert.Equal(t, StrategyParagraph, opts.Strategy)

	opts = Options{MaxChunkSize: 100, Overlap: 150}.normalized()
	assert.Equal(t, 50, opts.Overlap, "overlap larger than max falls back to half")
}
