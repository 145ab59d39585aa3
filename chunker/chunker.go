package chunker

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/helvetic-systems/laborsense/core"
)

// Strategy selects how ChunkText segments input.
type Strategy string

const (
	StrategyParagraph Strategy = "paragraph"
	StrategySentence  Strategy = "sentence"
	StrategyFixed     Strategy = "fixed"
)

// Options bound chunk sizes. Zero values fall back to the defaults.
type Options struct {
	MaxChunkSize int      // maximum characters per chunk (default 1000)
	MinChunkSize int      // minimum characters per chunk (default 100)
	Overlap      int      // overlap between fixed-size chunks (default 100)
	Strategy     Strategy // default paragraph
}

func (o Options) normalized() Options {
	if o.MaxChunkSize <= 0 {
		o.MaxChunkSize = 1000
	}
	if o.MinChunkSize <= 0 {
		o.MinChunkSize = 100
	}
	if o.Overlap <= 0 {
		o.Overlap = 100
	}
	if o.Overlap >= o.MaxChunkSize {
		o.Overlap = o.MaxChunkSize / 2
	}
	if o.Strategy == "" {
		o.Strategy = StrategyParagraph
	}
	return o
}

// ChunkText splits text into ordered chunks according to the strategy.
// Every chunk has non-empty content and stays within [MinChunkSize,
// MaxChunkSize], with two edge rules: an input shorter than MinChunkSize
// still yields a single chunk, and a trailing pack below MinChunkSize is
// merged into the previous chunk when it fits, dropped otherwise.
func ChunkText(text, sourceID string, opts Options) []core.Chunk {
	opts = opts.normalized()

	var chunks []core.Chunk
	switch opts.Strategy {
	case StrategySentence:
		chunks = packPieces(splitSentences(text), " ", "sentence", sourceID, opts)
	case StrategyFixed:
		chunks = chunkFixed(text, sourceID, opts)
	default:
		chunks = packPieces(splitParagraphs(text), "\n\n", "paragraph", sourceID, opts)
	}

	return finalize(text, sourceID, chunks, opts)
}

// ChunkMarkdown splits markdown on ## and ### header boundaries first,
// recursing into paragraph chunking for any oversized section.
func ChunkMarkdown(markdown, sourceID string, opts Options) []core.Chunk {
	opts = opts.normalized()

	var chunks []core.Chunk
	position := 0
	for _, section := range splitMarkdownSections(markdown) {
		trimmed := strings.TrimSpace(section)
		if len(trimmed) < opts.MinChunkSize {
			position += len(section)
			continue
		}

		if len(section) > opts.MaxChunkSize {
			sub := packPieces(splitParagraphs(section), "\n\n", "paragraph", sourceID, opts)
			for _, chunk := range sub {
				chunk.Meta.StartChar += position
				chunk.Meta.EndChar += position
				chunk.ID = core.ChunkID(sourceID, len(chunks))
				chunk.Index = len(chunks)
				chunks = append(chunks, chunk)
			}
		} else {
			chunks = append(chunks, core.Chunk{
				ID:      core.ChunkID(sourceID, len(chunks)),
				Content: trimmed,
				Index:   len(chunks),
				Meta: core.ChunkMeta{
					SourceID:  sourceID,
					StartChar: position,
					EndChar:   position + len(section),
					Type:      "section",
				},
			})
		}
		position += len(section)
	}

	return finalize(markdown, sourceID, chunks, opts)
}

// ChunkJSON flattens a JSON document into a depth-first stream of its string
// leaves and delegates to ChunkText. Invalid JSON is an error; the other
// chunkers never fail.
func ChunkJSON(raw []byte, sourceID string, opts Options) ([]core.Chunk, error) {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("chunker: invalid json for %s: %w", sourceID, err)
	}
	return ChunkText(textFromJSON(value), sourceID, opts), nil
}

// finalize applies the short-input edge rule and stamps TotalChunks.
func finalize(text, sourceID string, chunks []core.Chunk, opts Options) []core.Chunk {
	if len(chunks) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		if len(trimmed) > opts.MaxChunkSize {
			trimmed = trimmed[:opts.MaxChunkSize]
		}
		chunks = []core.Chunk{{
			ID:      core.ChunkID(sourceID, 0),
			Content: trimmed,
			Meta: core.ChunkMeta{
				SourceID: sourceID,
				EndChar:  len(trimmed),
				Type:     "paragraph",
			},
		}}
	}
	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}
	return chunks
}

type piece struct {
	text  string
	start int
	end   int
}

func splitParagraphs(text string) []piece {
	return splitOn(text, func(s string, i int) int {
		if i+1 < len(s) && s[i] == '\n' && s[i+1] == '\n' {
			j := i
			for j < len(s) && s[j] == '\n' {
				j++
			}
			return j - i
		}
		return 0
	})
}

// splitSentences keeps the punctuation with the sentence and splits on the
// whitespace gap that follows it.
func splitSentences(text string) []piece {
	return splitOn(text, func(s string, i int) int {
		if s[i] != ' ' && s[i] != '\n' && s[i] != '\t' {
			return 0
		}
		if i == 0 {
			return 0
		}
		prev := s[i-1]
		if prev != '.' && prev != '!' && prev != '?' {
			return 0
		}
		j := i
		for j < len(s) && (s[j] == ' ' || s[j] == '\n' || s[j] == '\t') {
			j++
		}
		return j - i
	})
}

// splitOn is a shared scanner; the boundary func returns the separator
// length at position i, or 0 if i is not a boundary.
func splitOn(text string, boundary func(string, int) int) []piece {
	var pieces []piece
	start := 0
	for i := 0; i < len(text); {
		if sep := boundary(text, i); sep > 0 {
			pieces = append(pieces, piece{text: text[start:i], start: start, end: i})
			i += sep
			start = i
			continue
		}
		i++
	}
	if start < len(text) {
		pieces = append(pieces, piece{text: text[start:], start: start, end: len(text)})
	}
	return pieces
}

// packPieces packs consecutive pieces into chunks until the size budget is
// exhausted. A single piece larger than MaxChunkSize is hard-split so the
// size invariant holds.
func packPieces(pieces []piece, sep, chunkType, sourceID string, opts Options) []core.Chunk {
	// Expand oversized pieces first.
	var expanded []piece
	for _, p := range pieces {
		trimmed := strings.TrimSpace(p.text)
		if trimmed == "" {
			continue
		}
		if len(trimmed) <= opts.MaxChunkSize {
			expanded = append(expanded, piece{text: trimmed, start: p.start, end: p.end})
			continue
		}
		for off := 0; off < len(trimmed); off += opts.MaxChunkSize {
			end := min(off+opts.MaxChunkSize, len(trimmed))
			expanded = append(expanded, piece{text: trimmed[off:end], start: p.start + off, end: p.start + end})
		}
	}

	var chunks []core.Chunk
	var current strings.Builder
	currentStart := 0

	emit := func(end int) {
		content := current.String()
		current.Reset()
		if content == "" {
			return
		}
		if len(content) < opts.MinChunkSize {
			// Undersized pack: merge into the previous chunk when it
			// fits, drop otherwise.
			if n := len(chunks); n > 0 && len(chunks[n-1].Content)+len(sep)+len(content) <= opts.MaxChunkSize {
				chunks[n-1].Content += sep + content
				chunks[n-1].Meta.EndChar = end
			}
			return
		}
		chunks = append(chunks, core.Chunk{
			ID:      core.ChunkID(sourceID, len(chunks)),
			Content: content,
			Index:   len(chunks),
			Meta: core.ChunkMeta{
				SourceID:  sourceID,
				StartChar: currentStart,
				EndChar:   end,
				Type:      chunkType,
			},
		})
	}

	lastEnd := 0
	for _, p := range expanded {
		if current.Len() > 0 && current.Len()+len(sep)+len(p.text) > opts.MaxChunkSize {
			emit(lastEnd)
			currentStart = p.start
		}
		if current.Len() == 0 {
			currentStart = p.start
		} else {
			current.WriteString(sep)
		}
		current.WriteString(p.text)
		lastEnd = p.end
	}
	emit(lastEnd)

	return chunks
}

// chunkFixed slides a fixed-width window with Overlap characters repeated
// between consecutive chunks, stepping by MaxChunkSize-Overlap and stopping
// once the remainder is smaller than MinChunkSize.
func chunkFixed(text, sourceID string, opts Options) []core.Chunk {
	var chunks []core.Chunk
	position := 0
	for position < len(text) {
		end := min(position+opts.MaxChunkSize, len(text))
		content := strings.TrimSpace(text[position:end])
		if len(content) >= opts.MinChunkSize {
			chunks = append(chunks, core.Chunk{
				ID:      core.ChunkID(sourceID, len(chunks)),
				Content: content,
				Index:   len(chunks),
				Meta: core.ChunkMeta{
					SourceID:  sourceID,
					StartChar: position,
					EndChar:   end,
					Type:      "paragraph",
				},
			})
		}
		if end == len(text) {
			break
		}
		position = end - opts.Overlap
		if position >= len(text)-opts.MinChunkSize {
			break
		}
	}
	return chunks
}

func splitMarkdownSections(markdown string) []string {
	lines := strings.SplitAfter(markdown, "\n")
	var sections []string
	var current strings.Builder
	for _, line := range lines {
		if isMarkdownHeader(line) && current.Len() > 0 {
			sections = append(sections, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		sections = append(sections, current.String())
	}
	return sections
}

// isMarkdownHeader reports whether the line opens a ## or ### section.
func isMarkdownHeader(line string) bool {
	trimmed := strings.TrimLeft(line, "#")
	hashes := len(line) - len(trimmed)
	return (hashes == 2 || hashes == 3) && strings.HasPrefix(trimmed, " ")
}

// textFromJSON walks the value depth-first and joins its string leaves with
// newlines. Map keys are visited in sorted order for determinism.
func textFromJSON(value any) string {
	var parts []string
	switch v := value.(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if text := textFromJSON(item); strings.TrimSpace(text) != "" {
				parts = append(parts, text)
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if text := textFromJSON(v[key]); strings.TrimSpace(text) != "" {
				parts = append(parts, text)
			}
		}
	}
	return strings.Join(parts, "\n")
}
