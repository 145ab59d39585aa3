package relevance

import "strings"

// snippetLength is the target snippet size in characters.
const snippetLength = 300

// ExtractSnippet picks the window of content that covers the most query
// terms, scanning in 50-character steps, and trims it to word boundaries.
func ExtractSnippet(content, query string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = snippetLength
	}
	if len(content) <= maxLength {
		return strings.TrimSpace(content)
	}

	terms := strings.Fields(strings.ToLower(query))
	contentLower := strings.ToLower(content)

	bestPos, bestScore := 0, 0
	for i := 0; i < len(content)-maxLength; i += 50 {
		section := contentLower[i : i+maxLength]
		score := 0
		for _, term := range terms {
			if strings.Contains(section, term) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestPos = i
		}
	}

	snippet := content[bestPos : bestPos+maxLength]

	// Trim a leading partial word.
	if firstSpace := strings.IndexByte(snippet, ' '); firstSpace > 0 && firstSpace < 30 {
		snippet = snippet[firstSpace+1:]
	}
	// Trim a trailing partial word.
	if lastSpace := strings.LastIndexByte(snippet, ' '); lastSpace > maxLength-50 {
		snippet = snippet[:lastSpace]
	}

	return strings.TrimSpace(snippet) + "..."
}

// ExtractTitle falls back to the first content line when a document carries
// no title metadata, capped at 100 characters.
func ExtractTitle(content string) string {
	firstLine, _, _ := strings.Cut(content, "\n")
	firstLine = strings.TrimSpace(strings.TrimLeft(firstLine, "# "))
	if len(firstLine) > 100 {
		return firstLine[:100] + "..."
	}
	return firstLine
}
