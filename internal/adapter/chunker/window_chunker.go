package chunker

import "strings"

// Defaults sized for embedding extracted invoice text.
const (
	DefaultChunkSize = 2000
	DefaultOverlap   = 200
)

// WindowChunker splits text into fixed-size character windows where window
// i starts at i*(size-overlap). Consecutive windows therefore share exactly
// overlap characters (up to trimming at the text's tail).
type WindowChunker struct {
	size    int
	overlap int
}

// NewWindowChunker creates a chunker. Non-positive size falls back to the
// default; overlap is clamped into [0, size) so the window always advances.
func NewWindowChunker(size, overlap int) *WindowChunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = DefaultOverlap
		if overlap >= size {
			overlap = size - 1
		}
	}
	return &WindowChunker{size: size, overlap: overlap}
}

// Chunk returns ordered, trimmed, non-empty windows over text. Empty or
// whitespace-only input yields nil. Windows are measured in runes so a
// multi-byte character never straddles a boundary.
func (c *WindowChunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	step := c.size - c.overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		if chunk := strings.TrimSpace(string(runes[start:end])); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	return chunks
}
