package port

// TextExtractor pulls plain text from a PDF byte stream.
type TextExtractor interface {
	// Extract returns the concatenated per-page text and whether the
	// document looks like a scan with no usable text layer. A corrupt or
	// unparseable PDF is an error, not a low-quality result.
	Extract(data []byte) (text string, lowQuality bool, err error)
}

// Chunker splits extracted text into windows suitable for embedding.
type Chunker interface {
	// Chunk returns ordered, trimmed, non-empty chunks. Empty or
	// whitespace-only input yields nil.
	Chunk(text string) []string
}
