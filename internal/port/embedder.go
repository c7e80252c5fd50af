package port

// Embedder generates vector embeddings for text. One embedder instance is
// constructed at startup and shared by the whole process; mixing models in
// one index would make distances meaningless.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}
