package port

import "invoicerag/internal/domain"

// VectorIndex stores chunk embeddings and answers similarity queries.
// Entries are keyed "{docID}_{chunkIndex}"; every entry for one document
// carries the document id in its metadata, which is what makes bulk
// deletion by document possible.
type VectorIndex interface {
	// Add embeds and stores each chunk under a deterministic id. A nil or
	// empty chunk slice is a no-op. Re-adding an existing id overwrites;
	// callers re-indexing a document are expected to delete first.
	Add(docID string, chunks []string, metadata map[string]string) error

	// Query returns up to min(n, Count) nearest entries ranked by ascending
	// distance, filtered to distance <= threshold. An empty index yields an
	// empty result, not an error.
	Query(text string, n int, threshold float64) ([]domain.RetrievalHit, error)

	// DeleteDocument removes every entry whose metadata document id
	// matches. Deleting an unknown id is a no-op.
	DeleteDocument(docID string) error

	// Count returns the total number of stored entries.
	Count() (int, error)
}
