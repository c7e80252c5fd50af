// Package usecase wires the adapters into the pipeline operations: batch
// ingestion, retrieval context assembly and structured invoice generation.
package usecase

import (
	"fmt"
	"strings"

	"invoicerag/internal/port"
)

// ContextAssembler turns a free-text prompt into a retrieval context block
// built from previously indexed invoices.
type ContextAssembler struct {
	index     port.VectorIndex
	topK      int
	maxDocs   int
	threshold float64
}

func NewContextAssembler(index port.VectorIndex, topK, maxDocs int, threshold float64) *ContextAssembler {
	if topK <= 0 {
		topK = 5
	}
	if maxDocs <= 0 {
		maxDocs = 3
	}
	return &ContextAssembler{
		index:     index,
		topK:      topK,
		maxDocs:   maxDocs,
		threshold: threshold,
	}
}

// GetContext queries the index and assembles one block per distinct source
// document, best match first. Chunks beyond the first per document are
// dropped; the count of distinct documents used is returned alongside.
func (a *ContextAssembler) GetContext(prompt string) (string, int, error) {
	hits, err := a.index.Query(prompt, a.topK, a.threshold)
	if err != nil {
		return "", 0, fmt.Errorf("failed to query index: %w", err)
	}
	if len(hits) == 0 {
		return "", 0, nil
	}

	seen := make(map[string]bool)
	var blocks []string
	for _, hit := range hits {
		docID := hit.Metadata["doc_id"]
		if seen[docID] {
			continue
		}
		seen[docID] = true

		filename := hit.Metadata["filename"]
		if filename == "" {
			filename = "unknown"
		}
		blocks = append(blocks, fmt.Sprintf("[Document %d — %s]\n%s", len(blocks)+1, filename, hit.Text))

		if len(blocks) >= a.maxDocs {
			break
		}
	}

	return strings.Join(blocks, "\n\n---\n\n"), len(blocks), nil
}
