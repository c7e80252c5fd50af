// Package memstore provides an in-memory vector index. It mirrors the
// Bolt-backed index's contract without touching disk, which is what tests
// substitute for the process-wide index capability.
package memstore

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"invoicerag/internal/domain"
	"invoicerag/internal/port"
)

type MemoryIndex struct {
	embedder port.Embedder

	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	vector   []float32
	text     string
	metadata map[string]string
}

func NewMemoryIndex(embedder port.Embedder) *MemoryIndex {
	return &MemoryIndex{
		embedder: embedder,
		entries:  make(map[string]entry),
	}
}

func (s *MemoryIndex) Add(docID string, chunks []string, metadata map[string]string) error {
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := s.embedder.Embed(chunks)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, chunk := range chunks {
		meta := make(map[string]string, len(metadata)+2)
		for k, v := range metadata {
			meta[k] = v
		}
		meta["doc_id"] = docID
		meta["chunk_index"] = strconv.Itoa(i)

		s.entries[fmt.Sprintf("%s_%d", docID, i)] = entry{
			vector:   vectors[i],
			text:     chunk,
			metadata: meta,
		}
	}
	return nil
}

func (s *MemoryIndex) Query(text string, n int, threshold float64) ([]domain.RetrievalHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || n <= 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed([]string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	query := vectors[0]

	var hits []domain.RetrievalHit
	for _, e := range s.entries {
		dist := 1 - cosine(query, e.vector)
		if dist <= threshold {
			hits = append(hits, domain.RetrievalHit{Text: e.text, Metadata: e.metadata, Distance: dist})
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if n < len(hits) {
		hits = hits[:n]
	}
	return hits, nil
}

func (s *MemoryIndex) DeleteDocument(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if e.metadata["doc_id"] == docID {
			delete(s.entries, id)
		}
	}
	return nil
}

func (s *MemoryIndex) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
