package store

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"sync"

	"go.etcd.io/bbolt"

	"invoicerag/internal/domain"
	"invoicerag/internal/port"
)

var bucketVectors = []byte("vectors")

// Metadata keys every entry carries; DeleteDocument relies on MetaDocID.
const (
	MetaDocID      = "doc_id"
	MetaChunkIndex = "chunk_index"
	MetaFilename   = "filename"
)

// BoltVectorIndex implements port.VectorIndex on a bbolt bucket with an
// in-memory mirror for brute-force search. Distances are Chroma-style
// 1 - cosine similarity, so 0 is identical and lower is closer.
//
// The index is process-wide: one instance is opened at startup and shared.
// No per-document lock is taken; two concurrent re-index runs on the same
// document id can interleave their delete-then-add (a known narrow window,
// re-indexing is a rare user-triggered action).
type BoltVectorIndex struct {
	db       *bbolt.DB
	embedder port.Embedder

	mu      sync.RWMutex
	entries map[string]indexEntry
}

type indexEntry struct {
	vector   []float32
	text     string
	metadata map[string]string
}

type storedEntry struct {
	Vector   []float32         `json:"v"`
	Text     string            `json:"t"`
	Metadata map[string]string `json:"m,omitempty"`
}

// NewBoltVectorIndex opens (or creates) the vectors bucket and loads the
// existing entries into memory.
func NewBoltVectorIndex(db *bbolt.DB, embedder port.Embedder) (*BoltVectorIndex, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketVectors)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vectors bucket: %w", err)
	}

	idx := &BoltVectorIndex{
		db:       db,
		embedder: embedder,
		entries:  make(map[string]indexEntry),
	}

	if err := idx.loadEntries(); err != nil {
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}

	return idx, nil
}

func (s *BoltVectorIndex) loadEntries() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var stored storedEntry
			if err := json.Unmarshal(v, &stored); err != nil {
				return nil // skip corrupted entries
			}
			s.entries[string(k)] = indexEntry{
				vector:   stored.Vector,
				text:     stored.Text,
				metadata: stored.Metadata,
			}
			return nil
		})
	})
}

// EntryID builds the deterministic id of one chunk's entry.
func EntryID(docID string, chunkIndex int) string {
	return fmt.Sprintf("%s_%d", docID, chunkIndex)
}

// Add embeds and stores every chunk under "{docID}_{i}". The shared
// metadata is copied per entry and merged with doc_id and chunk_index.
// Re-adding an id overwrites; an empty chunk slice is a no-op.
func (s *BoltVectorIndex) Add(docID string, chunks []string, metadata map[string]string) error {
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := s.embedder.Embed(chunks)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return fmt.Errorf("vectors bucket not found")
		}

		for i, chunk := range chunks {
			meta := make(map[string]string, len(metadata)+2)
			for k, v := range metadata {
				meta[k] = v
			}
			meta[MetaDocID] = docID
			meta[MetaChunkIndex] = strconv.Itoa(i)

			id := EntryID(docID, i)
			data, err := json.Marshal(storedEntry{
				Vector:   vectors[i],
				Text:     chunk,
				Metadata: meta,
			})
			if err != nil {
				return err
			}
			if err := b.Put([]byte(id), data); err != nil {
				return err
			}

			s.entries[id] = indexEntry{
				vector:   vectors[i],
				text:     chunk,
				metadata: meta,
			}
		}
		return nil
	})
}

// Query embeds the text and returns up to min(n, Count) entries ordered by
// ascending distance, keeping only those within threshold. An empty index
// yields an empty result.
func (s *BoltVectorIndex) Query(text string, n int, threshold float64) ([]domain.RetrievalHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 || n <= 0 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed([]string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	query := vectors[0]

	hits := make([]domain.RetrievalHit, 0, len(s.entries))
	for _, entry := range s.entries {
		dist := 1 - cosineSimilarity(query, entry.vector)
		if dist <= threshold {
			hits = append(hits, domain.RetrievalHit{
				Text:     entry.text,
				Metadata: entry.metadata,
				Distance: dist,
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if n < len(hits) {
		hits = hits[:n]
	}
	return hits, nil
}

// DeleteDocument removes every entry whose metadata doc_id matches.
// Unknown ids delete nothing and return nil.
func (s *BoltVectorIndex) DeleteDocument(docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, entry := range s.entries {
		if entry.metadata[MetaDocID] == docID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		for _, id := range ids {
			if err := b.Delete([]byte(id)); err != nil {
				return err
			}
			delete(s.entries, id)
		}
		return nil
	})
}

// Count returns the number of stored entries.
func (s *BoltVectorIndex) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
