package chunker

import (
	"strings"
	"testing"
)

func TestWindowChunkerBasic(t *testing.T) {
	c := NewWindowChunker(10, 2)

	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := c.Chunk(text)

	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}

	for i, chunk := range chunks {
		if chunk == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if len(chunk) > 10 {
			t.Errorf("chunk %d exceeds window size: %q", i, chunk)
		}
	}
}

func TestWindowChunkerStride(t *testing.T) {
	// Window i must start at i*(size-overlap): size 10, overlap 2 => stride 8.
	c := NewWindowChunker(10, 2)

	text := "abcdefghijklmnopqrstuvwxyz0123456789"
	chunks := c.Chunk(text)

	for i, chunk := range chunks {
		start := i * 8
		end := start + 10
		if end > len(text) {
			end = len(text)
		}
		if want := text[start:end]; chunk != want {
			t.Errorf("chunk %d: expected %q, got %q", i, want, chunk)
		}
	}
}

func TestWindowChunkerOverlap(t *testing.T) {
	c := NewWindowChunker(10, 4)

	text := strings.Repeat("abcdef", 20)
	chunks := c.Chunk(text)

	if len(chunks) < 2 {
		t.Fatal("need at least 2 chunks to test overlap")
	}

	for i := 0; i < len(chunks)-2; i++ {
		tail := chunks[i][len(chunks[i])-4:]
		head := chunks[i+1][:4]
		if tail != head {
			t.Errorf("chunks %d/%d do not overlap by 4: %q vs %q", i, i+1, tail, head)
		}
	}
}

func TestWindowChunkerEmptyInput(t *testing.T) {
	c := NewWindowChunker(2000, 200)

	if chunks := c.Chunk(""); chunks != nil {
		t.Errorf("expected nil for empty input, got %v", chunks)
	}
	if chunks := c.Chunk("   \n\t  \n"); chunks != nil {
		t.Errorf("expected nil for whitespace-only input, got %v", chunks)
	}
}

func TestWindowChunkerShortInput(t *testing.T) {
	c := NewWindowChunker(2000, 200)

	chunks := c.Chunk("  Invoice INV-1 total $100  ")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "Invoice INV-1 total $100" {
		t.Errorf("expected trimmed chunk, got %q", chunks[0])
	}
}

func TestWindowChunkerReconstruction(t *testing.T) {
	c := NewWindowChunker(50, 10)

	// No whitespace anywhere, so trimming cannot eat window boundaries.
	text := strings.Repeat("abcdefghij", 40)
	chunks := c.Chunk(text)

	// Dropping each chunk's leading overlap re-concatenates the original.
	rebuilt := chunks[0]
	for _, chunk := range chunks[1:] {
		if len(chunk) > 10 {
			rebuilt += chunk[10:]
		}
	}
	if rebuilt != text {
		t.Errorf("reconstruction mismatch:\nwant %q\ngot  %q", text, rebuilt)
	}
}

func TestWindowChunkerClampsBadOverlap(t *testing.T) {
	c := NewWindowChunker(10, 10)

	// Must still terminate and produce chunks.
	chunks := c.Chunk("abcdefghijklmnop")
	if len(chunks) == 0 {
		t.Fatal("expected chunks despite overlap >= size")
	}
}
