package pdftext

import (
	"fmt"
	"strings"
	"testing"
)

func TestExtractCorruptPDF(t *testing.T) {
	e := NewExtractor(50)

	_, _, err := e.Extract([]byte("not a pdf at all"))
	if err == nil {
		t.Fatal("expected error for corrupt input")
	}

	_, _, err = e.Extract(nil)
	if err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestExtractTextlessPage(t *testing.T) {
	e := NewExtractor(50)

	text, lowQuality, err := e.Extract(buildEmptyPagePDF(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "--- PAGE 1 ---") {
		t.Errorf("expected page marker in output, got %q", text)
	}
	if !lowQuality {
		t.Error("textless page should be flagged low quality")
	}
}

func TestIsLowQualityIgnoresPageMarkers(t *testing.T) {
	e := NewExtractor(50)

	// Markers alone must not count as content, no matter how many pages.
	manyEmptyPages := strings.Repeat("--- PAGE 1 ---\n\n", 10)
	if !e.isLowQuality(manyEmptyPages) {
		t.Error("marker-only text should be low quality")
	}

	body := strings.Repeat("Consulting services rendered. ", 4)
	if e.isLowQuality("--- PAGE 1 ---\n" + body) {
		t.Error("a page with real content should not be low quality")
	}
}

// buildEmptyPagePDF assembles a minimal single-page document with no text
// layer, computing byte offsets so the cross-reference table is exact.
func buildEmptyPagePDF(t *testing.T) []byte {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>",
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xrefStart := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	return []byte(b.String())
}
