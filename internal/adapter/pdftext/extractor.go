package pdftext

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var pageMarkerPattern = regexp.MustCompile(`--- PAGE \d+ ---`)

// DefaultMinTextLength is the trimmed-text length below which a document is
// flagged as scanned/image-only.
const DefaultMinTextLength = 50

// Extractor pulls plain text per page from PDF bytes. Pages are joined with
// a marker so downstream chunking keeps page context.
type Extractor struct {
	minTextLength int
}

func NewExtractor(minTextLength int) *Extractor {
	if minTextLength <= 0 {
		minTextLength = DefaultMinTextLength
	}
	return &Extractor{minTextLength: minTextLength}
}

// Extract returns the concatenated page text and whether the document has
// no usable text layer. A page without a text layer contributes an empty
// body under its marker; a corrupt PDF is a fatal error.
func (e *Extractor) Extract(data []byte) (text string, lowQuality bool, err error) {
	// The pdf package panics on some malformed inputs; surface those as
	// extraction errors instead of crashing the batch.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse PDF: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", false, fmt.Errorf("failed to parse PDF: %w", err)
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)

		pageText := ""
		if !page.V.IsNull() {
			if t, err := page.GetPlainText(nil); err == nil {
				pageText = t
			}
		}
		pages = append(pages, fmt.Sprintf("--- PAGE %d ---\n%s", i, pageText))
	}

	full := strings.Join(pages, "\n\n")
	return full, e.isLowQuality(full), nil
}

// isLowQuality checks the extractable content, ignoring the page markers we
// inserted ourselves.
func (e *Extractor) isLowQuality(full string) bool {
	stripped := pageMarkerPattern.ReplaceAllString(full, "")
	return len(strings.TrimSpace(stripped)) < e.minTextLength
}
