package usecase

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicerag/internal/adapter/chunker"
	"invoicerag/internal/adapter/embedding"
	"invoicerag/internal/adapter/memstore"
	"invoicerag/internal/adapter/store"
	"invoicerag/internal/domain"
)

// fakeExtractor interprets the upload bytes as the extracted text, with two
// magic prefixes driving the failure paths.
type fakeExtractor struct{}

func (fakeExtractor) Extract(data []byte) (string, bool, error) {
	s := string(data)
	switch {
	case len(s) >= 7 && s[:7] == "corrupt":
		return "", false, errors.New("malformed xref table")
	case len(s) >= 4 && s[:4] == "scan":
		return "", true, nil
	}
	return s, false, nil
}

func newTestIngest(t *testing.T) (*IngestUseCase, *store.RecordStore, *memstore.MemoryIndex) {
	t.Helper()

	dir := t.TempDir()
	records, err := store.Open(filepath.Join(dir, "invoices.db"))
	require.NoError(t, err)
	t.Cleanup(func() { records.Close() })

	index := memstore.NewMemoryIndex(embedding.NewMockEmbedder(64))
	uc := NewIngestUseCase(records, index, fakeExtractor{}, chunker.NewWindowChunker(2000, 200), dir, 10<<20)
	return uc, records, index
}

func pdfFile(name, text string) domain.UploadFile {
	return domain.UploadFile{Filename: name, ContentType: "application/pdf", Data: []byte(text)}
}

func TestIngestBatchPartialFailure(t *testing.T) {
	uc, records, index := newTestIngest(t)

	files := []domain.UploadFile{
		pdfFile("first.pdf", "Invoice Number: INV-100\nBill To:\nAcme LLC\nTotal: $120.00"),
		{Filename: "notes.txt", ContentType: "text/plain", Data: []byte("not a pdf")},
		pdfFile("third.pdf", "Invoice #INV-200 issued 2025-02-01 balance due $99.50"),
	}

	var progressed []int
	batch, err := uc.IngestBatch(files, func(done, total int) {
		require.Equal(t, 3, total)
		progressed = append(progressed, done)
	})
	require.NoError(t, err)

	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 2, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, []int{1, 2, 3}, progressed)

	require.Len(t, batch.Results, 3)
	assert.Equal(t, "first.pdf", batch.Results[0].Filename)
	assert.True(t, batch.Results[0].Success)
	assert.False(t, batch.Results[1].Success)
	assert.Contains(t, batch.Results[1].Error, "content type")
	assert.Nil(t, batch.Results[1].Record)
	assert.True(t, batch.Results[2].Success)

	// rejected file never got a record
	count, err := records.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	first := batch.Results[0].Record
	require.NotNil(t, first)
	assert.Equal(t, domain.StatusIndexed, first.Status)
	assert.Equal(t, domain.SourceUploaded, first.Source)
	assert.Equal(t, "INV-100", first.InvoiceNumber)
	assert.Equal(t, "Acme LLC", first.ClientName)
	require.NotNil(t, first.GrandTotal)
	assert.InDelta(t, 120.0, *first.GrandTotal, 1e-9)
	assert.NotEmpty(t, first.VectorDocID)
	assert.FileExists(t, first.FilePath)

	n, err := index.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIngestLowQualityStaysOutOfIndex(t *testing.T) {
	uc, _, index := newTestIngest(t)

	batch, err := uc.IngestBatch([]domain.UploadFile{pdfFile("scan.pdf", "scan")}, nil)
	require.NoError(t, err)

	require.Len(t, batch.Results, 1)
	result := batch.Results[0]
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "scanned")
	require.NotNil(t, result.Record)
	assert.Equal(t, domain.StatusParseFailed, result.Record.Status)
	assert.Empty(t, result.Record.VectorDocID)

	n, err := index.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	hits, err := index.Query("scan", 5, 0.99)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIngestCorruptFile(t *testing.T) {
	uc, _, _ := newTestIngest(t)

	batch, err := uc.IngestBatch([]domain.UploadFile{pdfFile("bad.pdf", "corrupt")}, nil)
	require.NoError(t, err)

	result := batch.Results[0]
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "could not extract text")
	require.NotNil(t, result.Record)
	assert.Equal(t, domain.StatusParseFailed, result.Record.Status)
}

func TestIngestOversizedFile(t *testing.T) {
	uc, records, index := newTestIngest(t)
	uc.maxFileBytes = 16

	batch, err := uc.IngestBatch([]domain.UploadFile{pdfFile("big.pdf", "this body is longer than sixteen bytes")}, nil)
	require.NoError(t, err)

	assert.False(t, batch.Results[0].Success)
	assert.Contains(t, batch.Results[0].Error, "byte limit")

	count, err := records.CountRecords()
	require.NoError(t, err)
	assert.Zero(t, count)
	n, _ := index.Count()
	assert.Zero(t, n)
}

func TestExportAndReindex(t *testing.T) {
	uc, records, index := newTestIngest(t)
	exportDir := t.TempDir()

	inv := &domain.InvoiceData{
		InvoiceNumber: "Invoice-#1",
		IssueDate:     "2025-03-01",
		To:            domain.ClientContact{Name: "Client Co"},
		LineItems: []domain.LineItem{
			{Description: "Consulting", Quantity: 2, Unit: "hours", UnitPrice: 100, DiscountPct: 10, TaxPct: 8, Subtotal: 9999},
		},
		Totals: domain.Totals{GrandTotal: 9999},
	}

	rec, overwrote, err := uc.Export(inv, exportDir)
	require.NoError(t, err)
	assert.False(t, overwrote)
	assert.Equal(t, domain.StatusExported, rec.Status)
	assert.Equal(t, domain.SourceGenerated, rec.Source)
	require.NotNil(t, rec.GrandTotal)
	assert.InDelta(t, 194.4, *rec.GrandTotal, 1e-9)

	// exported JSON carries the recomputed totals, not the submitted ones
	data, err := os.ReadFile(filepath.Join(exportDir, "Invoice-_1.json"))
	require.NoError(t, err)
	var exported domain.InvoiceData
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.InDelta(t, 194.4, exported.Totals.GrandTotal, 1e-9)
	assert.InDelta(t, 180.0, exported.LineItems[0].Subtotal, 1e-9)

	// same invoice number upserts instead of growing the list
	_, overwrote, err = uc.Export(inv, exportDir)
	require.NoError(t, err)
	assert.True(t, overwrote)
	count, err := records.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, uc.Reindex(rec.ID))
	updated, err := records.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, updated.VectorDocID)

	hits, err := index.Query("Consulting Client Co", 5, 0.99)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, updated.VectorDocID, hits[0].Metadata["doc_id"])

	// re-index again: doc id rotates, old vectors are gone
	require.NoError(t, uc.Reindex(rec.ID))
	rotated, err := records.GetRecord(rec.ID)
	require.NoError(t, err)
	assert.NotEqual(t, updated.VectorDocID, rotated.VectorDocID)
	hits, err = index.Query("Consulting Client Co", 10, 0.99)
	require.NoError(t, err)
	for _, h := range hits {
		assert.NotEqual(t, updated.VectorDocID, h.Metadata["doc_id"])
	}
}

func TestReindexRequiresStoredInvoice(t *testing.T) {
	uc, _, _ := newTestIngest(t)

	batch, err := uc.IngestBatch([]domain.UploadFile{pdfFile("up.pdf", "Invoice Number: INV-1 some body text")}, nil)
	require.NoError(t, err)
	rec := batch.Results[0].Record
	require.NotNil(t, rec)

	err = uc.Reindex(rec.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stored invoice")
}

func TestDeleteRemovesRecordVectorsAndFile(t *testing.T) {
	uc, records, index := newTestIngest(t)

	batch, err := uc.IngestBatch([]domain.UploadFile{pdfFile("gone.pdf", "Invoice Number: INV-9 quarterly retainer")}, nil)
	require.NoError(t, err)
	rec := batch.Results[0].Record
	require.True(t, batch.Results[0].Success)
	require.FileExists(t, rec.FilePath)

	require.NoError(t, uc.Delete(rec.ID))

	_, err = records.GetRecord(rec.ID)
	require.Error(t, err)
	n, _ := index.Count()
	assert.Zero(t, n)
	assert.NoFileExists(t, rec.FilePath)
}
