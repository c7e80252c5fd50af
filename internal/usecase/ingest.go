package usecase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"invoicerag/internal/adapter/analyzer"
	"invoicerag/internal/adapter/store"
	"invoicerag/internal/domain"
	"invoicerag/internal/port"
)

// IngestUseCase runs uploaded documents through the extract → chunk → index
// pipeline and owns the record lifecycle around it.
type IngestUseCase struct {
	records      *store.RecordStore
	index        port.VectorIndex
	extractor    port.TextExtractor
	chunker      port.Chunker
	uploadsDir   string
	maxFileBytes int64
}

func NewIngestUseCase(records *store.RecordStore, index port.VectorIndex, extractor port.TextExtractor, chunker port.Chunker, uploadsDir string, maxFileBytes int64) *IngestUseCase {
	return &IngestUseCase{
		records:      records,
		index:        index,
		extractor:    extractor,
		chunker:      chunker,
		uploadsDir:   uploadsDir,
		maxFileBytes: maxFileBytes,
	}
}

// IngestBatch processes files strictly in upload order. One file's failure
// never fails the batch; a record-store fault does, since nothing after it
// could be persisted. progress may be nil.
func (u *IngestUseCase) IngestBatch(files []domain.UploadFile, progress func(done, total int)) (*domain.BatchResult, error) {
	batch := &domain.BatchResult{Total: len(files)}

	for i, file := range files {
		result, err := u.ingestOne(file)
		if err != nil {
			return nil, fmt.Errorf("failed to ingest %s: %w", file.Filename, err)
		}

		batch.Results = append(batch.Results, result)
		if result.Success {
			batch.Succeeded++
		} else {
			batch.Failed++
		}

		if progress != nil {
			progress(i+1, len(files))
		}
	}

	return batch, nil
}

// ingestOne runs the per-file state machine. The returned error is reserved
// for record-store faults; everything else lands in the UploadResult, with a
// panic in the extraction path converted to a parse failure.
func (u *IngestUseCase) ingestOne(file domain.UploadFile) (domain.UploadResult, error) {
	fail := func(msg string) domain.UploadResult {
		return domain.UploadResult{Filename: file.Filename, Error: msg}
	}

	switch file.ContentType {
	case "application/pdf", "application/octet-stream":
	default:
		return fail(fmt.Sprintf("unsupported content type %q, expected a PDF", file.ContentType)), nil
	}
	if u.maxFileBytes > 0 && int64(len(file.Data)) > u.maxFileBytes {
		return fail(fmt.Sprintf("file exceeds the %d byte limit", u.maxFileBytes)), nil
	}

	rec := &domain.InvoiceRecord{
		Filename: file.Filename,
		Source:   domain.SourceUploaded,
		Status:   domain.StatusProcessing,
	}
	if err := u.records.CreateRecord(rec); err != nil {
		return domain.UploadResult{}, fmt.Errorf("failed to create record: %w", err)
	}

	if u.uploadsDir != "" {
		path := filepath.Join(u.uploadsDir, fmt.Sprintf("%d_%s", rec.ID, sanitizeFilename(file.Filename)))
		if err := os.WriteFile(path, file.Data, 0644); err == nil {
			rec.FilePath = path
		}
	}

	text, lowQuality, err := u.extractText(file.Data)
	if err != nil || lowQuality {
		rec.Status = domain.StatusParseFailed
		if uerr := u.records.UpdateRecord(rec); uerr != nil {
			return domain.UploadResult{}, fmt.Errorf("failed to update record: %w", uerr)
		}

		msg := "document appears to be scanned or image-only, no usable text layer"
		if err != nil {
			msg = fmt.Sprintf("could not extract text: %v", err)
		}
		result := fail(msg)
		result.Record = rec
		return result, nil
	}

	hints := analyzer.ExtractHints(text)
	rec.InvoiceNumber = hints.InvoiceNumber
	rec.IssueDate = hints.IssueDate
	rec.ClientName = hints.ClientName
	rec.GrandTotal = hints.GrandTotal

	docID := uuid.NewString()
	chunks := u.chunker.Chunk(text)
	if err := u.index.Add(docID, chunks, map[string]string{store.MetaFilename: file.Filename}); err != nil {
		return domain.UploadResult{}, fmt.Errorf("failed to index document: %w", err)
	}

	rec.VectorDocID = docID
	rec.Status = domain.StatusIndexed
	if err := u.records.UpdateRecord(rec); err != nil {
		return domain.UploadResult{}, fmt.Errorf("failed to update record: %w", err)
	}

	return domain.UploadResult{Filename: file.Filename, Success: true, Record: rec}, nil
}

// extractText shields the batch from extractor panics. The PDF library can
// panic on malformed cross-reference tables.
func (u *IngestUseCase) extractText(data []byte) (text string, lowQuality bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return u.extractor.Extract(data)
}

// Reindex re-derives a record's vectors from its stored invoice JSON under a
// fresh document id. Only records that carry invoice JSON (generated or
// exported ones) can be re-indexed.
func (u *IngestUseCase) Reindex(recordID uint64) error {
	rec, err := u.records.GetRecord(recordID)
	if err != nil {
		return err
	}
	if rec.InvoiceJSON == "" {
		return fmt.Errorf("record %d has no stored invoice to re-index", recordID)
	}

	var inv domain.InvoiceData
	if err := json.Unmarshal([]byte(rec.InvoiceJSON), &inv); err != nil {
		return fmt.Errorf("failed to decode stored invoice: %w", err)
	}

	if rec.VectorDocID != "" {
		if err := u.index.DeleteDocument(rec.VectorDocID); err != nil {
			return fmt.Errorf("failed to delete old vectors: %w", err)
		}
	}

	docID := uuid.NewString()
	chunks := u.chunker.Chunk(domain.InvoiceText(&inv))
	if err := u.index.Add(docID, chunks, map[string]string{store.MetaFilename: rec.Filename}); err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}

	rec.VectorDocID = docID
	return u.records.UpdateRecord(&rec)
}

// Export recomputes totals, upserts the record keyed by invoice number and
// writes the invoice JSON under exportDir. A repeated export of the same
// invoice number overwrites the earlier record; callers print a notice when
// the returned overwrote flag is set.
func (u *IngestUseCase) Export(inv *domain.InvoiceData, exportDir string) (*domain.InvoiceRecord, bool, error) {
	domain.RecalculateTotals(inv)

	data, err := json.MarshalIndent(inv, "", "  ")
	if err != nil {
		return nil, false, fmt.Errorf("failed to encode invoice: %w", err)
	}

	filename := sanitizeFilename(inv.InvoiceNumber)
	if filename == "" {
		filename = "invoice"
	}
	filename += ".json"

	existing, err := u.records.FindByInvoiceNumber(inv.InvoiceNumber)
	if err != nil {
		return nil, false, err
	}

	grand := inv.Totals.GrandTotal
	rec := existing
	overwrote := existing != nil
	if rec == nil {
		rec = &domain.InvoiceRecord{Source: domain.SourceGenerated}
	}
	rec.Filename = filename
	rec.InvoiceNumber = inv.InvoiceNumber
	rec.ClientName = inv.To.Name
	rec.IssueDate = inv.IssueDate
	rec.GrandTotal = &grand
	rec.Status = domain.StatusExported
	rec.InvoiceJSON = string(data)

	if overwrote {
		err = u.records.UpdateRecord(rec)
	} else {
		err = u.records.CreateRecord(rec)
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to persist record: %w", err)
	}

	if exportDir != "" {
		path := filepath.Join(exportDir, filename)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, false, fmt.Errorf("failed to write export: %w", err)
		}
		rec.FilePath = path
		if err := u.records.UpdateRecord(rec); err != nil {
			return nil, false, fmt.Errorf("failed to persist record: %w", err)
		}
	}

	return rec, overwrote, nil
}

// Delete removes a record together with its vectors and stored file. The
// file removal is best effort; a missing file does not block the delete.
func (u *IngestUseCase) Delete(recordID uint64) error {
	rec, err := u.records.GetRecord(recordID)
	if err != nil {
		return err
	}

	if rec.VectorDocID != "" {
		if err := u.index.DeleteDocument(rec.VectorDocID); err != nil {
			return fmt.Errorf("failed to delete vectors: %w", err)
		}
	}
	if rec.FilePath != "" {
		os.Remove(rec.FilePath)
	}

	return u.records.DeleteRecord(recordID)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}
