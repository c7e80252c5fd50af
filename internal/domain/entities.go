package domain

import "time"

// Document lifecycle statuses. "processing" is the only non-terminal state;
// a record stays in "parse_failed" or "indexed" until an explicit re-index
// or export moves it.
const (
	StatusProcessing  = "processing"
	StatusParseFailed = "parse_failed"
	StatusIndexed     = "indexed"
	StatusExported    = "exported"
)

// Document sources.
const (
	SourceUploaded  = "uploaded"
	SourceGenerated = "generated"
)

// RetrievalHit is a single similarity-search result. Hits are constructed
// per query and never persisted.
type RetrievalHit struct {
	Text     string
	Metadata map[string]string
	Distance float64
}

// MetadataHints holds best-effort fields scanned from raw invoice text.
// An empty string / nil pointer means the pattern did not match; hints are
// advisory and never block the pipeline.
type MetadataHints struct {
	InvoiceNumber string
	IssueDate     string
	ClientName    string
	GrandTotal    *float64
}

// InvoiceRecord is the persisted row tracking one source document through
// its lifecycle. VectorDocID groups all index entries derived from it.
type InvoiceRecord struct {
	ID            uint64    `json:"id"`
	Filename      string    `json:"filename"`
	FilePath      string    `json:"file_path"`
	Source        string    `json:"source"`
	InvoiceNumber string    `json:"invoice_number,omitempty"`
	ClientName    string    `json:"client_name,omitempty"`
	IssueDate     string    `json:"issue_date,omitempty"`
	GrandTotal    *float64  `json:"grand_total,omitempty"`
	Currency      string    `json:"currency"`
	VectorDocID   string    `json:"vector_doc_id,omitempty"`
	Status        string    `json:"status"`
	InvoiceJSON   string    `json:"invoice_json,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// UploadFile is one file submitted to the ingestion batch.
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadResult is the per-file outcome within a batch. Record is set once a
// record was created for the file, even when processing later failed.
type UploadResult struct {
	Filename string
	Success  bool
	Record   *InvoiceRecord
	Error    string
}

// BatchResult aggregates a whole upload batch. Results preserve upload
// order; one file's failure never fails the batch.
type BatchResult struct {
	Results   []UploadResult
	Total     int
	Succeeded int
	Failed    int
}

// BusinessProfile is the issuer identity and payment defaults injected into
// generation prompts.
type BusinessProfile struct {
	Name            string  `json:"name,omitempty"`
	Address         string  `json:"address,omitempty"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	TaxID           string  `json:"tax_id,omitempty"`
	LogoPath        string  `json:"logo_path,omitempty"`
	DefaultCurrency string  `json:"default_currency,omitempty"`
	DefaultTaxPct   float64 `json:"default_tax_pct,omitempty"`
	PaymentTerms    string  `json:"payment_terms,omitempty"`
	BankName        string  `json:"bank_name,omitempty"`
	AccountName     string  `json:"account_name,omitempty"`
	AccountNumber   string  `json:"account_number,omitempty"`
	RoutingNumber   string  `json:"routing_number,omitempty"`
	PaymentNotes    string  `json:"payment_notes,omitempty"`
}

// Client is one entry of the known-client roster.
type Client struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email,omitempty"`
	Phone     string          `json:"phone,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Addresses []ClientAddress `json:"addresses,omitempty"`
}

// ClientAddress is a labeled address of a client (billing, site, ...).
type ClientAddress struct {
	Label   string `json:"label,omitempty"`
	Address string `json:"address"`
}
