package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"invoicerag/internal/domain"
	"invoicerag/internal/port"
)

// invoiceSchemaExample is embedded in the system prompt so the model sees the
// exact shape it must return inside the {"invoice": ...} envelope.
const invoiceSchemaExample = `{
  "invoice": {
    "invoice_number": "Invoice-#1",
    "issue_date": "2025-01-15",
    "status": "draft",
    "from": {"name": "Acme LLC", "address": "1 Main St", "email": "billing@acme.test", "phone": "+1 555 0100"},
    "to": {"client_id": null, "name": "Client Co", "address": "2 Oak Ave", "email": "ap@client.test", "phone": ""},
    "line_items": [
      {"description": "Consulting", "quantity": 2, "unit": "hours", "unit_price": 100.0, "discount_pct": 10.0, "tax_pct": 8.0, "subtotal": 180.0}
    ],
    "totals": {"subtotal": 180.0, "discount_total": 20.0, "tax_total": 14.4, "grand_total": 194.4},
    "payment": {"terms": "Net 30", "bank_name": "", "account_name": "", "account_number": "", "routing_number": "", "notes": ""},
    "notes": ""
  }
}`

// GenerateInput carries everything the generator folds into its prompt.
type GenerateInput struct {
	Prompt            string
	Profile           domain.BusinessProfile
	Clients           []domain.Client
	RAGContext        string
	NextInvoiceNumber string
}

// GenerateUseCase produces a structured invoice from a natural-language
// request, retrying on malformed model output.
type GenerateUseCase struct {
	llm     port.LLM
	retries int // extra attempts after the first call
}

func NewGenerateUseCase(llm port.LLM, retries int) *GenerateUseCase {
	if retries < 0 {
		retries = 0
	}
	return &GenerateUseCase{llm: llm, retries: retries}
}

// invoiceEnvelope decodes the model reply. The pointer distinguishes a
// missing "invoice" key from an empty invoice.
type invoiceEnvelope struct {
	Invoice *domain.InvoiceData `json:"invoice"`
}

// Generate asks the model for an invoice matching in.Prompt. The same prompt
// is sent on every attempt; only decoding failures trigger a retry, transport
// errors surface immediately.
func (g *GenerateUseCase) Generate(ctx context.Context, in GenerateInput) (*domain.InvoiceData, error) {
	systemPrompt := g.buildSystemPrompt(in)

	attempts := g.retries + 1
	var lastErr error
	var lastRaw string

	for attempt := 0; attempt < attempts; attempt++ {
		raw, err := g.llm.GenerateWithSystem(ctx, systemPrompt, in.Prompt)
		if err != nil {
			return nil, fmt.Errorf("llm request failed: %w", err)
		}
		lastRaw = raw

		inv, err := decodeInvoice(raw)
		if err != nil {
			lastErr = err
			continue
		}
		return inv, nil
	}

	return nil, &domain.GenerationError{
		Attempts: attempts,
		LastRaw:  truncate(lastRaw, 500),
		Err:      lastErr,
	}
}

func (g *GenerateUseCase) buildSystemPrompt(in GenerateInput) string {
	var b strings.Builder

	b.WriteString("You are an invoice drafting assistant. Produce exactly one JSON object matching this schema:\n\n")
	b.WriteString(invoiceSchemaExample)
	b.WriteString("\n\nRules:\n")
	b.WriteString("- Return JSON only. No markdown fences, no commentary.\n")
	b.WriteString("- Use null for unknown values, never invent contact details.\n")
	fmt.Fprintf(&b, "- invoice_number must be exactly %q.\n", in.NextInvoiceNumber)
	fmt.Fprintf(&b, "- issue_date defaults to today (%s) unless the request names a date.\n", time.Now().Format("2006-01-02"))
	b.WriteString("- Per line item: subtotal = quantity * unit_price * (1 - discount_pct/100).\n")

	if profileJSON, err := json.Marshal(in.Profile); err == nil {
		b.WriteString("\nBusiness profile (use as the \"from\" party):\n")
		b.Write(profileJSON)
		b.WriteString("\n")
	}

	if len(in.Clients) > 0 {
		if clientsJSON, err := json.Marshal(in.Clients); err == nil {
			b.WriteString("\nKnown clients (set client_id when the request matches one):\n")
			b.Write(clientsJSON)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nSimilar past invoices for style and pricing reference:\n")
	if in.RAGContext != "" {
		b.WriteString(in.RAGContext)
	} else {
		b.WriteString("(no historical invoices available)")
	}
	b.WriteString("\n")

	return b.String()
}

// decodeInvoice strips optional markdown fences, then strictly decodes the
// {"invoice": ...} envelope.
func decodeInvoice(raw string) (*domain.InvoiceData, error) {
	cleaned := stripFences(raw)

	var env invoiceEnvelope
	if err := json.Unmarshal([]byte(cleaned), &env); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if env.Invoice == nil {
		return nil, fmt.Errorf("response has no \"invoice\" key")
	}
	return env.Invoice, nil
}

// stripFences removes a leading ```/```json fence and its closing fence.
// Models add them despite instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
