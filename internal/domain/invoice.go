package domain

import (
	"fmt"
	"strings"
)

// ContactInfo is the issuing party printed on an invoice.
type ContactInfo struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LogoPath string `json:"logo_path,omitempty"`
}

// ClientContact is the billed party. ClientID links back to the roster when
// the generator matched a known client, nil otherwise.
type ClientContact struct {
	ClientID *int64 `json:"client_id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// LineItem is one billed position. Subtotal is derived; whatever a caller
// or the model put there is discarded by RecalculateTotals.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	DiscountPct float64 `json:"discount_pct"`
	TaxPct      float64 `json:"tax_pct"`
	Subtotal    float64 `json:"subtotal"`
}

// Totals are invoice aggregates. All four fields are derived, never trusted
// from input.
type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	DiscountTotal float64 `json:"discount_total"`
	TaxTotal      float64 `json:"tax_total"`
	GrandTotal    float64 `json:"grand_total"`
}

// PaymentInfo carries remittance details printed on the invoice.
type PaymentInfo struct {
	Terms         string `json:"terms,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	AccountName   string `json:"account_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	RoutingNumber string `json:"routing_number,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// InvoiceData is the structured invoice contract: the generator's output
// schema, the editor payload, and the export input.
type InvoiceData struct {
	InvoiceNumber string        `json:"invoice_number"`
	IssueDate     string        `json:"issue_date"`
	Status        string        `json:"status"`
	From          ContactInfo   `json:"from"`
	To            ClientContact `json:"to"`
	LineItems     []LineItem    `json:"line_items"`
	Totals        Totals        `json:"totals"`
	Payment       *PaymentInfo  `json:"payment,omitempty"`
	Notes         string        `json:"notes"`
}

// InvoiceText renders an invoice as plain text for re-indexing into the
// vector store. The layout intentionally resembles extracted PDF text so
// generated and uploaded documents retrieve alike.
func InvoiceText(inv *InvoiceData) string {
	var lines []string

	if inv.InvoiceNumber != "" {
		lines = append(lines, fmt.Sprintf("Invoice: %s", inv.InvoiceNumber))
	}
	if inv.IssueDate != "" {
		lines = append(lines, fmt.Sprintf("Date: %s", inv.IssueDate))
	}

	if from := joinContact(inv.From.Name, inv.From.Address, inv.From.Email, inv.From.Phone); from != "" {
		lines = append(lines, fmt.Sprintf("From: %s", from))
	}
	if to := joinContact(inv.To.Name, inv.To.Address, inv.To.Email, inv.To.Phone); to != "" {
		lines = append(lines, fmt.Sprintf("Bill To: %s", to))
	}

	if len(inv.LineItems) > 0 {
		lines = append(lines, "", "Line Items:")
		for _, li := range inv.LineItems {
			lines = append(lines, fmt.Sprintf("  - %s: %g %s x $%.2f = $%.2f",
				li.Description, li.Quantity, li.Unit, li.UnitPrice, li.Subtotal))
		}
	}

	lines = append(lines, "", fmt.Sprintf("Total: $%.2f", inv.Totals.GrandTotal))

	if inv.Notes != "" {
		lines = append(lines, "", fmt.Sprintf("Notes: %s", inv.Notes))
	}

	return strings.Join(lines, "\n")
}

func joinContact(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " | ")
}
