package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHintsLabeledInvoiceNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"colon form", "Invoice Number: INV-2024-001\nsome body", "INV-2024-001"},
		{"hash form", "Invoice #1234 issued today", "1234"},
		{"no label", "Invoice no 42/A", "42/A"},
		{"bare leading hash", "#INV-7\nBill To: Acme", "INV-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := ExtractHints(tt.text)
			assert.Equal(t, tt.want, hints.InvoiceNumber)
		})
	}
}

func TestExtractHintsDates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"iso", "Date: 2024-01-15", "2024-01-15"},
		{"us slash", "Issued 1/15/2024 net 30", "1/15/2024"},
		{"month name", "Issued January 15, 2024", "January 15, 2024"},
		// The literal matched substring is returned: no calendar validation.
		{"impossible date kept", "Date: 2024-13-45", "2024-13-45"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := ExtractHints(tt.text)
			assert.Equal(t, tt.want, hints.IssueDate)
		})
	}
}

func TestExtractHintsClientName(t *testing.T) {
	t.Run("same line", func(t *testing.T) {
		hints := ExtractHints("Bill To: Acme Corporation\n123 Main St")
		assert.Equal(t, "Acme Corporation", hints.ClientName)
	})

	t.Run("next line in two-column layout", func(t *testing.T) {
		text := "Bill To:                    Invoice #: INV-9\nAcme Corporation            2024-01-15\n"
		hints := ExtractHints(text)
		assert.Equal(t, "Acme Corporation", hints.ClientName)
	})

	t.Run("same line truncated before next label", func(t *testing.T) {
		hints := ExtractHints("Bill To: Acme Corp Invoice Date 2024-01-01")
		assert.Equal(t, "Acme Corp", hints.ClientName)
	})

	t.Run("absent", func(t *testing.T) {
		hints := ExtractHints("no billing header here")
		assert.Empty(t, hints.ClientName)
	})
}

func TestExtractHintsGrandTotal(t *testing.T) {
	t.Run("balance due preferred over generic total", func(t *testing.T) {
		text := "Balance Due: $1,234.56\nTotal: $999.00"
		hints := ExtractHints(text)
		require.NotNil(t, hints.GrandTotal)
		assert.InDelta(t, 1234.56, *hints.GrandTotal, 1e-9)
	})

	t.Run("grand total with thousands separators", func(t *testing.T) {
		hints := ExtractHints("Grand Total: 12,000.00")
		require.NotNil(t, hints.GrandTotal)
		assert.InDelta(t, 12000.00, *hints.GrandTotal, 1e-9)
	})

	t.Run("balance due preferred even when total comes first", func(t *testing.T) {
		text := "Total: $999.00\nBalance Due: $1,234.56"
		hints := ExtractHints(text)
		require.NotNil(t, hints.GrandTotal)
		assert.InDelta(t, 1234.56, *hints.GrandTotal, 1e-9)
	})

	t.Run("subtotal line does not satisfy total", func(t *testing.T) {
		text := "Subtotal: 1000.00\nTax: 80.00\nTotal: 1080.00"
		hints := ExtractHints(text)
		require.NotNil(t, hints.GrandTotal)
		assert.InDelta(t, 1080.00, *hints.GrandTotal, 1e-9)
	})

	t.Run("plain total fallback", func(t *testing.T) {
		hints := ExtractHints("Total: 480")
		require.NotNil(t, hints.GrandTotal)
		assert.InDelta(t, 480, *hints.GrandTotal, 1e-9)
	})

	t.Run("no amount", func(t *testing.T) {
		hints := ExtractHints("Total due upon receipt")
		assert.Nil(t, hints.GrandTotal)
	})
}

func TestExtractHintsNothingFound(t *testing.T) {
	hints := ExtractHints("completely unrelated prose")
	assert.Empty(t, hints.InvoiceNumber)
	assert.Empty(t, hints.IssueDate)
	assert.Empty(t, hints.ClientName)
	assert.Nil(t, hints.GrandTotal)
}
