package domain

import "math"

// RecalculateTotals recomputes every line subtotal and all invoice
// aggregates from raw quantities, prices, discounts and taxes. It is the
// single source of truth for money: submitted subtotals and totals are
// always discarded, and every path that persists or renders an invoice
// must call it.
//
// Line subtotals are rounded to 10 decimal places to suppress binary
// floating-point noise while keeping cent-level precision intact.
// Presentation rounding (2 decimals) is the renderer's job, not this one's.
func RecalculateTotals(inv *InvoiceData) {
	var subtotal, discountTotal, taxTotal float64

	for i := range inv.LineItems {
		li := &inv.LineItems[i]

		base := li.Quantity * li.UnitPrice
		liSubtotal := base * (1 - li.DiscountPct/100)
		liDiscount := base * (li.DiscountPct / 100)
		liTax := liSubtotal * (li.TaxPct / 100)

		li.Subtotal = round10(liSubtotal)

		subtotal += liSubtotal
		discountTotal += liDiscount
		taxTotal += liTax
	}

	inv.Totals = Totals{
		Subtotal:      subtotal,
		DiscountTotal: discountTotal,
		TaxTotal:      taxTotal,
		GrandTotal:    subtotal + taxTotal,
	}
}

func round10(x float64) float64 {
	return math.Round(x*1e10) / 1e10
}
