// Package analyzer scans raw invoice text for best-effort metadata hints.
// Everything here is advisory: a pattern miss omits the field and never
// blocks the pipeline.
package analyzer

import (
	"regexp"
	"strconv"
	"strings"

	"invoicerag/internal/domain"
)

// Pattern order is semantically significant: the first match wins, so the
// specific forms come before the generic ones (e.g. "balance due" is
// preferred over a bare "total").
var (
	invoiceNumberPattern = regexp.MustCompile(`(?i)invoice\s*(?:no\.?|number|#)\s*[:#]?\s*([\w][\w\-/]*)`)
	bareNumberPattern    = regexp.MustCompile(`(?m)^\s*#\s*([\w][\w\-/]*)`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`),
	}

	billToPattern = regexp.MustCompile(`(?i)bill(?:ed)?\s*to\s*[:\-]?[ \t]*([^\n]*)`)
	// Labels that end a same-line "Bill To: Acme Corp   Invoice #42" layout.
	clientStopPattern = regexp.MustCompile(`(?i)\s{2,}|\t|\b(?:invoice|date|due|ship\s*to|p\.?o\.?\s*(?:number|#))\b`)

	// Keyword preference is positional in this list, not in the text: a
	// "Balance Due" line wins even when a bare "Total" appears before it.
	// The \b anchors keep "total" from matching inside "Subtotal".
	grandTotalPatterns = []*regexp.Regexp{
		totalPattern(`balance\s*due`),
		totalPattern(`grand\s*total`),
		totalPattern(`total\s*due`),
		totalPattern(`amount\s*due`),
		totalPattern(`total`),
	}
)

func totalPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + keyword + `)\b\s*[:\s]\s*\$?\s*([\d,]+(?:\.\d+)?)`)
}

// ExtractHints scans text for invoice number, issue date, client name and
// grand total. Any field whose pattern does not match is simply left unset.
func ExtractHints(text string) domain.MetadataHints {
	var hints domain.MetadataHints

	if m := invoiceNumberPattern.FindStringSubmatch(text); m != nil {
		hints.InvoiceNumber = strings.TrimSpace(m[1])
	} else if m := bareNumberPattern.FindStringSubmatch(text); m != nil {
		hints.InvoiceNumber = strings.TrimSpace(m[1])
	}

	for _, p := range datePatterns {
		if m := p.FindString(text); m != "" {
			// The literal matched substring, no calendar validation.
			hints.IssueDate = m
			break
		}
	}

	hints.ClientName = extractClientName(text)

	for _, p := range grandTotalPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			raw := strings.ReplaceAll(m[1], ",", "")
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				hints.GrandTotal = &v
			}
			break
		}
	}

	return hints
}

// extractClientName finds text following a "bill to" label. Two-column
// layouts put the name on the next line, so that is preferred; otherwise
// the same-line remainder is truncated before the next recognized label.
func extractClientName(text string) string {
	loc := billToPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return ""
	}

	// In a two-column layout the same line holds the other column's label,
	// which truncates away to nothing; the name then sits on the next line.
	if name := truncateAtLabel(strings.TrimSpace(text[loc[2]:loc[3]])); name != "" {
		return name
	}

	rest := text[loc[1]:]
	for _, line := range strings.Split(rest, "\n") {
		if name := truncateAtLabel(strings.TrimSpace(line)); name != "" {
			return name
		}
	}
	return ""
}

func truncateAtLabel(s string) string {
	if loc := clientStopPattern.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
	}
	return strings.TrimSpace(s)
}
