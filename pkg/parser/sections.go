package parser

import (
	"regexp"
	"strings"
)

var (
	tickerPattern   = regexp.MustCompile(`^[A-Z]{3,}(_)?[A-Z]{3,}`)
	isinAfterLabel  = regexp.MustCompile(`ISIN[:\s]*([A-Z0-9]{12})`)
	bareISINPattern = regexp.MustCompile(`^[A-Z0-9]{12}$`)
)

// isTickerRow recognizes the identification row that precedes a run of trade
// rows: either a lone uppercase ticker in the first cell, or any cell
// carrying an "ISIN" label.
func isTickerRow(row []any) bool {
	if len(row) == 0 {
		return false
	}
	for _, cell := range row {
		if s, ok := cell.(string); ok && strings.Contains(strings.ToLower(s), "isin") {
			return true
		}
	}
	first, ok := row[0].(string)
	if !ok || !tickerPattern.MatchString(first) {
		return false
	}
	for _, cell := range row[1:] {
		if NormalizeString(cell) != "" {
			return false
		}
	}
	return true
}

// extractTicker pulls the instrument symbol out of a ticker row: the full
// first cell when it already looks like a ticker, otherwise its first
// whitespace-delimited token.
func extractTicker(row []any) string {
	if len(row) == 0 {
		return ""
	}
	first, ok := row[0].(string)
	if !ok {
		return ""
	}
	ticker := strings.TrimSpace(first)
	if tickerPattern.MatchString(ticker) {
		return ticker
	}
	if fields := strings.Fields(ticker); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// extractISIN finds the 12-character identifier in a ticker row, either
// embedded after the "ISIN" label or standing alone in the adjacent cell.
func extractISIN(row []any) string {
	for i, cell := range row {
		s, ok := cell.(string)
		if !ok || !strings.Contains(strings.ToLower(s), "isin") {
			continue
		}
		if m := isinAfterLabel.FindStringSubmatch(s); m != nil {
			return m[1]
		}
		next := strings.TrimSpace(NormalizeString(cellAt(row, i+1)))
		if bareISINPattern.MatchString(next) {
			return next
		}
	}
	return ""
}

// sectionStart reports which instrument family a row opens, if any. Families
// are checked in table order and the first match wins even when a row
// mentions several keywords.
func sectionStart(row []any) (Section, bool) {
	for _, entry := range sectionKeywords {
		if rowContainsAny(row, entry.keywords) {
			return entry.section, true
		}
	}
	return SectionNone, false
}

// isBlockEnd recognizes the marker rows (overnight loans and the like) that
// terminate the whole trades block.
func isBlockEnd(row []any) bool {
	return rowContainsAny(row, blockEndKeywords)
}

func rowContainsAny(row []any, keywords []string) bool {
	for _, cell := range row {
		s := NormalizeString(cell)
		if s == "" {
			continue
		}
		lower := strings.ToLower(s)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// parseCurrencyPair reads the paired-currency header row of a currency
// section. The synthetic ticker is the concatenation of the lot and paired
// currency codes; the paired currency becomes the section's currency hint.
func parseCurrencyPair(row []any) (ticker, pairCurrency string, ok bool) {
	var lot, pair string
	for i, cell := range row {
		s, isStr := cell.(string)
		if !isStr {
			continue
		}
		lower := strings.ToLower(s)
		if strings.Contains(lower, "валюта лота") {
			lot = NormalizeCurrency(cellAt(row, i+1))
		} else if strings.Contains(lower, "сопряж") {
			pair = NormalizeCurrency(cellAt(row, i+1))
		}
	}
	if lot == "" || pair == "" {
		return "", "", false
	}
	return lot + pair, pair, true
}

// isTradeDataRow filters out blank, total and decoration rows between real
// trade rows: a data row has a non-empty first cell, is not an "Итого"
// summary, and carries at least one numeric cell.
func isTradeDataRow(row []any) bool {
	if len(row) == 0 || NormalizeString(row[0]) == "" {
		return false
	}
	if s, ok := row[0].(string); ok && strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "итого") {
		return false
	}
	for _, cell := range row {
		switch cell.(type) {
		case float64, int, int64:
			return true
		case string:
			if _, ok := ParseDecimal(cell); ok {
				return true
			}
		}
	}
	return false
}
