package parser

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finparse/bksparse/pkg/models"
)

var (
	agreementIDPattern   = regexp.MustCompile(`Генеральное соглашение:\s*(\d+)`)
	agreementDatePattern = regexp.MustCompile(`от\s+(\d{2}\.\d{2}\.\d{4})`)
	embeddedISINPattern  = regexp.MustCompile(`\b[A-Z]{2}[A-Z0-9]{10}\b`)
)

// headerData is the document-level metadata scraped from rows above the cash
// table. Zero times mean the anchor never appeared.
type headerData struct {
	accountID      string
	agreementStart time.Time
	periodStart    time.Time
	periodEnd      time.Time
}

// extractCashFlows runs the operations-table part of the statement: header
// metadata is collected until the cash-table header row is seen, then every
// subsequent row is classified into a cash event. Labels matching no known
// operation are collected for diagnostics instead of failing the scan.
func (p *Parser) extractCashFlows(rows [][]any) (headerData, []*models.Event, []string) {
	var meta headerData
	var events []*models.Event
	unresolved := map[string]struct{}{}

	currency := ""
	inTable := false

	for _, row := range rows {
		rowText := joinRow(sliceFrom(row, 1))
		if rowText == "" {
			continue
		}

		// The trades block is owned by the trade pass.
		if strings.Contains(strings.ToLower(rowText), tradesBlockMarker) {
			break
		}

		if isCurrencyLabel(rowText) {
			currency = NormalizeCurrency(rowText)
			continue
		}

		if isCashTableHeader(rowText) {
			inTable = true
			continue
		}

		if !inTable {
			parseHeaderMeta(rowText, &meta)
			continue
		}

		label := NormalizeString(cellAt(row, cashColOperation))
		if label == "" {
			continue
		}
		if _, skip := skipOperations[label]; skip {
			continue
		}
		if _, known := validOperations[label]; !known {
			if looksLikeLabel(label) {
				unresolved[label] = struct{}{}
			}
			continue
		}

		if event := p.cashEvent(row, label, currency); event != nil {
			events = append(events, event)
		}
	}

	return meta, events, sortedKeys(unresolved)
}

// cashEvent builds one event from an operations-table row. Rows without a
// resolvable date yield nothing.
func (p *Parser) cashEvent(row []any, label, currency string) *models.Event {
	date, ok := ParseDate(cellAt(row, cashColDate))
	if !ok {
		p.logger.Debug("cash row without date", "operation", label)
		return nil
	}

	credit := cellAt(row, cashColCredit)
	debit := cellAt(row, cashColDebit)

	// Credited amount wins when both columns are populated.
	amount := decimal.Zero
	if IsNonzero(credit) {
		amount, _ = ParseDecimal(credit)
	} else {
		amount, _ = ParseDecimal(debit)
	}

	price, _ := ParseDecimal(cellAt(row, cashColPrice))
	quantity, _ := ParseDecimal(cellAt(row, cashColQuantity))

	note := assembleNote(row)

	return &models.Event{
		OccurredAt: models.Timestamp{Time: date},
		Kind:       classifyOperation(label, credit, debit),
		Amount:     amount,
		Currency:   NormalizeCurrency(currency),
		ISIN:       embeddedISINPattern.FindString(note),
		Price:      price,
		Quantity:   quantity,
		Note:       note,
	}
}

// classifyOperation resolves a cash operation label to an event kind. The
// literal Purchase/Sale substrings are rare fallback labels inside the cash
// table; direction-dependent labels pick their kind from whichever amount
// column is populated.
func classifyOperation(label string, credit, debit any) models.Kind {
	if strings.Contains(label, "Покупка") {
		return models.KindBuy
	}
	if strings.Contains(label, "Продажа") {
		return models.KindSell
	}
	if ck, ok := contextKinds[label]; ok {
		if IsNonzero(credit) {
			return ck.credit
		}
		return ck.debit
	}
	if kind, ok := operationKinds[label]; ok {
		return kind
	}
	return models.KindOther
}

// parseHeaderMeta scrapes the fixed label anchors found above the cash
// table: the master agreement line and the statement period line.
func parseHeaderMeta(rowText string, meta *headerData) {
	if strings.Contains(rowText, "Генеральное соглашение:") {
		if m := agreementIDPattern.FindStringSubmatch(rowText); m != nil {
			meta.accountID = m[1]
		}
		if m := agreementDatePattern.FindStringSubmatch(rowText); m != nil {
			if date, ok := ParseDate(m[1]); ok {
				meta.agreementStart = date
			}
		}
		return
	}

	if strings.Contains(rowText, "Период:") && strings.Contains(rowText, "по") {
		fields := strings.Fields(rowText)
		for i, field := range fields {
			if i+1 >= len(fields) {
				break
			}
			switch field {
			case "с":
				if date, ok := ParseDate(fields[i+1]); ok {
					meta.periodStart = date
				}
			case "по":
				if date, ok := ParseDate(fields[i+1]); ok {
					meta.periodEnd = date
				}
			}
		}
	}
}

func isCashTableHeader(rowText string) bool {
	for _, label := range cashTableHeader {
		if !strings.Contains(rowText, label) {
			return false
		}
	}
	return true
}

// assembleNote concatenates the fixed trailing comment columns of a cash
// row.
func assembleNote(row []any) string {
	var parts []string
	for idx := cashNoteFrom; idx < cashNoteTo; idx++ {
		if s := NormalizeString(cellAt(row, idx)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// looksLikeLabel filters dates, amounts and ISIN-shaped tokens out of the
// unresolved-label diagnostics so they only carry genuine operation names.
func looksLikeLabel(label string) bool {
	if _, ok := ParseDecimal(label); ok {
		return false
	}
	if _, ok := ParseDate(label); ok {
		return false
	}
	return !bareISINPattern.MatchString(label)
}

func sliceFrom(row []any, idx int) []any {
	if idx >= len(row) {
		return nil
	}
	return row[idx:]
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	// Deterministic diagnostics output.
	sort.Strings(keys)
	return keys
}
