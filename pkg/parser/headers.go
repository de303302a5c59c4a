package parser

import "strings"

// columnMap is the result of resolving one header row: semantic field name
// to the column position(s) carrying it. Repeated fields hold their matches
// in header order, so index 0 is the buy-side occurrence and index 1 the
// sell-side occurrence. That positional convention is relied on by the trade
// extractor and must not be reordered.
type columnMap map[string][]int

// col returns the single (or first) column resolved for a field.
func (m columnMap) col(field string) (int, bool) {
	cols, ok := m[field]
	if !ok || len(cols) == 0 {
		return 0, false
	}
	return cols[0], true
}

// side returns the buy-side (side 0) or sell-side (side 1) occurrence of a
// repeated field. The lookup is strict: a field resolved fewer times than
// the requested side is absent for that side, so a single-occurrence
// quantity column can never mint a second trade leg.
func (m columnMap) side(field string, side int) (int, bool) {
	cols, ok := m[field]
	if !ok || side >= len(cols) {
		return 0, false
	}
	return cols[side], true
}

// valueSide is side with a shared-column fallback: a value field (price,
// payment, accrued interest) that resolved to a single column serves both
// legs. Gating fields must use side directly.
func (m columnMap) valueSide(field string, side int) (int, bool) {
	if idx, ok := m.side(field, side); ok {
		return idx, true
	}
	if cols := m[field]; len(cols) == 1 {
		return cols[0], true
	}
	return 0, false
}

// resolveHeaders maps a header row onto a trade schema. Matching is
// case-insensitive substring comparison against each field's label variants;
// a field with no match is simply absent from the result, which consumers
// treat the same as an empty cell. Resolution happens once per section and
// the result is cached in the section context.
func resolveHeaders(row []any, fields []fieldSpec) columnMap {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = strings.ToLower(NormalizeString(cell))
	}

	resolved := make(columnMap, len(fields))
	for _, field := range fields {
		for idx, cell := range cells {
			if cell == "" || !matchesAny(cell, field.variants) {
				continue
			}
			resolved[field.name] = append(resolved[field.name], idx)
			if !field.repeated {
				break
			}
		}
	}
	return resolved
}

func matchesAny(cell string, variants []string) bool {
	for _, v := range variants {
		if strings.Contains(cell, strings.ToLower(v)) {
			return true
		}
	}
	return false
}

// resolveCurrencyHeaders handles the currency-section header, which has no
// per-side label distinction: the buy and sell rate columns are anchored by
// the composite "курс сделки" + side labels, and quantity/payment sit at the
// next two positions after each rate column.
func resolveCurrencyHeaders(row []any) (columnMap, bool) {
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = strings.ToLower(NormalizeString(cell))
	}

	buyRate, sellRate := -1, -1
	dateCol, timeCol := -1, -1
	for idx, cell := range cells {
		switch {
		case strings.Contains(cell, "курс сделки") && strings.Contains(cell, "покупка"):
			if buyRate < 0 {
				buyRate = idx
			}
		case strings.Contains(cell, "курс сделки") && strings.Contains(cell, "продажа"):
			if sellRate < 0 {
				sellRate = idx
			}
		case strings.HasPrefix(cell, "дата соверш"):
			dateCol = idx
		case strings.HasPrefix(cell, "время соверш"):
			timeCol = idx
		}
	}
	if buyRate < 0 || sellRate < 0 || dateCol < 0 {
		return nil, false
	}

	resolved := columnMap{
		fieldPrice:       {buyRate, sellRate},
		fieldQuantity:    {buyRate + 1, sellRate + 1},
		fieldPayment:     {buyRate + 2, sellRate + 2},
		fieldDate:        {dateCol},
		fieldOperationID: {1},
	}
	if timeCol >= 0 {
		resolved[fieldTime] = []int{timeCol}
	}
	return resolved, true
}
