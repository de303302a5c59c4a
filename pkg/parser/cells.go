package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Statement cells arrive untyped from the tabular reader: nil, string,
// float64/int (including spreadsheet serial dates) or native time.Time.
// Every normalizer here degrades to a neutral value instead of failing so a
// malformed cell never aborts its row.

// excelEpoch is the zero day of the 1900 date system. Day 1 maps to
// 1900-01-01; the -2 offset absorbs the fictitious 1900-02-29.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func fromSerial(serial float64) (time.Time, bool) {
	if serial <= 0 || serial >= 300000 {
		return time.Time{}, false
	}
	days := int(serial)
	frac := serial - float64(days)
	t := excelEpoch.AddDate(0, 0, days)
	return t.Add(time.Duration(frac * 24 * float64(time.Hour))), true
}

// ParseDate resolves a cell to a calendar date (time-of-day truncated).
// Accepted encodings: native time.Time, a serial date number, or text in
// dd.mm.yyyy / dd.mm.yy. The second return is false when the cell holds no
// resolvable date.
func ParseDate(cell any) (time.Time, bool) {
	switch v := cell.(type) {
	case time.Time:
		return truncate(v), true
	case float64:
		if t, ok := fromSerial(v); ok {
			return truncate(t), true
		}
	case int:
		if t, ok := fromSerial(float64(v)); ok {
			return truncate(t), true
		}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range []string{"02.01.2006", "02.01.06"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		// Serial dates come back as text from some sheet readers.
		if d, err := decimal.NewFromString(s); err == nil {
			f, _ := d.Float64()
			if t, ok := fromSerial(f); ok {
				return truncate(t), true
			}
		}
	}
	return time.Time{}, false
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseTime resolves a cell to a time-of-day offset. Unlike ParseDate it
// always yields a value: anything unresolvable is midnight, so downstream
// date+time concatenation never fails.
func ParseTime(cell any) time.Duration {
	switch v := cell.(type) {
	case time.Time:
		return clockOf(v)
	case float64:
		if t, ok := fromSerial(v); ok {
			return clockOf(t)
		}
	case int:
		if t, ok := fromSerial(float64(v)); ok {
			return clockOf(t)
		}
	case string:
		for _, layout := range []string{"15:04:05", "15:04"} {
			if t, err := time.Parse(layout, strings.TrimSpace(v)); err == nil {
				return clockOf(t)
			}
		}
	}
	return 0
}

func clockOf(t time.Time) time.Duration {
	return time.Duration(t.Hour())*time.Hour +
		time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second
}

var decimalCleaner = strings.NewReplacer(",", ".", " ", "", " ", "")

// ParseDecimal resolves a cell to a decimal amount. Text values tolerate
// comma decimal separators and embedded whitespace/thousands spacing. The
// second return reports whether the cell actually held a number, which keeps
// "zero because absent or malformed" distinguishable from a literal zero.
func ParseDecimal(cell any) (decimal.Decimal, bool) {
	switch v := cell.(type) {
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case decimal.Decimal:
		return v, true
	case string:
		s := decimalCleaner.Replace(strings.TrimSpace(v))
		if s == "" {
			return decimal.Zero, false
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return d, true
		}
	}
	return decimal.Zero, false
}

// IsNonzero reports whether a cell parses to a non-zero number. Used to pick
// which of two amount columns is populated without caring about signs.
func IsNonzero(cell any) bool {
	d, ok := ParseDecimal(cell)
	return ok && !d.IsZero()
}

// NormalizeString renders a cell as trimmed text, mapping nil to "".
func NormalizeString(cell any) string {
	if cell == nil {
		return ""
	}
	s, ok := cell.(string)
	if !ok {
		return strings.TrimSpace(stringify(cell))
	}
	return strings.TrimSpace(s)
}

func stringify(cell any) string {
	switch v := cell.(type) {
	case string:
		return v
	case float64:
		return decimal.NewFromFloat(v).String()
	case int:
		return decimal.NewFromInt(int64(v)).String()
	case time.Time:
		return v.Format("02.01.2006 15:04:05")
	case nil:
		return ""
	default:
		return ""
	}
}

// NormalizeCurrency uppercases a currency cell and folds statement spelling
// variants (Cyrillic ruble spellings and the like) onto their ISO codes.
// Unknown values pass through unchanged, so it is idempotent.
func NormalizeCurrency(cell any) string {
	s := strings.ToUpper(NormalizeString(cell))
	if iso, ok := currencySynonyms[s]; ok {
		return iso
	}
	return s
}

// cellAt indexes a ragged row, yielding nil past the end.
func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}
