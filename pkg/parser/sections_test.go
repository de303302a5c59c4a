package parser

import "testing"

func TestIsTickerRow(t *testing.T) {
	tests := []struct {
		name string
		row  []any
		want bool
	}{
		{"isin label", row("AAPL", "ISIN: US0378331005"), true},
		{"lone uppercase pair ticker", row("USDRUB_TOM", "", ""), true},
		{"pair ticker with trailing data", row("USDRUB_TOM", "10"), false},
		{"plain data row", row("15.03.2024", "Дивиденды"), false},
		{"empty row", row(), false},
	}

	for _, tt := range tests {
		if got := isTickerRow(tt.row); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestExtractTicker(t *testing.T) {
	tests := []struct {
		name string
		row  []any
		want string
	}{
		{"pair ticker kept whole", row("USDRUB_TOM"), "USDRUB_TOM"},
		{"first token of description", row("SBER ао, Сбербанк"), "SBER"},
		{"empty first cell", row("", "ISIN: RU0009029540"), ""},
	}

	for _, tt := range tests {
		if got := extractTicker(tt.row); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestExtractISIN(t *testing.T) {
	tests := []struct {
		name string
		row  []any
		want string
	}{
		{"embedded after label", row("AAPL", "ISIN: US0378331005"), "US0378331005"},
		{"in adjacent cell", row("SBER", "ISIN", "RU0009029540"), "RU0009029540"},
		{"label without code", row("SBER", "ISIN"), ""},
		{"no label", row("SBER", "RU0009029540"), ""},
	}

	for _, tt := range tests {
		if got := extractISIN(tt.row); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestSectionStart(t *testing.T) {
	tests := []struct {
		name    string
		row     []any
		section Section
		ok      bool
	}{
		{"stock", row("Сбербанк ПАО, акция обыкновенная"), SectionStock, true},
		{"adr counts as stock", row("TCS Group, АДР"), SectionStock, true},
		{"bond", row("ОФЗ 26238, облигация"), SectionBond, true},
		{"currency", row("Иностранная валюта"), SectionCurrency, true},
		{"declaration order wins", row("акция или облигация"), SectionStock, true},
		{"no keyword", row("Дата", "Операция"), SectionNone, false},
	}

	for _, tt := range tests {
		section, ok := sectionStart(tt.row)
		if ok != tt.ok || section != tt.section {
			t.Errorf("%s: expected (%q, %v), got (%q, %v)", tt.name, tt.section, tt.ok, section, ok)
		}
	}
}

func TestIsBlockEnd(t *testing.T) {
	tests := []struct {
		row  []any
		want bool
	}{
		{row("Займы \"овернайт\""), true},
		{row("", "Заем ценных бумаг"), true},
		{row("Сделки РЕПО с ЦБ"), true},
		{row("Иностранная валюта"), false},
		{row("15.03.2024", "10"), false},
	}

	for _, tt := range tests {
		if got := isBlockEnd(tt.row); got != tt.want {
			t.Errorf("isBlockEnd(%v): expected %v, got %v", tt.row, tt.want, got)
		}
	}
}

func TestParseCurrencyPair(t *testing.T) {
	ticker, pair, ok := parseCurrencyPair(row("Валюта лота:", "USD", "Сопряженная валюта:", "РУБЛЬ"))
	if !ok {
		t.Fatal("expected pair row to parse")
	}
	if ticker != "USDRUB" {
		t.Errorf("expected ticker USDRUB, got %q", ticker)
	}
	if pair != "RUB" {
		t.Errorf("expected pair currency RUB, got %q", pair)
	}

	if _, _, ok := parseCurrencyPair(row("Сопряженная валюта:", "РУБЛЬ")); ok {
		t.Error("expected failure without a lot currency")
	}
}

func TestIsTradeDataRow(t *testing.T) {
	tests := []struct {
		name string
		row  []any
		want bool
	}{
		{"numeric string cells", row("15.03.2024", "T-1", "10", "250,5"), true},
		{"native numeric cell", row("15.03.2024", 10.0), true},
		{"total row", row("Итого по SBER:", "100"), false},
		{"empty first cell", row("", "10"), false},
		{"no numbers", row("Дата", "Номер"), false},
	}

	for _, tt := range tests {
		if got := isTradeDataRow(tt.row); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
