package parser

import (
	"testing"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/finparse/bksparse/pkg/models"
)

// traderow prepends the statement's decoration column that the trade scan
// strips.
func traderow(cells ...any) []any {
	return append([]any{""}, cells...)
}

var stockHeader = traderow(
	"Дата", "Номер сделки",
	"Количество", "Цена", "Сумма платежа",
	"Количество", "Цена", "Сумма выручки",
	"Валюта цены", "Дата соверш.", "Время соверш.", "Примечание",
)

func assertEvent(t *testing.T, event *models.Event, kind models.Kind, occurredAt, ticker, amount string) {
	t.Helper()
	if event.Kind != kind {
		t.Errorf("expected kind %s, got %s", kind, event.Kind)
	}
	if got := event.OccurredAt.Format("2006-01-02 15:04:05"); got != occurredAt {
		t.Errorf("expected occurred_at %s, got %s", occurredAt, got)
	}
	if event.Ticker != ticker {
		t.Errorf("expected ticker %q, got %q", ticker, event.Ticker)
	}
	if !event.Amount.Equal(decimal.RequireFromString(amount)) {
		t.Errorf("expected amount %s, got %s", amount, event.Amount)
	}
}

func TestExtractTradesStockSection(t *testing.T) {
	rows := [][]any{
		traderow("2.1. Сделки:"),
		traderow("Сбербанк ПАО, акция обыкновенная"),
		traderow("SBER ао", "ISIN: RU0009029540"),
		stockHeader,
		traderow("14.03.2024", "T-100", "10", "250,5", "2505", "", "", "", "Рубль", "15.03.2024", "10:30:00", "брокерская сделка"),
	}

	p := New(log.Default())
	events, sections, skipped := p.extractTrades(rows)

	if sections != 1 || skipped != 0 {
		t.Fatalf("expected 1 section and 0 skipped rows, got %d/%d", sections, skipped)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	assertEvent(t, event, models.KindBuy, "2024-03-15 10:30:00", "SBER", "2505")
	if event.ISIN != "RU0009029540" {
		t.Errorf("expected ISIN RU0009029540, got %q", event.ISIN)
	}
	if !event.Price.Equal(decimal.RequireFromString("250.5")) {
		t.Errorf("expected price 250.5, got %s", event.Price)
	}
	if !event.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected quantity 10, got %s", event.Quantity)
	}
	if event.Currency != "RUB" {
		t.Errorf("expected currency RUB, got %q", event.Currency)
	}
	if event.OperationID != "T-100" {
		t.Errorf("expected operation id T-100, got %q", event.OperationID)
	}
	if event.Note != "брокерская сделка" {
		t.Errorf("expected note to carry the comment cell, got %q", event.Note)
	}
}

func TestExtractTradesBothLegsOneRow(t *testing.T) {
	rows := [][]any{
		traderow("2.1. Сделки:"),
		traderow("Сбербанк ПАО, акция обыкновенная"),
		traderow("SBER ао", "ISIN: RU0009029540"),
		stockHeader,
		traderow("14.03.2024", "T-101", "5", "100", "500", "7", "101", "707", "RUB", "16.03.2024", "", ""),
	}

	p := New(log.Default())
	events, _, _ := p.extractTrades(rows)

	if len(events) != 2 {
		t.Fatalf("expected buy and sell legs, got %d events", len(events))
	}
	assertEvent(t, events[0], models.KindBuy, "2024-03-16 00:00:00", "SBER", "500")
	assertEvent(t, events[1], models.KindSell, "2024-03-16 00:00:00", "SBER", "707")
	if !events[1].Price.Equal(decimal.RequireFromString("101")) {
		t.Errorf("sell leg resolved wrong price: %s", events[1].Price)
	}
}

func TestExtractTradesSingleSidedHeader(t *testing.T) {
	rows := [][]any{
		traderow("2.1. Сделки:"),
		traderow("Сбербанк ПАО, акция обыкновенная"),
		traderow("SBER ао", "ISIN: RU0009029540"),
		traderow("Дата", "Номер сделки", "Количество", "Цена", "Сумма платежа", "Валюта цены", "Дата соверш."),
		traderow("14.03.2024", "T-110", "10", "250", "2500", "RUB", "15.03.2024"),
	}

	p := New(log.Default())
	events, _, _ := p.extractTrades(rows)

	// A header carrying only one column set describes one leg; it must not
	// be mirrored into a sell event.
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(events))
	}
	assertEvent(t, events[0], models.KindBuy, "2024-03-15 00:00:00", "SBER", "2500")
	if !events[0].Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected quantity 10, got %s", events[0].Quantity)
	}
}

func TestExtractTradesZeroQuantities(t *testing.T) {
	rows := [][]any{
		traderow("2.1. Сделки:"),
		traderow("Сбербанк ПАО, акция обыкновенная"),
		traderow("SBER ао", "ISIN: RU0009029540"),
		stockHeader,
		traderow("14.03.2024", "T-102", "0", "250", "0", "0", "250", "0", "RUB", "15.03.2024", "", ""),
	}

	p := New(log.Default())
	events, _, _ := p.extractTrades(rows)
	if len(events) != 0 {
		t.Fatalf("expected no events for zero quantities, got %d", len(events))
	}
}

func TestExtractTradesDropsUndatedRows(t *testing.T) {
	rows := [][]any{
		traderow("2.1. Сделки:"),
		traderow("Сбербанк ПАО, акция обыкновенная"),
		traderow("SBER ао", "ISIN: RU0009029540"),
		stockHeader,
		traderow("14.03.2024", "T-103", "3", "10", "30", "", "", "", "RUB", "", "", ""),
	}

	p := New(log.Default())
	events, _, _ := p.extractTrades(rows)
	if len(events) != 0 {
		t.Fatalf("expected undated row to be dropped, got %d events", len(events))
	}
}

func TestExtractTradesBondAccruedInterest(t *testing.T) {
	rows := [][]any{
		traderow("2.1. Сделки:"),
		traderow("ОФЗ 26238, облигация"),
		traderow("ОФЗ 26238", "ISIN", "RU000A1038V6"),
		traderow(
			"Дата", "Номер сделки",
			"Количество", "Цена", "Сумма платежа", "НКД покупки",
			"Количество", "Цена", "Сумма выручки", "НКД продажи",
			"Валюта цены", "Дата соверш.",
		),
		traderow("31.05.2024", "B-1", "10", "98,5", "985", "12,3", "", "", "", "", "RUB", "01.06.2024"),
	}

	p := New(log.Default())
	events, _, _ := p.extractTrades(rows)

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event := events[0]
	assertEvent(t, event, models.KindBuy, "2024-06-01 00:00:00", "ОФЗ", "985")
	if !event.Price.Equal(decimal.RequireFromString("98.5")) {
		t.Errorf("expected price 98.5, got %s", event.Price)
	}
	if !event.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected quantity 10, got %s", event.Quantity)
	}
	if !event.AccruedInterest.Equal(decimal.RequireFromString("12.3")) {
		t.Errorf("expected accrued interest 12.3, got %s", event.AccruedInterest)
	}
	if event.ISIN != "RU000A1038V6" {
		t.Errorf("expected ISIN from adjacent cell, got %q", event.ISIN)
	}
}

func TestExtractTradesCurrencySection(t *testing.T) {
	rows := [][]any{
		traderow("2.1. Сделки:"),
		traderow("Иностранная валюта"),
		traderow("Валюта лота:", "USD", "Сопряженная валюта:", "РУБЛЬ"),
		traderow(
			"Дата", "Номер сделки",
			"Курс сделки (покупка)", "Количество", "Сумма",
			"Курс сделки (продажа)", "Количество", "Сумма",
			"Дата совершения", "Время совершения",
		),
		traderow("16.03.2024", "D-77", "77,25", "1000", "77250", "", "", "", "16.03.2024", "11:00"),
		traderow("17.03.2024", "D-78", "", "", "", "78,1", "500", "39050", "17.03.2024", ""),
	}

	p := New(log.Default())
	events, sections, _ := p.extractTrades(rows)

	if sections != 1 {
		t.Fatalf("expected 1 section, got %d", sections)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	buy := events[0]
	assertEvent(t, buy, models.KindCurrencyBuy, "2024-03-16 11:00:00", "USDRUB", "77250")
	if buy.Currency != "RUB" {
		t.Errorf("expected currency hint RUB, got %q", buy.Currency)
	}
	if buy.ISIN != "" {
		t.Errorf("currency events carry no ISIN, got %q", buy.ISIN)
	}
	if !buy.Price.Equal(decimal.RequireFromString("77.25")) {
		t.Errorf("expected rate 77.25, got %s", buy.Price)
	}
	if buy.OperationID != "D-77" {
		t.Errorf("expected operation id D-77, got %q", buy.OperationID)
	}

	sale := events[1]
	assertEvent(t, sale, models.KindCurrencySale, "2024-03-17 00:00:00", "USDRUB", "39050")
	if !sale.Quantity.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected quantity 500, got %s", sale.Quantity)
	}
}

func TestExtractTradesBlockEndHaltsScan(t *testing.T) {
	rows := [][]any{
		traderow("2.1. Сделки:"),
		traderow("Сбербанк ПАО, акция обыкновенная"),
		traderow("SBER ао", "ISIN: RU0009029540"),
		stockHeader,
		traderow("14.03.2024", "T-100", "10", "250,5", "2505", "", "", "", "RUB", "15.03.2024", "", ""),
		traderow("Займы \"овернайт\""),
		traderow("14.03.2024", "T-200", "4", "10", "40", "", "", "", "RUB", "15.03.2024", "", ""),
	}

	p := New(log.Default())
	events, _, _ := p.extractTrades(rows)

	if len(events) != 1 {
		t.Fatalf("expected scan to halt at the overnight marker, got %d events", len(events))
	}
	if events[0].OperationID != "T-100" {
		t.Errorf("expected only the pre-marker trade, got %q", events[0].OperationID)
	}
}

func TestExtractTradesSectionChangeResetsContext(t *testing.T) {
	rows := [][]any{
		traderow("2.1. Сделки:"),
		traderow("Сбербанк ПАО, акция обыкновенная"),
		traderow("SBER ао", "ISIN: RU0009029540"),
		stockHeader,
		traderow("14.03.2024", "T-100", "10", "250,5", "2505", "", "", "", "RUB", "15.03.2024", "", ""),
		traderow("Иностранная валюта"),
		// The stock column map must not leak into the new section: without a
		// resolved currency header this row yields nothing.
		traderow("16.03.2024", "D-1", "77,25", "1000", "77250", "", "", "", "16.03.2024", "11:00"),
	}

	p := New(log.Default())
	events, sections, _ := p.extractTrades(rows)

	if sections != 2 {
		t.Fatalf("expected 2 sections, got %d", sections)
	}
	if len(events) != 1 {
		t.Fatalf("expected only the stock event, got %d", len(events))
	}
	if events[0].Ticker != "SBER" {
		t.Errorf("expected SBER event, got %q", events[0].Ticker)
	}
}

func TestSafeTradeRowIsolatesPanics(t *testing.T) {
	p := New(log.Default())
	if _, err := p.safeTradeRow(row("10"), nil); err == nil {
		t.Fatal("expected a recovered panic to surface as an error")
	}
}
