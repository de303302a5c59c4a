package parser

import "github.com/finparse/bksparse/pkg/models"

// All statement-variant knowledge lives in this file as data: which
// operation labels are recognized, how labels map to event kinds, which
// header keywords anchor which semantic columns. Supporting a new statement
// variant should be a change here, not in the scan code.

// validOperations is the closed set of cash-table labels the extractor
// accepts. Labels outside it are skipped and reported as unresolved.
var validOperations = map[string]struct{}{
	"Вознаграждение компании":               {},
	"Дивиденды":                             {},
	"НДФЛ":                                  {},
	"Погашение купона":                      {},
	"Погашение облигации":                   {},
	"Приход ДС":                             {},
	"Проценты по займам \"овернайт\"":       {},
	"Проценты по займам \"овернайт ЦБ\"":    {},
	"Частичное погашение облигации":         {},
	"Амортизация облигации":                 {},
	"Вывод ДС":                              {},
}

// skipOperations are labels that legitimately appear in the cash table but
// never yield events (they are covered by the trades block or irrelevant).
var skipOperations = map[string]struct{}{
	"Внебиржевая сделка FX (22*)": {},
	"Займы \"овернайт\"":          {},
	"НКД от операций":             {},
	"Покупка/Продажа":             {},
	"Покупка/Продажа (репо)":      {},
	"Переводы между площадками":   {},
}

// operationKinds maps labels whose kind does not depend on which amount
// column is populated.
var operationKinds = map[string]models.Kind{
	"Дивиденды":                     models.KindDividend,
	"Погашение купона":              models.KindCoupon,
	"Погашение облигации":           models.KindBondRepayment,
	"Частичное погашение облигации": models.KindBondPartialRepayment,
	"Амортизация облигации":         models.KindBondAmortization,
	"Приход ДС":                     models.KindDeposit,
	"Вывод ДС":                      models.KindWithdrawal,
}

// contextKind resolves a label whose kind depends on money direction: the
// credit kind applies when the credited column is non-zero, the debit kind
// otherwise.
type contextKind struct {
	credit models.Kind
	debit  models.Kind
}

var contextKinds = map[string]contextKind{
	"Проценты по займам \"овернайт\"":    {models.KindOtherIncome, models.KindOtherExpense},
	"Проценты по займам \"овернайт ЦБ\"": {models.KindOtherIncome, models.KindOtherExpense},
	"Вознаграждение компании":            {models.KindCommissionRefund, models.KindCommission},
	"НДФЛ":                               {models.KindTaxRefund, models.KindTaxWithholding},
}

// currencySynonyms folds statement currency spellings onto ISO-like codes.
// Keys are already uppercase; NormalizeCurrency uppercases before lookup.
var currencySynonyms = map[string]string{
	"AED": "AED", "AMD": "AMD", "BYN": "BYN", "CHF": "CHF", "CNY": "CNY",
	"EUR": "EUR", "GBP": "GBP", "HKD": "HKD", "JPY": "JPY", "KGS": "KGS",
	"KZT": "KZT", "NOK": "NOK", "RUB": "RUB", "РУБЛЬ": "RUB",
	"SEK": "SEK", "TJS": "TJS", "TRY": "TRY", "USD": "USD", "UZS": "UZS",
	"XAG": "XAG", "XAU": "XAU", "ZAR": "ZAR",
}

// isCurrencyLabel reports whether a free-standing row label switches the
// active cash currency ("РУБЛЬ", "Рубль", "USD"...). The label is normalized
// first because the cash table prints synonyms mixed-case.
func isCurrencyLabel(label string) bool {
	_, ok := currencySynonyms[NormalizeCurrency(label)]
	return ok
}

// Section is one instrument family of the trades block.
type Section string

const (
	SectionNone     Section = ""
	SectionStock    Section = "stock"
	SectionBond     Section = "bond"
	SectionCurrency Section = "currency"
)

// sectionKeywords is checked in declaration order; the first family whose
// keyword appears in a row wins.
var sectionKeywords = []struct {
	section  Section
	keywords []string
}{
	{SectionStock, []string{"акция", "адр"}},
	{SectionBond, []string{"облигация"}},
	{SectionCurrency, []string{"иностранная валюта"}},
}

// blockEndKeywords terminate the whole trades block the moment any of them
// shows up in a row, even mid-section.
var blockEndKeywords = []string{"заем", "овернайт", "цб"}

// tradesBlockMarker starts the trades scan; everything before it belongs to
// the cash/header part of the statement.
const tradesBlockMarker = "2.1. сделки:"

// fieldSpec declares one semantic column of a trade schema. Repeated fields
// occur once per trade side under near-identical labels; their matches are
// collected left to right so position 0 is always the buy side and position
// 1 the sell side.
type fieldSpec struct {
	name     string
	variants []string
	repeated bool
}

const (
	fieldQuantity    = "quantity"
	fieldPrice       = "price"
	fieldPayment     = "payment"
	fieldACI         = "aci"
	fieldDate        = "date"
	fieldTime        = "time"
	fieldCurrency    = "currency"
	fieldComment     = "comment"
	fieldOperationID = "operation_id"
)

var stockTradeFields = []fieldSpec{
	{fieldQuantity, []string{"количество"}, true},
	{fieldPrice, []string{"цена"}, true},
	{fieldPayment, []string{"сумма"}, true},
	{fieldDate, []string{"дата соверш"}, false},
	{fieldTime, []string{"время соверш"}, false},
	{fieldCurrency, []string{"валюта"}, false},
	{fieldComment, []string{"примечание", "комментарий"}, false},
	{fieldOperationID, []string{"номер сделки", "№ сделки"}, false},
}

var bondTradeFields = []fieldSpec{
	{fieldQuantity, []string{"количество"}, true},
	{fieldPrice, []string{"цена"}, true},
	{fieldPayment, []string{"сумма"}, true},
	{fieldACI, []string{"нкд"}, true},
	{fieldDate, []string{"дата соверш"}, false},
	{fieldTime, []string{"время соверш"}, false},
	{fieldCurrency, []string{"валюта"}, false},
	{fieldComment, []string{"примечание", "комментарий"}, false},
	{fieldOperationID, []string{"номер сделки", "№ сделки"}, false},
}

func tradeFieldsFor(section Section) []fieldSpec {
	switch section {
	case SectionBond:
		return bondTradeFields
	default:
		return stockTradeFields
	}
}

// Cash-table geometry is fixed across known variants: these are absolute
// column indexes into the raw row.
const (
	cashColDate      = 1
	cashColOperation = 2
	cashColCredit    = 6
	cashColDebit     = 7
	cashColPrice     = 8
	cashColQuantity  = 9
	cashNoteFrom     = 14
	cashNoteTo       = 19 // exclusive
)

// cashTableHeader are the labels that jointly identify the operations table
// header row.
var cashTableHeader = []string{"Дата", "Операция", "Сумма зачисления"}
