package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a financial event extracted from a statement.
type Kind string

const (
	KindDeposit              Kind = "deposit"
	KindWithdrawal           Kind = "withdrawal"
	KindDividend             Kind = "dividend"
	KindCoupon               Kind = "coupon"
	KindBondRepayment        Kind = "bond_repayment"
	KindBondPartialRepayment Kind = "bond_partial_repayment"
	KindBondAmortization     Kind = "bond_amortization"
	KindTaxWithholding       Kind = "tax_withholding"
	KindTaxRefund            Kind = "tax_refund"
	KindCommission           Kind = "commission"
	KindCommissionRefund     Kind = "commission_refund"
	KindOtherIncome          Kind = "other_income"
	KindOtherExpense         Kind = "other_expense"
	KindBuy                  Kind = "buy"
	KindSell                 Kind = "sell"
	KindCurrencyBuy          Kind = "currency_buy"
	KindCurrencySale         Kind = "currency_sale"
	KindOther                Kind = "other"
)

// Timestamp wraps time.Time so events serialize the way statement consumers
// expect ("2006-01-02 15:04:05") instead of RFC3339.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", t.Format("2006-01-02 15:04:05"))), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp %s", s)
	}
	parsed, err := time.Parse("2006-01-02 15:04:05", s[1:len(s)-1])
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Event is one canonical financial event: a cash movement, a coupon or tax
// entry, or one leg of a securities/currency trade. Every emitted event has a
// resolved OccurredAt; rows without a parseable date never become events.
type Event struct {
	OccurredAt      Timestamp       `json:"occurred_at"`
	Kind            Kind            `json:"kind"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Ticker          string          `json:"ticker"`
	ISIN            string          `json:"isin"`
	Price           decimal.Decimal `json:"price"`
	Quantity        decimal.Decimal `json:"quantity"`
	AccruedInterest decimal.Decimal `json:"accrued_interest"`
	Note            string          `json:"note,omitempty"`
	OperationID     string          `json:"operation_id,omitempty"`
}

// Date returns the event date formatted for tabular output.
func (e *Event) Date() string {
	return e.OccurredAt.Format("2006/01/02")
}

// Label returns the kind as a plain string for tabular output.
func (e *Event) Label() string {
	return string(e.Kind)
}

// Symbol returns the instrument ticker, empty for pure cash events.
func (e *Event) Symbol() string {
	return e.Ticker
}

// Money returns the payment amount formatted with two decimal places.
func (e *Event) Money() string {
	return e.Amount.StringFixed(2)
}

// Unit returns the event currency code.
func (e *Event) Unit() string {
	return e.Currency
}
