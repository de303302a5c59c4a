package models

// Diagnostics carries the non-fatal findings of one extraction: operation
// labels that matched no known classification, how many trade sections were
// scanned and how many trade rows had to be skipped. A statement that parses
// to zero events can be diagnosed from these counters.
type Diagnostics struct {
	UnresolvedOperations []string `json:"unresolved_operations,omitempty"`
	TradeSections        int      `json:"trade_sections"`
	SkippedTradeRows     int      `json:"skipped_trade_rows"`
}

// Statement is the full result of parsing one brokerage statement file:
// header metadata plus the merged, date-ordered event list.
type Statement struct {
	AccountID      string      `json:"account_id,omitempty"`
	AgreementStart string      `json:"agreement_start,omitempty"`
	PeriodStart    string      `json:"period_start,omitempty"`
	PeriodEnd      string      `json:"period_end,omitempty"`
	Events         []*Event    `json:"events"`
	Diagnostics    Diagnostics `json:"diagnostics"`
}
