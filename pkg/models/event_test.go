package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTimestampJSON(t *testing.T) {
	ts := Timestamp{Time: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)}

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-03-15 10:30:00"` {
		t.Errorf("unexpected encoding: %s", data)
	}

	var back Timestamp
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(ts.Time) {
		t.Errorf("round trip lost the value: %s", back)
	}

	if err := json.Unmarshal([]byte(`"2024-03-15T10:30:00Z"`), &back); err == nil {
		t.Error("expected RFC3339 input to be rejected")
	}
}

func TestEventRecordAccessors(t *testing.T) {
	event := &Event{
		OccurredAt: Timestamp{Time: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		Kind:       KindDividend,
		Amount:     decimal.RequireFromString("1000.5"),
		Currency:   "RUB",
		Ticker:     "SBER",
	}

	if event.Date() != "2024/03/15" {
		t.Errorf("unexpected date: %s", event.Date())
	}
	if event.Label() != "dividend" {
		t.Errorf("unexpected label: %s", event.Label())
	}
	if event.Symbol() != "SBER" {
		t.Errorf("unexpected symbol: %s", event.Symbol())
	}
	if event.Money() != "1000.50" {
		t.Errorf("unexpected amount: %s", event.Money())
	}
	if event.Unit() != "RUB" {
		t.Errorf("unexpected currency: %s", event.Unit())
	}
}
