package csv

import (
	"bytes"
	"fmt"
)

// Record is the minimal shape a financial event needs to expose for tabular
// export.
type Record interface {
	Date() string
	Label() string
	Symbol() string
	Money() string
	Unit() string
}

type FilterFunc[T Record] func(T) bool

// Create renders records as CSV, applying the optional filter.
func Create[T Record](records []T, filter FilterFunc[T]) []byte {
	var buf bytes.Buffer
	buf.WriteString("Date,Kind,Ticker,Amount,Currency\n")
	for _, r := range records {
		if filter == nil || filter(r) {
			buf.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s\n",
				r.Date(),
				r.Label(),
				r.Symbol(),
				r.Money(),
				r.Unit()))
		}
	}
	return buf.Bytes()
}
