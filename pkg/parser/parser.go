package parser

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/finparse/bksparse/pkg/models"
	"github.com/finparse/bksparse/pkg/reader"
)

// ErrEmptyStatement is returned when the workbook yields no rows at all.
var ErrEmptyStatement = errors.New("statement has no rows")

// Parser turns the untyped rows of one brokerage statement into a canonical
// statement result: header metadata plus a date-ordered list of financial
// events. One Parser can serve many files; all scan state is per call.
type Parser struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// ProcessBytes extracts rows from raw workbook bytes (format picked by file
// extension) and parses them.
func (p *Parser) ProcessBytes(data []byte, filename string) (*models.Statement, error) {
	rows, err := reader.FromBytes(data, filename)
	if err != nil {
		return nil, fmt.Errorf("extracting rows from %s: %w", filename, err)
	}
	p.logger.Debug("extracted rows", "filename", filename, "rows", len(rows))
	return p.Parse(rows)
}

// Parse runs the cash-operations pass and the trades pass over the
// materialized row list, then merges the two event lists into one stable
// date order. A statement with zero rows is a terminal
// error; a statement where an individual section resolves nothing still
// produces a (possibly empty) result with its diagnostics populated.
func (p *Parser) Parse(rows [][]any) (*models.Statement, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyStatement
	}

	meta, cashEvents, unresolved := p.extractCashFlows(rows)
	tradeEvents, sections, skipped := p.extractTrades(rows)

	events := make([]*models.Event, 0, len(cashEvents)+len(tradeEvents))
	events = append(events, cashEvents...)
	events = append(events, tradeEvents...)

	// Stable sort keeps source order for equal dates.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].OccurredAt.Before(events[j].OccurredAt.Time)
	})

	statement := &models.Statement{
		AccountID: meta.accountID,
		Events:    events,
		Diagnostics: models.Diagnostics{
			UnresolvedOperations: unresolved,
			TradeSections:        sections,
			SkippedTradeRows:     skipped,
		},
	}
	if !meta.agreementStart.IsZero() {
		statement.AgreementStart = meta.agreementStart.Format("2006-01-02")
	}
	if !meta.periodStart.IsZero() {
		statement.PeriodStart = meta.periodStart.Format("2006-01-02")
	}
	if !meta.periodEnd.IsZero() {
		statement.PeriodEnd = meta.periodEnd.Format("2006-01-02")
	}

	p.logger.Debug("parsed statement",
		"events", len(events),
		"cash", len(cashEvents),
		"trades", len(tradeEvents),
		"sections", sections,
		"skipped_rows", skipped,
		"unresolved", len(unresolved))

	return statement, nil
}
