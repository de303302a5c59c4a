package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finparse/bksparse/pkg/models"
)

// sectionContext is the mutable state of the trades scan. It is owned by one
// Parse call for one file and never shared, so the extractor stays reentrant
// across concurrent files.
type sectionContext struct {
	section      Section
	ticker       string
	isin         string
	currencyHint string
	columns      columnMap
}

// reset starts a fresh section: everything resolved for the previous one,
// including the cached column map, is discarded.
func (c *sectionContext) reset(section Section) {
	c.section = section
	c.ticker = ""
	c.isin = ""
	c.currencyHint = ""
	c.columns = nil
}

const (
	buySide  = 0
	sellSide = 1
)

// extractTrades runs the trades block of the statement: a single forward
// pass that tracks the active instrument section, resolves each section's
// header once, and expands every trade row into zero, one or two events.
// Returns the events plus the section and skipped-row counters for
// diagnostics.
func (p *Parser) extractTrades(rows [][]any) (events []*models.Event, sections, skipped int) {
	ctx := &sectionContext{}
	inBlock := false

	for _, raw := range rows {
		// The first column of the trades block is a decoration/index
		// column; all schema positions are relative to the cell after it.
		var row []any
		if len(raw) > 0 {
			row = raw[1:]
		}

		if !inBlock {
			if strings.Contains(strings.ToLower(joinRow(row)), tradesBlockMarker) {
				inBlock = true
			}
			continue
		}

		if isTickerRow(row) {
			ctx.ticker = extractTicker(row)
			ctx.isin = extractISIN(row)
			continue
		}

		if section, ok := sectionStart(row); ok {
			ctx.reset(section)
			sections++
			continue
		}

		if isBlockEnd(row) {
			break
		}

		if ctx.section == SectionCurrency && rowContainsAny(row, []string{"сопряж"}) {
			if ticker, pair, ok := parseCurrencyPair(row); ok {
				ctx.ticker = ticker
				ctx.currencyHint = pair
				ctx.isin = ""
			}
			continue
		}

		if ctx.columns == nil && rowContainsAny(row, []string{"дата"}) {
			if ctx.section == SectionCurrency {
				if resolved, ok := resolveCurrencyHeaders(row); ok {
					ctx.columns = resolved
				}
			} else if resolved := resolveHeaders(row, tradeFieldsFor(ctx.section)); len(resolved) > 0 {
				ctx.columns = resolved
			}
			continue
		}

		if ctx.columns == nil || !isTradeDataRow(row) {
			continue
		}

		rowEvents, err := p.safeTradeRow(row, ctx)
		if err != nil {
			p.logger.Warn("skipping trade row", "section", ctx.section, "ticker", ctx.ticker, "error", err)
			skipped++
			continue
		}
		events = append(events, rowEvents...)
	}

	return events, sections, skipped
}

// safeTradeRow isolates unexpected per-row failures: a panicking row is
// reported as an error and the scan moves on to the next row.
func (p *Parser) safeTradeRow(row []any, ctx *sectionContext) (events []*models.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("trade row: %v", r)
		}
	}()
	return p.parseTradeRow(row, ctx), nil
}

// parseTradeRow evaluates the buy and sell legs of one trade row
// independently. A layout where both legs share a row legitimately yields
// two events.
func (p *Parser) parseTradeRow(row []any, ctx *sectionContext) []*models.Event {
	var events []*models.Event
	for _, side := range []int{buySide, sellSide} {
		if event := p.tradeLeg(row, ctx, side); event != nil {
			events = append(events, event)
		}
	}
	return events
}

func (p *Parser) tradeLeg(row []any, ctx *sectionContext, side int) *models.Event {
	quantity, ok := sideDecimal(row, ctx.columns, fieldQuantity, side)
	if !ok || quantity.Sign() <= 0 {
		return nil
	}

	date, ok := resolveDate(row, ctx.columns)
	if !ok {
		// A leg without a date is dropped, never emitted undated.
		p.logger.Debug("trade leg without date", "ticker", ctx.ticker, "section", ctx.section)
		return nil
	}

	price, _ := sideValue(row, ctx.columns, fieldPrice, side)
	payment, _ := sideValue(row, ctx.columns, fieldPayment, side)

	accrued := decimal.Zero
	if ctx.section == SectionBond {
		accrued, _ = sideValue(row, ctx.columns, fieldACI, side)
	}

	currency := ctx.currencyHint
	if idx, ok := ctx.columns.col(fieldCurrency); ok {
		if resolved := NormalizeCurrency(cellAt(row, idx)); resolved != "" {
			currency = resolved
		}
	}

	var comment, operationID string
	if idx, ok := ctx.columns.col(fieldComment); ok {
		comment = NormalizeString(cellAt(row, idx))
	}
	if idx, ok := ctx.columns.col(fieldOperationID); ok {
		operationID = NormalizeString(cellAt(row, idx))
	}

	isin := ctx.isin
	kind := models.KindBuy
	if side == sellSide {
		kind = models.KindSell
	}
	if ctx.section == SectionCurrency {
		// Currency pairs carry no ISIN.
		isin = ""
		kind = models.KindCurrencyBuy
		if side == sellSide {
			kind = models.KindCurrencySale
		}
	}

	return &models.Event{
		OccurredAt:      models.Timestamp{Time: date},
		Kind:            kind,
		Amount:          payment,
		Currency:        currency,
		Ticker:          ctx.ticker,
		ISIN:            isin,
		Price:           price,
		Quantity:        quantity,
		AccruedInterest: accrued,
		Note:            comment,
		OperationID:     operationID,
	}
}

// sideDecimal reads the side-specific occurrence of a repeated amount field,
// degrading to zero when that side has no resolved column or the cell is
// malformed. Used for the gating quantity field, so its strictness decides
// whether a leg exists at all.
func sideDecimal(row []any, columns columnMap, field string, side int) (decimal.Decimal, bool) {
	idx, ok := columns.side(field, side)
	if !ok {
		return decimal.Zero, false
	}
	return ParseDecimal(cellAt(row, idx))
}

// sideValue reads a side-specific value field, sharing a single resolved
// column across both legs.
func sideValue(row []any, columns columnMap, field string, side int) (decimal.Decimal, bool) {
	idx, ok := columns.valueSide(field, side)
	if !ok {
		return decimal.Zero, false
	}
	return ParseDecimal(cellAt(row, idx))
}

// resolveDate combines the row's date column with its time column, falling
// back to midnight when the time is absent or unparseable.
func resolveDate(row []any, columns columnMap) (time.Time, bool) {
	idx, ok := columns.col(fieldDate)
	if !ok {
		return time.Time{}, false
	}
	date, ok := ParseDate(cellAt(row, idx))
	if !ok {
		return time.Time{}, false
	}
	if timeIdx, ok := columns.col(fieldTime); ok {
		date = date.Add(ParseTime(cellAt(row, timeIdx)))
	}
	return date, true
}

func joinRow(row []any) string {
	parts := make([]string, 0, len(row))
	for _, cell := range row {
		if s := NormalizeString(cell); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
