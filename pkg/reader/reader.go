// Package reader extracts raw rows of untyped cells from statement
// workbooks. It is the only place that knows about spreadsheet file formats;
// the parser consumes plain [][]any and never touches a file.
package reader

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxRows bounds the scan; realistic statements run hundreds to low
// thousands of rows.
const maxRows = 10000

// FromBytes reads all rows of the first sheet of an .xls or .xlsx workbook.
func FromBytes(data []byte, filename string) ([][]any, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		return xlsRows(data)
	case ".xlsx":
		return xlsxRows(data)
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filename)
	}
}

func xlsRows(data []byte) ([][]any, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "cp1251")
	if err != nil {
		return nil, fmt.Errorf("opening xls workbook: %w", err)
	}

	cells := workbook.ReadAllCells(maxRows)
	if len(cells) == 0 {
		return nil, fmt.Errorf("no data found in sheet")
	}

	rows := make([][]any, len(cells))
	for i, row := range cells {
		rows[i] = untyped(row)
	}
	return rows, nil
}

func xlsxRows(data []byte) ([][]any, error) {
	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening xlsx workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	cells, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
	}
	if len(cells) == 0 {
		return nil, fmt.Errorf("no data found in sheet")
	}
	if len(cells) > maxRows {
		cells = cells[:maxRows]
	}

	rows := make([][]any, len(cells))
	for i, row := range cells {
		rows[i] = untyped(row)
	}
	return rows, nil
}

func untyped(row []string) []any {
	cells := make([]any, len(row))
	for i, cell := range row {
		cells[i] = cell
	}
	return cells
}
