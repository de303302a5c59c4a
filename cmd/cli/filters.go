package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"

	"github.com/finparse/bksparse/pkg/csv"
	"github.com/finparse/bksparse/pkg/models"
	"github.com/finparse/bksparse/pkg/parser"
)

type filters struct {
	startDate string
	endDate   string
	kind      string
	ticker    string
	currency  string
}

func (f *filters) toFilterFunc() csv.FilterFunc[*models.Event] {
	return func(e *models.Event) bool {
		if f.startDate != "" {
			start, _ := time.Parse("2006/01/02", f.startDate)
			if e.OccurredAt.Before(start) {
				return false
			}
		}
		if f.endDate != "" {
			end, _ := time.Parse("2006/01/02", f.endDate)
			if e.OccurredAt.After(end.Add(24*time.Hour - time.Second)) {
				return false
			}
		}
		if f.kind != "" && string(e.Kind) != f.kind {
			return false
		}
		if f.ticker != "" && !strings.EqualFold(e.Ticker, f.ticker) {
			return false
		}
		if f.currency != "" && !strings.EqualFold(e.Currency, f.currency) {
			return false
		}
		return true
	}
}

// apply keeps only events passing the filter; the statement is modified in
// place.
func (f *filters) apply(statement *models.Statement) {
	keep := f.toFilterFunc()
	filtered := statement.Events[:0]
	for _, e := range statement.Events {
		if keep(e) {
			filtered = append(filtered, e)
		}
	}
	statement.Events = filtered
}

type FileProcessor struct {
	logger  *log.Logger
	parser  *parser.Parser
	filters *filters
	format  string
	debug   bool
}

func NewFileProcessor(logger *log.Logger, filters *filters, format string, debug bool) *FileProcessor {
	return &FileProcessor{
		logger:  logger,
		parser:  parser.New(logger),
		filters: filters,
		format:  format,
		debug:   debug,
	}
}

func (p *FileProcessor) ProcessDirectory(inputDir string) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := strings.ToLower(entry.Name())
		if !strings.HasSuffix(name, ".xls") && !strings.HasSuffix(name, ".xlsx") {
			continue
		}

		if err := p.ProcessFile(filepath.Join(inputDir, entry.Name())); err != nil {
			p.logger.Warn("error processing file", "error", err)
		}
	}

	return nil
}

// ProcessFile parses one statement and prints the filtered result to stdout.
func (p *FileProcessor) ProcessFile(inputPath string) error {
	fileBytes, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	statement, err := p.parser.ProcessBytes(fileBytes, filepath.Base(inputPath))
	if err != nil {
		return fmt.Errorf("failed to process file: %w", err)
	}

	p.filters.apply(statement)

	if p.debug {
		pp.Println(statement)
		return nil
	}

	if p.format == "csv" {
		fmt.Print(string(csv.Create(statement.Events, nil)))
		return nil
	}

	encoded, err := json.MarshalIndent(statement, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}
