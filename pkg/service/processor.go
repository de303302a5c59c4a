package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/finparse/bksparse/pkg/config"
	"github.com/finparse/bksparse/pkg/models"
	"github.com/finparse/bksparse/pkg/parser"
)

// Processor walks statement files and writes one events JSON per statement.
type Processor struct {
	config *config.Config
	logger *log.Logger
	parser *parser.Parser
}

func NewProcessor(config *config.Config, logger *log.Logger) *Processor {
	return &Processor{
		config: config,
		logger: logger,
		parser: parser.New(logger),
	}
}

// ProcessDirectory extracts every statement workbook in dir. Per-file
// failures are logged and do not stop the run.
func (p *Processor) ProcessDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("error reading directory: %w", err)
	}

	for _, entry := range entries {
		if err := p.processEntry(dir, entry); err != nil {
			p.logger.Error("failed to process entry", "file", entry.Name(), "error", err)
		}
	}

	return nil
}

func (p *Processor) processEntry(dir string, entry os.DirEntry) error {
	if entry.IsDir() {
		return nil
	}

	fileName := strings.ToLower(entry.Name())
	if !strings.HasSuffix(fileName, ".xls") && !strings.HasSuffix(fileName, ".xlsx") {
		return nil
	}

	inputPath := filepath.Join(dir, entry.Name())
	return p.ProcessFile(inputPath)
}

// ProcessFile parses one statement workbook and writes the result next to it
// (or into the configured output directory).
func (p *Processor) ProcessFile(inputPath string) error {
	statement, err := p.ParseFile(inputPath)
	if err != nil {
		return err
	}

	outputPath := p.determineOutputPath(inputPath, filepath.Base(inputPath))
	if err := writeJSON(outputPath, statement); err != nil {
		return fmt.Errorf("error writing output file: %w", err)
	}

	p.logger.Info("processed file", "input", inputPath, "output", outputPath, "events", len(statement.Events))
	return nil
}

// ParseFile parses one statement workbook and returns the result without
// writing anything.
func (p *Processor) ParseFile(inputPath string) (*models.Statement, error) {
	fileBytes, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	statement, err := p.parser.ProcessBytes(fileBytes, filepath.Base(inputPath))
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}
	return statement, nil
}

func (p *Processor) determineOutputPath(inputPath, fileName string) string {
	ext := filepath.Ext(fileName)
	baseName := strings.TrimSuffix(fileName, ext)
	if p.config.OutputDir != "" {
		return filepath.Join(p.config.OutputDir, baseName+"-events.json")
	}
	return strings.TrimSuffix(inputPath, ext) + "-events.json"
}

func writeJSON(path string, statement *models.Statement) error {
	output, err := os.Create(path)
	if err != nil {
		return err
	}
	defer output.Close()

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(statement)
}
