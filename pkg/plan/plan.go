package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Batch is a YAML manifest listing statement files to extract in one run.
type Batch struct {
	OutputDir  string      `yaml:"output_dir"`
	Statements []Statement `yaml:"statements"`
}

// Statement is a single statement entry of a batch.
type Statement struct {
	File  string `yaml:"file"`
	Label string `yaml:"label"`
}

// Path returns the statement file path with a leading ~ expanded.
func (s *Statement) Path() (string, error) {
	if strings.HasPrefix(s.File, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, s.File[2:]), nil
	}
	return s.File, nil
}

// Load reads a batch manifest from a YAML file.
func Load(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var b Batch
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(b.Statements) == 0 {
		return nil, fmt.Errorf("batch has no statements")
	}
	return &b, nil
}

// Print writes a human-readable preview of the batch.
func (b *Batch) Print() {
	fmt.Printf("Output dir: %s\n", b.OutputDir)
	for i, st := range b.Statements {
		fmt.Printf("[%d] file=%s label=%s\n", i+1, st.File, st.Label)
	}
}
