package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/finparse/bksparse/pkg/config"
	"github.com/finparse/bksparse/pkg/plan"
	"github.com/finparse/bksparse/pkg/service"
)

var (
	cliFilters filters
	cfgFile    string
)

var rootCmd = &cobra.Command{
	Use:   "bksparse",
	Short: "Brokerage statement extraction command-line interface",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <input_path>",
	Short: "Extract financial events from statement workbooks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		debug, _ := cmd.Flags().GetBool("debug")

		logger := newLogger(loggerLevel(cfg, debug))
		processor := NewFileProcessor(logger, &cliFilters, format, debug)

		matches, err := filepath.Glob(args[0])
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no files found matching pattern %s", args[0])
		}

		for _, match := range matches {
			fileInfo, err := os.Stat(match)
			if err != nil {
				logger.Warn("failed to stat file", "error", err, "file", match)
				continue
			}

			if fileInfo.IsDir() {
				if err := processor.ProcessDirectory(match); err != nil {
					logger.Warn("failed to process directory", "error", err, "dir", match)
				}
			} else {
				if err := processor.ProcessFile(match); err != nil {
					logger.Warn("failed to process file", "error", err, "file", match)
				}
			}
		}
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch <batch_file>",
	Short: "Extract every statement listed in a YAML batch file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Build(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		logger := newLogger(loggerLevel(cfg, false))

		b, err := plan.Load(args[0])
		if err != nil {
			return err
		}
		if b.OutputDir != "" {
			cfg.OutputDir = b.OutputDir
		}

		fmt.Printf("Batch preview for %s\n", args[0])
		b.Print()

		processor := service.NewProcessor(cfg, logger)

		okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red

		var failed int
		for _, st := range b.Statements {
			path, err := st.Path()
			if err == nil {
				err = processor.ProcessFile(path)
			}
			if err != nil {
				failed++
				fmt.Println(errStyle.Render(fmt.Sprintf("x %s : %v", st.File, err)))
				continue
			}
			fmt.Println(okStyle.Render(fmt.Sprintf("+ %s", st.File)))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d statements failed", failed, len(b.Statements))
		}
		fmt.Printf("\nBatch: all %d statement(s) processed\n", len(b.Statements))
		return nil
	},
}

// loggerLevel resolves the log level from the configuration; --debug always
// wins, unknown level names fall back to info.
func loggerLevel(cfg *config.Config, debug bool) log.Level {
	if debug {
		return log.DebugLevel
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func newLogger(level log.Level) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "bksparse",
		Level:           level,
	})
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")

	// Filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.startDate, "start", "", "Start date (YYYY/MM/DD)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.endDate, "end", "", "End date (YYYY/MM/DD)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.kind, "kind", "", "Filter by event kind")
	rootCmd.PersistentFlags().StringVar(&cliFilters.ticker, "ticker", "", "Filter by ticker (case insensitive)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.currency, "currency", "", "Filter by currency code")

	// Flags specific to the convert subcommand
	convertCmd.Flags().String("format", "json", "Output format: json or csv")
	convertCmd.Flags().Bool("debug", false, "Dump the full parsed result")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
