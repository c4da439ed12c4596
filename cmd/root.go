package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/sporesheet-cli/internal/config"
	"github.com/KaramelBytes/sporesheet-cli/internal/extract"
	"github.com/KaramelBytes/sporesheet-cli/internal/logging"
	"github.com/KaramelBytes/sporesheet-cli/internal/stats"
	"github.com/KaramelBytes/sporesheet-cli/internal/workbook"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "sporesheet",
	Short: "Merge mold-spore lab reports into a workbook and keep its statistics current",
	Long: `sporesheet reads the outdoor reference sample out of a lab report, writes it as a
new column of a spore-count workbook and recomputes the per-row statistics block
(Total, Mean, Stdv, Frequency, Min, 5th Percentile, Median, 95th Percentile, Max, Count).`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sporesheet/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	if err := cfgpkg.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	} else {
		cfg = c
	}
	l, err := logging.New(settings().LogLevel, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		l, _ = logging.New("", debug)
	}
	logger = l
}

// settings returns the loaded config, or the defaults when none was loaded.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return cfgpkg.Defaults()
}

func workbookOptions(sheetFlag string) workbook.Options {
	s := settings()
	name := s.SheetName
	if sheetFlag != "" {
		name = sheetFlag
	}
	return workbook.Options{Sheet: name, Font: workbook.Font{Family: s.FontFamily, Size: s.FontSize}}
}

func extractOptions() extract.Options {
	return extract.Options{Markers: settings().SectionMarkers, Logger: logger}
}

func spanMode(flag string) (stats.SpanMode, error) {
	if flag != "" {
		return stats.ParseSpanMode(flag)
	}
	return stats.ParseSpanMode(settings().SpanMode)
}
