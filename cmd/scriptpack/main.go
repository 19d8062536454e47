package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	scriptsDir string
	targetDoc  string
	outputDoc  string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command. Running it with no subcommand
// performs a build, so a bare `scriptpack` in a scripts directory is the
// whole workflow.
var rootCmd = &cobra.Command{
	Use:   "scriptpack",
	Short: "scriptpack - embed Python scripts into a self-contained HTML document",
	Long: `scriptpack packages the Python scripts in a directory into a single
self-contained HTML document.

Each script's contents are base64-encoded and injected into the host
document's script section together with a loader routine that registers
them with the document's script list at startup. Scripts declare the
files they need through magic comments:

  # required_inputs: names.csv, config.json
  # derived_inputs: cleaned.csv

Run without arguments to build BrowserBox_with_scripts.html from
BrowserBox.html and ./*.py.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runBuild,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default scriptpack.yaml)")
	rootCmd.PersistentFlags().StringVar(&scriptsDir, "dir", "", "Scripts directory (default .)")
	rootCmd.PersistentFlags().StringVar(&targetDoc, "target", "", "Host document (default BrowserBox.html)")
	rootCmd.PersistentFlags().StringVar(&outputDoc, "output", "", "Output document (default BrowserBox_with_scripts.html)")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
