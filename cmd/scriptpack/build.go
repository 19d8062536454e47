package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scriptpack/internal/config"
	"scriptpack/internal/jscheck"
	"scriptpack/internal/pack"
	"scriptpack/internal/patch"
)

var buildCheck bool

// buildCmd runs the full pipeline. The root command delegates here so
// `scriptpack` and `scriptpack build` behave identically.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed scripts into the host document and write the output file",
	Long: `Scans the scripts directory, parses magic comments, base64-encodes each
script, splices the data and loader into the host document, and writes
the result. The original document is never modified.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().BoolVar(&buildCheck, "check", true, "Compile-check the patched document's JavaScript")
}

// loadSettings merges config file, environment, and flags
// (flags win).
func loadSettings() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if scriptsDir != "" {
		cfg.Scripts.Dir = scriptsDir
	}
	if targetDoc != "" {
		cfg.Document.Target = targetDoc
	}
	if outputDoc != "" {
		cfg.Document.Output = outputDoc
	}
	return cfg, nil
}

// buildResult is what one pipeline pass produced.
type buildResult struct {
	Records []pack.Record
	Report  patch.Report
	Doc     string // patched document text, empty when nothing was built
}

// buildOnce runs the pipeline: scan, patch, optionally compile-check,
// and write the output file. With zero discovered scripts it returns an
// empty result and writes nothing.
func buildOnce(cfg *config.Config, check, write bool, logger *zap.Logger) (*buildResult, error) {
	// The host document must exist before anything else happens.
	if _, err := os.Stat(cfg.Document.Target); err != nil {
		if os.IsNotExist(err) {
			fmt.Printf("Error: %s not found in current directory\n", cfg.Document.Target)
		}
		return nil, fmt.Errorf("target document %s: %w", cfg.Document.Target, err)
	}

	scanner := pack.NewScanner(cfg.Scripts.Dir, cfg.Scripts.Extension, cfg.Scripts.Exclude, logger)
	records, err := scanner.Scan()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		fmt.Printf("Collected: %s (required_inputs: %v, derived_inputs: %v)\n",
			rec.Name, rec.RequiredInputs, rec.DerivedInputs)
	}

	if len(records) == 0 {
		fmt.Println("No Python scripts found to embed")
		return &buildResult{}, nil
	}

	raw, err := os.ReadFile(cfg.Document.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", cfg.Document.Target, err)
	}

	patcher := patch.NewPatcher(logger)
	patched, report, err := patcher.Apply(string(raw), records)
	if err != nil {
		return nil, err
	}
	if !report.DataInjected {
		fmt.Printf("Warning: script data anchor not found in %s; output is missing the embedded scripts\n", cfg.Document.Target)
	}
	if !report.CallInjected {
		fmt.Printf("Warning: loader call anchor not found in %s; embedded scripts will never load\n", cfg.Document.Target)
	}
	if !report.DataInjected && !report.CallInjected {
		return nil, fmt.Errorf("no injection anchors found in %s", cfg.Document.Target)
	}

	if check {
		if err := jscheck.CheckDocument(cfg.Document.Target, patched); err != nil {
			return nil, fmt.Errorf("patched document failed verification: %w", err)
		}
	}

	result := &buildResult{Records: records, Report: report, Doc: patched}
	if !write {
		return result, nil
	}

	if err := os.WriteFile(cfg.Document.Output, []byte(patched), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", cfg.Document.Output, err)
	}
	fmt.Printf("Created %s with %d embedded Python scripts\n", cfg.Document.Output, len(records))
	return result, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	result, err := buildOnce(cfg, buildCheck, true, logger)
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		return nil
	}

	fmt.Printf("\nSuccess! Created %s with embedded scripts:\n", cfg.Document.Output)
	for _, rec := range result.Records {
		fmt.Printf("  - %s\n", rec.Name)
	}
	fmt.Printf("\nYou can now open %s in a web browser and the Python scripts will be pre-loaded.\n", cfg.Document.Output)
	return nil
}
