package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scriptpack/internal/jscheck"
	"scriptpack/internal/pack"
	"scriptpack/internal/patch"
)

// verifyCmd runs the pipeline in memory and reports whether the host
// document can actually be patched. Nothing is written.
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check that the host document accepts both insertions and the result compiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(cfg.Document.Target)
		if err != nil {
			return fmt.Errorf("target document %s: %w", cfg.Document.Target, err)
		}

		scanner := pack.NewScanner(cfg.Scripts.Dir, cfg.Scripts.Extension, cfg.Scripts.Exclude, logger)
		records, err := scanner.Scan()
		if err != nil {
			return err
		}

		patcher := patch.NewPatcher(logger)
		patched, report, err := patcher.Apply(string(raw), records)
		if err != nil {
			return err
		}

		fmt.Printf("Scripts discovered:    %d\n", len(records))
		fmt.Printf("Data insertion point:  %s\n", foundStatus(report.DataInjected))
		fmt.Printf("Loader call point:     %s\n", foundStatus(report.CallInjected))
		if report.UsedMarkers {
			fmt.Println("Injection via explicit scriptpack markers")
		}

		if err := jscheck.CheckDocument(cfg.Document.Target, patched); err != nil {
			fmt.Printf("JavaScript check:      FAILED (%v)\n", err)
			return err
		}
		fmt.Println("JavaScript check:      ok")

		if !report.Complete() {
			return fmt.Errorf("document %s is missing one or both injection points", cfg.Document.Target)
		}
		return nil
	},
}

func foundStatus(ok bool) string {
	if ok {
		return "found"
	}
	return "MISSING"
}
