package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"scriptpack/internal/pack"
)

// listCmd shows what a build would embed, without touching any file.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered scripts and their parsed magic comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		scanner := pack.NewScanner(cfg.Scripts.Dir, cfg.Scripts.Extension, cfg.Scripts.Exclude, logger)
		records, err := scanner.Scan()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No Python scripts found to embed")
			return nil
		}

		for _, rec := range records {
			fmt.Printf("%s\n", rec.Name)
			fmt.Printf("  required_inputs: %s\n", orNone(rec.RequiredInputs))
			fmt.Printf("  derived_inputs:  %s\n", orNone(rec.DerivedInputs))
		}
		fmt.Printf("\n%d script(s) would be embedded\n", len(records))
		return nil
	},
}

func orNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
