package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scriptpack/internal/watch"
)

// watchCmd rebuilds the output document whenever a script or the host
// document changes.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the output document on every change",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		// Initial build; a failure here is not fatal since the next
		// change retries.
		if _, err := buildOnce(cfg, buildCheck, true, logger); err != nil {
			fmt.Printf("Build failed: %v\n", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rebuild := func() {
			if _, err := buildOnce(cfg, buildCheck, true, logger); err != nil {
				fmt.Printf("Rebuild failed: %v\n", err)
			}
		}
		w, err := watch.New(cfg.Scripts.Dir, cfg.Scripts.Extension, cfg.Document.Target, cfg.GetDebounce(), rebuild, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()

		fmt.Println("Watching for changes (Ctrl-C to stop)...")
		<-ctx.Done()
		return nil
	},
}
