package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scriptpack/internal/serve"
	"scriptpack/internal/watch"
)

var serveAddr string

// serveCmd builds, then serves the output document with live reload
// while watching for changes.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview the packaged document over HTTP with live reload",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadSettings()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Serve.Addr = serveAddr
		}

		if _, err := buildOnce(cfg, buildCheck, true, logger); err != nil {
			fmt.Printf("Build failed: %v\n", err)
		}

		srv := serve.New(cfg.Serve.Addr, func() ([]byte, error) {
			return os.ReadFile(cfg.Document.Output)
		}, logger)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rebuild := func() {
			if _, err := buildOnce(cfg, buildCheck, true, logger); err != nil {
				fmt.Printf("Rebuild failed: %v\n", err)
				return
			}
			srv.Broadcast()
		}
		w, err := watch.New(cfg.Scripts.Dir, cfg.Scripts.Extension, cfg.Document.Target, cfg.GetDebounce(), rebuild, logger)
		if err != nil {
			return err
		}
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()

		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :7777)")
}
