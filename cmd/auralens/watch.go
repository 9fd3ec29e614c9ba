package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auralens/auralens/internal/inbox"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the inbox directory and process new PDFs",
	Long: `Watch the configured inbox directory and run every new PDF through the
processing pipeline.

PDFs already in the inbox on startup are processed first, then the watcher
picks up new arrivals until interrupted. Configure the directory via
dirs.inbox in the config file.

Example:
  auralens watch --format md`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := setup()
		if err != nil {
			return err
		}
		cfg := e.cfg.Get()
		if cfg.Dirs.Inbox == "" {
			return fmt.Errorf("inbox directory is not set: add dirs.inbox to the config")
		}
		if err := cfg.ValidateForOCR(); err != nil {
			return err
		}

		// Pick up config edits made while watching.
		e.cfg.WatchConfig()

		scanner := inbox.NewScanner(cfg.Dirs.Inbox, e.logger)
		watcher, err := inbox.NewWatcher(scanner, e.logger)
		if err != nil {
			return err
		}
		go watcher.Run(ctx)

		// Process whatever is already sitting in the inbox.
		existing, err := scanner.Scan()
		if err != nil {
			return err
		}
		for _, pdfPath := range existing {
			if err := e.processDocument(ctx, pdfPath, watchFormat); err != nil {
				e.logger.Error("processing failed", "pdf", pdfPath, "error", err)
			}
		}

		e.logger.Info("watching inbox", "dir", cfg.Dirs.Inbox)
		for {
			select {
			case <-ctx.Done():
				return nil
			case pdfPath, ok := <-watcher.Files():
				if !ok {
					return nil
				}
				if err := e.processDocument(ctx, pdfPath, watchFormat); err != nil {
					e.logger.Error("processing failed", "pdf", pdfPath, "error", err)
				}
			}
		}
	},
}

var watchFormat string

func init() {
	watchCmd.Flags().StringVar(&watchFormat, "format", "txt", "output format: txt, md, or epub")
}
