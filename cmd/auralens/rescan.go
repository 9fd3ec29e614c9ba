package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/auralens/auralens/internal/cache"
	"github.com/auralens/auralens/internal/pipeline"
	"github.com/auralens/auralens/internal/vlm"
)

var rescanFormat string

var rescanCmd = &cobra.Command{
	Use:   "rescan <pdf> <page>...",
	Short: "Re-run OCR for specific pages",
	Long: `Re-run OCR for the given pages of an already-processed PDF.

Clears the cached text for each listed page and runs the OCR stage again;
pages with intact text are skipped via the resume set. Useful for pages that
ended up with an [ERROR: ...] marker or a bad recognition.

Example:
  auralens rescan book.pdf 12 13 --format md`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		cfg := e.cfg.Get()
		if err := cfg.ValidateForOCR(); err != nil {
			return err
		}

		pdfPath := args[0]
		cacheDir := e.cache.DirFor(pdfPath)
		if len(e.cache.ListImages(cacheDir)) == 0 {
			return fmt.Errorf("no cached pages for %s: run process first", pdfPath)
		}

		for _, arg := range args[1:] {
			page, err := strconv.Atoi(arg)
			if err != nil || page < 1 {
				return fmt.Errorf("invalid page number %q", arg)
			}
			if !e.cache.ImageExists(cacheDir, page) {
				return fmt.Errorf("page %d has no cached image", page)
			}
			if err := os.Remove(cache.TextPath(cacheDir, page)); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to clear page %d text: %w", page, err)
			}
		}

		log := e.logger.With("pdf", pdfPath)
		ocr := &pipeline.OCRStage{
			Cache:        e.cache,
			Client:       vlm.New(cfg.ToVLMConfig(), log),
			UserPrompt:   cfg.Prompts.User,
			SystemPrompt: cfg.Prompts.System,
			Logger:       log,
		}
		if err := ocr.Run(cmd.Context(), cacheDir); err != nil {
			return fmt.Errorf("ocr failed: %w", err)
		}

		return e.export(pdfPath, rescanFormat, e.outputPath(pdfPath, extFor(rescanFormat)))
	},
}

func init() {
	rescanCmd.Flags().StringVar(&rescanFormat, "format", "txt", "output format: txt, md, or epub")
}
