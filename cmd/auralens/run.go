package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/auralens/auralens/internal/assemble"
	"github.com/auralens/auralens/internal/cache"
	"github.com/auralens/auralens/internal/config"
	"github.com/auralens/auralens/internal/epub"
	"github.com/auralens/auralens/internal/home"
	"github.com/auralens/auralens/internal/pdf"
	"github.com/auralens/auralens/internal/pipeline"
	"github.com/auralens/auralens/internal/vlm"
)

// env bundles everything a command needs to run the pipeline.
type env struct {
	logger *slog.Logger
	home   *home.Dir
	cfg    *config.Manager
	cache  *cache.Cache
}

// setup resolves the home directory and loads configuration. Commands call
// this in RunE so flag parsing has already happened.
func setup() (*env, error) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	h, err := home.New(homeDir)
	if err != nil {
		return nil, err
	}
	if err := h.EnsureExists(); err != nil {
		return nil, err
	}

	path := cfgFile
	if path == "" && h.ConfigExists() {
		path = h.ConfigPath()
	}
	cm, err := config.NewManager(path)
	if err != nil {
		return nil, err
	}

	return &env{
		logger: logger,
		home:   h,
		cfg:    cm,
		cache:  cache.New(h.CachePath(), logger),
	}, nil
}

// stem returns the PDF filename without its extension.
func stem(pdfPath string) string {
	base := filepath.Base(pdfPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// outputPath picks where assembled output lands: the configured outbox when
// set, otherwise next to the source PDF.
func (e *env) outputPath(pdfPath, ext string) string {
	dir := e.cfg.Get().Dirs.Outbox
	if dir == "" {
		dir = filepath.Dir(pdfPath)
	}
	return filepath.Join(dir, stem(pdfPath)+ext)
}

// saveEvents logs pipeline progress and rewrites the text output after every
// attempted page, so an interrupted run still leaves partial results behind.
// A page counts as attempted once its completion or error event fires; blank
// page text does not stall the saved prefix.
type saveEvents struct {
	pipeline.NopEvents

	logger    *slog.Logger
	assembler *assemble.Assembler
	savePath  string

	texts []string
	done  []bool
}

func (ev *saveEvents) PageExtracted(page, total int) {
	ev.logger.Info("page extracted", "page", page, "total", total)
}

func (ev *saveEvents) PageStarted(page, total int) {
	ev.logger.Info("ocr started", "page", page, "total", total)
}

func (ev *saveEvents) PageCompleted(page, total int, text string) {
	ev.logger.Info("ocr completed", "page", page, "total", total, "chars", len(text))
	ev.record(page, text)
}

func (ev *saveEvents) PageError(page int, err error) {
	ev.logger.Error("ocr page failed", "page", page, "error", err)
	// The cache holds the same marker; keep the partial output consistent.
	ev.record(page, pipeline.ErrorMarker(err))
}

func (ev *saveEvents) record(page int, text string) {
	if page < 1 {
		return
	}
	ev.grow(page)
	ev.texts[page-1] = text
	ev.done[page-1] = true

	if err := ev.assembler.SaveText(ev.texts[:ev.attemptedPrefix()], ev.savePath); err != nil {
		ev.logger.Warn("incremental save failed", "path", ev.savePath, "error", err)
	}
}

func (ev *saveEvents) grow(n int) {
	if len(ev.texts) >= n {
		return
	}
	texts := make([]string, n)
	copy(texts, ev.texts)
	ev.texts = texts

	done := make([]bool, n)
	copy(done, ev.done)
	ev.done = done
}

// attemptedPrefix returns how many leading pages have been attempted, which
// is the safe amount to save mid-run since pages finish in order.
func (ev *saveEvents) attemptedPrefix() int {
	for i, d := range ev.done {
		if !d {
			return i
		}
	}
	return len(ev.done)
}

// processDocument runs extraction and OCR for a single PDF, then assembles
// and saves the output in the requested format. Fully cached documents skip
// straight to assembly.
func (e *env) processDocument(ctx context.Context, pdfPath, format string) error {
	cfg := e.cfg.Get()
	cacheDir := e.cache.DirFor(pdfPath)
	log := e.logger.With("pdf", filepath.Base(pdfPath))

	if e.cache.IsFullyCached(cacheDir) {
		log.Info("document fully cached, assembling from cache", "cache_dir", cacheDir)
		return e.export(pdfPath, format, e.outputPath(pdfPath, extFor(format)))
	}

	if err := cfg.ValidateForOCR(); err != nil {
		return err
	}

	// Cheap metadata read before opening a MuPDF context: rejects
	// non-PDFs up front and gives the log a page total.
	pages, err := pdf.PageCount(pdfPath)
	if err != nil {
		return fmt.Errorf("cannot process %s: %w", pdfPath, err)
	}
	log.Info("processing document", "pages", pages)

	events := &saveEvents{
		logger:    log,
		assembler: assemble.New(assemble.DefaultSeparator, log),
		savePath:  e.outputPath(pdfPath, ".txt"),
	}

	// Stages run sequentially on a background worker; the command goroutine
	// just waits for completion. Signals cancel via the command context.
	runner := pipeline.Start(ctx, func(ctx context.Context) error {
		doc, err := pdf.Open(pdfPath)
		if err != nil {
			return err
		}
		extraction := &pipeline.ExtractionStage{
			Cache:       e.cache,
			DPI:         cfg.Processing.PDFDPI,
			MaxPixels:   cfg.Processing.MaxImagePixels,
			JPEGQuality: cfg.Processing.JPEGQuality,
			Events:      events,
			Logger:      log,
		}
		_, err = extraction.Run(ctx, doc, cacheDir)
		doc.Close()
		if err != nil {
			return fmt.Errorf("extraction failed: %w", err)
		}

		ocr := &pipeline.OCRStage{
			Cache:        e.cache,
			Client:       vlm.New(cfg.ToVLMConfig(), log),
			UserPrompt:   cfg.Prompts.User,
			SystemPrompt: cfg.Prompts.System,
			Events:       events,
			Logger:       log,
		}
		if err := ocr.Run(ctx, cacheDir); err != nil {
			return fmt.Errorf("ocr failed: %w", err)
		}
		return nil
	})
	if err := runner.Wait(); err != nil {
		return err
	}

	return e.export(pdfPath, format, e.outputPath(pdfPath, extFor(format)))
}

// export assembles cached page texts into the requested format and writes
// them to path. It never touches the VLM.
func (e *env) export(pdfPath, format, path string) error {
	cacheDir := e.cache.DirFor(pdfPath)
	images := e.cache.ListImages(cacheDir)
	if len(images) == 0 {
		return fmt.Errorf("no cached pages for %s: run process first", pdfPath)
	}

	texts := make([]string, 0, len(images))
	for _, img := range images {
		texts = append(texts, e.cache.ReadText(cacheDir, cache.PageNumber(img)))
	}

	assembler := assemble.New(assemble.DefaultSeparator, e.logger)
	switch format {
	case "txt":
		if err := assembler.SaveText(texts, path); err != nil {
			return err
		}
	case "md":
		if err := assembler.SaveMarkdown(texts, path); err != nil {
			return err
		}
	case "epub":
		book := epub.Book{Title: stem(pdfPath), Pages: texts}
		if err := epub.NewBuilder(book).Build(path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q: want txt, md, or epub", format)
	}

	e.logger.Info("saved output", "path", path, "format", format, "pages", len(texts))
	return nil
}

func extFor(format string) string {
	switch format {
	case "md":
		return ".md"
	case "epub":
		return ".epub"
	default:
		return ".txt"
	}
}
