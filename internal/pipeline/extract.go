package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/google/uuid"

	"github.com/auralens/auralens/internal/cache"
	"github.com/auralens/auralens/internal/imaging"
	"github.com/auralens/auralens/internal/pdf"
)

// Rasterizer renders pages of an open document, one at a time, 1-indexed.
// *pdf.Document satisfies it; tests substitute a fake.
type Rasterizer interface {
	PageCount() int
	RenderPage(pageNum, dpi int) (image.Image, error)
}

var _ Rasterizer = (*pdf.Document)(nil)

// ExtractionStage renders every page of a document into the page cache.
// Pages whose image artifact already exists are skipped, which is what makes
// extraction resumable. A single page's rasterization failure is fatal to
// the run: OCR of later pages is meaningless when an earlier one never
// rendered.
type ExtractionStage struct {
	Cache       *cache.Cache
	DPI         int
	MaxPixels   int
	JPEGQuality int
	Events      Events
	Logger      *slog.Logger
}

// Run extracts all pages of doc into cacheDir. Returns the number of pages
// completed. Cancellation is cooperative, checked at each page boundary; a
// cancelled run still emits its terminal event with the completed count.
func (s *ExtractionStage) Run(ctx context.Context, doc Rasterizer, cacheDir string) (int, error) {
	events := s.Events
	if events == nil {
		events = NopEvents{}
	}
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("stage", "extract", "run_id", uuid.New().String()[:8])

	maxPixels := s.MaxPixels
	if maxPixels <= 0 {
		maxPixels = imaging.DefaultMaxPixels
	}
	quality := s.JPEGQuality
	if quality <= 0 {
		quality = imaging.DefaultJPEGQuality
	}

	total := doc.PageCount()
	log.Info("starting extraction", "cache_dir", cacheDir, "pages", total)

	completed := 0
	defer func() { events.ExtractionDone(cacheDir, completed) }()

	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			log.Info("extraction cancelled", "page", page, "completed", completed)
			return completed, err
		}

		if s.Cache.ImageExists(cacheDir, page) {
			log.Debug("page already extracted, skipping", "page", page)
		} else {
			if err := s.extractPage(doc, cacheDir, page, maxPixels, quality); err != nil {
				log.Error("extraction failed", "page", page, "error", err)
				return completed, err
			}
		}

		completed++
		events.PageExtracted(page, total)
	}

	log.Info("extraction complete", "pages", completed)
	return completed, nil
}

func (s *ExtractionStage) extractPage(doc Rasterizer, cacheDir string, page, maxPixels, quality int) error {
	img, err := doc.RenderPage(page, s.DPI)
	if err != nil {
		return fmt.Errorf("failed to rasterize page %d: %w", page, err)
	}

	data, err := imaging.EncodeForVLM(img, maxPixels, quality)
	if err != nil {
		return fmt.Errorf("failed to encode page %d: %w", page, err)
	}

	return s.Cache.WriteImage(cacheDir, page, data)
}
