package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/auralens/auralens/internal/cache"
	"github.com/auralens/auralens/internal/imaging"
	"github.com/auralens/auralens/internal/vlm"
)

// ImageProcessor sends one image to the VLM and returns extracted text.
// *vlm.Client satisfies it.
type ImageProcessor interface {
	ProcessImage(ctx context.Context, imageDataURI, userPrompt, systemPrompt string) (string, error)
}

var _ ImageProcessor = (*vlm.Client)(nil)

// OCRStage feeds cached page images through the VLM and writes the results
// back into the cache. Pages in the resume set are skipped without a VLM
// call. Per-page failures after retry exhaustion leave a visible error
// marker as the page's text artifact and the run continues; auth and
// not-found failures abort the whole run, since retrying the remaining pages
// with bad configuration is pointless.
type OCRStage struct {
	Cache        *cache.Cache
	Client       ImageProcessor
	UserPrompt   string
	SystemPrompt string
	Events       Events
	Logger       *slog.Logger
}

// ErrorMarker formats the text artifact written for a failed page, keeping
// the failure visible to anyone reviewing the output.
func ErrorMarker(err error) string {
	return fmt.Sprintf("[ERROR: %v]", err)
}

// Run processes every cached page image in cacheDir. The resume set is
// computed once up front; cancellation is checked per page and lets an
// in-flight VLM call finish. OCRDone is emitted exactly once on every path.
func (s *OCRStage) Run(ctx context.Context, cacheDir string) error {
	events := s.Events
	if events == nil {
		events = NopEvents{}
	}
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("stage", "ocr", "run_id", uuid.New().String()[:8])

	defer events.OCRDone()

	images := s.Cache.ListImages(cacheDir)
	skip := s.Cache.ResumeSet(cacheDir)
	total := len(images)
	log.Info("starting ocr", "cache_dir", cacheDir, "pages", total, "resumable", len(skip))

	for _, imgPath := range images {
		page := cache.PageNumber(imgPath)
		if page <= 0 {
			continue
		}

		if err := ctx.Err(); err != nil {
			log.Info("ocr cancelled", "page", page)
			return err
		}

		events.PageStarted(page, total)

		if _, done := skip[page]; done {
			log.Debug("page already processed, skipping", "page", page)
			events.PageCompleted(page, total, s.Cache.ReadText(cacheDir, page))
			continue
		}

		text, err := s.processPage(ctx, imgPath)
		if err != nil {
			// A cancellation surfacing through the client is the run
			// stopping, not a page failure; no marker for it.
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				log.Info("ocr cancelled", "page", page)
				return err
			}
			if vlm.IsFatal(err) {
				log.Error("ocr aborted: configuration error", "page", page, "error", err)
				return fmt.Errorf("ocr aborted at page %d: %w", page, err)
			}

			log.Error("ocr page failed", "page", page, "error", err)
			if werr := s.Cache.WriteText(cacheDir, page, ErrorMarker(err)); werr != nil {
				log.Warn("failed to write error marker", "page", page, "error", werr)
			}
			events.PageError(page, err)
			continue
		}

		if err := s.Cache.WriteText(cacheDir, page, text); err != nil {
			log.Error("failed to cache page text", "page", page, "error", err)
			events.PageError(page, err)
			continue
		}
		events.PageCompleted(page, total, text)
	}

	log.Info("ocr complete", "pages", total)
	return nil
}

func (s *OCRStage) processPage(ctx context.Context, imgPath string) (string, error) {
	data, err := os.ReadFile(imgPath)
	if err != nil {
		return "", fmt.Errorf("failed to read cached image: %w", err)
	}
	return s.Client.ProcessImage(ctx, imaging.ToDataURI(data), s.UserPrompt, s.SystemPrompt)
}
