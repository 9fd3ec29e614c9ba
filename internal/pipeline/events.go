// Package pipeline drives the two-stage document flow: page extraction
// (PDF → cached JPEG) followed by OCR (cached JPEG → VLM → cached text).
// One stage runs at a time; within a stage pages are processed strictly
// sequentially, so progress events arrive in increasing page order and the
// cache's resume bookkeeping stays monotonic.
package pipeline

// Events receives stage progress. Implementations must be cheap: callbacks
// fire synchronously from the stage loop.
type Events interface {
	// PageExtracted fires after every extraction page, skipped or rendered.
	PageExtracted(page, total int)
	// ExtractionDone fires exactly once when extraction ends, with the
	// number of pages completed (equal to total unless cancelled).
	ExtractionDone(cacheDir string, completed int)

	// PageStarted fires before each OCR page is attempted.
	PageStarted(page, total int)
	// PageCompleted fires with the page's text, whether freshly produced or
	// re-affirmed from the cache on a resumed run.
	PageCompleted(page, total int, text string)
	// PageError fires when a page fails after retries; the run continues.
	PageError(page int, err error)
	// OCRDone fires exactly once after every page has been attempted.
	OCRDone()
}

// NopEvents discards all progress events.
type NopEvents struct{}

func (NopEvents) PageExtracted(page, total int)              {}
func (NopEvents) ExtractionDone(cacheDir string, n int)      {}
func (NopEvents) PageStarted(page, total int)                {}
func (NopEvents) PageCompleted(page, total int, text string) {}
func (NopEvents) PageError(page int, err error)              {}
func (NopEvents) OCRDone()                                   {}

var _ Events = NopEvents{}
