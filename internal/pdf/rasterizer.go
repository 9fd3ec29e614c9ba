// Package pdf turns "PDF + page number" into a raster image. MuPDF (go-fitz)
// does the rendering; pdfcpu supplies the cheap page-count metadata call
// without opening a rendering context.
package pdf

import (
	"fmt"
	"image"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultDPI is the render resolution used when none is configured.
const DefaultDPI = 150

// PageCount returns the total number of pages in the PDF. Pages are
// 1-indexed everywhere in this codebase.
func PageCount(pdfPath string) (int, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	count, err := api.PageCount(f, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get page count: %w", err)
	}
	return count, nil
}

// Document is an open PDF rendering handle. Not safe for concurrent use;
// the extraction stage renders strictly sequentially.
type Document struct {
	doc  *fitz.Document
	path string
}

// Open opens a PDF for page rendering. Callers must Close it.
func Open(pdfPath string) (*Document, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return nil, fmt.Errorf("PDF not found: %s", pdfPath)
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", pdfPath, err)
	}
	return &Document{doc: doc, path: pdfPath}, nil
}

// Path returns the source PDF path.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the open document.
func (d *Document) PageCount() int {
	return d.doc.NumPage()
}

// RenderPage rasterizes one page at the given DPI. pageNum is 1-indexed.
func (d *Document) RenderPage(pageNum int, dpi int) (image.Image, error) {
	if pageNum < 1 || pageNum > d.doc.NumPage() {
		return nil, fmt.Errorf("page %d out of range [1, %d]", pageNum, d.doc.NumPage())
	}
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	// go-fitz pages are 0-indexed.
	img, err := d.doc.ImageDPI(pageNum-1, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", pageNum, err)
	}
	return img, nil
}

// Close releases the MuPDF document.
func (d *Document) Close() error {
	return d.doc.Close()
}
