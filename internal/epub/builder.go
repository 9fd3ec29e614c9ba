// Package epub provides ePub 3.0 generation from OCR-extracted page text.
package epub

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Book contains the metadata and page text for epub generation.
type Book struct {
	Title    string
	Author   string
	Language string // ISO 639-1 code (e.g., "en")
	Pages    []string
}

// Chapter is one page of OCR output rendered as its own spine entry.
type Chapter struct {
	ID    string // e.g., "page_001"
	Title string // e.g., "Page 1"
	Text  string
}

// Builder creates ePub 3.0 files with one chapter per page.
type Builder struct {
	book     Book
	chapters []Chapter
}

// NewBuilder creates a new epub builder from book metadata and page texts.
func NewBuilder(book Book) *Builder {
	chapters := make([]Chapter, 0, len(book.Pages))
	for i, text := range book.Pages {
		chapters = append(chapters, Chapter{
			ID:    fmt.Sprintf("page_%03d", i+1),
			Title: fmt.Sprintf("Page %d", i+1),
			Text:  text,
		})
	}
	return &Builder{book: book, chapters: chapters}
}

// Build generates the epub and writes it to the specified path.
func (b *Builder) Build(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return b.WriteTo(f)
}

// WriteTo writes the epub to a writer.
func (b *Builder) WriteTo(w io.Writer) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	// 1. Write mimetype (must be first, uncompressed)
	if err := b.writeMimetype(zw); err != nil {
		return err
	}

	// 2. Write META-INF/container.xml
	if err := b.writeContainer(zw); err != nil {
		return err
	}

	// 3. Write OEBPS/content.opf (package document)
	if err := b.writePackage(zw); err != nil {
		return err
	}

	// 4. Write OEBPS/nav.xhtml (navigation)
	if err := b.writeNavigation(zw); err != nil {
		return err
	}

	// 5. Write OEBPS/toc.ncx (NCX for ePub 2 compatibility)
	if err := b.writeNCX(zw); err != nil {
		return err
	}

	// 6. Write OEBPS/styles/style.css
	if err := b.writeStylesheet(zw); err != nil {
		return err
	}

	// 7. Write one chapter file per page
	for _, ch := range b.chapters {
		if err := b.writeChapter(zw, ch); err != nil {
			return fmt.Errorf("failed to write chapter %s: %w", ch.ID, err)
		}
	}

	return nil
}

// writeMimetype writes the mimetype file (must be first and uncompressed).
func (b *Builder) writeMimetype(zw *zip.Writer) error {
	// Create with Store method (no compression) as required by ePub spec
	header := &zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	}
	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create mimetype: %w", err)
	}
	_, err = w.Write([]byte("application/epub+zip"))
	return err
}

// writeContainer writes META-INF/container.xml.
func (b *Builder) writeContainer(zw *zip.Writer) error {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`

	w, err := zw.Create("META-INF/container.xml")
	if err != nil {
		return fmt.Errorf("failed to create container.xml: %w", err)
	}
	_, err = w.Write([]byte(content))
	return err
}

// writePackage writes OEBPS/content.opf.
func (b *Builder) writePackage(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/content.opf")
	if err != nil {
		return fmt.Errorf("failed to create content.opf: %w", err)
	}
	_, err = w.Write([]byte(b.generatePackage()))
	return err
}

// writeNavigation writes OEBPS/nav.xhtml.
func (b *Builder) writeNavigation(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/nav.xhtml")
	if err != nil {
		return fmt.Errorf("failed to create nav.xhtml: %w", err)
	}
	_, err = w.Write([]byte(b.generateNavigation()))
	return err
}

// writeNCX writes OEBPS/toc.ncx for ePub 2 compatibility.
func (b *Builder) writeNCX(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/toc.ncx")
	if err != nil {
		return fmt.Errorf("failed to create toc.ncx: %w", err)
	}
	_, err = w.Write([]byte(b.generateNCX()))
	return err
}

// writeStylesheet writes OEBPS/styles/style.css.
func (b *Builder) writeStylesheet(zw *zip.Writer) error {
	w, err := zw.Create("OEBPS/styles/style.css")
	if err != nil {
		return fmt.Errorf("failed to create style.css: %w", err)
	}
	_, err = w.Write([]byte(stylesheet))
	return err
}

// writeChapter writes a single page's XHTML file.
func (b *Builder) writeChapter(zw *zip.Writer, ch Chapter) error {
	w, err := zw.Create(fmt.Sprintf("OEBPS/chapters/%s.xhtml", ch.ID))
	if err != nil {
		return err
	}
	_, err = w.Write([]byte(generateChapterXHTML(ch)))
	return err
}

var nonAlnumPattern = regexp.MustCompile(`[^a-z0-9]+`)

// identifier derives a stable publication identifier from the book title.
func (b *Builder) identifier() string {
	slug := strings.ToLower(b.book.Title)
	slug = nonAlnumPattern.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "untitled"
	}
	return "auralens-" + slug
}

const stylesheet = `body {
  font-family: serif;
  line-height: 1.5;
  margin: 1em;
}

h2 {
  font-size: 1.1em;
  color: #555;
  border-bottom: 1px solid #ddd;
  padding-bottom: 0.3em;
}

p {
  margin: 0.8em 0;
  text-indent: 1.2em;
}

p:first-of-type {
  text-indent: 0;
}
`
