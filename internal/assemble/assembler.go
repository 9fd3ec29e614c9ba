// Package assemble stitches per-page OCR texts into a single document and
// writes the plain-text and Markdown export formats.
package assemble

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultSeparator is the page separator template for plain-text output.
// {n} is replaced with the page number.
const DefaultSeparator = "\n\n--- Page {n} ---\n\n"

// MarkdownSeparator is a Markdown horizontal rule between pages.
const MarkdownSeparator = "\n\n---\n\n"

var pageMarkerPattern = regexp.MustCompile(`--- Page (\d+) ---`)

// Assembler joins page texts with configurable separators.
type Assembler struct {
	separator string
	logger    *slog.Logger
}

// New creates an Assembler. An empty separator selects DefaultSeparator.
func New(separator string, logger *slog.Logger) *Assembler {
	if separator == "" {
		separator = DefaultSeparator
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{separator: separator, logger: logger}
}

// Assemble combines page texts into a single string with separators between
// pages. A single page is returned unchanged; zero pages yield "".
func (a *Assembler) Assemble(pageTexts []string) string {
	if len(pageTexts) == 0 {
		return ""
	}
	if len(pageTexts) == 1 {
		return pageTexts[0]
	}

	var sb strings.Builder
	for i, text := range pageTexts {
		if i > 0 {
			sb.WriteString(strings.ReplaceAll(a.separator, "{n}", strconv.Itoa(i+1)))
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// AssembleMarkdown combines page texts with horizontal rules as page breaks.
func (a *Assembler) AssembleMarkdown(pageTexts []string) string {
	return strings.Join(pageTexts, MarkdownSeparator)
}

// CompletedPages scans an existing output file for page separators to
// identify pages already assembled. Returns an empty set when the file is
// absent or unreadable.
func (a *Assembler) CompletedPages(outputPath string) map[int]struct{} {
	completed := make(map[int]struct{})

	data, err := os.ReadFile(outputPath)
	if err != nil {
		if !os.IsNotExist(err) {
			a.logger.Warn("failed to scan completed pages", "path", outputPath, "error", err)
		}
		return completed
	}

	for _, m := range pageMarkerPattern.FindAllStringSubmatch(string(data), -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			completed[n] = struct{}{}
		}
	}
	return completed
}

// SaveText assembles pageTexts and writes them to path as plain text.
func (a *Assembler) SaveText(pageTexts []string, path string) error {
	content := a.Assemble(pageTexts)
	if err := atomicWrite(path, content, a.logger); err != nil {
		return err
	}
	a.logger.Info("saved document", "pages", len(pageTexts), "chars", len(content), "path", path)
	return nil
}

// SaveMarkdown assembles pageTexts with Markdown rules and writes to path.
func (a *Assembler) SaveMarkdown(pageTexts []string, path string) error {
	content := a.AssembleMarkdown(pageTexts)
	if err := atomicWrite(path, content, a.logger); err != nil {
		return err
	}
	a.logger.Info("saved markdown", "pages", len(pageTexts), "path", path)
	return nil
}

// atomicWrite writes through a temp file and rename. When the rename fails
// (some filesystems reject it) the content is written directly rather than
// lost.
func atomicWrite(path, content string, logger *slog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		logger.Warn("atomic rename failed, falling back to direct write", "path", path, "error", err)
		os.Remove(tmp)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
