// Package cache owns the on-disk page cache layout for extracted documents.
//
// Each source PDF gets a directory named after its stem under the cache root,
// holding one JPEG and one UTF-8 text artifact per page:
//
//	<root>/<stem>/page_001.jpg
//	<root>/<stem>/page_001.txt
//
// Page numbers are 1-indexed and zero-padded to 3 digits so lexicographic
// order equals numeric order. Documents beyond 999 pages are a known
// limitation of the naming scheme: page_1000.jpg sorts before page_101.jpg.
//
// The cache is the single source of truth for resume decisions: an existing
// image means extraction is done for that page, and a non-empty text file
// means OCR is done.
package cache

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var pagePattern = regexp.MustCompile(`^page_(\d{3,})\.(?:jpg|txt)$`)

// Cache manages page artifacts under a root directory.
type Cache struct {
	root   string
	logger *slog.Logger
}

// New creates a Cache rooted at the given directory.
func New(root string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{root: root, logger: logger}
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// DirFor returns the cache directory for a source PDF, derived from its stem.
// Deterministic: the same PDF path always maps to the same directory.
func (c *Cache) DirFor(pdfPath string) string {
	base := filepath.Base(pdfPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(c.root, stem)
}

// ImagePath returns the path of the page image artifact. Pages are 1-indexed.
func ImagePath(cacheDir string, pageNum int) string {
	return filepath.Join(cacheDir, fmt.Sprintf("page_%03d.jpg", pageNum))
}

// TextPath returns the path of the page text artifact. Pages are 1-indexed.
func TextPath(cacheDir string, pageNum int) string {
	return filepath.Join(cacheDir, fmt.Sprintf("page_%03d.txt", pageNum))
}

// PageNumber parses the page number out of a page_NNN.jpg or page_NNN.txt
// file name. Returns -1 when the name doesn't match the cache convention.
func PageNumber(filename string) int {
	m := pagePattern.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return -1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return -1
	}
	return n
}

// ListImages returns the page image paths in cacheDir, sorted
// lexicographically (numeric order for the zero-padded naming scheme).
// Returns nil when the directory doesn't exist.
func (c *Cache) ListImages(cacheDir string) []string {
	entries, err := os.ReadDir(cacheDir)
	if err != nil {
		return nil
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".jpg") && PageNumber(e.Name()) > 0 {
			paths = append(paths, filepath.Join(cacheDir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths
}

// ImageExists reports whether the page image artifact is on disk.
func (c *Cache) ImageExists(cacheDir string, pageNum int) bool {
	_, err := os.Stat(ImagePath(cacheDir, pageNum))
	return err == nil
}

// WriteImage writes a page's JPEG bytes, creating parent directories as
// needed. Writing is skipped when the file already exists; that skip is what
// makes extraction resumable.
func (c *Cache) WriteImage(cacheDir string, pageNum int, data []byte) error {
	path := ImagePath(cacheDir, pageNum)
	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("page image already cached, skipping write", "page", pageNum, "path", path)
		return nil
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write page image: %w", err)
	}
	c.logger.Debug("cached page image", "page", pageNum, "bytes", len(data))
	return nil
}

// WriteText writes a page's OCR text, overwriting any previous artifact
// (rescans legitimately re-produce text). The write goes through a temp file
// and rename; if the rename fails the data is written directly rather than
// lost.
func (c *Cache) WriteText(cacheDir string, pageNum int, text string) error {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	path := TextPath(cacheDir, pageNum)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write page text: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		c.logger.Warn("atomic rename failed, falling back to direct write", "path", path, "error", err)
		os.Remove(tmp)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write page text: %w", err)
		}
	}
	return nil
}

// ReadText returns the page's cached text, or "" when the artifact is absent
// or unreadable. Absence and a legitimately empty page are indistinguishable
// here; ResumeSet is the stricter query.
func (c *Cache) ReadText(cacheDir string, pageNum int) string {
	data, err := os.ReadFile(TextPath(cacheDir, pageNum))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("failed to read cached page text", "page", pageNum, "error", err)
		}
		return ""
	}
	return string(data)
}

// ResumeSet returns the pages whose work is complete: an image artifact plus
// a non-empty text artifact. OCR skips these pages on a re-run.
func (c *Cache) ResumeSet(cacheDir string) map[int]struct{} {
	completed := make(map[int]struct{})
	for _, imgPath := range c.ListImages(cacheDir) {
		pageNum := PageNumber(imgPath)
		if pageNum <= 0 {
			continue
		}
		info, err := os.Stat(TextPath(cacheDir, pageNum))
		if err != nil || info.Size() == 0 {
			continue
		}
		completed[pageNum] = struct{}{}
	}

	if len(completed) > 0 {
		c.logger.Info("resume: pages with existing text will be skipped", "pages", len(completed))
	}
	return completed
}

// IsFullyCached reports whether every cached page image has a corresponding
// text artifact. Existence is enough here — an empty text file still counts
// as done, unlike ResumeSet, so a blank page doesn't make a finished document
// look incomplete.
func (c *Cache) IsFullyCached(cacheDir string) bool {
	images := c.ListImages(cacheDir)
	if len(images) == 0 {
		return false
	}

	for _, imgPath := range images {
		pageNum := PageNumber(imgPath)
		if pageNum <= 0 {
			continue
		}
		if _, err := os.Stat(TextPath(cacheDir, pageNum)); err != nil {
			return false
		}
	}
	return true
}
