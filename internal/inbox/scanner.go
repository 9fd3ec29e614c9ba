// Package inbox discovers PDF files dropped into a watched directory.
package inbox

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Scanner tracks which PDFs in a directory have already been handed out,
// so repeated scans only surface new arrivals.
type Scanner struct {
	dir    string
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewScanner creates a scanner for the given directory.
func NewScanner(dir string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{
		dir:    dir,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
}

// Dir returns the directory being scanned.
func (s *Scanner) Dir() string {
	return s.dir
}

// Scan returns the absolute paths of PDFs not seen by a previous scan,
// sorted by filename. Returned paths are marked as seen.
func (s *Scanner) Scan() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox directory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []string
	for _, entry := range entries {
		if entry.IsDir() || !isPDF(entry.Name()) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if _, ok := s.seen[path]; ok {
			continue
		}
		s.seen[path] = struct{}{}
		fresh = append(fresh, path)
	}

	sort.Strings(fresh)
	if len(fresh) > 0 {
		s.logger.Info("inbox scan found new files", "dir", s.dir, "count", len(fresh))
	}
	return fresh, nil
}

// MarkSeen records a path as already handled without scanning.
func (s *Scanner) MarkSeen(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[path] = struct{}{}
}

// Reset forgets all seen paths so the next Scan returns everything.
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]struct{})
}

// SeenCount returns the number of paths handled so far.
func (s *Scanner) SeenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

func isPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
