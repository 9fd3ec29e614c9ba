package inbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watcher delivers newly created PDFs from a directory as they arrive.
// It deduplicates against the scanner's seen set, so files already
// processed by an initial Scan are not delivered twice.
type Watcher struct {
	scanner *Scanner
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	files   chan string
}

// NewWatcher starts watching the scanner's directory for new PDFs.
func NewWatcher(scanner *Scanner, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fsw.Add(scanner.Dir()); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", scanner.Dir(), err)
	}

	return &Watcher{
		scanner: scanner,
		fsw:     fsw,
		logger:  logger,
		files:   make(chan string),
	}, nil
}

// Files returns the channel on which new PDF paths are delivered.
// The channel is closed when Run returns.
func (w *Watcher) Files() <-chan string {
	return w.files
}

// Run pumps filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.files)
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isPDF(event.Name) {
				continue
			}
			if !w.scanner.markNew(event.Name) {
				continue
			}
			w.logger.Info("new pdf detected", "path", event.Name)
			select {
			case w.files <- event.Name:
			case <-ctx.Done():
				return ctx.Err()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("filesystem watcher error", "error", err)
		}
	}
}

// markNew marks a path as seen, reporting whether it was new.
func (s *Scanner) markNew(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[path]; ok {
		return false
	}
	s.seen[path] = struct{}{}
	return true
}
