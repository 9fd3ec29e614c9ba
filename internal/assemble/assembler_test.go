package assemble

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAssemble(t *testing.T) {
	a := New("", nil)

	t.Run("empty", func(t *testing.T) {
		if got := a.Assemble(nil); got != "" {
			t.Errorf("Assemble(nil) = %q, want empty", got)
		}
	})

	t.Run("single page unchanged", func(t *testing.T) {
		if got := a.Assemble([]string{"only page"}); got != "only page" {
			t.Errorf("Assemble single = %q, want unchanged", got)
		}
	})

	t.Run("n pages have n-1 separators", func(t *testing.T) {
		pages := []string{"one", "two", "three", "four"}
		got := a.Assemble(pages)
		count := strings.Count(got, "--- Page ")
		if count != len(pages)-1 {
			t.Errorf("separator count = %d, want %d", count, len(pages)-1)
		}
	})

	t.Run("separator carries page number", func(t *testing.T) {
		got := a.Assemble([]string{"a", "b"})
		want := "a\n\n--- Page 2 ---\n\nb"
		if got != want {
			t.Errorf("Assemble = %q, want %q", got, want)
		}
	})
}

func TestJoinPages(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{"dehyphenation", []string{"a book-", "worm"}, "a bookworm"},
		{"ellipsis_continues", []string{"Hello...", "world"}, "Hello... world"},
		{"sentence_end_four_newlines", []string{"End.", "Next"}, "End.\n\n\n\nNext"},
		{"question_mark", []string{"Really?", "Yes"}, "Really?\n\n\n\nYes"},
		{"exclamation", []string{"Stop!", "Go"}, "Stop!\n\n\n\nGo"},
		{"colon_single_space", []string{"Note:", "detail"}, "Note: detail"},
		{"semicolon_single_space", []string{"first;", "second"}, "first; second"},
		{"mid_word_break", []string{"continued on the", "next page"}, "continued on the next page"},
		{"empty_input", nil, ""},
		{"whitespace_only_page_dropped", []string{"  "}, ""},
		{"empty_pages_skipped", []string{"", "text", "  ", "more."}, "text more."},
		{"pages_are_trimmed", []string{"  spaced out  ", "tail"}, "spaced out tail"},
		{"single_page", []string{"alone"}, "alone"},
		{"hyphen_before_terminator_check", []string{"odd.-", "ball"}, "odd.ball"},
		{"three_page_fold", []string{"The bo-", "ok ends.", "Epilogue"}, "The book ends.\n\n\n\nEpilogue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := JoinPages(tt.pages); got != tt.want {
				t.Errorf("JoinPages(%q) = %q, want %q", tt.pages, got, tt.want)
			}
		})
	}
}

func TestCompletedPages(t *testing.T) {
	a := New("", nil)
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		got := a.CompletedPages(filepath.Join(dir, "nope.txt"))
		if len(got) != 0 {
			t.Errorf("CompletedPages on missing file = %v, want empty", got)
		}
	})

	t.Run("scans separators", func(t *testing.T) {
		path := filepath.Join(dir, "out.txt")
		content := a.Assemble([]string{"one", "two", "three"})
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		got := a.CompletedPages(path)
		// Pages 2 and 3 have markers; page 1 never gets one.
		if len(got) != 2 {
			t.Fatalf("CompletedPages = %v, want pages 2 and 3", got)
		}
		for _, n := range []int{2, 3} {
			if _, ok := got[n]; !ok {
				t.Errorf("CompletedPages missing page %d", n)
			}
		}
	})
}

func TestSaveText(t *testing.T) {
	a := New("", nil)
	path := filepath.Join(t.TempDir(), "nested", "book.txt")

	if err := a.SaveText([]string{"page one", "page two"}, path); err != nil {
		t.Fatalf("SaveText failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if !strings.Contains(string(data), "--- Page 2 ---") {
		t.Errorf("saved content missing separator: %q", data)
	}

	// No temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file not cleaned up")
	}
}

func TestSaveMarkdown(t *testing.T) {
	a := New("", nil)
	path := filepath.Join(t.TempDir(), "book.md")

	if err := a.SaveMarkdown([]string{"alpha", "beta"}, path); err != nil {
		t.Fatalf("SaveMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "alpha\n\n---\n\nbeta" {
		t.Errorf("markdown content = %q", data)
	}
}
