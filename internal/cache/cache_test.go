package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestCache(t *testing.T) (*Cache, string) {
	t.Helper()
	root := t.TempDir()
	c := New(root, nil)
	return c, c.DirFor("/inbox/mybook.pdf")
}

func TestDirFor(t *testing.T) {
	c := New("/var/cache/auralens", nil)

	got := c.DirFor("/home/user/scans/My Book.pdf")
	want := filepath.Join("/var/cache/auralens", "My Book")
	if got != want {
		t.Errorf("DirFor() = %q, want %q", got, want)
	}

	if c.DirFor("a/b.pdf") != c.DirFor("x/b.pdf") {
		t.Error("DirFor should depend only on the file stem")
	}
}

func TestPageNumber(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"page_001.jpg", 1},
		{"page_042.txt", 42},
		{"page_999.jpg", 999},
		{"page_1.jpg", -1},
		{"cover.jpg", -1},
		{"page_001.png", -1},
	}
	for _, tt := range tests {
		if got := PageNumber(tt.name); got != tt.want {
			t.Errorf("PageNumber(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestWriteImage_SkipsExisting(t *testing.T) {
	c, dir := newTestCache(t)

	if err := c.WriteImage(dir, 1, []byte("original")); err != nil {
		t.Fatalf("WriteImage failed: %v", err)
	}
	// Second write must be a no-op: the existing artifact wins.
	if err := c.WriteImage(dir, 1, []byte("overwrite-attempt")); err != nil {
		t.Fatalf("WriteImage (existing) failed: %v", err)
	}

	data, err := os.ReadFile(ImagePath(dir, 1))
	if err != nil {
		t.Fatalf("read back failed: %v", err)
	}
	if string(data) != "original" {
		t.Errorf("image artifact = %q, want %q (existing file must not be overwritten)", data, "original")
	}
}

func TestWriteText_AlwaysOverwrites(t *testing.T) {
	c, dir := newTestCache(t)

	if err := c.WriteText(dir, 3, "first pass"); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if err := c.WriteText(dir, 3, "rescan result"); err != nil {
		t.Fatalf("WriteText (overwrite) failed: %v", err)
	}

	if got := c.ReadText(dir, 3); got != "rescan result" {
		t.Errorf("ReadText = %q, want %q", got, "rescan result")
	}
}

func TestReadText_AbsentReturnsEmpty(t *testing.T) {
	c, dir := newTestCache(t)
	if got := c.ReadText(dir, 7); got != "" {
		t.Errorf("ReadText for absent page = %q, want empty", got)
	}
}

func TestListImages_SortedNumerically(t *testing.T) {
	c, dir := newTestCache(t)

	for _, n := range []int{3, 1, 10, 2} {
		if err := c.WriteImage(dir, n, []byte("x")); err != nil {
			t.Fatalf("WriteImage(%d) failed: %v", n, err)
		}
	}
	// A stray non-page file must be ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	images := c.ListImages(dir)
	if len(images) != 4 {
		t.Fatalf("ListImages returned %d entries, want 4", len(images))
	}
	want := []int{1, 2, 3, 10}
	for i, p := range images {
		if PageNumber(p) != want[i] {
			t.Errorf("ListImages[%d] = page %d, want %d", i, PageNumber(p), want[i])
		}
	}
}

func TestResumeSet_RequiresNonEmptyText(t *testing.T) {
	c, dir := newTestCache(t)

	// Page 1: image + text -> resumable.
	// Page 2: image + empty text -> not resumable (user may want it re-run).
	// Page 3: image only -> not resumable.
	// Page 4: text only -> not resumable (no image artifact).
	for _, n := range []int{1, 2, 3} {
		if err := c.WriteImage(dir, n, []byte("jpeg")); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.WriteText(dir, 1, "page one text"); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteText(dir, 2, ""); err != nil {
		t.Fatal(err)
	}
	if err := c.WriteText(dir, 4, "orphan"); err != nil {
		t.Fatal(err)
	}

	got := c.ResumeSet(dir)
	if len(got) != 1 {
		t.Fatalf("ResumeSet = %v, want exactly page 1", got)
	}
	if _, ok := got[1]; !ok {
		t.Errorf("ResumeSet missing page 1: %v", got)
	}
}

func TestIsFullyCached(t *testing.T) {
	c, dir := newTestCache(t)

	t.Run("empty_cache", func(t *testing.T) {
		if c.IsFullyCached(dir) {
			t.Error("empty cache reported as fully cached")
		}
	})

	t.Run("missing_text", func(t *testing.T) {
		if err := c.WriteImage(dir, 1, []byte("jpeg")); err != nil {
			t.Fatal(err)
		}
		if c.IsFullyCached(dir) {
			t.Error("cache with missing text reported as fully cached")
		}
	})

	t.Run("empty_text_counts_as_done", func(t *testing.T) {
		// Looser than ResumeSet: an empty text file satisfies completeness.
		if err := c.WriteText(dir, 1, ""); err != nil {
			t.Fatal(err)
		}
		if !c.IsFullyCached(dir) {
			t.Error("cache with empty text artifact should count as fully cached")
		}
	})
}
