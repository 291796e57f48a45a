package history

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dkarpov/runcatch/internal/session"
	"github.com/dkarpov/runcatch/internal/storage"
)

func attempt(id string, status session.AttemptStatus, media, thumb []byte) session.Attempt {
	return session.Attempt{
		ID:        id,
		Timestamp: time.Now(),
		Status:    status,
		Media:     media,
		Thumbnail: thumb,
	}
}

func TestStoreNewestFirst(t *testing.T) {
	s := NewStore(nil)
	s.Append(attempt("first", session.StatusDiscarded, nil, nil))
	s.Append(attempt("second", session.StatusDiscarded, nil, nil))
	s.Append(attempt("third", session.StatusDiscarded, nil, nil))

	entries := s.List()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []string{"third", "second", "first"} {
		if entries[i].ID != want {
			t.Errorf("entry %d: expected %q, got %q", i, want, entries[i].ID)
		}
	}
	if s.Len() != 3 {
		t.Errorf("expected Len 3, got %d", s.Len())
	}
}

func TestStoreGet(t *testing.T) {
	s := NewStore(nil)
	s.Append(attempt("a1", session.StatusSaved, []byte("clip"), nil))

	e, ok := s.Get("a1")
	if !ok {
		t.Fatal("expected to find attempt a1")
	}
	if string(e.Media) != "clip" {
		t.Errorf("expected in-memory media without storage, got %q", e.Media)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestStoreArchivesToDisk(t *testing.T) {
	dir := t.TempDir()
	archive, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	s := NewStore(archive)
	s.Append(attempt("a1", session.StatusSaved, []byte("clip bytes"), []byte("thumb bytes")))

	e, ok := s.Get("a1")
	if !ok {
		t.Fatal("expected to find attempt a1")
	}
	if e.ClipFile == "" || e.ThumbFile == "" {
		t.Fatalf("expected archived file references, got clip=%q thumb=%q", e.ClipFile, e.ThumbFile)
	}
	if filepath.Ext(e.ClipFile) != ".webm" {
		t.Errorf("expected .webm clip file, got %q", e.ClipFile)
	}
	if filepath.Ext(e.ThumbFile) != ".png" {
		t.Errorf("expected .png thumbnail file, got %q", e.ThumbFile)
	}
	if e.Media != nil || e.Thumbnail != nil {
		t.Error("archived bytes must be released from memory")
	}

	f, err := archive.OpenFile(e.ClipFile)
	if err != nil {
		t.Fatalf("failed to open archived clip: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("failed to read archived clip: %v", err)
	}
	if string(data) != "clip bytes" {
		t.Errorf("archived clip content mismatch: %q", data)
	}
}

func TestStoreDiscardedAttemptNotArchived(t *testing.T) {
	dir := t.TempDir()
	archive, err := storage.NewLocalStorage(dir)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	s := NewStore(archive)
	s.Append(attempt("a1", session.StatusDiscarded, nil, nil))

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("expected no archived files for a discarded attempt, got %d", len(files))
	}
	if _, ok := s.Get("a1"); !ok {
		t.Error("discarded attempt must still appear in history")
	}
}
