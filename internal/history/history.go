package history

import (
	"log"
	"sync"

	"github.com/dkarpov/runcatch/internal/session"
	"github.com/dkarpov/runcatch/internal/storage"
)

// Entry is one attempt as kept by the application. When storage is
// configured, retained media lives on disk and the in-memory entry
// only carries the file references.
type Entry struct {
	session.Attempt
	ClipFile  string
	ThumbFile string
}

// Store is the in-memory attempt history, newest first. It implements
// session.HistorySink. The history itself is not persisted across
// restarts; only retained clip files survive on disk.
type Store struct {
	archive storage.Storage

	mu      sync.RWMutex
	entries []Entry
}

// NewStore returns a history store. archive may be nil, in which case
// media stays in memory.
func NewStore(archive storage.Storage) *Store {
	return &Store{archive: archive}
}

// Append records a completed attempt, archiving retained media to disk
// when storage is configured.
func (s *Store) Append(a session.Attempt) {
	entry := Entry{Attempt: a}

	if s.archive != nil {
		if len(a.Media) > 0 {
			filename, err := s.archive.SaveBlob(a.Media, ".webm")
			if err != nil {
				log.Printf("[HISTORY] failed to archive clip for attempt %s: %v", a.ID, err)
			} else {
				entry.ClipFile = filename
				entry.Media = nil
			}
		}
		if len(a.Thumbnail) > 0 {
			filename, err := s.archive.SaveBlob(a.Thumbnail, ".png")
			if err != nil {
				log.Printf("[HISTORY] failed to archive thumbnail for attempt %s: %v", a.ID, err)
			} else {
				entry.ThumbFile = filename
				entry.Thumbnail = nil
			}
		}
	}

	s.mu.Lock()
	s.entries = append([]Entry{entry}, s.entries...)
	s.mu.Unlock()
}

// List returns a copy of all entries, newest first.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
