package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sync"
)

// IngestSource is a VideoSource fed by a capture client pushing encoded
// still frames over the network. The latest frame wins; every pushed
// frame is also forwarded to the chunk sink as media data.
type IngestSource struct {
	sink ChunkSink

	mu     sync.RWMutex
	latest image.Image

	done chan struct{}
	once sync.Once
}

func NewIngestSource(sink ChunkSink) *IngestSource {
	return &IngestSource{
		sink: sink,
		done: make(chan struct{}),
	}
}

// Push decodes one encoded frame and makes it the current frame.
func (s *IngestSource) Push(data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode frame: %w", err)
	}

	s.mu.Lock()
	s.latest = img
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Append(data)
	}
	return nil
}

func (s *IngestSource) Frame(ctx context.Context) (image.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, fmt.Errorf("no frame received from capture client yet")
	}
	return s.latest, nil
}

func (s *IngestSource) Done() <-chan struct{} {
	return s.done
}

// End marks the stream as ended. Safe to call more than once.
func (s *IngestSource) End() {
	s.once.Do(func() { close(s.done) })
}
