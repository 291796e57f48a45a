package recording

import (
	"bytes"
	"sync"
	"time"
)

const DefaultChunkDuration = time.Second

// Recorder accumulates live stream data into an in-memory buffer,
// segmented into fixed-duration chunks. At most one recording is open
// at a time; data appended while closed is dropped.
type Recorder struct {
	chunkDuration time.Duration
	now           func() time.Time

	mu         sync.Mutex
	open       bool
	chunks     [][]byte
	current    bytes.Buffer
	chunkStart time.Time
}

func NewRecorder(chunkDuration time.Duration) *Recorder {
	if chunkDuration <= 0 {
		chunkDuration = DefaultChunkDuration
	}
	return &Recorder{
		chunkDuration: chunkDuration,
		now:           time.Now,
	}
}

// Open begins a new recording. No-op if one is already open.
func (r *Recorder) Open() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.open {
		return
	}
	r.open = true
	r.chunkStart = r.now()
}

// Append adds stream data to the open recording. Dropped when closed.
func (r *Recorder) Append(data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open || len(data) == 0 {
		return
	}
	if r.current.Len() > 0 && r.now().Sub(r.chunkStart) >= r.chunkDuration {
		r.sealChunkLocked()
	}
	r.current.Write(data)
}

// Close stops accumulation and returns the concatenated recording.
// Calling Close when no recording is open returns an empty buffer.
func (r *Recorder) Close() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return nil
	}
	r.sealChunkLocked()

	total := 0
	for _, chunk := range r.chunks {
		total += len(chunk)
	}
	final := make([]byte, 0, total)
	for _, chunk := range r.chunks {
		final = append(final, chunk...)
	}

	r.resetLocked()
	return final
}

// Abort stops accumulation and discards everything.
func (r *Recorder) Abort() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Recorder) IsOpen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

func (r *Recorder) sealChunkLocked() {
	if r.current.Len() == 0 {
		r.chunkStart = r.now()
		return
	}
	chunk := make([]byte, r.current.Len())
	copy(chunk, r.current.Bytes())
	r.chunks = append(r.chunks, chunk)
	r.current.Reset()
	r.chunkStart = r.now()
}

func (r *Recorder) resetLocked() {
	r.open = false
	r.chunks = nil
	r.current.Reset()
}
