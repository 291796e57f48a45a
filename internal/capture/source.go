package capture

import (
	"context"
	"image"
)

// VideoSource supplies live frames on demand. A source is exclusively
// owned by one active session at a time.
type VideoSource interface {
	// Frame returns the most recent frame from the stream.
	Frame(ctx context.Context) (image.Image, error)
	// Done is closed when the underlying stream ends.
	Done() <-chan struct{}
}

// ChunkSink receives encoded media data from a live source. The
// recording buffer manager implements it; whether the data is kept is
// the sink's concern, not the source's.
type ChunkSink interface {
	Append(data []byte)
}
