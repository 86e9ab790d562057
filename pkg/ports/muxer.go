package ports

import (
	"context"
)

// MuxConfig describes the single video track of an output container.
type MuxConfig struct {
	Codec     Codec
	Width     int
	Height    int
	FrameRate float64
}

// ContainerMuxer assembles encoded chunks into a playable container.
type ContainerMuxer interface {
	// MIMEType returns the container/codec MIME type, e.g. `video/webm; codecs="vp8"`.
	MIMEType() string

	// Extension returns the file extension without a dot.
	Extension() string

	// Begin prepares the container. It fails when the codec cannot be carried
	// by this container.
	Begin(cfg MuxConfig) error

	// Append adds the next chunk. Chunks must arrive in presentation order and
	// each Append completes before the next may start.
	Append(ctx context.Context, chunk EncodedChunk) error

	// Finalize closes the container and returns its bytes.
	Finalize() ([]byte, error)

	// Abort discards everything appended so far.
	Abort()
}
