// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
	"image"
)

// DefaultFrameRate is assumed when a source does not report its frame rate.
const DefaultFrameRate = 30.0

// MediaInfo describes a decodable video resource.
type MediaInfo struct {
	DurationSeconds float64
	Width           int
	Height          int
	FrameRate       float64 // 0 when the container does not report one
}

// SourceMedia abstracts a seekable video that can be rasterized frame by frame.
// The playback position is a single cursor: callers must not seek while a
// capture is in progress.
type SourceMedia interface {
	// Info returns the source dimensions, duration and frame rate.
	Info() MediaInfo

	// Seek moves the playback position to the given time and returns once
	// the frame at that position is ready to be captured.
	Seek(ctx context.Context, seconds float64) error

	// CaptureFrame rasterizes the frame at the current position into dst.
	// dst is sized to the source dimensions and may be reused across calls.
	CaptureFrame(dst *image.RGBA) error

	// Close releases the underlying decoder.
	Close() error
}
