package mocks

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/user/frameconv/pkg/ports"
)

// SourceMedia is a mock implementation of ports.SourceMedia that fills each
// captured frame with a solid color.
type SourceMedia struct {
	InfoValue   ports.MediaInfo
	SeekFunc    func(ctx context.Context, seconds float64) error
	CaptureFunc func(dst *image.RGBA) error

	// Recorded calls for verification
	mu       sync.Mutex
	Seeks    []float64
	Captures int
	Closed   bool
}

// NewSourceMedia creates a mock source of the given size and length.
func NewSourceMedia(width, height int, durationSeconds, frameRate float64) *SourceMedia {
	return &SourceMedia{InfoValue: ports.MediaInfo{
		DurationSeconds: durationSeconds,
		Width:           width,
		Height:          height,
		FrameRate:       frameRate,
	}}
}

func (m *SourceMedia) Info() ports.MediaInfo {
	return m.InfoValue
}

func (m *SourceMedia) Seek(ctx context.Context, seconds float64) error {
	m.mu.Lock()
	m.Seeks = append(m.Seeks, seconds)
	m.mu.Unlock()
	if m.SeekFunc != nil {
		return m.SeekFunc(ctx, seconds)
	}
	return ctx.Err()
}

func (m *SourceMedia) CaptureFrame(dst *image.RGBA) error {
	m.mu.Lock()
	n := m.Captures
	m.Captures++
	m.mu.Unlock()
	if m.CaptureFunc != nil {
		return m.CaptureFunc(dst)
	}
	c := color.RGBA{R: uint8(n), G: 128, B: 255 - uint8(n), A: 255}
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return nil
}

func (m *SourceMedia) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// SeekCount returns the number of Seek calls so far.
func (m *SourceMedia) SeekCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Seeks)
}

// IsClosed reports whether Close was called.
func (m *SourceMedia) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Closed
}

var _ ports.SourceMedia = (*SourceMedia)(nil)
