// Package vidiosource decodes a local video file with Vidio and exposes it as
// a seekable frame source.
package vidiosource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	vidio "github.com/AlexEidt/Vidio"
	"golang.org/x/image/draw"

	"github.com/user/frameconv/pkg/ports"
)

// ErrNoFrame is returned when a capture is requested before any frame has
// been decoded.
var ErrNoFrame = errors.New("vidiosource: no decoded frame")

// Source implements ports.SourceMedia. Forward seeks read sequentially from
// the decoder pipe; backward seeks decode the requested frame directly.
type Source struct {
	video  *vidio.Video
	info   ports.MediaInfo
	logger ports.Logger

	streamPos int // last frame index read from the pipe, -1 before the first
	current   int // frame index held in the frame buffer, -1 when empty
	frames    int
}

// Open probes and opens the video at path.
func Open(path string, logger ports.Logger) (*Source, error) {
	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if video.Width() <= 0 || video.Height() <= 0 {
		video.Close()
		return nil, fmt.Errorf("open %s: no video stream", path)
	}

	s := &Source{
		video: video,
		info: ports.MediaInfo{
			DurationSeconds: video.Duration(),
			Width:           video.Width(),
			Height:          video.Height(),
			FrameRate:       video.FPS(),
		},
		logger:    logger.WithComponent("source"),
		streamPos: -1,
		current:   -1,
		frames:    video.Frames(),
	}
	s.logger.Debug("Opened %s: %dx%d, %.2fs at %.2f fps (%d frames)",
		path, s.info.Width, s.info.Height, s.info.DurationSeconds, s.info.FrameRate, s.frames)
	return s, nil
}

// Info implements ports.SourceMedia.
func (s *Source) Info() ports.MediaInfo {
	return s.info
}

// Seek implements ports.SourceMedia.
func (s *Source) Seek(ctx context.Context, seconds float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := s.frameIndex(seconds)
	if target == s.current {
		return nil
	}

	if target > s.streamPos {
		for s.streamPos < target {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !s.video.Read() {
				// Past the last decodable frame; keep showing it.
				if s.streamPos < 0 {
					return fmt.Errorf("vidiosource: no frames decoded")
				}
				s.logger.Debug("Seek to frame %d clamped to %d", target, s.streamPos)
				s.current = s.streamPos
				return nil
			}
			s.streamPos++
		}
		s.current = target
		return nil
	}

	if err := s.video.ReadFrame(target); err != nil {
		return fmt.Errorf("vidiosource: read frame %d: %w", target, err)
	}
	s.current = target
	// The frame buffer no longer holds the pipe's last frame.
	s.streamPos = math.MaxInt
	return nil
}

// CaptureFrame implements ports.SourceMedia.
func (s *Source) CaptureFrame(dst *image.RGBA) error {
	if s.current < 0 {
		return ErrNoFrame
	}

	w, h := s.info.Width, s.info.Height
	src := &image.RGBA{
		Pix:    s.video.FrameBuffer(),
		Stride: 4 * w,
		Rect:   image.Rect(0, 0, w, h),
	}
	if len(src.Pix) < 4*w*h {
		return fmt.Errorf("vidiosource: frame buffer holds %d bytes, want %d", len(src.Pix), 4*w*h)
	}

	if dst.Rect.Dx() == w && dst.Rect.Dy() == h {
		draw.Draw(dst, dst.Rect, src, image.Point{}, draw.Src)
		return nil
	}
	draw.CatmullRom.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	return nil
}

// Close implements ports.SourceMedia.
func (s *Source) Close() error {
	s.video.Close()
	return nil
}

// frameIndex maps a time to the source frame shown at that time.
func (s *Source) frameIndex(seconds float64) int {
	fps := s.info.FrameRate
	if fps <= 0 {
		fps = ports.DefaultFrameRate
	}
	idx := int(math.Floor(seconds*fps + 1e-6))
	if idx < 0 {
		idx = 0
	}
	if s.frames > 0 && idx >= s.frames {
		idx = s.frames - 1
	}
	return idx
}

var _ ports.SourceMedia = (*Source)(nil)
