// Package patternsource renders a synthetic test card as a seekable source.
// It needs no decoder and is used for smoke tests and benchmarks.
package patternsource

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"regexp"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/frameconv/pkg/ports"
)

// Options describes the generated video.
type Options struct {
	Width           int
	Height          int
	FrameRate       float64
	DurationSeconds float64
}

// Source implements ports.SourceMedia by drawing each frame on demand.
type Source struct {
	opts     Options
	position float64
	seeks    int
	closed   bool
}

// New creates a pattern source.
func New(opts Options) (*Source, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("patternsource: invalid size %dx%d", opts.Width, opts.Height)
	}
	if opts.FrameRate <= 0 {
		return nil, fmt.Errorf("patternsource: invalid frame rate %.2f", opts.FrameRate)
	}
	if opts.DurationSeconds <= 0 {
		return nil, fmt.Errorf("patternsource: invalid duration %.2f", opts.DurationSeconds)
	}
	return &Source{opts: opts}, nil
}

var patternRe = regexp.MustCompile(`^(\d+)x(\d+)@(\d+(?:\.\d+)?):(\d+(?:\.\d+)?)$`)

// Parse reads a "WxH@FPS:SECONDS" description such as "640x480@30:10".
func Parse(s string) (Options, error) {
	m := patternRe.FindStringSubmatch(s)
	if m == nil {
		return Options{}, fmt.Errorf("patternsource: %q is not WxH@FPS:SECONDS", s)
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])
	fps, _ := strconv.ParseFloat(m[3], 64)
	dur, _ := strconv.ParseFloat(m[4], 64)
	return Options{Width: w, Height: h, FrameRate: fps, DurationSeconds: dur}, nil
}

// Info implements ports.SourceMedia.
func (s *Source) Info() ports.MediaInfo {
	return ports.MediaInfo{
		DurationSeconds: s.opts.DurationSeconds,
		Width:           s.opts.Width,
		Height:          s.opts.Height,
		FrameRate:       s.opts.FrameRate,
	}
}

// Seek implements ports.SourceMedia.
func (s *Source) Seek(ctx context.Context, seconds float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.closed {
		return fmt.Errorf("patternsource: source closed")
	}
	s.position = math.Max(0, math.Min(seconds, s.opts.DurationSeconds))
	s.seeks++
	return nil
}

// Seeks returns how many seeks have completed.
func (s *Source) Seeks() int { return s.seeks }

// Position returns the current playback position in seconds.
func (s *Source) Position() float64 { return s.position }

// CaptureFrame implements ports.SourceMedia.
func (s *Source) CaptureFrame(dst *image.RGBA) error {
	if s.closed {
		return fmt.Errorf("patternsource: source closed")
	}
	img := s.render()
	if dst.Rect.Dx() == s.opts.Width && dst.Rect.Dy() == s.opts.Height {
		draw.Draw(dst, dst.Rect, img, image.Point{}, draw.Src)
		return nil
	}
	draw.CatmullRom.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)
	return nil
}

// Close implements ports.SourceMedia.
func (s *Source) Close() error {
	s.closed = true
	return nil
}

// render draws color bars, a sweeping marker and the frame number.
func (s *Source) render() image.Image {
	w, h := float64(s.opts.Width), float64(s.opts.Height)
	frame := int(math.Floor(s.position*s.opts.FrameRate + 1e-6))

	dc := gg.NewContext(s.opts.Width, s.opts.Height)
	dc.SetColor(color.Black)
	dc.Clear()

	bars := []color.Color{
		color.RGBA{192, 192, 192, 255},
		color.RGBA{192, 192, 0, 255},
		color.RGBA{0, 192, 192, 255},
		color.RGBA{0, 192, 0, 255},
		color.RGBA{192, 0, 192, 255},
		color.RGBA{192, 0, 0, 255},
		color.RGBA{0, 0, 192, 255},
	}
	barW := w / float64(len(bars))
	for i, c := range bars {
		dc.SetColor(c)
		dc.DrawRectangle(float64(i)*barW, 0, barW+1, h*0.75)
		dc.Fill()
	}

	// One sweep per second.
	phase := math.Mod(s.position, 1)
	dc.SetColor(color.White)
	dc.DrawRectangle(phase*(w-h*0.1), h*0.8, h*0.1, h*0.15)
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawStringAnchored(strconv.Itoa(frame), w/2, h*0.375, 0.5, 0.5)

	return dc.Image()
}

var _ ports.SourceMedia = (*Source)(nil)
