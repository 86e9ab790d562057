package patternsource

import (
	"context"
	"image"
	"testing"
)

func TestParse(t *testing.T) {
	opts, err := Parse("640x480@29.97:10")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if opts.Width != 640 || opts.Height != 480 || opts.FrameRate != 29.97 || opts.DurationSeconds != 10 {
		t.Errorf("unexpected options: %+v", opts)
	}

	for _, bad := range []string{"", "640x480", "640x480@30", "ax480@30:1", "640x480@30:1s"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("Parse(%q): expected error", bad)
		}
	}
}

func TestNewValidates(t *testing.T) {
	for _, opts := range []Options{
		{Width: 0, Height: 10, FrameRate: 30, DurationSeconds: 1},
		{Width: 10, Height: 10, FrameRate: 0, DurationSeconds: 1},
		{Width: 10, Height: 10, FrameRate: 30, DurationSeconds: 0},
	} {
		if _, err := New(opts); err == nil {
			t.Errorf("New(%+v): expected error", opts)
		}
	}
}

func TestCaptureChangesWithPosition(t *testing.T) {
	src, err := New(Options{Width: 64, Height: 48, FrameRate: 10, DurationSeconds: 2})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	a := image.NewRGBA(image.Rect(0, 0, 64, 48))
	b := image.NewRGBA(image.Rect(0, 0, 64, 48))

	if err := src.Seek(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if err := src.CaptureFrame(a); err != nil {
		t.Fatal(err)
	}
	if err := src.Seek(ctx, 0.5); err != nil {
		t.Fatal(err)
	}
	if err := src.CaptureFrame(b); err != nil {
		t.Fatal(err)
	}

	if string(a.Pix) == string(b.Pix) {
		t.Error("expected frames at different positions to differ")
	}
	if a.Pix[3] != 255 {
		t.Error("expected opaque frame")
	}
	if src.Seeks() != 2 {
		t.Errorf("expected 2 seeks, got %d", src.Seeks())
	}
}

func TestSeekClampsAndCancels(t *testing.T) {
	src, _ := New(Options{Width: 16, Height: 16, FrameRate: 10, DurationSeconds: 2})
	src.Seek(context.Background(), 5)
	if src.Position() != 2 {
		t.Errorf("position = %.2f, want 2", src.Position())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := src.Seek(ctx, 1); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCaptureScales(t *testing.T) {
	src, _ := New(Options{Width: 64, Height: 48, FrameRate: 10, DurationSeconds: 1})
	dst := image.NewRGBA(image.Rect(0, 0, 16, 12))
	if err := src.CaptureFrame(dst); err != nil {
		t.Fatalf("CaptureFrame failed: %v", err)
	}
}

func TestClosedSource(t *testing.T) {
	src, _ := New(Options{Width: 16, Height: 16, FrameRate: 10, DurationSeconds: 1})
	src.Close()
	if err := src.CaptureFrame(image.NewRGBA(image.Rect(0, 0, 16, 16))); err == nil {
		t.Error("expected error after Close")
	}
}
