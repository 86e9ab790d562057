package frameconv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/frameconv/pkg/adapters/logger"
	"github.com/user/frameconv/pkg/ports"
	"github.com/user/frameconv/pkg/transcoder"
)

func TestNewMuxer(t *testing.T) {
	tests := []struct {
		codec ports.Codec
		ext   string
	}{
		{ports.CodecH264, "mp4"},
		{ports.CodecVP8, "webm"},
	}
	for _, tt := range tests {
		m, err := NewMuxer(tt.codec)
		if err != nil {
			t.Fatalf("NewMuxer(%s): %v", tt.codec, err)
		}
		if m.Extension() != tt.ext {
			t.Errorf("NewMuxer(%s).Extension() = %q, want %q", tt.codec, m.Extension(), tt.ext)
		}
		if ext := transcoder.ExtensionFor(tt.codec); ext != m.Extension() {
			t.Errorf("ExtensionFor(%s) = %q disagrees with muxer %q", tt.codec, ext, m.Extension())
		}
	}

	if _, err := NewMuxer("av1"); err == nil {
		t.Error("expected error for unknown codec")
	}
}

func TestNewTranscoderWithoutFFmpeg(t *testing.T) {
	tr := NewTranscoder(Options{
		FFmpegPath: filepath.Join(t.TempDir(), "no-ffmpeg"),
		Logger:     logger.NewNoop(),
	})

	if c := tr.Probe(context.Background()); c.Supported {
		t.Fatal("probe should fail without ffmpeg")
	}

	src, err := OpenPattern("64x48@30:1")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	job, err := tr.Configure(context.Background(), src, transcoder.DefaultConfig())
	if job != nil {
		t.Error("no job should be created without capability")
	}
	if transcoder.KindOf(err) != transcoder.KindCapabilityUnavailable {
		t.Errorf("err = %v", err)
	}
}

func TestOpenPattern(t *testing.T) {
	src, err := OpenPattern("320x240@25:2")
	if err != nil {
		t.Fatalf("OpenPattern failed: %v", err)
	}
	info := src.Info()
	if info.Width != 320 || info.Height != 240 || info.FrameRate != 25 || info.DurationSeconds != 2 {
		t.Errorf("info = %+v", info)
	}

	if _, err := OpenPattern("tiny"); err == nil {
		t.Error("expected parse error")
	}
}

func TestOpenSourceMissing(t *testing.T) {
	if _, err := OpenSource(filepath.Join(t.TempDir(), "missing.mp4"), logger.NewNoop()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestUseFFmpegDir(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	dir := t.TempDir()

	if err := UseFFmpegDir(filepath.Join(dir, "ffmpeg")); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(os.Getenv("PATH"), dir+string(os.PathListSeparator)) {
		t.Errorf("PATH = %q", os.Getenv("PATH"))
	}

	if err := UseFFmpegDir(""); err != nil {
		t.Error(err)
	}
}
