package summarizer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/frameconv/pkg/mocks"
)

func TestMarkdownFormatter_Format_Done(t *testing.T) {
	summary := &Summary{
		GeneratedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		Source: SourceInfo{
			Name:            "clip.mov",
			Width:           1280,
			Height:          720,
			DurationSeconds: 12.5,
			FrameRate:       29.97,
		},
		Settings: Settings{
			Codec:              "vp8",
			MaxDurationSeconds: 60,
			BitrateBps:         2_000_000,
			FrameRate:          29.97,
			FramesTotal:        374,
		},
		Result: ResultInfo{
			State:          "done",
			Frames:         374,
			DurationMicros: 12_479_145,
			FileName:       "converted-video.webm",
			MIMEType:       `video/webm; codecs="vp8"`,
			FileSize:       3 * 1024 * 1024 / 2,
			Elapsed:        4200 * time.Millisecond,
		},
	}

	result := NewMarkdownFormatter().Format(summary)

	checks := []string{
		"# Conversion Summary",
		"2026-01-15T10:30:00Z",
		"| File | clip.mov |",
		"| Size | 1280x720 |",
		"| Frame Rate | 29.97 fps |",
		"| Codec | vp8 |",
		"| Bitrate | 2.00 Mbps |",
		"| Frames | 374 |",
		"| State | done |",
		"| File | converted-video.webm |",
		"| File Size | 1.50 MB |",
		"| Video Duration | 12.48 s |",
		"| Elapsed | 4.2s |",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}
	if strings.Contains(result, "| Failure |") {
		t.Error("done job should not report a failure")
	}
}

func TestMarkdownFormatter_Format_Failed(t *testing.T) {
	summary := &Summary{
		GeneratedAt: time.Now(),
		Settings:    Settings{Codec: "h264", BitrateBps: 500_000},
		Result: ResultInfo{
			State:          "failed",
			FailureKind:    "FrameEncodeError",
			FailureMessage: "encode frame 3 | broken\npipe",
			Frames:         3,
		},
	}

	result := NewMarkdownFormatter().Format(summary)

	for _, check := range []string{
		"| State | failed |",
		"| Failure | FrameEncodeError |",
		`encode frame 3 \| broken pipe`,
		"| Bitrate | 500 kbps |",
		"| Frame Rate | unknown |",
	} {
		if !strings.Contains(result, check) {
			t.Errorf("expected output to contain %q\n%s", check, result)
		}
	}
	if strings.Contains(result, "| File Size |") {
		t.Error("failed job should not report an output file")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1024 * 1024, "1.00 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.bytes); got != tt.expected {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.bytes, got, tt.expected)
		}
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(FormatFunc(func(s *Summary) string { return "state=" + s.Result.State }), fs)

	s := NewBuilder().Build()
	s.Result.State = "done"
	if err := w.Write("out/summary.md", s); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, ok := fs.File("out/summary.md")
	if !ok || string(data) != "state=done" {
		t.Errorf("written = %q, %v", data, ok)
	}
}

func TestWriter_WriteError(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFileFunc = func(string, []byte) error { return errors.New("disk full") }

	err := NewWriter(NewMarkdownFormatter(), fs).Write("summary.md", NewSummary())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected write error, got %v", err)
	}
}
