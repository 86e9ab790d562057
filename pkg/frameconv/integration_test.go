package frameconv

import (
	"context"
	"testing"

	"github.com/user/frameconv/pkg/adapters/containerprobe"
	"github.com/user/frameconv/pkg/adapters/logger"
	"github.com/user/frameconv/pkg/ports"
	"github.com/user/frameconv/pkg/transcoder"
)

// TestConvertPattern runs the full stack against the local ffmpeg and checks
// the produced container.
func TestConvertPattern(t *testing.T) {
	tr := NewTranscoder(Options{Logger: logger.NewNoop()})
	capability := tr.Probe(context.Background())
	if !capability.Supported {
		t.Skipf("ffmpeg not available: %s", capability.Reason)
	}

	tests := []struct {
		codec     ports.Codec
		container containerprobe.Container
		probed    containerprobe.Codec
	}{
		{ports.CodecH264, containerprobe.ContainerMP4, containerprobe.CodecH264},
		{ports.CodecVP8, containerprobe.ContainerWebM, containerprobe.CodecVP8},
	}

	for _, tt := range tests {
		t.Run(string(tt.codec), func(t *testing.T) {
			if !capability.Has(tt.codec) {
				t.Skipf("ffmpeg lacks a %s encoder", tt.codec)
			}

			src, err := OpenPattern("64x48@30:2")
			if err != nil {
				t.Fatal(err)
			}
			defer src.Close()

			job, err := tr.Configure(context.Background(), src, transcoder.Config{
				Codec:              string(tt.codec),
				MaxDurationSeconds: 1,
				BitrateBps:         200_000,
			})
			if err != nil {
				t.Fatalf("Configure failed: %v", err)
			}

			var last int
			job.OnProgress(ports.ProgressFunc(func(p int) { last = p }))

			out, err := job.Run(context.Background())
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if last != 100 || out.Frames != 30 {
				t.Errorf("progress %d, frames %d", last, out.Frames)
			}

			report, err := containerprobe.DetectFromBytes(out.Data)
			if err != nil {
				t.Fatalf("probe output: %v", err)
			}
			if report.Container != tt.container || report.Codec != tt.probed {
				t.Errorf("report = %+v", report)
			}
			if report.Width != 64 || report.Height != 48 {
				t.Errorf("size = %dx%d", report.Width, report.Height)
			}
			if report.Frames != 30 {
				t.Errorf("container holds %d frames, want 30", report.Frames)
			}
		})
	}
}
