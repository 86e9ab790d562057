package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/user/frameconv/pkg/adapters/containerprobe"
	"github.com/user/frameconv/pkg/adapters/logger"
	"github.com/user/frameconv/pkg/config"
	"github.com/user/frameconv/pkg/frameconv"
	"github.com/user/frameconv/pkg/transcoder"
)

// captureConfig runs the convert command with an action that only loads the
// configuration.
func captureConfig(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var got config.Config
	var gotErr error

	cmd := convertCommand()
	cmd.Action = func(c *cli.Context) error {
		got, gotErr = loadConfig(c)
		return nil
	}
	app := &cli.App{Name: "frameconv", Commands: []*cli.Command{cmd}}
	if err := app.Run(append([]string{"frameconv", "convert"}, args...)); err != nil {
		t.Fatalf("app.Run failed: %v", err)
	}
	return got, gotErr
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := captureConfig(t)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Codec != "h264" || cfg.MaxDurationSeconds != 60 || cfg.OutputDir != "." {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frameconv.yaml")
	os.WriteFile(path, []byte("codec: vp8\nbitrate_bps: 800000\nmax_duration_seconds: 30\n"), 0644)

	cfg, err := captureConfig(t, "--config", path, "--max-duration", "5", "--frame-rate", "24")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Codec != "vp8" || cfg.BitrateBps != 800000 {
		t.Errorf("file values lost: %+v", cfg)
	}
	if cfg.MaxDurationSeconds != 5 || cfg.FrameRate != 24 {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	if _, err := captureConfig(t, "--codec", "av1"); err == nil {
		t.Error("expected error for unsupported codec")
	}
	if _, err := captureConfig(t, "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestConvertWithoutFFmpegReportsCapability(t *testing.T) {
	t.Setenv("PATH", os.Getenv("PATH"))
	dir := t.TempDir()

	app := newApp()
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run([]string{
		"frameconv", "convert",
		"--ffmpeg-path", filepath.Join(dir, "missing", "ffmpeg"),
		"--quiet",
		filepath.Join(dir, "in.mp4"),
	})

	var exit cli.ExitCoder
	if !errors.As(err, &exit) || exit.ExitCode() != 3 {
		t.Fatalf("expected exit code 3, got %v", err)
	}
	if !strings.Contains(err.Error(), string(transcoder.KindCapabilityUnavailable)) {
		t.Errorf("error %q does not name the capability failure", err)
	}
}

func TestConvertPatternCommand(t *testing.T) {
	capability := frameconv.NewTranscoder(frameconv.Options{Logger: logger.NewNoop()}).Probe(context.Background())
	if !capability.Has("vp8") {
		t.Skip("ffmpeg with libvpx not available")
	}

	dir := t.TempDir()
	summary := filepath.Join(dir, "summary.md")
	err := newApp().Run([]string{
		"frameconv", "convert",
		"--pattern", "64x48@30:1",
		"--codec", "vp8",
		"--output-dir", dir,
		"--summary", summary,
		"--quiet",
	})
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	out := filepath.Join(dir, "converted-video.webm")
	report, err := containerprobe.DetectFromFile(out)
	if err != nil {
		t.Fatalf("inspect output: %v", err)
	}
	if report.Codec != containerprobe.CodecVP8 || report.Frames != 30 {
		t.Errorf("report = %+v", report)
	}

	if _, err := os.Stat(summary); err != nil {
		t.Errorf("summary not written: %v", err)
	}

	if err := newApp().Run([]string{"frameconv", "inspect", out}); err != nil {
		t.Errorf("inspect failed: %v", err)
	}
}
