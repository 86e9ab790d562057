// Package main provides the CLI entry point for frameconv.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/frameconv/pkg/adapters/containerprobe"
	"github.com/user/frameconv/pkg/adapters/logger"
	"github.com/user/frameconv/pkg/adapters/osfilesystem"
	"github.com/user/frameconv/pkg/adapters/progressbar"
	"github.com/user/frameconv/pkg/config"
	"github.com/user/frameconv/pkg/frameconv"
	"github.com/user/frameconv/pkg/metrics"
	"github.com/user/frameconv/pkg/ports"
	"github.com/user/frameconv/pkg/server"
	"github.com/user/frameconv/pkg/summarizer"
	"github.com/user/frameconv/pkg/transcoder"
	"github.com/user/frameconv/pkg/widget"
)

var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, transcoder.ErrCancelled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "frameconv",
		Usage:   l10n.T("Re-encode videos to H.264/MP4 or VP8/WebM frame by frame"),
		Version: version,
		Commands: []*cli.Command{
			convertCommand(),
			serveCommand(),
			probeCommand(),
			inspectCommand(),
		},
	}
}

// Flag categories, translated when the flags are built.
const (
	catConversion = "Conversion"
	catOutput     = "Output"
	catTools      = "Tools"
	catLogging    = "Logging"
	catServer     = "Server"
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: l10n.T("YAML configuration file"), Category: l10n.T(catConversion)},
		&cli.StringFlag{Name: "ffmpeg-path", Usage: l10n.T("Path to ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)"), Category: l10n.T(catTools)},
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T(catLogging)},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T(catLogging)},
	}
}

func convertCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "codec", Aliases: []string{"c"}, Usage: l10n.T("Target codec (h264, vp8)"), Category: l10n.T(catConversion)},
		&cli.Float64Flag{Name: "max-duration", Aliases: []string{"m"}, Usage: l10n.T("Maximum seconds of input to convert"), Category: l10n.T(catConversion)},
		&cli.IntFlag{Name: "bitrate", Aliases: []string{"b"}, Usage: l10n.T("Target bitrate in bits per second"), Category: l10n.T(catConversion)},
		&cli.Float64Flag{Name: "frame-rate", Aliases: []string{"r"}, Usage: l10n.T("Capture frame rate (0 = source rate)"), Category: l10n.T(catConversion)},
		&cli.StringFlag{Name: "pattern", Usage: l10n.T("Convert a generated test card instead of a file (WxH@FPS:SECONDS)"), Category: l10n.T(catConversion)},
		&cli.StringFlag{Name: "output-dir", Aliases: []string{"o"}, Usage: l10n.T("Directory for the converted video"), Category: l10n.T(catOutput)},
		&cli.StringFlag{Name: "summary", Usage: l10n.T("Output conversion summary to file (Markdown format)"), Category: l10n.T(catOutput)},
	)
	return &cli.Command{
		Name:      "convert",
		Usage:     l10n.T("Convert a video file"),
		ArgsUsage: "<input>",
		Flags:     flags,
		Action:    runConvert,
	}
}

func serveCommand() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{Name: "addr", Usage: l10n.T("Listen address"), Category: l10n.T(catServer)},
		&cli.BoolFlag{Name: "metrics", Usage: l10n.T("Expose Prometheus metrics"), Category: l10n.T(catServer)},
		&cli.Float64Flag{Name: "max-duration", Aliases: []string{"m"}, Usage: l10n.T("Maximum seconds of input to convert"), Category: l10n.T(catConversion)},
	)
	return &cli.Command{
		Name:   "serve",
		Usage:  l10n.T("Serve the converter over HTTP"),
		Flags:  flags,
		Action: runServe,
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:   "probe",
		Usage:  l10n.T("Report which codecs this host can encode"),
		Flags:  commonFlags(),
		Action: runProbe,
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     l10n.T("Show the container and codec of a video file"),
		ArgsUsage: "<file>",
		Action:    runInspect,
	}
}

// loadConfig merges the config file, if any, with flags set on the command line.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if c.IsSet("codec") {
		cfg.Codec = c.String("codec")
	}
	if c.IsSet("max-duration") {
		cfg.MaxDurationSeconds = c.Float64("max-duration")
	}
	if c.IsSet("bitrate") {
		cfg.BitrateBps = c.Int("bitrate")
	}
	if c.IsSet("frame-rate") {
		cfg.FrameRate = c.Float64("frame-rate")
	}
	if c.IsSet("output-dir") {
		cfg.OutputDir = c.String("output-dir")
	}
	if c.IsSet("ffmpeg-path") {
		cfg.FFmpegPath = c.String("ffmpeg-path")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("addr") {
		cfg.Server.Addr = c.String("addr")
	}
	if c.IsSet("metrics") {
		cfg.Metrics.Enabled = c.Bool("metrics")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, frameconv.UseFFmpegDir(cfg.FFmpegPath)
}

func newLogger(c *cli.Context, cfg config.Config) ports.Logger {
	if c.Bool("quiet") {
		return logger.NewNoop()
	}
	return logger.NewConsole(cfg.Level())
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context, log ports.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func runConvert(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	tr := frameconv.NewTranscoder(frameconv.Options{FFmpegPath: cfg.FFmpegPath, Logger: log})
	if err := tr.CheckCapability(c.Context); err != nil {
		return cli.Exit(err.Error(), 3)
	}

	var src ports.SourceMedia
	var name string
	if pattern := c.String("pattern"); pattern != "" {
		name = "pattern " + pattern
		src, err = frameconv.OpenPattern(pattern)
	} else {
		if c.NArg() < 1 {
			return cli.Exit(l10n.T("Input file argument is required"), 2)
		}
		name = c.Args().First()
		src, err = frameconv.OpenSource(name, log)
	}
	if err != nil {
		return err
	}
	defer src.Close()

	ctx, cancel := signalContext(c.Context, log)
	defer cancel()

	tcfg := cfg.ToTranscoderConfig()

	log.Info("Converting %s to %s (max %.0f seconds)...", name, tcfg.Codec, tcfg.MaxDurationSeconds)
	job, err := tr.Configure(ctx, src, tcfg)
	if job == nil {
		return err
	}

	started := time.Now()
	var out *transcoder.Output
	if err == nil {
		var bar *progressbar.Bar
		if !c.Bool("quiet") {
			bar = progressbar.New(l10n.T("Encoding"))
			job.OnProgress(bar)
		}
		out, err = job.Run(ctx)
		if bar != nil {
			bar.Finish()
		}
	}

	fs := osfilesystem.New("")
	if path := c.String("summary"); path != "" {
		summary := summarizer.NewBuilder().
			WithSource(name, src.Info()).
			WithJob(job, tcfg.BitrateBps).
			WithOutput(out).
			WithElapsed(time.Since(started)).
			Build()
		if werr := summarizer.NewWriter(summarizer.NewMarkdownFormatter(), fs).Write(path, summary); werr != nil {
			log.Error("Failed to write summary: %s", werr.Error())
		} else {
			log.Info("Summary saved to %s", path)
		}
	}
	if err != nil {
		return err
	}

	dest := filepath.Join(cfg.OutputDir, out.FileName)
	if err := fs.WriteFile(dest, out.Data); err != nil {
		log.Error("Failed to write output: %s", err.Error())
		return err
	}
	log.Info("Output saved to %s", dest)
	return nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	opts := frameconv.Options{FFmpegPath: cfg.FFmpegPath, Logger: log}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		opts.Observer = metrics.NewJobObserver()
		metricsPath = cfg.Metrics.Path
	}

	w := widget.New(frameconv.NewTranscoder(opts), widget.Options{
		Logger:             log,
		MaxDurationSeconds: cfg.MaxDurationSeconds,
	})

	srv := server.New(w, server.Options{
		Logger:     log,
		FileSystem: osfilesystem.New(cfg.Server.UploadDir),
		Open: func(path string) (ports.SourceMedia, error) {
			return frameconv.OpenSource(path, log)
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		MetricsPath:    metricsPath,
	})

	ctx, cancel := signalContext(c.Context, log)
	defer cancel()
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}

func runProbe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(c, cfg)

	capability := frameconv.NewTranscoder(frameconv.Options{FFmpegPath: cfg.FFmpegPath, Logger: log}).Probe(c.Context)
	if !capability.Supported {
		return cli.Exit(l10n.F("Encoding is not supported on this host: %s", capability.Reason), 3)
	}

	codecs := make([]string, 0, len(capability.Encoders))
	for _, codec := range capability.Encoders {
		codecs = append(codecs, string(codec))
	}
	fmt.Println(l10n.F("Supported codecs: %s", strings.Join(codecs, ", ")))
	return nil
}

func runInspect(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit(l10n.T("File argument is required"), 2)
	}

	report, err := containerprobe.DetectFromFile(c.Args().First())
	if err != nil {
		return err
	}

	fmt.Println(l10n.F("Container: %s", report.Container))
	fmt.Println(l10n.F("Codec: %s", report.Codec))
	fmt.Println(l10n.F("Size: %dx%d", report.Width, report.Height))
	fmt.Println(l10n.F("Frames: %d, Duration: %.2fs", report.Frames, report.DurationSeconds))
	if report.Fragmented {
		fmt.Println(l10n.T("Fragmented: yes"))
	}
	return nil
}
