// Package frameconv wires the transcoder to its production adapters.
package frameconv

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/user/frameconv/pkg/adapters/ffmpegencoder"
	"github.com/user/frameconv/pkg/adapters/mp4muxer"
	"github.com/user/frameconv/pkg/adapters/patternsource"
	"github.com/user/frameconv/pkg/adapters/vidiosource"
	"github.com/user/frameconv/pkg/adapters/webmmuxer"
	"github.com/user/frameconv/pkg/ports"
	"github.com/user/frameconv/pkg/transcoder"
)

// Options configures the production stack.
type Options struct {
	// FFmpegPath overrides ffmpeg discovery.
	FFmpegPath string
	Logger     ports.Logger
	// Observer receives job lifecycle events. May be nil.
	Observer ports.JobObserver
}

// NewTranscoder creates a transcoder backed by ffmpeg encoders and the
// built-in MP4 and WebM muxers.
func NewTranscoder(opts Options) *transcoder.Transcoder {
	prober := ffmpegencoder.NewProber(opts.FFmpegPath, opts.Logger)
	encoders := ffmpegencoder.NewFactory(ffmpegencoder.Options{
		FFmpegPath: opts.FFmpegPath,
		Logger:     opts.Logger,
	}, prober)

	var topts []transcoder.Option
	if opts.Observer != nil {
		topts = append(topts, transcoder.WithObserver(opts.Observer))
	}
	return transcoder.New(encoders, NewMuxer, prober, opts.Logger, topts...)
}

// NewMuxer returns the container a codec is written to.
func NewMuxer(codec ports.Codec) (ports.ContainerMuxer, error) {
	switch codec {
	case ports.CodecH264:
		return mp4muxer.New(), nil
	case ports.CodecVP8:
		return webmmuxer.New(), nil
	default:
		return nil, fmt.Errorf("no container for codec %q", codec)
	}
}

// OpenSource opens a video file for conversion.
func OpenSource(path string, logger ports.Logger) (ports.SourceMedia, error) {
	src, err := vidiosource.Open(path, logger)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// OpenPattern creates a synthetic source from a "WxH@FPS:SECONDS" pattern.
func OpenPattern(pattern string) (ports.SourceMedia, error) {
	opts, err := patternsource.Parse(pattern)
	if err != nil {
		return nil, err
	}
	src, err := patternsource.New(opts)
	if err != nil {
		return nil, err
	}
	return src, nil
}

// UseFFmpegDir puts the directory of ffmpegPath first on PATH so that every
// tool invoking ffmpeg by name, including the source decoder, finds the same
// build.
func UseFFmpegDir(ffmpegPath string) error {
	if ffmpegPath == "" {
		return nil
	}
	dir := filepath.Dir(ffmpegPath)
	return os.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}
