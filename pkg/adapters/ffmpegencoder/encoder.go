package ffmpegencoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/user/frameconv/pkg/ports"
)

// Options configures the encoder.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// Logger receives debug output. May be nil.
	Logger ports.Logger
}

// chunkSource yields encoded units from ffmpeg's stdout.
type chunkSource interface {
	Next() ([]byte, bool, error)
}

type frameTiming struct {
	timestampUs int64
	durationUs  int64
}

// Encoder implements ports.VideoEncoder on top of an ffmpeg process.
type Encoder struct {
	opts   Options
	logger ports.Logger

	mu      sync.Mutex
	cfg     ports.EncoderConfig
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.Reader
	stderr  *lockedBuffer
	scratch *image.RGBA
	flushed bool
	closed  bool

	// pending holds the timing of submitted frames not yet seen on stdout.
	pendingMu sync.Mutex
	pending   []frameTiming

	queue     *eventQueue
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new ffmpeg-backed encoder.
func New(opts Options) *Encoder {
	var log ports.Logger = noopLogger{}
	if opts.Logger != nil {
		log = opts.Logger.WithComponent("ffmpeg")
	}
	return &Encoder{opts: opts, logger: log}
}

// NewFactory returns a constructor that only hands out encoders for codecs the
// prober found in the local ffmpeg build.
func NewFactory(opts Options, prober *Prober) func(ports.Codec) (ports.VideoEncoder, error) {
	return func(codec ports.Codec) (ports.VideoEncoder, error) {
		if !prober.Probe(context.Background()).Has(codec) {
			return nil, fmt.Errorf("%w: %s", ErrCodecUnavailable, codec)
		}
		return New(opts), nil
	}
}

// Configure validates cfg, starts ffmpeg and returns the chunk channel.
func (e *Encoder) Configure(cfg ports.EncoderConfig) (<-chan ports.EncoderEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd != nil {
		return nil, fmt.Errorf("%w: already configured", ErrInvalidConfig)
	}

	args, err := buildArgs(cfg)
	if err != nil {
		return nil, err
	}

	ffmpegPath, err := FindFFmpeg(e.opts.FFmpegPath)
	if err != nil {
		return nil, err
	}

	stderr := &lockedBuffer{}
	cmd := exec.Command(ffmpegPath, args...)
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	e.logger.Debug("Starting ffmpeg: %s", strings.Join(args, " "))
	if err := cmd.Start(); err != nil {
		// Start closes the pipes it created when it fails.
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}
	e.cfg = cfg
	e.cmd = cmd
	e.stderr = stderr
	e.stdin = stdin
	e.stdout = stdout

	var source chunkSource
	if cfg.Codec == ports.CodecVP8 {
		source = newIVFReader(stdout)
	} else {
		source = newAccessUnitReader(stdout)
	}

	out := make(chan ports.EncoderEvent)
	e.queue = newEventQueue()
	e.done = make(chan struct{})
	go e.queue.forward(out)
	go e.readOutput(source)

	return out, nil
}

// Encode writes one raw RGBA frame to ffmpeg. It must not be called
// concurrently with itself.
func (e *Encoder) Encode(frame ports.VideoFrame) error {
	e.mu.Lock()
	if e.stdin == nil || e.flushed || e.closed {
		e.mu.Unlock()
		return ErrNotInitialized
	}
	stdin := e.stdin
	e.mu.Unlock()

	if frame.Image == nil {
		return fmt.Errorf("%w: nil frame", ErrEncodingFailed)
	}
	pix := e.rawPixels(frame.Image)

	e.pendingMu.Lock()
	e.pending = append(e.pending, frameTiming{
		timestampUs: frame.TimestampMicros,
		durationUs:  frame.DurationMicros,
	})
	e.pendingMu.Unlock()

	// The write may block until ffmpeg drains its input; stdout is consumed
	// by readOutput meanwhile, so no lock is held here.
	if _, err := stdin.Write(pix); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrEncodingFailed, err, e.stderr.String())
	}
	return nil
}

// Flush closes ffmpeg's input. Remaining chunks are delivered before the
// event channel closes.
func (e *Encoder) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil || e.closed {
		return ErrNotInitialized
	}
	if e.flushed {
		return nil
	}
	e.flushed = true
	return e.stdin.Close()
}

// Close stops ffmpeg if it is still running and waits for the output reader.
func (e *Encoder) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		if e.stdin != nil && !e.flushed {
			e.stdin.Close()
		}
		cmd := e.cmd
		done := e.done
		e.mu.Unlock()

		// Nothing to stop when ffmpeg never started.
		if cmd == nil || done == nil {
			return
		}
		select {
		case <-done:
		default:
			if cmd.Process != nil {
				cmd.Process.Kill()
			}
			<-done
		}
		e.queue.stop()
	})
	return nil
}

// readOutput turns ffmpeg's stdout into chunk events in submission order.
func (e *Encoder) readOutput(source chunkSource) {
	defer close(e.done)

	var readErr error
	for {
		data, key, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}

		timing, ok := e.popTiming()
		if !ok {
			readErr = ErrUnexpectedChunk
			break
		}
		e.queue.push(ports.EncoderEvent{Chunk: &ports.EncodedChunk{
			Data:            data,
			TimestampMicros: timing.timestampUs,
			DurationMicros:  timing.durationUs,
			Key:             key,
		}})
	}

	if readErr != nil {
		if !e.isClosed() {
			e.queue.push(ports.EncoderEvent{Err: fmt.Errorf("read ffmpeg output: %w", readErr)})
		}
		// Keep ffmpeg from blocking on a full pipe until it exits.
		io.Copy(io.Discard, e.stdout)
	}

	waitErr := e.cmd.Wait()
	if waitErr != nil && readErr == nil && !e.isClosed() {
		e.queue.push(ports.EncoderEvent{Err: fmt.Errorf("%w: %v\nstderr: %s", ErrEncodingFailed, waitErr, e.stderr.String())})
	}
	e.queue.close()
}

func (e *Encoder) isClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Encoder) popTiming() (frameTiming, bool) {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	if len(e.pending) == 0 {
		return frameTiming{}, false
	}
	t := e.pending[0]
	e.pending = e.pending[1:]
	return t, true
}

// rawPixels returns tightly packed RGBA bytes at the configured size.
func (e *Encoder) rawPixels(img *image.RGBA) []byte {
	w, h := e.cfg.Width, e.cfg.Height
	if img.Rect.Min == (image.Point{}) && img.Rect.Dx() == w && img.Rect.Dy() == h && img.Stride == 4*w {
		return img.Pix[:4*w*h]
	}
	if e.scratch == nil {
		e.scratch = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	draw.Draw(e.scratch, e.scratch.Bounds(), img, img.Bounds().Min, draw.Src)
	return e.scratch.Pix
}

// buildArgs validates cfg and returns the ffmpeg command line.
func buildArgs(cfg ports.EncoderConfig) ([]string, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
	}
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("%w: frame rate %.2f", ErrInvalidConfig, cfg.FrameRate)
	}
	if cfg.BitrateBps <= 0 {
		return nil, fmt.Errorf("%w: bitrate %d", ErrInvalidConfig, cfg.BitrateBps)
	}

	bitrate := strconv.Itoa(cfg.BitrateBps)
	gop := strconv.Itoa(int(cfg.FrameRate * 2))

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", strconv.FormatFloat(cfg.FrameRate, 'f', -1, 64),
		"-i", "pipe:0",
		"-an",
		"-pix_fmt", "yuv420p",
		"-b:v", bitrate,
		"-g", gop,
	}

	switch cfg.Codec {
	case ports.CodecH264:
		// 4:2:0 chroma subsampling needs even dimensions.
		if cfg.Width%2 != 0 || cfg.Height%2 != 0 {
			return nil, fmt.Errorf("%w: H.264 requires even dimensions, got %dx%d", ErrInvalidConfig, cfg.Width, cfg.Height)
		}
		args = append(args,
			"-c:v", "libx264",
			"-profile:v", "baseline",
			"-level", "3.0",
			"-preset", "veryfast",
			"-tune", "zerolatency",
			"-maxrate", bitrate,
			"-bufsize", strconv.Itoa(cfg.BitrateBps*2),
			"-x264-params", "aud=1:bframes=0",
			"-f", "h264",
			"pipe:1",
		)
	case ports.CodecVP8:
		args = append(args,
			"-c:v", "libvpx",
			"-deadline", "realtime",
			"-cpu-used", "8",
			"-auto-alt-ref", "0",
			"-lag-in-frames", "0",
			"-f", "ivf",
			"pipe:1",
		)
	default:
		return nil, fmt.Errorf("%w: codec %q", ErrInvalidConfig, cfg.Codec)
	}

	return args, nil
}

// lockedBuffer collects ffmpeg's stderr while it is being written.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.TrimSpace(b.buf.String())
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{})        {}
func (noopLogger) Info(string, ...interface{})         {}
func (noopLogger) Warn(string, ...interface{})         {}
func (noopLogger) Error(string, ...interface{})        {}
func (l noopLogger) WithComponent(string) ports.Logger { return l }

var _ ports.VideoEncoder = (*Encoder)(nil)
