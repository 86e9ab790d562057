// Package transcoder re-encodes a source video frame by frame into H.264/MP4
// or VP8/WebM.
//
// A Transcoder probes the host, validates a Config against a source and hands
// back a Job. The Job drives a single-threaded loop: seek, capture, submit,
// collect chunks, flush, then append every chunk to the output container.
package transcoder

import (
	"context"
	"image"
	"time"

	"github.com/user/frameconv/pkg/ports"
)

// EncoderFactory constructs an encoder for a codec. It fails when the host
// cannot provide one.
type EncoderFactory func(codec ports.Codec) (ports.VideoEncoder, error)

// MuxerFactory constructs the output container for a codec.
type MuxerFactory func(codec ports.Codec) (ports.ContainerMuxer, error)

// Transcoder creates and configures jobs.
type Transcoder struct {
	encoders EncoderFactory
	muxers   MuxerFactory
	prober   ports.CapabilityProber
	logger   ports.Logger
	observer ports.JobObserver
}

// Option customizes a Transcoder.
type Option func(*Transcoder)

// WithObserver sets the job lifecycle observer.
func WithObserver(observer ports.JobObserver) Option {
	return func(t *Transcoder) {
		t.observer = observer
	}
}

// New creates a new Transcoder.
func New(encoders EncoderFactory, muxers MuxerFactory, prober ports.CapabilityProber, logger ports.Logger, opts ...Option) *Transcoder {
	t := &Transcoder{
		encoders: encoders,
		muxers:   muxers,
		prober:   prober,
		logger:   logger.WithComponent("transcoder"),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Probe reports whether the host can run jobs.
func (t *Transcoder) Probe(ctx context.Context) ports.Capability {
	return t.prober.Probe(ctx)
}

// CheckCapability returns a *Error of kind KindCapabilityUnavailable when the
// host cannot run jobs. Callers check it before opening or decoding a source.
func (t *Transcoder) CheckCapability(ctx context.Context) error {
	capability := t.prober.Probe(ctx)
	if capability.Supported {
		return nil
	}
	t.logger.Error("Encoding is not supported on this host: %s", capability.Reason)
	return newError(KindCapabilityUnavailable, nil, "%s", capability.Reason)
}

// Configure validates cfg against src and constructs the encoder.
//
// When the host lacks encode/decode capability no job is created and an error
// matching ErrCapabilityUnavailable is returned. Every other failure returns a
// job already in StateFailed together with its *Error.
func (t *Transcoder) Configure(ctx context.Context, src ports.SourceMedia, cfg Config) (*Job, error) {
	if err := t.CheckCapability(ctx); err != nil {
		return nil, err
	}

	if cfg.BitrateBps <= 0 {
		cfg.BitrateBps = DefaultConfig().BitrateBps
	}
	if cfg.MaxDurationSeconds <= 0 {
		cfg.MaxDurationSeconds = DefaultConfig().MaxDurationSeconds
	}

	job := &Job{
		maxDuration: cfg.MaxDurationSeconds,
		bitrate:     cfg.BitrateBps,
		src:         src,
		muxers:      t.muxers,
		logger:      t.logger,
		observer:    t.observer,
		progress:    -1,
	}

	codec, err := ParseCodec(cfg.Codec)
	if err != nil {
		return job, job.failConfigure(newError(KindUnsupportedCodec, err, "codec %q is not supported", cfg.Codec))
	}
	job.codec = codec

	info := src.Info()
	job.info = info
	if info.Width <= 0 || info.Height <= 0 {
		return job, job.failConfigure(newError(KindInputDecode, nil, "source has no decodable video track"))
	}
	job.frameRate = effectiveFrameRate(cfg.FrameRate, info)
	job.framesTotal = FramesTotal(info.DurationSeconds, cfg.MaxDurationSeconds, job.frameRate)
	if job.framesTotal == 0 {
		return job, job.failConfigure(newError(KindInputDecode, nil, "source is shorter than one frame"))
	}

	encoder, err := t.encoders(codec)
	if err != nil {
		return job, job.failConfigure(newError(KindUnsupportedCodec, err, "no %s encoder available", codec))
	}

	events, err := encoder.Configure(ports.EncoderConfig{
		Codec:      codec,
		Width:      info.Width,
		Height:     info.Height,
		FrameRate:  job.frameRate,
		BitrateBps: cfg.BitrateBps,
	})
	if err != nil {
		encoder.Close()
		return job, job.failConfigure(newError(KindEncoderConfiguration, err, "configure %s encoder", codec))
	}
	job.encoder = encoder
	job.events = events
	job.surface = image.NewRGBA(image.Rect(0, 0, info.Width, info.Height))

	t.logger.Debug("Configured %s job: %dx%d, %.2f fps, %d frames", codec, info.Width, info.Height, job.frameRate, job.framesTotal)
	return job, nil
}

type noopObserver struct{}

func (noopObserver) JobStarted(ports.Codec) {}

func (noopObserver) ChunkAppended(ports.Codec, int) {}

func (noopObserver) JobFinished(ports.Codec, string, string, time.Duration) {}
