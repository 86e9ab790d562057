package transcoder

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"time"

	"github.com/user/frameconv/pkg/ports"
)

// Output is the playable result of a finished job.
type Output struct {
	Data           []byte
	Codec          ports.Codec
	MIMEType       string
	Extension      string
	FileName       string
	Frames         int
	DurationMicros int64
}

// Status is a point-in-time view of a job.
type Status struct {
	State           State
	Codec           ports.Codec
	FramesProcessed int
	FramesTotal     int
	Progress        int // 0-100, -1 before the first chunk
	Err             *Error
}

// Job is a single transcode invocation. It is driven by one goroutine calling
// Run; Status may be called concurrently.
type Job struct {
	// immutable after Configure
	codec       ports.Codec
	info        ports.MediaInfo
	frameRate   float64
	maxDuration float64
	bitrate     int
	framesTotal int

	src      ports.SourceMedia
	encoder  ports.VideoEncoder
	events   <-chan ports.EncoderEvent
	muxers   MuxerFactory
	logger   ports.Logger
	observer ports.JobObserver

	// owned by the Run goroutine
	surface   *image.RGBA
	chunks    []ports.EncodedChunk
	reporters []ports.ProgressReporter
	started   time.Time

	mu              sync.Mutex
	state           State
	framesProcessed int
	progress        int
	output          *Output
	err             *Error
}

// OnProgress registers a reporter that receives a percentage after every
// appended chunk. It must be called before Run.
func (j *Job) OnProgress(r ports.ProgressReporter) {
	j.reporters = append(j.reporters, r)
}

// Codec returns the target codec.
func (j *Job) Codec() ports.Codec { return j.codec }

// FrameRate returns the capture rate in frames per second.
func (j *Job) FrameRate() float64 { return j.frameRate }

// FramesTotal returns the number of frames the job will capture.
func (j *Job) FramesTotal() int { return j.framesTotal }

// MaxDurationSeconds returns the configured frame budget in seconds.
func (j *Job) MaxDurationSeconds() float64 { return j.maxDuration }

// Status returns the current job status.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Status{
		State:           j.state,
		Codec:           j.codec,
		FramesProcessed: j.framesProcessed,
		FramesTotal:     j.framesTotal,
		Progress:        j.progress,
		Err:             j.err,
	}
}

// Output returns the job output once the job is done.
func (j *Job) Output() (*Output, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.output, j.output != nil
}

// Run executes the job. It returns the output on success, a *Error on failure
// and an error wrapping ErrCancelled when ctx is cancelled.
func (j *Job) Run(ctx context.Context) (*Output, error) {
	j.mu.Lock()
	if j.state != StateIdle {
		err := j.err
		j.mu.Unlock()
		if err != nil {
			return nil, err
		}
		return nil, ErrNotIdle
	}
	j.state = StateEncoding
	j.mu.Unlock()

	j.started = time.Now()
	j.observer.JobStarted(j.codec)
	j.logger.Info("Encoding %d frames at %.2f fps as %s", j.framesTotal, j.frameRate, j.codec)

	defer j.release()

	if err := j.encode(ctx); err != nil {
		return nil, j.terminate(ctx, err)
	}

	out, err := j.finalize(ctx)
	if err != nil {
		return nil, j.terminate(ctx, err)
	}

	j.mu.Lock()
	j.output = out
	j.state = StateDone
	j.mu.Unlock()

	j.observer.JobFinished(j.codec, StateDone.String(), "", time.Since(j.started))
	j.logger.Info("Conversion completed: %s, %d bytes", out.FileName, len(out.Data))
	return out, nil
}

// encode runs the seek/capture/submit loop and drains the encoder.
func (j *Job) encode(ctx context.Context) error {
	if err := j.src.Seek(ctx, 0); err != nil {
		return j.sourceError(ctx, err, "seek to start")
	}

	frameDuration := FrameDuration(j.frameRate)
	for k := 0; k < j.framesTotal; k++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := j.src.CaptureFrame(j.surface); err != nil {
			return newError(KindInputDecode, err, "capture frame %d", k)
		}

		frame := ports.VideoFrame{
			Image:           j.surface,
			TimestampMicros: FrameTimestamp(k, j.frameRate),
			DurationMicros:  frameDuration,
		}
		if err := j.encoder.Encode(frame); err != nil {
			return newError(KindFrameEncode, err, "encode frame %d", k)
		}

		if err := j.drainReady(); err != nil {
			return err
		}

		if k+1 < j.framesTotal {
			if err := j.src.Seek(ctx, float64(k+1)/j.frameRate); err != nil {
				return j.sourceError(ctx, err, "seek to frame %d", k+1)
			}
		}
	}

	if err := j.encoder.Flush(); err != nil {
		return newError(KindFrameEncode, err, "flush encoder")
	}
	if err := j.drainAll(ctx); err != nil {
		return err
	}
	j.encoder.Close()

	j.mu.Lock()
	processed := j.framesProcessed
	j.mu.Unlock()
	if processed < j.framesTotal {
		j.logger.Warn("Encoder produced %d chunks for %d frames", processed, j.framesTotal)
	}
	return nil
}

// drainReady handles every event already delivered without blocking.
func (j *Job) drainReady() error {
	for {
		select {
		case ev, ok := <-j.events:
			if !ok {
				return newError(KindFrameEncode, nil, "encoder stopped before flush")
			}
			if err := j.handle(ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// drainAll handles events until the encoder closes its channel.
func (j *Job) drainAll(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-j.events:
			if !ok {
				return nil
			}
			if err := j.handle(ev); err != nil {
				return err
			}
		}
	}
}

func (j *Job) handle(ev ports.EncoderEvent) error {
	if ev.Err != nil {
		return newError(KindFrameEncode, ev.Err, "encoder reported an error")
	}
	if ev.Chunk == nil {
		return nil
	}

	chunk := *ev.Chunk
	if n := len(j.chunks); n > 0 && chunk.TimestampMicros <= j.chunks[n-1].TimestampMicros {
		return newError(KindFrameEncode, nil, "chunk at %dus arrived after %dus", chunk.TimestampMicros, j.chunks[n-1].TimestampMicros)
	}

	j.mu.Lock()
	if j.framesProcessed >= j.framesTotal {
		j.mu.Unlock()
		return newError(KindFrameEncode, nil, "encoder produced more than %d chunks", j.framesTotal)
	}
	j.chunks = append(j.chunks, chunk)
	j.framesProcessed++
	percent := progressPercent(j.framesProcessed, j.framesTotal)
	if percent > j.progress {
		j.progress = percent
	}
	percent = j.progress
	j.mu.Unlock()

	j.observer.ChunkAppended(j.codec, len(chunk.Data))
	for _, r := range j.reporters {
		r.Report(percent)
	}
	return nil
}

// finalize appends every chunk to the container, one append at a time.
func (j *Job) finalize(ctx context.Context) (*Output, error) {
	j.mu.Lock()
	j.state = StateFinalizing
	j.mu.Unlock()
	j.logger.Info("Assembling %d chunks", len(j.chunks))

	if len(j.chunks) == 0 {
		return nil, newError(KindFrameEncode, nil, "encoder produced no chunks")
	}

	muxer, err := j.muxers(j.codec)
	if err != nil {
		return nil, newError(KindContainerMux, err, "no container for %s", j.codec)
	}
	if err := muxer.Begin(ports.MuxConfig{
		Codec:     j.codec,
		Width:     j.info.Width,
		Height:    j.info.Height,
		FrameRate: j.frameRate,
	}); err != nil {
		return nil, newError(KindContainerMux, err, "container rejected %s", muxer.MIMEType())
	}

	for i, chunk := range j.chunks {
		if err := ctx.Err(); err != nil {
			muxer.Abort()
			return nil, err
		}
		if err := muxer.Append(ctx, chunk); err != nil {
			muxer.Abort()
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, newError(KindContainerMux, err, "append chunk %d", i)
		}
	}

	data, err := muxer.Finalize()
	if err != nil {
		muxer.Abort()
		return nil, newError(KindContainerMux, err, "finalize %s", muxer.Extension())
	}
	if len(data) == 0 {
		muxer.Abort()
		return nil, newError(KindContainerMux, nil, "container is empty")
	}

	last := j.chunks[len(j.chunks)-1]
	return &Output{
		Data:           data,
		Codec:          j.codec,
		MIMEType:       muxer.MIMEType(),
		Extension:      muxer.Extension(),
		FileName:       "converted-video." + muxer.Extension(),
		Frames:         len(j.chunks),
		DurationMicros: last.TimestampMicros + last.DurationMicros,
	}, nil
}

// terminate moves the job to Failed or Cancelled exactly once.
func (j *Job) terminate(ctx context.Context, err error) error {
	var jobErr *Error
	cancelled := !errors.As(err, &jobErr) && (ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))

	j.mu.Lock()
	if j.state.Terminal() {
		j.mu.Unlock()
		return err
	}
	j.chunks = nil
	j.output = nil
	if cancelled {
		j.state = StateCancelled
	} else {
		if jobErr == nil {
			jobErr = newError(KindFrameEncode, err, "unexpected failure")
		}
		j.state = StateFailed
		j.err = jobErr
	}
	j.mu.Unlock()

	if cancelled {
		j.observer.JobFinished(j.codec, StateCancelled.String(), "", time.Since(j.started))
		j.logger.Warn("Conversion cancelled")
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	j.observer.JobFinished(j.codec, StateFailed.String(), string(jobErr.Kind), time.Since(j.started))
	j.logger.Error("Conversion failed: %s", jobErr.Error())
	return jobErr
}

// failConfigure marks a job that never started as failed.
func (j *Job) failConfigure(err *Error) error {
	j.mu.Lock()
	j.state = StateFailed
	j.err = err
	j.mu.Unlock()
	j.observer.JobFinished(j.codec, StateFailed.String(), string(err.Kind), 0)
	j.logger.Error("Conversion failed: %s", err.Error())
	return err
}

// release closes the encoder and drops the capture surface.
func (j *Job) release() {
	if j.encoder != nil {
		j.encoder.Close()
	}
	j.surface = nil
	j.chunks = nil
}

func (j *Job) sourceError(ctx context.Context, err error, format string, args ...interface{}) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return newError(KindInputDecode, err, format, args...)
}

// progressPercent rounds to the nearest percent but only reports 100 once
// every frame has been processed.
func progressPercent(processed, total int) int {
	if total <= 0 {
		return 0
	}
	if processed >= total {
		return 100
	}
	p := int(math.Round(float64(processed) / float64(total) * 100))
	if p > 99 {
		p = 99
	}
	return p
}
