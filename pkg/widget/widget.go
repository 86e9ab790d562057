// Package widget holds the state of one converter instance: at most one job,
// its source, and the output of the last finished job.
package widget

import (
	"context"
	"errors"
	"sync"

	"github.com/user/frameconv/pkg/ports"
	"github.com/user/frameconv/pkg/transcoder"
)

// ErrJobActive is returned by Start while a job is encoding or finalizing.
var ErrJobActive = errors.New("widget: a conversion is already running")

// Options configures a Widget.
type Options struct {
	Logger ports.Logger

	// Progress, when set, receives every progress report of every job.
	Progress ports.ProgressReporter

	// MaxDurationSeconds is the default frame budget for jobs that do not
	// set one.
	MaxDurationSeconds float64
}

// ErrorInfo is a failure as shown to the user.
type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Snapshot is the externally visible widget state.
type Snapshot struct {
	State              string     `json:"state"`
	Progress           int        `json:"progress"`
	FramesProcessed    int        `json:"framesProcessed"`
	FramesTotal        int        `json:"framesTotal"`
	Codec              string     `json:"codec,omitempty"`
	MaxDurationSeconds float64    `json:"maxDurationSeconds"`
	Error              *ErrorInfo `json:"error,omitempty"`
	FileName           string     `json:"fileName,omitempty"`
	MIMEType           string     `json:"mimeType,omitempty"`
	Size               int        `json:"size,omitempty"`
}

// Widget runs one job at a time.
type Widget struct {
	transcoder *transcoder.Transcoder
	logger     ports.Logger
	opts       Options

	mu     sync.Mutex
	job    *transcoder.Job
	cancel context.CancelFunc
	done   chan struct{}
	output *transcoder.Output
}

// New creates a Widget around t.
func New(t *transcoder.Transcoder, opts Options) *Widget {
	if opts.MaxDurationSeconds <= 0 {
		opts.MaxDurationSeconds = transcoder.DefaultConfig().MaxDurationSeconds
	}
	return &Widget{
		transcoder: t,
		logger:     opts.Logger.WithComponent("widget"),
		opts:       opts,
	}
}

// Capability reports whether conversions can run on this host.
func (w *Widget) Capability(ctx context.Context) ports.Capability {
	return w.transcoder.Probe(ctx)
}

// CheckCapability fails with a CapabilityUnavailable error when the host
// cannot convert. It does not touch the current job.
func (w *Widget) CheckCapability(ctx context.Context) error {
	return w.transcoder.CheckCapability(ctx)
}

// Start configures a job for src and runs it in the background. The widget
// takes ownership of src and closes it when the job ends, or immediately
// when Start fails.
//
// Starting a job discards the previous output. When the host lacks the
// capability no job is created and the previous state is kept.
func (w *Widget) Start(ctx context.Context, src ports.SourceMedia, cfg transcoder.Config) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.runningLocked() {
		src.Close()
		return ErrJobActive
	}
	if cfg.MaxDurationSeconds <= 0 {
		cfg.MaxDurationSeconds = w.opts.MaxDurationSeconds
	}

	job, err := w.transcoder.Configure(ctx, src, cfg)
	if job == nil {
		src.Close()
		return err
	}

	if w.cancel != nil {
		w.cancel()
	}
	w.output = nil
	w.job = job
	w.cancel = nil
	w.done = nil
	if err != nil {
		src.Close()
		return err
	}

	if w.opts.Progress != nil {
		job.OnProgress(w.opts.Progress)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	w.cancel = cancel
	w.done = done

	go w.run(runCtx, job, src, done)
	return nil
}

func (w *Widget) run(ctx context.Context, job *transcoder.Job, src ports.SourceMedia, done chan struct{}) {
	defer close(done)
	defer src.Close()

	out, err := job.Run(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.job == job {
		w.output = out
	}
	if err != nil && !errors.Is(err, transcoder.ErrCancelled) {
		w.logger.Debug("Job ended: %v", err)
	}
}

// runningLocked reports whether a started job has not yet returned.
func (w *Widget) runningLocked() bool {
	if w.done == nil {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
		return true
	}
}

// Snapshot returns the current state. Before the first job it reports idle.
func (w *Widget) Snapshot() Snapshot {
	w.mu.Lock()
	job, output := w.job, w.output
	w.mu.Unlock()

	snap := Snapshot{
		State:              transcoder.StateIdle.String(),
		MaxDurationSeconds: w.opts.MaxDurationSeconds,
	}
	if job == nil {
		return snap
	}

	status := job.Status()
	snap.State = status.State.String()
	snap.Codec = string(status.Codec)
	snap.FramesProcessed = status.FramesProcessed
	snap.FramesTotal = status.FramesTotal
	snap.MaxDurationSeconds = job.MaxDurationSeconds()
	if status.Progress > 0 {
		snap.Progress = status.Progress
	}
	if status.Err != nil {
		snap.Error = &ErrorInfo{Kind: string(status.Err.Kind), Message: status.Err.Error()}
	}
	if output != nil {
		snap.FileName = output.FileName
		snap.MIMEType = output.MIMEType
		snap.Size = len(output.Data)
	}
	return snap
}

// Output returns the output of the last finished job.
func (w *Widget) Output() (*transcoder.Output, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.output, w.output != nil
}

// Wait blocks until the current job, if any, has ended.
func (w *Widget) Wait() {
	w.mu.Lock()
	done := w.done
	w.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Cancel stops the running job and waits for it to release its resources.
// It is a no-op when nothing is running.
func (w *Widget) Cancel() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Close cancels any running job and discards the output.
func (w *Widget) Close() {
	w.Cancel()

	w.mu.Lock()
	defer w.mu.Unlock()
	w.output = nil
	w.job = nil
	w.cancel = nil
	w.done = nil
}
