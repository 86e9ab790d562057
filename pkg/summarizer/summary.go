// Package summarizer builds a report of a finished conversion.
package summarizer

import (
	"time"

	"github.com/user/frameconv/pkg/ports"
	"github.com/user/frameconv/pkg/transcoder"
)

// Summary contains everything known about one conversion.
type Summary struct {
	GeneratedAt time.Time

	Source   SourceInfo
	Settings Settings
	Result   ResultInfo
}

// SourceInfo describes the input media.
type SourceInfo struct {
	Name            string
	Width           int
	Height          int
	DurationSeconds float64
	FrameRate       float64
}

// Settings contains the conversion configuration actually used.
type Settings struct {
	Codec              string
	MaxDurationSeconds float64
	BitrateBps         int
	FrameRate          float64
	FramesTotal        int
}

// ResultInfo describes how the job ended.
type ResultInfo struct {
	State          string
	FailureKind    string
	FailureMessage string
	Frames         int
	DurationMicros int64
	FileName       string
	MIMEType       string
	FileSize       int64
	Elapsed        time.Duration
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSource sets source information.
func (b *Builder) WithSource(name string, info ports.MediaInfo) *Builder {
	b.summary.Source = SourceInfo{
		Name:            name,
		Width:           info.Width,
		Height:          info.Height,
		DurationSeconds: info.DurationSeconds,
		FrameRate:       info.FrameRate,
	}
	return b
}

// WithJob takes the settings and terminal status from a job.
func (b *Builder) WithJob(job *transcoder.Job, bitrateBps int) *Builder {
	status := job.Status()
	b.summary.Settings = Settings{
		Codec:              string(job.Codec()),
		MaxDurationSeconds: job.MaxDurationSeconds(),
		BitrateBps:         bitrateBps,
		FrameRate:          job.FrameRate(),
		FramesTotal:        job.FramesTotal(),
	}
	b.summary.Result.State = status.State.String()
	b.summary.Result.Frames = status.FramesProcessed
	if status.Err != nil {
		b.summary.Result.FailureKind = string(status.Err.Kind)
		b.summary.Result.FailureMessage = status.Err.Error()
	}
	return b
}

// WithOutput sets output file details.
func (b *Builder) WithOutput(out *transcoder.Output) *Builder {
	if out == nil {
		return b
	}
	b.summary.Result.Frames = out.Frames
	b.summary.Result.DurationMicros = out.DurationMicros
	b.summary.Result.FileName = out.FileName
	b.summary.Result.MIMEType = out.MIMEType
	b.summary.Result.FileSize = int64(len(out.Data))
	return b
}

// WithElapsed sets the wall time of the conversion.
func (b *Builder) WithElapsed(d time.Duration) *Builder {
	b.summary.Result.Elapsed = d
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
