package ports

import "time"

// ProgressReporter receives integer progress percentages (0-100).
type ProgressReporter interface {
	Report(percent int)
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func(percent int)

// Report implements ProgressReporter.
func (f ProgressFunc) Report(percent int) {
	f(percent)
}

// JobObserver is notified of job lifecycle events, e.g. for metrics.
type JobObserver interface {
	JobStarted(codec Codec)
	ChunkAppended(codec Codec, size int)
	JobFinished(codec Codec, state string, failureKind string, elapsed time.Duration)
}
