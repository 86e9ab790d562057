package metrics

import (
	"time"

	"github.com/user/frameconv/pkg/ports"
)

// jobObserver implements ports.JobObserver using the collectors declared in
// metrics.go.
type jobObserver struct{}

// NewJobObserver creates an observer that records conversion metrics.
func NewJobObserver() ports.JobObserver {
	return &jobObserver{}
}

func (o *jobObserver) JobStarted(codec ports.Codec) {
	JobsStartedTotal.WithLabelValues(string(codec)).Inc()
	JobsActive.Inc()
}

func (o *jobObserver) ChunkAppended(codec ports.Codec, size int) {
	ChunksTotal.WithLabelValues(string(codec)).Inc()
	ChunkBytesTotal.WithLabelValues(string(codec)).Add(float64(size))
}

// JobFinished is also called for jobs rejected during configuration, which
// never started and took no time.
func (o *jobObserver) JobFinished(codec ports.Codec, state string, failureKind string, elapsed time.Duration) {
	JobsFinishedTotal.WithLabelValues(string(codec), state, failureKind).Inc()
	if elapsed > 0 {
		JobsActive.Dec()
		JobDuration.WithLabelValues(string(codec), state).Observe(elapsed.Seconds())
	}
}
