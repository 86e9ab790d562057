package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/user/frameconv/pkg/ports"
)

func TestConversionMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"JobsStartedTotal", JobsStartedTotal},
		{"JobsFinishedTotal", JobsFinishedTotal},
		{"JobDuration", JobDuration},
		{"JobsActive", JobsActive},
		{"ChunksTotal", ChunksTotal},
		{"ChunkBytesTotal", ChunkBytesTotal},
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestJobObserver(t *testing.T) {
	obs := NewJobObserver()
	codec := ports.Codec("vp8")

	startedBefore := testutil.ToFloat64(JobsStartedTotal.WithLabelValues("vp8"))
	chunksBefore := testutil.ToFloat64(ChunksTotal.WithLabelValues("vp8"))
	bytesBefore := testutil.ToFloat64(ChunkBytesTotal.WithLabelValues("vp8"))
	doneBefore := testutil.ToFloat64(JobsFinishedTotal.WithLabelValues("vp8", "done", ""))
	activeBefore := testutil.ToFloat64(JobsActive)

	obs.JobStarted(codec)
	if got := testutil.ToFloat64(JobsActive); got != activeBefore+1 {
		t.Errorf("active = %v, want %v", got, activeBefore+1)
	}

	obs.ChunkAppended(codec, 100)
	obs.ChunkAppended(codec, 50)
	obs.JobFinished(codec, "done", "", 2*time.Second)

	if got := testutil.ToFloat64(JobsStartedTotal.WithLabelValues("vp8")); got != startedBefore+1 {
		t.Errorf("started = %v, want %v", got, startedBefore+1)
	}
	if got := testutil.ToFloat64(ChunksTotal.WithLabelValues("vp8")); got != chunksBefore+2 {
		t.Errorf("chunks = %v, want %v", got, chunksBefore+2)
	}
	if got := testutil.ToFloat64(ChunkBytesTotal.WithLabelValues("vp8")); got != bytesBefore+150 {
		t.Errorf("bytes = %v, want %v", got, bytesBefore+150)
	}
	if got := testutil.ToFloat64(JobsFinishedTotal.WithLabelValues("vp8", "done", "")); got != doneBefore+1 {
		t.Errorf("finished = %v, want %v", got, doneBefore+1)
	}
	if got := testutil.ToFloat64(JobsActive); got != activeBefore {
		t.Errorf("active = %v, want %v", got, activeBefore)
	}
}

func TestJobObserverConfigureFailure(t *testing.T) {
	obs := NewJobObserver()
	activeBefore := testutil.ToFloat64(JobsActive)
	failedBefore := testutil.ToFloat64(JobsFinishedTotal.WithLabelValues("h264", "failed", "UnsupportedCodec"))

	obs.JobFinished("h264", "failed", "UnsupportedCodec", 0)

	if got := testutil.ToFloat64(JobsActive); got != activeBefore {
		t.Errorf("active gauge moved for a job that never started: %v", got)
	}
	if got := testutil.ToFloat64(JobsFinishedTotal.WithLabelValues("h264", "failed", "UnsupportedCodec")); got != failedBefore+1 {
		t.Errorf("failed = %v, want %v", got, failedBefore+1)
	}
}
