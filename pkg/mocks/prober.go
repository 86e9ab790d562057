package mocks

import (
	"context"
	"time"

	"github.com/user/frameconv/pkg/ports"
)

// Prober is a mock implementation of ports.CapabilityProber.
type Prober struct {
	Capability ports.Capability
	ProbeFunc  func(ctx context.Context) ports.Capability
}

// NewProber creates a prober reporting support for the given codecs.
func NewProber(codecs ...ports.Codec) *Prober {
	if len(codecs) == 0 {
		return &Prober{Capability: ports.Capability{Reason: "no encoders"}}
	}
	return &Prober{Capability: ports.Capability{Supported: true, Encoders: codecs}}
}

func (m *Prober) Probe(ctx context.Context) ports.Capability {
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx)
	}
	return m.Capability
}

var _ ports.CapabilityProber = (*Prober)(nil)

// JobObserver records job lifecycle events.
type JobObserver struct {
	Started  []ports.Codec
	Chunks   int
	Bytes    int
	Finished []FinishedJob
}

// FinishedJob records a call to JobFinished.
type FinishedJob struct {
	Codec   ports.Codec
	State   string
	Kind    string
	Elapsed time.Duration
}

func (m *JobObserver) JobStarted(codec ports.Codec) {
	m.Started = append(m.Started, codec)
}

func (m *JobObserver) ChunkAppended(codec ports.Codec, size int) {
	m.Chunks++
	m.Bytes += size
}

func (m *JobObserver) JobFinished(codec ports.Codec, state string, failureKind string, elapsed time.Duration) {
	m.Finished = append(m.Finished, FinishedJob{Codec: codec, State: state, Kind: failureKind, Elapsed: elapsed})
}

var _ ports.JobObserver = (*JobObserver)(nil)
