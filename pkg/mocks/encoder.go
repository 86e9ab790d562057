// Package mocks provides mock implementations for testing.
package mocks

import (
	"sync"

	"github.com/user/frameconv/pkg/ports"
)

// VideoEncoder is a mock implementation of ports.VideoEncoder. By default it
// emits one chunk per submitted frame, keyed every KeyInterval frames, as
// soon as the frame is encoded.
type VideoEncoder struct {
	ConfigureFunc func(cfg ports.EncoderConfig) error
	EncodeFunc    func(frame ports.VideoFrame) error
	FlushFunc     func() error

	// EventsFunc overrides the events emitted for the frame at index.
	EventsFunc func(index int, frame ports.VideoFrame) []ports.EncoderEvent

	// HoldUntilFlush delays every event until Flush, like an encoder with
	// deep lookahead.
	HoldUntilFlush bool

	// KeyInterval is the keyframe distance of default chunks (30 when zero).
	KeyInterval int

	// Recorded calls for verification
	mu          sync.Mutex
	Config      ports.EncoderConfig
	EncodeCalls []EncodeCall
	FlushCalled bool
	CloseCalls  int

	events  chan ports.EncoderEvent
	held    []ports.EncoderEvent
	closed  bool
	flushed bool
}

// EncodeCall records a call to Encode.
type EncodeCall struct {
	TimestampMicros int64
	DurationMicros  int64
}

func (m *VideoEncoder) Configure(cfg ports.EncoderConfig) (<-chan ports.EncoderEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Config = cfg
	if m.ConfigureFunc != nil {
		if err := m.ConfigureFunc(cfg); err != nil {
			return nil, err
		}
	}
	m.events = make(chan ports.EncoderEvent, 1<<16)
	return m.events, nil
}

func (m *VideoEncoder) Encode(frame ports.VideoFrame) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := len(m.EncodeCalls)
	m.EncodeCalls = append(m.EncodeCalls, EncodeCall{
		TimestampMicros: frame.TimestampMicros,
		DurationMicros:  frame.DurationMicros,
	})
	if m.EncodeFunc != nil {
		if err := m.EncodeFunc(frame); err != nil {
			return err
		}
	}

	var events []ports.EncoderEvent
	if m.EventsFunc != nil {
		events = m.EventsFunc(index, frame)
	} else {
		events = []ports.EncoderEvent{{Chunk: m.defaultChunk(index, frame)}}
	}

	if m.HoldUntilFlush {
		m.held = append(m.held, events...)
		return nil
	}
	m.emit(events)
	return nil
}

func (m *VideoEncoder) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FlushCalled = true
	if m.FlushFunc != nil {
		if err := m.FlushFunc(); err != nil {
			return err
		}
	}
	m.emit(m.held)
	m.held = nil
	m.flushed = true
	m.closeEvents()
	return nil
}

func (m *VideoEncoder) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	m.closeEvents()
	return nil
}

// Encoded returns the number of Encode calls so far.
func (m *VideoEncoder) Encoded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.EncodeCalls)
}

// Closed reports whether Close was called at least once.
func (m *VideoEncoder) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CloseCalls > 0
}

func (m *VideoEncoder) defaultChunk(index int, frame ports.VideoFrame) *ports.EncodedChunk {
	interval := m.KeyInterval
	if interval <= 0 {
		interval = 30
	}
	return &ports.EncodedChunk{
		Data:            []byte{byte(index), byte(index >> 8), 0xAB},
		TimestampMicros: frame.TimestampMicros,
		DurationMicros:  frame.DurationMicros,
		Key:             index%interval == 0,
	}
}

func (m *VideoEncoder) emit(events []ports.EncoderEvent) {
	if m.events == nil || m.closed {
		return
	}
	for _, ev := range events {
		m.events <- ev
	}
}

func (m *VideoEncoder) closeEvents() {
	if m.events != nil && !m.closed {
		m.closed = true
		close(m.events)
	}
}

var _ ports.VideoEncoder = (*VideoEncoder)(nil)
