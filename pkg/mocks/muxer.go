package mocks

import (
	"context"
	"fmt"

	"github.com/user/frameconv/pkg/ports"
)

// ContainerMuxer is a mock implementation of ports.ContainerMuxer. Finalize
// returns a short header followed by every appended payload.
type ContainerMuxer struct {
	MIME string
	Ext  string

	BeginFunc    func(cfg ports.MuxConfig) error
	AppendFunc   func(ctx context.Context, chunk ports.EncodedChunk) error
	FinalizeFunc func() ([]byte, error)

	// Recorded calls for verification
	Config   ports.MuxConfig
	Began    bool
	Appended []ports.EncodedChunk
	Aborted  bool
}

// NewContainerMuxer creates a muxer mock reporting the MIME type and
// extension real muxers use for codec.
func NewContainerMuxer(codec ports.Codec) *ContainerMuxer {
	if codec == ports.CodecVP8 {
		return &ContainerMuxer{MIME: `video/webm; codecs="vp8"`, Ext: "webm"}
	}
	return &ContainerMuxer{MIME: `video/mp4; codecs="avc1.42001E"`, Ext: "mp4"}
}

func (m *ContainerMuxer) MIMEType() string { return m.MIME }

func (m *ContainerMuxer) Extension() string { return m.Ext }

func (m *ContainerMuxer) Begin(cfg ports.MuxConfig) error {
	m.Config = cfg
	m.Began = true
	if m.BeginFunc != nil {
		return m.BeginFunc(cfg)
	}
	return nil
}

func (m *ContainerMuxer) Append(ctx context.Context, chunk ports.EncodedChunk) error {
	if !m.Began {
		return fmt.Errorf("mock muxer: append before begin")
	}
	if m.AppendFunc != nil {
		if err := m.AppendFunc(ctx, chunk); err != nil {
			return err
		}
	}
	m.Appended = append(m.Appended, chunk)
	return nil
}

func (m *ContainerMuxer) Finalize() ([]byte, error) {
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc()
	}
	out := []byte(m.Ext)
	for _, c := range m.Appended {
		out = append(out, c.Data...)
	}
	return out, nil
}

func (m *ContainerMuxer) Abort() {
	m.Aborted = true
	m.Appended = nil
}

var _ ports.ContainerMuxer = (*ContainerMuxer)(nil)
