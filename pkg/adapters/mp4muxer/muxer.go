// Package mp4muxer writes H.264 access units into a fragmented MP4 file.
package mp4muxer

import (
	"bytes"
	"context"
	"fmt"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/frameconv/pkg/ports"
)

const (
	// timescale matches the microsecond chunk timestamps.
	timescale = 1_000_000
	trackID   = 1

	// MIMEType is the playable type of the output.
	MIMEType = `video/mp4; codecs="avc1.42001E"`
)

// Muxer implements ports.ContainerMuxer. The init segment is written on the
// first Append, then every chunk becomes its own moof/mdat fragment.
type Muxer struct {
	cfg     ports.MuxConfig
	started bool
	inited  bool
	seq     uint32
	buf     bytes.Buffer
}

// New creates an MP4 muxer.
func New() *Muxer {
	return &Muxer{}
}

// MIMEType implements ports.ContainerMuxer.
func (m *Muxer) MIMEType() string { return MIMEType }

// Extension implements ports.ContainerMuxer.
func (m *Muxer) Extension() string { return "mp4" }

// Begin prepares a new file.
func (m *Muxer) Begin(cfg ports.MuxConfig) error {
	if cfg.Codec != ports.CodecH264 {
		return fmt.Errorf("%w: got %s", ErrCodecMismatch, cfg.Codec)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > 0xFFFF || cfg.Height > 0xFFFF {
		return fmt.Errorf("mp4muxer: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FrameRate <= 0 {
		return fmt.Errorf("mp4muxer: invalid frame rate %.2f", cfg.FrameRate)
	}

	m.cfg = cfg
	m.started = true
	m.inited = false
	m.seq = 0
	m.buf.Reset()
	return nil
}

// Append writes one access unit as a fragment.
func (m *Muxer) Append(ctx context.Context, chunk ports.EncodedChunk) error {
	if !m.started {
		return ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if !m.inited {
		if !chunk.Key {
			return fmt.Errorf("mp4muxer: first chunk must be a keyframe")
		}
		if err := m.writeInit(chunk.Data); err != nil {
			return err
		}
		m.inited = true
	}

	m.seq++
	frag, err := mp4.CreateFragment(m.seq, trackID)
	if err != nil {
		return fmt.Errorf("create fragment: %w", err)
	}

	dur := chunk.DurationMicros
	if dur <= 0 {
		dur = int64(timescale / m.cfg.FrameRate)
	}

	flags := mp4.NonSyncSampleFlags
	if chunk.Key {
		flags = mp4.SyncSampleFlags
	}

	avccData := convertToAVCC(chunk.Data)
	frag.AddFullSample(mp4.FullSample{
		Sample: mp4.Sample{
			Flags: flags,
			Size:  uint32(len(avccData)),
			Dur:   uint32(dur),
		},
		DecodeTime: uint64(chunk.TimestampMicros),
		Data:       avccData,
	})

	if err := frag.Encode(&m.buf); err != nil {
		return fmt.Errorf("encode fragment %d: %w", m.seq, err)
	}
	return nil
}

// Finalize returns the complete file.
func (m *Muxer) Finalize() ([]byte, error) {
	if !m.started {
		return nil, ErrNotStarted
	}
	if m.seq == 0 {
		return nil, ErrNoSamples
	}
	m.started = false

	out := make([]byte, m.buf.Len())
	copy(out, m.buf.Bytes())
	m.buf.Reset()
	return out, nil
}

// Abort discards everything written so far.
func (m *Muxer) Abort() {
	m.started = false
	m.inited = false
	m.seq = 0
	m.buf.Reset()
}

// writeInit writes ftyp and moov using the parameter sets of the first
// keyframe.
func (m *Muxer) writeInit(keyframe []byte) error {
	sps, pps := extractSPSPPS(keyframe)
	if sps == nil || pps == nil {
		return ErrMissingParameterSets
	}

	avcC, err := mp4.CreateAvcC([][]byte{sps}, [][]byte{pps}, true)
	if err != nil {
		return fmt.Errorf("create avcC: %w", err)
	}

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "und")
	trak := init.Moov.Trak

	avc1 := mp4.CreateVisualSampleEntryBox("avc1", uint16(m.cfg.Width), uint16(m.cfg.Height), avcC)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(avc1)
	trak.Tkhd.Width = mp4.Fixed32(m.cfg.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(m.cfg.Height << 16)

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "avc1", "mp41"})
	if err := ftyp.Encode(&m.buf); err != nil {
		return fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&m.buf); err != nil {
		return fmt.Errorf("encode moov: %w", err)
	}
	return nil
}

var _ ports.ContainerMuxer = (*Muxer)(nil)
