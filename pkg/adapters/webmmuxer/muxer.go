// Package webmmuxer writes VP8 frames into a WebM file.
package webmmuxer

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/at-wat/ebml-go"

	"github.com/user/frameconv/pkg/ports"
)

const (
	// MIMEType is the playable type of the output.
	MIMEType = `video/webm; codecs="vp8"`

	codecID        = "V_VP8"
	trackNumber    = 1
	trackTypeVideo = 1
	// Block timecodes are in milliseconds.
	timecodeScale = 1_000_000
	appName       = "frameconv"
)

// Muxer implements ports.ContainerMuxer. Blocks are grouped into clusters
// that start at every keyframe. A cluster is encoded as soon as the next one
// opens; Finalize encodes the last cluster and prepends the file header, whose
// Duration is only known at the end.
type Muxer struct {
	cfg     ports.MuxConfig
	started bool
	open    *cluster
	body    bytes.Buffer
	lastMs  int64
	endMs   int64
	blocks  int
}

// New creates a WebM muxer.
func New() *Muxer {
	return &Muxer{}
}

// MIMEType implements ports.ContainerMuxer.
func (m *Muxer) MIMEType() string { return MIMEType }

// Extension implements ports.ContainerMuxer.
func (m *Muxer) Extension() string { return "webm" }

// Begin prepares a new file.
func (m *Muxer) Begin(cfg ports.MuxConfig) error {
	if cfg.Codec != ports.CodecVP8 {
		return fmt.Errorf("%w: got %s", ErrCodecMismatch, cfg.Codec)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return fmt.Errorf("webmmuxer: invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.FrameRate <= 0 {
		return fmt.Errorf("webmmuxer: invalid frame rate %.2f", cfg.FrameRate)
	}
	m.cfg = cfg
	m.started = true
	m.reset()
	return nil
}

// Append adds one frame as a SimpleBlock.
func (m *Muxer) Append(ctx context.Context, chunk ports.EncodedChunk) error {
	if !m.started {
		return ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.blocks == 0 && !chunk.Key {
		return fmt.Errorf("webmmuxer: first chunk must be a keyframe")
	}

	ms := chunk.TimestampMicros / 1000
	if m.blocks > 0 && ms < m.lastMs {
		return fmt.Errorf("webmmuxer: timestamp %dms before %dms", ms, m.lastMs)
	}

	if m.open == nil || chunk.Key || ms-int64(m.open.Timecode) > math.MaxInt16 {
		if err := m.closeCluster(); err != nil {
			return err
		}
		m.open = &cluster{Timecode: uint64(ms)}
	}
	c := m.open
	c.SimpleBlock = append(c.SimpleBlock, ebml.Block{
		TrackNumber: trackNumber,
		Timecode:    int16(ms - int64(c.Timecode)),
		Keyframe:    chunk.Key,
		Data:        [][]byte{chunk.Data},
	})

	m.lastMs = ms
	end := (chunk.TimestampMicros + chunk.DurationMicros) / 1000
	if end > m.endMs {
		m.endMs = end
	}
	m.blocks++
	return nil
}

// Finalize writes the header and segment head in front of the clusters.
func (m *Muxer) Finalize() ([]byte, error) {
	if !m.started {
		return nil, ErrNotStarted
	}
	if m.blocks == 0 {
		return nil, ErrNoBlocks
	}
	if err := m.closeCluster(); err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := ebml.Marshal(&headerElement{Header: header{
		EBMLVersion:        1,
		EBMLReadVersion:    1,
		EBMLMaxIDLength:    4,
		EBMLMaxSizeLength:  8,
		DocType:            "webm",
		DocTypeVersion:     2,
		DocTypeReadVersion: 2,
	}}, &out); err != nil {
		return nil, fmt.Errorf("marshal ebml header: %w", err)
	}

	var head bytes.Buffer
	if err := ebml.Marshal(&segmentHead{
		Info: info{
			TimecodeScale: timecodeScale,
			MuxingApp:     appName,
			WritingApp:    appName,
			Duration:      float64(m.endMs),
		},
		Tracks: tracks{TrackEntry: []trackEntry{{
			TrackNumber:     trackNumber,
			TrackUID:        1,
			CodecID:         codecID,
			TrackType:       trackTypeVideo,
			DefaultDuration: uint64(1e9 / m.cfg.FrameRate),
			Video: video{
				PixelWidth:  uint64(m.cfg.Width),
				PixelHeight: uint64(m.cfg.Height),
			},
		}}},
	}, &head); err != nil {
		return nil, fmt.Errorf("marshal segment head: %w", err)
	}

	out.Write(segmentID)
	out.Write(elementSize(uint64(head.Len() + m.body.Len())))
	out.Write(head.Bytes())
	out.Write(m.body.Bytes())

	m.started = false
	m.reset()
	return out.Bytes(), nil
}

// Abort discards everything appended so far.
func (m *Muxer) Abort() {
	m.started = false
	m.reset()
}

// closeCluster encodes the open cluster onto the body.
func (m *Muxer) closeCluster() error {
	if m.open == nil {
		return nil
	}
	if err := ebml.Marshal(&clusterElement{Cluster: *m.open}, &m.body); err != nil {
		return fmt.Errorf("marshal cluster at %dms: %w", m.open.Timecode, err)
	}
	m.open = nil
	return nil
}

func (m *Muxer) reset() {
	m.open = nil
	m.body.Reset()
	m.lastMs = 0
	m.endMs = 0
	m.blocks = 0
}

// elementSize encodes n as an 8-byte EBML variable-size integer.
func elementSize(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	b[0] = 0x01
	return b[:]
}

var _ ports.ContainerMuxer = (*Muxer)(nil)
