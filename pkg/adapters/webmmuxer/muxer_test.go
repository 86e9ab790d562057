package webmmuxer

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/at-wat/ebml-go"

	"github.com/user/frameconv/pkg/ports"
)

// file is the whole document, for reading the output back.
type file struct {
	Header  header  `ebml:"EBML"`
	Segment segment `ebml:"Segment"`
}

type segment struct {
	Info    info      `ebml:"Info"`
	Tracks  tracks    `ebml:"Tracks"`
	Cluster []cluster `ebml:"Cluster"`
}

func testChunks(n, keyInterval int) []ports.EncodedChunk {
	chunks := make([]ports.EncodedChunk, n)
	for i := range chunks {
		key := i%keyInterval == 0
		first := byte(0x01)
		if key {
			first = 0x00
		}
		chunks[i] = ports.EncodedChunk{
			Data:            []byte{first, 0x9d, 0x01, 0x2a, byte(i)},
			TimestampMicros: int64(i) * 1_000_000 / 30,
			DurationMicros:  33_333,
			Key:             key,
		}
	}
	return chunks
}

func muxAll(t *testing.T, chunks []ports.EncodedChunk) []byte {
	t.Helper()
	m := New()
	if err := m.Begin(ports.MuxConfig{Codec: ports.CodecVP8, Width: 320, Height: 240, FrameRate: 30}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	for i, c := range chunks {
		if err := m.Append(context.Background(), c); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
	data, err := m.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	return data
}

func TestMuxerWritesReadableWebM(t *testing.T) {
	data := muxAll(t, testChunks(20, 10))

	if !bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		t.Fatalf("missing EBML magic: %x", data[:4])
	}

	var doc file
	if err := ebml.Unmarshal(bytes.NewReader(data), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.Header.DocType != "webm" {
		t.Errorf("DocType = %q, want webm", doc.Header.DocType)
	}
	if len(doc.Segment.Tracks.TrackEntry) != 1 {
		t.Fatalf("expected 1 track, got %d", len(doc.Segment.Tracks.TrackEntry))
	}
	track := doc.Segment.Tracks.TrackEntry[0]
	if track.CodecID != "V_VP8" {
		t.Errorf("CodecID = %q, want V_VP8", track.CodecID)
	}
	if track.Video.PixelWidth != 320 || track.Video.PixelHeight != 240 {
		t.Errorf("size = %dx%d, want 320x240", track.Video.PixelWidth, track.Video.PixelHeight)
	}

	if len(doc.Segment.Cluster) != 2 {
		t.Fatalf("expected a cluster per keyframe (2), got %d", len(doc.Segment.Cluster))
	}
	blocks := 0
	for _, c := range doc.Segment.Cluster {
		if len(c.SimpleBlock) == 0 || !c.SimpleBlock[0].Keyframe {
			t.Errorf("cluster at %dms does not start with a keyframe", c.Timecode)
		}
		blocks += len(c.SimpleBlock)
	}
	if blocks != 20 {
		t.Errorf("expected 20 blocks, got %d", blocks)
	}
	if got := doc.Segment.Cluster[1].Timecode; got != 333 {
		t.Errorf("second cluster timecode = %d, want 333", got)
	}
}

func TestMuxerSplitsLongClusters(t *testing.T) {
	// One keyframe followed by 40s of inter frames overflows the int16
	// block timecode.
	chunks := testChunks(1200, 100000)
	data := muxAll(t, chunks)

	var doc file
	if err := ebml.Unmarshal(bytes.NewReader(data), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Segment.Cluster) < 2 {
		t.Errorf("expected the stream to be split into several clusters, got %d", len(doc.Segment.Cluster))
	}
}

func TestMuxerWritesClustersAsTheyClose(t *testing.T) {
	m := New()
	if err := m.Begin(ports.MuxConfig{Codec: ports.CodecVP8, Width: 320, Height: 240, FrameRate: 30}); err != nil {
		t.Fatal(err)
	}
	chunks := testChunks(21, 10)

	for _, c := range chunks[:10] {
		if err := m.Append(context.Background(), c); err != nil {
			t.Fatal(err)
		}
	}
	if m.body.Len() != 0 {
		t.Fatalf("first cluster encoded while still open (%d bytes)", m.body.Len())
	}

	// The keyframe at index 10 closes the first cluster.
	if err := m.Append(context.Background(), chunks[10]); err != nil {
		t.Fatal(err)
	}
	first := m.body.Len()
	if first == 0 {
		t.Fatal("closed cluster was not written")
	}
	if !bytes.HasPrefix(m.body.Bytes(), []byte{0x1F, 0x43, 0xB6, 0x75}) {
		t.Errorf("body does not start with a Cluster element: %x", m.body.Bytes()[:4])
	}

	for _, c := range chunks[11:20] {
		if err := m.Append(context.Background(), c); err != nil {
			t.Fatal(err)
		}
	}
	if m.body.Len() != first {
		t.Errorf("inter frames changed the written clusters: %d -> %d bytes", first, m.body.Len())
	}

	if err := m.Append(context.Background(), chunks[20]); err != nil {
		t.Fatal(err)
	}
	data, err := m.Finalize()
	if err != nil {
		t.Fatal(err)
	}
	var doc file
	if err := ebml.Unmarshal(bytes.NewReader(data), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(doc.Segment.Cluster) != 3 {
		t.Errorf("expected 3 clusters, got %d", len(doc.Segment.Cluster))
	}
	if doc.Segment.Info.Duration != 699 {
		t.Errorf("Duration = %v, want 699", doc.Segment.Info.Duration)
	}
}

func TestMuxerRejectsH264(t *testing.T) {
	err := New().Begin(ports.MuxConfig{Codec: ports.CodecH264, Width: 320, Height: 240, FrameRate: 30})
	if !errors.Is(err, ErrCodecMismatch) {
		t.Errorf("expected ErrCodecMismatch, got %v", err)
	}
}

func TestMuxerFirstChunkMustBeKey(t *testing.T) {
	m := New()
	m.Begin(ports.MuxConfig{Codec: ports.CodecVP8, Width: 320, Height: 240, FrameRate: 30})
	if err := m.Append(context.Background(), testChunks(2, 10)[1]); err == nil {
		t.Error("expected error for non-key first chunk")
	}
}

func TestMuxerFinalizeErrors(t *testing.T) {
	m := New()
	if _, err := m.Finalize(); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}
	m.Begin(ports.MuxConfig{Codec: ports.CodecVP8, Width: 320, Height: 240, FrameRate: 30})
	if _, err := m.Finalize(); !errors.Is(err, ErrNoBlocks) {
		t.Errorf("expected ErrNoBlocks, got %v", err)
	}
	m.Abort()
	if err := m.Append(context.Background(), testChunks(1, 1)[0]); !errors.Is(err, ErrNotStarted) {
		t.Errorf("expected ErrNotStarted after Abort, got %v", err)
	}
}
