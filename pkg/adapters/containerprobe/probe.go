// Package containerprobe identifies the container and video codec of MP4 and
// WebM files and summarizes their video track.
package containerprobe

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/at-wat/ebml-go"
)

// Container is a file format.
type Container string

// Codec is a video coding format.
type Codec string

const (
	ContainerMP4     Container = "mp4"
	ContainerWebM    Container = "webm"
	ContainerUnknown Container = "unknown"

	CodecH264    Codec = "h264"
	CodecVP8     Codec = "vp8"
	CodecVP9     Codec = "vp9"
	CodecAV1     Codec = "av1"
	CodecUnknown Codec = "unknown"
)

// ErrUnknownContainer is returned for data that is neither MP4 nor WebM.
var ErrUnknownContainer = errors.New("containerprobe: unknown container")

// Report describes the first video track of a file.
type Report struct {
	Container       Container
	Codec           Codec
	Width           int
	Height          int
	Frames          int
	DurationSeconds float64
	Fragmented      bool
}

var ebmlMagic = []byte{0x1A, 0x45, 0xDF, 0xA3}

// DetectFromFile inspects the file at path.
func DetectFromFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return DetectFromReader(f)
}

// DetectFromBytes inspects an in-memory file.
func DetectFromBytes(data []byte) (*Report, error) {
	return DetectFromReader(bytes.NewReader(data))
}

// DetectFromReader inspects a file from an io.ReadSeeker.
func DetectFromReader(reader io.ReadSeeker) (*Report, error) {
	var head [8]byte
	n, err := io.ReadFull(reader, head[:])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}

	switch {
	case n >= 4 && bytes.Equal(head[:4], ebmlMagic):
		return probeWebM(reader)
	case n == 8 && string(head[4:8]) == "ftyp":
		return probeMP4(reader)
	default:
		return nil, ErrUnknownContainer
	}
}

func probeMP4(reader io.ReadSeeker) (*Report, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return nil, fmt.Errorf("decode mp4: %w", err)
	}

	report := &Report{Container: ContainerMP4, Codec: CodecUnknown}

	// Check fragmented MP4
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		report.Fragmented = true
		for _, trak := range mp4File.Init.Moov.Traks {
			if !describeTrack(trak, report) {
				continue
			}
			var ticks uint64
			for _, seg := range mp4File.Segments {
				for _, frag := range seg.Fragments {
					for _, trun := range frag.Moof.Traf.Truns {
						report.Frames += len(trun.Samples)
						for _, s := range trun.Samples {
							ticks += uint64(s.Dur)
						}
					}
				}
			}
			if ts := trak.Mdia.Mdhd.Timescale; ts > 0 {
				report.DurationSeconds = float64(ticks) / float64(ts)
			}
			return report, nil
		}
	}

	// Check progressive MP4
	if mp4File.Moov != nil {
		for _, trak := range mp4File.Moov.Traks {
			if !describeTrack(trak, report) {
				continue
			}
			if stsz := trak.Mdia.Minf.Stbl.Stsz; stsz != nil {
				report.Frames = int(stsz.SampleNumber)
			}
			if mdhd := trak.Mdia.Mdhd; mdhd != nil && mdhd.Timescale > 0 {
				report.DurationSeconds = float64(mdhd.Duration) / float64(mdhd.Timescale)
			}
			return report, nil
		}
	}

	return nil, fmt.Errorf("no video track found")
}

// describeTrack fills codec and size from a video track and reports whether
// trak is one.
func describeTrack(trak *mp4.TrakBox, report *Report) bool {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil || trak.Mdia.Hdlr.HandlerType != "vide" {
		return false
	}
	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return false
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		switch child.Type() {
		case "avc1", "avc3":
			report.Codec = CodecH264
		case "vp08":
			report.Codec = CodecVP8
		case "vp09":
			report.Codec = CodecVP9
		case "av01":
			report.Codec = CodecAV1
		default:
			continue
		}
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			report.Width = int(vse.Width)
			report.Height = int(vse.Height)
		}
		break
	}
	if report.Width == 0 && trak.Tkhd != nil {
		report.Width = int(trak.Tkhd.Width >> 16)
		report.Height = int(trak.Tkhd.Height >> 16)
	}
	return true
}

// webmFile is the subset of a Matroska document needed for a report.
type webmFile struct {
	Header struct {
		DocType string `ebml:"EBMLDocType"`
	} `ebml:"EBML"`
	Segment struct {
		Info struct {
			TimecodeScale uint64  `ebml:"TimecodeScale"`
			Duration      float64 `ebml:"Duration"`
		} `ebml:"Info"`
		Tracks struct {
			TrackEntry []struct {
				TrackNumber uint64 `ebml:"TrackNumber"`
				CodecID     string `ebml:"CodecID"`
				TrackType   uint64 `ebml:"TrackType"`
				Video       struct {
					PixelWidth  uint64 `ebml:"PixelWidth"`
					PixelHeight uint64 `ebml:"PixelHeight"`
				} `ebml:"Video"`
			} `ebml:"TrackEntry"`
		} `ebml:"Tracks"`
		Cluster []struct {
			SimpleBlock []ebml.Block `ebml:"SimpleBlock"`
		} `ebml:"Cluster"`
	} `ebml:"Segment"`
}

var webmCodecs = map[string]Codec{
	"V_VP8":           CodecVP8,
	"V_VP9":           CodecVP9,
	"V_AV1":           CodecAV1,
	"V_MPEG4/ISO/AVC": CodecH264,
}

func probeWebM(reader io.Reader) (*Report, error) {
	var doc webmFile
	if err := ebml.Unmarshal(reader, &doc); err != nil {
		return nil, fmt.Errorf("decode webm: %w", err)
	}

	report := &Report{Container: ContainerWebM, Codec: CodecUnknown}
	var trackNumber uint64
	found := false
	for _, t := range doc.Segment.Tracks.TrackEntry {
		if t.TrackType != 1 {
			continue
		}
		if codec, ok := webmCodecs[t.CodecID]; ok {
			report.Codec = codec
		}
		report.Width = int(t.Video.PixelWidth)
		report.Height = int(t.Video.PixelHeight)
		trackNumber = t.TrackNumber
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("no video track found")
	}

	for _, c := range doc.Segment.Cluster {
		for _, b := range c.SimpleBlock {
			if b.TrackNumber == trackNumber {
				report.Frames++
			}
		}
	}

	scale := doc.Segment.Info.TimecodeScale
	if scale == 0 {
		scale = 1_000_000
	}
	report.DurationSeconds = doc.Segment.Info.Duration * float64(scale) / 1e9
	return report, nil
}
