package ffmpegencoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	ivfFileHeaderSize  = 32
	ivfFrameHeaderSize = 12
)

// ivfReader reads frames from an IVF stream as written by ffmpeg's ivf muxer.
type ivfReader struct {
	r          io.Reader
	headerRead bool
	fourCC     string
}

func newIVFReader(r io.Reader) *ivfReader {
	return &ivfReader{r: r}
}

// Next returns the next frame payload and whether it is a VP8 keyframe.
func (v *ivfReader) Next() ([]byte, bool, error) {
	if !v.headerRead {
		var hdr [ivfFileHeaderSize]byte
		if _, err := io.ReadFull(v.r, hdr[:]); err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, false, fmt.Errorf("ivf: truncated file header")
			}
			return nil, false, err
		}
		if string(hdr[0:4]) != "DKIF" {
			return nil, false, fmt.Errorf("ivf: bad signature %q", hdr[0:4])
		}
		headerLen := int(binary.LittleEndian.Uint16(hdr[6:8]))
		if headerLen > ivfFileHeaderSize {
			if _, err := io.CopyN(io.Discard, v.r, int64(headerLen-ivfFileHeaderSize)); err != nil {
				return nil, false, fmt.Errorf("ivf: skip header: %w", err)
			}
		}
		v.fourCC = string(hdr[8:12])
		v.headerRead = true
	}

	var fh [ivfFrameHeaderSize]byte
	if _, err := io.ReadFull(v.r, fh[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, false, fmt.Errorf("ivf: truncated frame header")
		}
		return nil, false, err
	}

	size := binary.LittleEndian.Uint32(fh[0:4])
	data := make([]byte, size)
	if _, err := io.ReadFull(v.r, data); err != nil {
		return nil, false, fmt.Errorf("ivf: truncated frame: %w", err)
	}

	return data, isVP8Keyframe(data), nil
}

// isVP8Keyframe reads the frame type bit of the VP8 frame tag.
func isVP8Keyframe(frame []byte) bool {
	return len(frame) > 0 && frame[0]&0x01 == 0
}
