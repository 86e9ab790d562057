package ffmpegencoder

import (
	"io"
)

// H.264 NAL unit types used when splitting and inspecting access units.
const (
	nalTypeIDR = 5
	nalTypeSPS = 7
	nalTypePPS = 8
	nalTypeAUD = 9
)

// accessUnitReader splits an Annex B byte stream into access units. The
// encoder is run with access unit delimiters enabled, so every access unit
// starts with an AUD NAL unit.
type accessUnitReader struct {
	r       io.Reader
	buf     []byte
	scanned int
	eof     bool
	tmp     []byte
}

func newAccessUnitReader(r io.Reader) *accessUnitReader {
	return &accessUnitReader{r: r, tmp: make([]byte, 64*1024)}
}

// Next returns the next complete access unit and whether it is a keyframe.
func (a *accessUnitReader) Next() ([]byte, bool, error) {
	for {
		if idx := findAUD(a.buf, a.scanned); idx > 0 {
			au := make([]byte, idx)
			copy(au, a.buf[:idx])
			a.buf = a.buf[idx:]
			a.scanned = 0
			return au, containsIDR(au), nil
		}
		if len(a.buf) > 3 {
			a.scanned = len(a.buf) - 3
		}

		if a.eof {
			if len(a.buf) == 0 {
				return nil, false, io.EOF
			}
			au := a.buf
			a.buf = nil
			return au, containsIDR(au), nil
		}

		n, err := a.r.Read(a.tmp)
		a.buf = append(a.buf, a.tmp[:n]...)
		if err == io.EOF {
			a.eof = true
		} else if err != nil {
			return nil, false, err
		}
	}
}

// findAUD returns the offset of the first access unit delimiter start code
// after the beginning of buf, or -1.
func findAUD(buf []byte, from int) int {
	if from < 1 {
		from = 1
	}
	for i := from; i+3 < len(buf); i++ {
		if buf[i] != 0 || buf[i+1] != 0 || buf[i+2] != 1 {
			continue
		}
		if buf[i+3]&0x1F != nalTypeAUD {
			continue
		}
		start := i
		if buf[i-1] == 0 {
			start = i - 1
		}
		if start > 0 {
			return start
		}
	}
	return -1
}

// parseAnnexB parses an Annex B byte stream into individual NAL units.
func parseAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := 0
	i := 0

	for i < len(data) {
		if i+2 < len(data) && data[i] == 0 && data[i+1] == 0 {
			startCodeLen := 0
			if data[i+2] == 1 {
				startCodeLen = 3
			} else if i+3 < len(data) && data[i+2] == 0 && data[i+3] == 1 {
				startCodeLen = 4
			}

			if startCodeLen > 0 {
				if i > start {
					nalus = append(nalus, data[start:i])
				}
				i += startCodeLen
				start = i
				continue
			}
		}
		i++
	}

	if start < len(data) {
		nalus = append(nalus, data[start:])
	}
	return nalus
}

func containsIDR(au []byte) bool {
	for _, nalu := range parseAnnexB(au) {
		if len(nalu) > 0 && nalu[0]&0x1F == nalTypeIDR {
			return true
		}
	}
	return false
}
