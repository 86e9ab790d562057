package ffmpegencoder

import (
	"bytes"
	"io"
	"testing"
)

// chunkedReader returns data in small reads to exercise start codes split
// across read boundaries.
type chunkedReader struct {
	data []byte
	n    int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.n
	if n > len(p) {
		n = len(p)
	}
	if n > len(r.data) {
		n = len(r.data)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

var (
	aud    = []byte{0, 0, 0, 1, 0x09, 0xF0}
	sps    = []byte{0, 0, 0, 1, 0x67, 0x42, 0x00, 0x1E}
	pps    = []byte{0, 0, 0, 1, 0x68, 0xCE, 0x38, 0x80}
	idr    = []byte{0, 0, 1, 0x65, 0x88, 0x84, 0x00}
	nonIDR = []byte{0, 0, 1, 0x41, 0x9A, 0x02}
)

func join(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}

func TestAccessUnitReader(t *testing.T) {
	au1 := join(aud, sps, pps, idr)
	au2 := join(aud, nonIDR)
	au3 := join(aud, nonIDR, nonIDR)
	stream := join(au1, au2, au3)

	for _, readSize := range []int{1, 3, 7, len(stream)} {
		r := newAccessUnitReader(&chunkedReader{data: append([]byte(nil), stream...), n: readSize})

		var got [][]byte
		var keys []bool
		for {
			data, key, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("read size %d: Next failed: %v", readSize, err)
			}
			got = append(got, data)
			keys = append(keys, key)
		}

		want := [][]byte{au1, au2, au3}
		if len(got) != len(want) {
			t.Fatalf("read size %d: got %d access units, want %d", readSize, len(got), len(want))
		}
		for i := range want {
			if !bytes.Equal(got[i], want[i]) {
				t.Errorf("read size %d: access unit %d = %x, want %x", readSize, i, got[i], want[i])
			}
		}
		if !keys[0] || keys[1] || keys[2] {
			t.Errorf("read size %d: keyframe flags = %v, want [true false false]", readSize, keys)
		}
	}
}

func TestAccessUnitReaderEmpty(t *testing.T) {
	r := newAccessUnitReader(bytes.NewReader(nil))
	if _, _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestParseAnnexB(t *testing.T) {
	nalus := parseAnnexB(join(sps, pps, idr))
	if len(nalus) != 3 {
		t.Fatalf("expected 3 NAL units, got %d", len(nalus))
	}
	wantTypes := []byte{nalTypeSPS, nalTypePPS, nalTypeIDR}
	for i, nalu := range nalus {
		if nalu[0]&0x1F != wantTypes[i] {
			t.Errorf("NAL %d type = %d, want %d", i, nalu[0]&0x1F, wantTypes[i])
		}
	}
}

func TestContainsIDR(t *testing.T) {
	if !containsIDR(join(aud, sps, pps, idr)) {
		t.Error("expected IDR access unit to be a keyframe")
	}
	if containsIDR(join(aud, nonIDR)) {
		t.Error("expected P access unit not to be a keyframe")
	}
}
