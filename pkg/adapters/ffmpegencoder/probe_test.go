package ffmpegencoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/frameconv/pkg/ports"
)

const encodersOutput = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)
 V....D libvpx               libvpx VP8 (codec vp8)
 V....D libvpx-vp9           libvpx VP9 (codec vp9)
 A....D aac                  AAC (Advanced Audio Coding)
`

// fakeTools creates empty ffmpeg and ffprobe files so path lookup succeeds.
func fakeTools(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{executable("ffmpeg"), executable("ffprobe")} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0755); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, executable("ffmpeg"))
}

func TestParseEncoderList(t *testing.T) {
	names := parseEncoderList(encodersOutput)
	for _, want := range []string{"libx264", "libvpx", "libvpx-vp9", "aac"} {
		if !names[want] {
			t.Errorf("expected %s in encoder list", want)
		}
	}
	if names["Video"] || names["="] {
		t.Error("legend lines should not be parsed as encoders")
	}
}

func TestProberSupported(t *testing.T) {
	p := NewProber(fakeTools(t), nil)
	calls := 0
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		calls++
		return []byte(encodersOutput), nil
	}

	capability := p.Probe(context.Background())
	if !capability.Supported {
		t.Fatalf("expected supported, reason: %s", capability.Reason)
	}
	if !capability.Has(ports.CodecH264) || !capability.Has(ports.CodecVP8) {
		t.Errorf("expected both codecs, got %v", capability.Encoders)
	}

	p.Probe(context.Background())
	if calls != 1 {
		t.Errorf("expected probe to be cached, ran %d times", calls)
	}
}

func TestProberPartialCodecs(t *testing.T) {
	p := NewProber(fakeTools(t), nil)
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("Encoders:\n ------\n V....D libvpx               libvpx VP8 (codec vp8)\n"), nil
	}

	capability := p.Probe(context.Background())
	if !capability.Supported {
		t.Fatal("expected supported with VP8 only")
	}
	if capability.Has(ports.CodecH264) {
		t.Error("H.264 should not be reported")
	}
}

func TestProberNoEncoders(t *testing.T) {
	p := NewProber(fakeTools(t), nil)
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("Encoders:\n ------\n"), nil
	}
	if p.Probe(context.Background()).Supported {
		t.Error("expected unsupported without libx264 and libvpx")
	}
}

func TestProberCommandFails(t *testing.T) {
	p := NewProber(fakeTools(t), nil)
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, errors.New("exit status 1")
	}
	capability := p.Probe(context.Background())
	if capability.Supported || capability.Reason == "" {
		t.Errorf("expected unsupported with reason, got %+v", capability)
	}
}

func TestProberMissingFFmpeg(t *testing.T) {
	p := NewProber(filepath.Join(t.TempDir(), "missing-ffmpeg"), nil)
	capability := p.Probe(context.Background())
	if capability.Supported {
		t.Error("expected unsupported when ffmpeg is missing")
	}
}

func TestFactoryRejectsUnavailableCodec(t *testing.T) {
	p := NewProber(fakeTools(t), nil)
	p.run = func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("Encoders:\n ------\n V....D libvpx               libvpx VP8 (codec vp8)\n"), nil
	}
	factory := NewFactory(Options{}, p)

	if _, err := factory(ports.CodecH264); !errors.Is(err, ErrCodecUnavailable) {
		t.Errorf("expected ErrCodecUnavailable, got %v", err)
	}
	enc, err := factory(ports.CodecVP8)
	if err != nil {
		t.Fatalf("expected VP8 encoder, got %v", err)
	}
	enc.Close()
}
