package transcoder

import (
	"fmt"
	"math"
	"strings"

	"github.com/user/frameconv/pkg/ports"
)

// Config configures a single transcode job.
type Config struct {
	Codec              string  // "h264" or "vp8"
	MaxDurationSeconds float64 // frame budget (default 60)
	BitrateBps         int     // target bitrate (default 2,000,000)
	FrameRate          float64 // capture rate; 0 uses the source rate, or 30 when unknown
}

// DefaultConfig returns Config with default values.
func DefaultConfig() Config {
	return Config{
		Codec:              string(ports.CodecH264),
		MaxDurationSeconds: 60,
		BitrateBps:         2_000_000,
	}
}

// ParseCodec maps a codec name to a supported codec.
func ParseCodec(name string) (ports.Codec, error) {
	switch ports.Codec(strings.ToLower(strings.TrimSpace(name))) {
	case ports.CodecH264:
		return ports.CodecH264, nil
	case ports.CodecVP8:
		return ports.CodecVP8, nil
	default:
		return "", fmt.Errorf("unknown codec %q", name)
	}
}

// ExtensionFor returns the output file extension for a codec.
func ExtensionFor(codec ports.Codec) string {
	if codec == ports.CodecVP8 {
		return "webm"
	}
	return "mp4"
}

// FileNameFor returns the download file name for a codec.
func FileNameFor(codec ports.Codec) string {
	return "converted-video." + ExtensionFor(codec)
}

// FramesTotal returns floor(min(duration, maxDuration) * frameRate).
func FramesTotal(durationSeconds, maxDurationSeconds, frameRate float64) int {
	d := durationSeconds
	if maxDurationSeconds > 0 && maxDurationSeconds < d {
		d = maxDurationSeconds
	}
	if d <= 0 || frameRate <= 0 {
		return 0
	}
	return int(math.Floor(d*frameRate + 1e-9))
}

// FrameTimestamp returns the presentation timestamp of frame k in microseconds.
func FrameTimestamp(k int, frameRate float64) int64 {
	return int64(math.Floor(float64(k)*1e6/frameRate + 1e-6))
}

// FrameDuration returns the duration of one frame in microseconds.
func FrameDuration(frameRate float64) int64 {
	return int64(math.Floor(1e6/frameRate + 1e-6))
}

// effectiveFrameRate picks the capture rate for a job.
func effectiveFrameRate(configured float64, info ports.MediaInfo) float64 {
	switch {
	case configured > 0:
		return configured
	case info.FrameRate > 0:
		return info.FrameRate
	default:
		return ports.DefaultFrameRate
	}
}
