package ffmpegencoder

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/user/frameconv/pkg/ports"
)

// encoderNames maps codecs to the ffmpeg encoders used for them.
var encoderNames = map[ports.Codec]string{
	ports.CodecH264: "libx264",
	ports.CodecVP8:  "libvpx",
}

const probeTimeout = 10 * time.Second

// Prober checks that ffmpeg and ffprobe are installed and which of the
// supported encoders the ffmpeg build carries. The result is cached.
type Prober struct {
	ffmpegPath string
	logger     ports.Logger

	// run executes a command and returns its stdout. Replaced in tests.
	run func(ctx context.Context, name string, args ...string) ([]byte, error)

	once   sync.Once
	result ports.Capability
}

// NewProber creates a prober for the ffmpeg at ffmpegPath, or the one found
// by FindFFmpeg when ffmpegPath is empty.
func NewProber(ffmpegPath string, logger ports.Logger) *Prober {
	var log ports.Logger = noopLogger{}
	if logger != nil {
		log = logger.WithComponent("probe")
	}
	return &Prober{
		ffmpegPath: ffmpegPath,
		logger:     log,
		run:        runCommand,
	}
}

// Probe implements ports.CapabilityProber.
func (p *Prober) Probe(ctx context.Context) ports.Capability {
	p.once.Do(func() {
		p.result = p.probe(ctx)
	})
	return p.result
}

func (p *Prober) probe(ctx context.Context) ports.Capability {
	ffmpegPath, err := FindFFmpeg(p.ffmpegPath)
	if err != nil {
		return ports.Capability{Reason: err.Error()}
	}
	if _, err := FindFFprobe(ffmpegPath); err != nil {
		return ports.Capability{Reason: err.Error()}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := p.run(ctx, ffmpegPath, "-hide_banner", "-encoders")
	if err != nil {
		return ports.Capability{Reason: fmt.Sprintf("list ffmpeg encoders: %v", err)}
	}

	available := parseEncoderList(string(out))
	var codecs []ports.Codec
	for _, codec := range []ports.Codec{ports.CodecH264, ports.CodecVP8} {
		if available[encoderNames[codec]] {
			codecs = append(codecs, codec)
		}
	}
	if len(codecs) == 0 {
		return ports.Capability{Reason: "ffmpeg was built without libx264 and libvpx"}
	}

	p.logger.Debug("ffmpeg at %s supports %v", ffmpegPath, codecs)
	return ports.Capability{Supported: true, Encoders: codecs}
}

// parseEncoderList extracts encoder names from `ffmpeg -encoders` output.
// Entry lines look like " V....D libx264              libx264 H.264 ...".
func parseEncoderList(out string) map[string]bool {
	names := make(map[string]bool)
	listing := false
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !listing {
			if strings.HasPrefix(line, "---") {
				listing = true
			}
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields[0]) != 6 {
			continue
		}
		names[fields[1]] = true
	}
	return names
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

var _ ports.CapabilityProber = (*Prober)(nil)
