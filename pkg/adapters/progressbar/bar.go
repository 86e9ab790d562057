// Package progressbar renders job progress on a terminal.
package progressbar

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/user/frameconv/pkg/ports"
)

const barWidth = 30

// Bar implements ports.ProgressReporter. On a terminal it redraws one line in
// place; elsewhere it prints a line every ten percent.
type Bar struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	description string
	start       time.Time
	lastPercent int
	lastDraw    time.Time
	finished    bool
}

// New creates a bar writing to os.Stderr.
func New(description string) *Bar {
	fd := os.Stderr.Fd()
	b := NewWriter(description, os.Stderr)
	b.interactive = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return b
}

// NewWriter creates a non-interactive bar writing to out.
func NewWriter(description string, out io.Writer) *Bar {
	return &Bar{
		out:         out,
		description: description,
		start:       time.Now(),
		lastPercent: -1,
	}
}

// Report draws percent. Repeated or decreasing values are ignored.
func (b *Bar) Report(percent int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished || percent <= b.lastPercent {
		return
	}
	if percent > 100 {
		percent = 100
	}

	if b.interactive {
		// Redraw at most every 100ms, except for the final state.
		if percent < 100 && time.Since(b.lastDraw) < 100*time.Millisecond {
			b.lastPercent = percent
			return
		}
		b.lastDraw = time.Now()
		fmt.Fprintf(b.out, "\r%s [%s] %3d%% %v", b.description, bar(percent), percent, time.Since(b.start).Round(time.Second))
		if percent == 100 {
			fmt.Fprintln(b.out)
		}
	} else if percent/10 > b.lastPercent/10 || b.lastPercent < 0 {
		fmt.Fprintf(b.out, "%s %d%%\n", b.description, percent)
	}

	b.lastPercent = percent
	if percent == 100 {
		b.finished = true
	}
}

// Finish ends the line of an interrupted bar.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.finished = true
	if b.interactive && b.lastPercent >= 0 {
		fmt.Fprintln(b.out)
	}
}

func bar(percent int) string {
	done := barWidth * percent / 100
	return strings.Repeat("=", done) + strings.Repeat("-", barWidth-done)
}

var _ ports.ProgressReporter = (*Bar)(nil)
