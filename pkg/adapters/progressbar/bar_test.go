package progressbar

import (
	"bytes"
	"strings"
	"testing"
)

func TestBarNonInteractive(t *testing.T) {
	var buf bytes.Buffer
	b := NewWriter("Encoding", &buf)

	for _, p := range []int{0, 3, 9, 10, 12, 12, 11, 55, 99, 100, 100} {
		b.Report(p)
	}

	want := []string{
		"Encoding 0%",
		"Encoding 10%",
		"Encoding 55%",
		"Encoding 99%",
		"Encoding 100%",
	}
	got := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestBarInteractive(t *testing.T) {
	var buf bytes.Buffer
	b := NewWriter("Encoding", &buf)
	b.interactive = true

	b.Report(50)
	b.Report(100)

	out := buf.String()
	if !strings.Contains(out, "[===============---------------]  50%") {
		t.Errorf("missing half bar in %q", out)
	}
	if !strings.Contains(out, "[==============================] 100%") {
		t.Errorf("missing full bar in %q", out)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("finished bar should end its line")
	}

	b.Finish()
	if strings.Count(buf.String(), "\n") != 1 {
		t.Error("Finish after completion should not print")
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		percent int
		want    string
	}{
		{0, strings.Repeat("-", 30)},
		{10, "===" + strings.Repeat("-", 27)},
		{100, strings.Repeat("=", 30)},
	}
	for _, tt := range tests {
		if got := bar(tt.percent); got != tt.want {
			t.Errorf("bar(%d) = %q, want %q", tt.percent, got, tt.want)
		}
	}
}
