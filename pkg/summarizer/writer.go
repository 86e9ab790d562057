package summarizer

import (
	"fmt"

	"github.com/user/frameconv/pkg/ports"
)

// Formatter renders a conversion report.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc lets a plain function render reports.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// Writer saves conversion reports next to the converted video, or wherever
// --summary points.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
}

func NewWriter(formatter Formatter, fs ports.FileSystem) *Writer {
	return &Writer{formatter: formatter, fs: fs}
}

// Write renders the report for a finished, failed or cancelled job and
// stores it at path.
func (w *Writer) Write(path string, summary *Summary) error {
	if err := w.fs.WriteFile(path, []byte(w.formatter.Format(summary))); err != nil {
		return fmt.Errorf("write conversion summary %s: %w", path, err)
	}
	return nil
}
