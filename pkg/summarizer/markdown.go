package summarizer

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format implements Formatter.
func (f *MarkdownFormatter) Format(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Conversion Summary\n\n")
	fmt.Fprintf(&sb, "Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	sb.WriteString("## Source\n\n")
	sb.WriteString("| Item | Value |\n|------|-------|\n")
	if s.Source.Name != "" {
		fmt.Fprintf(&sb, "| File | %s |\n", escapeCell(s.Source.Name))
	}
	fmt.Fprintf(&sb, "| Size | %dx%d |\n", s.Source.Width, s.Source.Height)
	fmt.Fprintf(&sb, "| Duration | %.2f s |\n", s.Source.DurationSeconds)
	if s.Source.FrameRate > 0 {
		fmt.Fprintf(&sb, "| Frame Rate | %.2f fps |\n", s.Source.FrameRate)
	} else {
		sb.WriteString("| Frame Rate | unknown |\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Settings\n\n")
	sb.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&sb, "| Codec | %s |\n", s.Settings.Codec)
	fmt.Fprintf(&sb, "| Max Duration | %.0f s |\n", s.Settings.MaxDurationSeconds)
	fmt.Fprintf(&sb, "| Bitrate | %s |\n", formatBitrate(s.Settings.BitrateBps))
	fmt.Fprintf(&sb, "| Capture Rate | %.2f fps |\n", s.Settings.FrameRate)
	fmt.Fprintf(&sb, "| Frames | %d |\n", s.Settings.FramesTotal)
	sb.WriteString("\n")

	sb.WriteString("## Result\n\n")
	sb.WriteString("| Item | Value |\n|------|-------|\n")
	fmt.Fprintf(&sb, "| State | %s |\n", s.Result.State)
	if s.Result.FailureKind != "" {
		fmt.Fprintf(&sb, "| Failure | %s |\n", s.Result.FailureKind)
		fmt.Fprintf(&sb, "| Message | %s |\n", escapeCell(s.Result.FailureMessage))
	}
	fmt.Fprintf(&sb, "| Frames Encoded | %d |\n", s.Result.Frames)
	if s.Result.FileName != "" {
		fmt.Fprintf(&sb, "| File | %s |\n", s.Result.FileName)
		fmt.Fprintf(&sb, "| Type | %s |\n", escapeCell(s.Result.MIMEType))
		fmt.Fprintf(&sb, "| File Size | %s |\n", formatBytes(s.Result.FileSize))
		fmt.Fprintf(&sb, "| Video Duration | %.2f s |\n", float64(s.Result.DurationMicros)/1e6)
	}
	if s.Result.Elapsed > 0 {
		fmt.Fprintf(&sb, "| Elapsed | %s |\n", s.Result.Elapsed.Round(time.Millisecond))
	}

	return sb.String()
}

func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.2f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func formatBitrate(bps int) string {
	if bps >= 1_000_000 {
		return fmt.Sprintf("%.2f Mbps", float64(bps)/1e6)
	}
	return fmt.Sprintf("%.0f kbps", float64(bps)/1e3)
}

// escapeCell keeps pipes and newlines from breaking the table.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
