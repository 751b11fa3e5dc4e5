package terminal

import (
	"fmt"
	"strings"
	"time"
)

// MaxReportWidth is the maximum width for report rulers.
const MaxReportWidth = 90

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	remainSecs := secs - float64(mins*60)
	return fmt.Sprintf("%dm %.1fs", mins, remainSecs)
}

// Ruler returns a horizontal rule string.
func Ruler(width int, char string) string {
	return Paint(Dim, strings.Repeat(char, width))
}

// ReportWidth returns the ruler width: the terminal width capped at
// MaxReportWidth.
func ReportWidth() int {
	return min(Width(), MaxReportWidth)
}

// Indent prefixes every non-empty line of text.
func Indent(text, prefix string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}

// Plural returns "1 lint" or "N lints".
func Plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
