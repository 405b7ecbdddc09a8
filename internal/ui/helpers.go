package ui

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration as MM:SS; minutes keep counting past an
// hour (61:01, not 1:01:01) so the column width stays stable.
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// Truncate cuts s to at most width runes, appending "..." when cut.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
