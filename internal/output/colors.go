package output

import "github.com/fatih/color"

// ColorScheme defines the colors table output uses for each element,
// ported from the teacher's text.go ColorScheme and retargeted from RTT
// buckets to port status.
type ColorScheme struct {
	Header   *color.Color
	Host     *color.Color
	Open     *color.Color
	Closed   *color.Color
	Filtered *color.Color
}

// DefaultColorScheme returns the default color scheme.
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Header:   color.New(color.FgWhite, color.Bold),
		Host:     color.New(color.FgCyan, color.Bold),
		Open:     color.New(color.FgGreen, color.Bold),
		Closed:   color.New(color.FgRed),
		Filtered: color.New(color.FgYellow),
	}
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return s[:maxLen]
	}
	return s[:maxLen-1] + "…"
}
