// Package util provides small string helpers for terminal output.
package util

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Ellipsis marks truncated text.
const Ellipsis = "..."

// TruncateString shortens s to maxLen runes, ending in Ellipsis when
// anything was cut. It ignores escape codes and wide characters; use
// TruncateANSI for styled text.
func TruncateString(s string, maxLen int) string {
	if maxLen <= len(Ellipsis) {
		return Ellipsis
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-len(Ellipsis)]) + Ellipsis
}

// TruncateANSI shortens s to maxWidth terminal columns, ending in Ellipsis
// when anything was cut. Escape sequences are preserved and do not count
// towards the width.
func TruncateANSI(s string, maxWidth int) string {
	if maxWidth <= len(Ellipsis) {
		return Ellipsis
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	// ansi.Truncate counts the tail towards maxWidth.
	return ansi.Truncate(s, maxWidth, Ellipsis)
}
