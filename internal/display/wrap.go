// Package display holds the terminal formatting helpers the session
// renderer shares.
package display

import (
	"fmt"

	"github.com/muesli/reflow/wordwrap"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return wordwrap.String(text, DefaultWidth)
}

// Banner frames a single line for high-signal moments like level-ups.
func Banner(text string) string {
	return fmt.Sprintf("*** %s ***", text)
}

// Warning prefixes a survival or condition warning line.
func Warning(text string) string {
	return "! " + text
}

// Mechanics brackets a dice summary so prose and numbers stay visually
// separate.
func Mechanics(summary string) string {
	return "[" + summary + "]"
}
