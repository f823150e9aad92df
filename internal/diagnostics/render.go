package diagnostics

import (
	"fmt"
	"io"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiBold   = "\033[1m"
)

// Render writes a human-readable diagnostic, optionally colorized.
func Render(w io.Writer, d *Diagnostic, color bool) {
	label := "error"
	tint := ansiRed
	if d.Severity == SeverityWarning {
		label = "warning"
		tint = ansiYellow
	}
	if color {
		fmt.Fprintf(w, "%s%s%s[%s]%s: %s%s%s\n", ansiBold, tint, label, d.Code, ansiReset, ansiBold, d.Message, ansiReset)
	} else {
		fmt.Fprintf(w, "%s[%s]: %s\n", label, d.Code, d.Message)
	}
	fmt.Fprintf(w, "  --> %s\n", d.Pos)
	for _, f := range d.Frames {
		fmt.Fprintf(w, "  %s\n", f)
	}
}
