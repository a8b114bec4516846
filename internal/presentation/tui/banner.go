package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the fitpulse banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"   __ _ _               _          ", "#34d399"},
		{"  / _(_) |_ _ __  _   _| |___  ___ ", "#2dd4bf"},
		{" | |_| | __| '_ \\| | | | / __|/ _ \\", "#22d3ee"},
		{" |  _| | |_| |_) | |_| | \\__ \\  __/", "#38bdf8"},
		{" |_| |_|\\__| .__/ \\__,_|_|___/\\___|", "#60a5fa"},
		{"           |_|                     ", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
