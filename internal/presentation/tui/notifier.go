package tui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fitpulse/fitpulse/pkg/ports"
	"github.com/muesli/termenv"
)

// Notifier prints notifications as colored status lines.
type Notifier struct {
	mu      sync.Mutex
	out     *termenv.Output
	verbose bool
}

// NewNotifier creates a Notifier writing to w. When verbose is set the
// underlying error is printed after the message.
func NewNotifier(w io.Writer, verbose bool) *Notifier {
	return &Notifier{
		out:     termenv.NewOutput(w),
		verbose: verbose,
	}
}

var _ ports.Notifier = (*Notifier)(nil)

func (n *Notifier) Notify(_ context.Context, note ports.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var prefix termenv.Style
	switch note.Kind {
	case ports.NotifySuccess:
		prefix = n.out.String("✔").Foreground(n.out.Color("#34d399")).Bold()
	default:
		prefix = n.out.String("✖").Foreground(n.out.Color("#f87171")).Bold()
	}

	fmt.Fprintf(n.out, "%s %s\n", prefix, note.Message)
	if n.verbose && note.Err != nil {
		fmt.Fprintf(n.out, "  %s\n", n.out.String(note.Err.Error()).Faint())
	}
}
