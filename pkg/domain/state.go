package domain

// LoadState describes the progress of the initial read of a persisted value.
type LoadState int

const (
	// Loading holds only while the initial read from durable storage is outstanding.
	Loading LoadState = iota
	// Ready is terminal: once reached, the load never restarts.
	Ready
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}
