package metrics

import "time"

// Noop is a Recorder that discards all events.
type Noop struct{}

// NewNoop creates a no-op Recorder.
func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) IncUserResolved(string) {}

func (n *Noop) IncInsightCacheHit() {}

func (n *Noop) IncInsightComputed() {}

func (n *Noop) IncProfileUpdated() {}

func (n *Noop) ObserveProfileUpdateDuration(time.Duration) {}
