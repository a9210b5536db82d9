package metrics

import (
	"sync"
	"time"
)

// InMemory is a Recorder that keeps counters in process memory.
// Useful for tests and the /metrics debug endpoint.
type InMemory struct {
	mu sync.Mutex

	resolved        map[string]int64
	insightHits     int64
	insightComputed int64
	profileUpdates  int64

	updateDurationTotal time.Duration
	updateDurationCount int64
}

// NewInMemory creates an in-memory Recorder.
func NewInMemory() *InMemory {
	return &InMemory{
		resolved: make(map[string]int64),
	}
}

func (m *InMemory) IncUserResolved(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolved[outcome]++
}

func (m *InMemory) IncInsightCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insightHits++
}

func (m *InMemory) IncInsightComputed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insightComputed++
}

func (m *InMemory) IncProfileUpdated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileUpdates++
}

func (m *InMemory) ObserveProfileUpdateDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateDurationTotal += duration
	m.updateDurationCount++
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	UsersResolved       map[string]int64 `json:"users_resolved"`
	InsightCacheHits    int64            `json:"insight_cache_hits"`
	InsightsComputed    int64            `json:"insights_computed"`
	ProfileUpdates      int64            `json:"profile_updates"`
	AvgUpdateDurationMS float64          `json:"avg_update_duration_ms"`
}

// Snapshot returns a copy of the current counters.
func (m *InMemory) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	resolved := make(map[string]int64, len(m.resolved))
	for k, v := range m.resolved {
		resolved[k] = v
	}

	var avg float64
	if m.updateDurationCount > 0 {
		avg = float64(m.updateDurationTotal.Microseconds()) / float64(m.updateDurationCount) / 1000
	}

	return Snapshot{
		UsersResolved:       resolved,
		InsightCacheHits:    m.insightHits,
		InsightsComputed:    m.insightComputed,
		ProfileUpdates:      m.profileUpdates,
		AvgUpdateDurationMS: avg,
	}
}
