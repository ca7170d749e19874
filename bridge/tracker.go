package bridge

import (
	"sync"
	"time"

	"github.com/marcus-crane/mediabridge/metrics"
)

// Tracker remembers the identity of the last session seen by any request.
// It is advisory telemetry for spotting churn between polls and never decides
// which session is used or whether a snapshot is returned.
type Tracker struct {
	mu          sync.RWMutex
	lastID      string
	set         bool
	churnCount  int
	lastChurnAt time.Time
	now         func() time.Time
}

type TrackerStats struct {
	LastKnownApp *string    `json:"last_known_app"`
	ChurnCount   int        `json:"churn_count"`
	LastChurnAt  *time.Time `json:"last_churn_at"`
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Observe records the identity seen by a poll and reports whether it differs
// from the last one. When nothing is active (present is false) the stored
// identity is kept so a short gap between sessions is not forgotten.
func (t *Tracker) Observe(id string, present bool) bool {
	if !present {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.set && t.lastID == id {
		return false
	}
	t.lastID = id
	t.set = true
	t.churnCount++
	t.lastChurnAt = t.now()
	metrics.SessionChurn.Inc()
	return true
}

func (t *Tracker) LastKnown() (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastID, t.set
}

func (t *Tracker) Stats() TrackerStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	stats := TrackerStats{ChurnCount: t.churnCount}
	if t.set {
		id := t.lastID
		stats.LastKnownApp = &id
		at := t.lastChurnAt
		stats.LastChurnAt = &at
	}
	return stats
}
