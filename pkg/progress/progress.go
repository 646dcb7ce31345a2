// Package progress provides an injectable progress observer for long batch
// stages. A nil *Tracker is a valid no-op, so callers can disable reporting
// entirely without conditional plumbing.
package progress

import "log/slog"

// Tracker reports how many items a stage has processed, at a configurable
// period. It is not safe for concurrent use; each stage owns its own Tracker.
type Tracker struct {
	desc   string
	period int64
	count  int64
	logger *slog.Logger
}

// NewTracker creates a Tracker that logs every period items under the given
// description.
func NewTracker(desc string, period int64) *Tracker {
	if period <= 0 {
		period = 1
	}
	return &Tracker{
		desc:   desc,
		period: period,
		logger: slog.Default().With("component", "progress"),
	}
}

// Step records one processed item.
func (t *Tracker) Step() {
	if t == nil {
		return
	}
	t.count++
	if t.count%t.period == 0 {
		t.logger.Info(t.desc, "passed", t.count)
	}
}

// Finish logs the final item count for the stage.
func (t *Tracker) Finish() {
	if t == nil {
		return
	}
	t.logger.Info(t.desc+" done", "total", t.count)
}

// Count returns the number of items recorded so far.
func (t *Tracker) Count() int64 {
	if t == nil {
		return 0
	}
	return t.count
}
