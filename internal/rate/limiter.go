package rate

import (
	"sync"
	"time"
)

// Window is the span over which calls are counted.
const Window = time.Minute

// DefaultLimit is the calls-per-minute ceiling applied when no limit is
// configured.
const DefaultLimit = 60

// Stats is a point-in-time view of the limiter for management reporting.
type Stats struct {
	Limit    int
	InWindow int
	LastCall time.Time
}

// Limiter admits outbound API calls against a sliding one-minute window.
// Admission is advisory: a refused call is skipped by the caller, never
// queued or delayed. Admit never mutates the window; callers that proceed
// with a call are responsible for Record.
type Limiter struct {
	mu    sync.Mutex
	limit int
	calls []time.Time
	last  time.Time

	now func() time.Time
}

func NewLimiter(limit int) *Limiter {
	return &Limiter{limit: limit, now: time.Now}
}

// Admit purges entries older than the window and reports whether another
// call fits under the limit.
func (l *Limiter) Admit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.purge(l.now())
	ok := len(l.calls) < l.limit
	if !ok {
		refusedTotal.Inc()
	}
	windowGauge.Set(float64(len(l.calls)))
	return ok
}

// Record appends the current timestamp to the window.
func (l *Limiter) Record() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.calls = append(l.calls, now)
	l.last = now
	windowGauge.Set(float64(len(l.calls)))
}

// Stats reports the limit, the number of calls still inside the window, and
// the time of the most recent recorded call.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.purge(l.now())
	return Stats{Limit: l.limit, InWindow: len(l.calls), LastCall: l.last}
}

// Limit returns the configured calls-per-minute ceiling.
func (l *Limiter) Limit() int {
	return l.limit
}

func (l *Limiter) purge(now time.Time) {
	cutoff := now.Add(-Window)
	kept := l.calls[:0]
	for _, t := range l.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.calls = kept
}
