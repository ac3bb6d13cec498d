package coordinator

import (
	"context"
	"time"
)

// ScheduleQuickRefresh arms a short-delay refresh after a successful control
// write, giving the cloud time to apply the new value before re-reading it.
// Scheduling while a quick refresh is already pending restarts the delay;
// any number of writes within the window collapse into one refresh.
func (c *Coordinator) ScheduleQuickRefresh() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.quickTimer != nil {
		c.quickTimer.Stop()
	}
	c.quickPending = true
	quickRefreshScheduled.Inc()
	c.quickTimer = time.AfterFunc(c.opts.QuickDelay, c.quickRefresh)
}

func (c *Coordinator) quickRefresh() {
	c.mu.Lock()
	if c.closed || !c.quickPending {
		c.mu.Unlock()
		return
	}
	c.quickPending = false
	c.quickTimer = nil
	c.mu.Unlock()

	if err := c.RequestRefresh(context.Background()); err != nil {
		c.log.Warn().Err(err).Msg("quick refresh failed")
	}
}

// QuickRefreshPending reports whether a post-write refresh is armed.
func (c *Coordinator) QuickRefreshPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quickPending
}
