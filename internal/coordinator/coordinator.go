package coordinator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Roagert/fluidra-pool/internal/auth"
	"github.com/Roagert/fluidra-pool/internal/fluidra"
	"github.com/Roagert/fluidra-pool/internal/model"
	"github.com/Roagert/fluidra-pool/internal/normalize"
	"github.com/Roagert/fluidra-pool/internal/rate"
)

const (
	DefaultInterval   = 30 * time.Minute
	DefaultQuickDelay = 5 * time.Second

	defaultRetryAttempts = 3
	defaultRetryDelay    = 2 * time.Second
)

// Options configures one coordinator.
type Options struct {
	// Interval between scheduled refresh cycles.
	Interval time.Duration
	// QuickDelay is the settle delay between a successful control write and
	// the follow-up refresh.
	QuickDelay time.Duration
	// DeviceID, when set, narrows error-information derivation to one device.
	DeviceID string

	RetryAttempts int
	RetryDelay    time.Duration
}

func (o *Options) applyDefaults() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.QuickDelay <= 0 {
		o.QuickDelay = DefaultQuickDelay
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = defaultRetryAttempts
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
}

// Coordinator owns the refresh schedule, the per-source retry policy, the
// quick-refresh-after-write mechanism, and the published snapshot. At most
// one refresh cycle runs at a time; concurrent refresh requests coalesce
// into the in-flight cycle.
type Coordinator struct {
	api     *fluidra.Client
	auth    auth.Authenticator
	limiter *rate.Limiter
	opts    Options
	log     zerolog.Logger

	snapshot atomic.Pointer[model.Snapshot]

	mu           sync.Mutex
	inFlight     *refreshRun
	quickTimer   *time.Timer
	quickPending bool
	listeners    map[int]func()
	nextListener int
	nextUpdate   time.Time
	closed       bool

	done      chan struct{}
	closeOnce sync.Once
}

type refreshRun struct {
	done chan struct{}
	err  error
}

func New(api *fluidra.Client, authn auth.Authenticator, limiter *rate.Limiter, opts Options, log zerolog.Logger) *Coordinator {
	opts.applyDefaults()

	c := &Coordinator{
		api:       api,
		auth:      authn,
		limiter:   limiter,
		opts:      opts,
		log:       log.With().Str("component", "coordinator").Logger(),
		listeners: make(map[int]func()),
		done:      make(chan struct{}),
	}
	c.snapshot.Store(&model.Snapshot{})
	return c
}

// Run drives the scheduled refresh loop until ctx is cancelled or the
// coordinator is closed. The first cycle runs immediately.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	c.setNextUpdate(time.Now().Add(c.opts.Interval))
	if err := c.RequestRefresh(ctx); err != nil {
		c.log.Error().Err(err).Msg("initial refresh failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-ticker.C:
			c.setNextUpdate(time.Now().Add(c.opts.Interval))
			if err := c.RequestRefresh(ctx); err != nil {
				c.log.Error().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

// RequestRefresh runs a refresh cycle, or joins the in-flight one: a request
// issued while a cycle is already running observes that cycle's completion
// instead of starting another.
func (c *Coordinator) RequestRefresh(ctx context.Context) error {
	c.mu.Lock()
	if run := c.inFlight; run != nil {
		c.mu.Unlock()
		select {
		case <-run.done:
			return run.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	run := &refreshRun{done: make(chan struct{})}
	c.inFlight = run
	c.mu.Unlock()

	run.err = c.refreshCycle(ctx)

	c.mu.Lock()
	c.inFlight = nil
	c.mu.Unlock()
	close(run.done)

	return run.err
}

// refreshCycle re-authenticates, fetches every data source sequentially,
// recomputes derived error information, and publishes the new snapshot.
// Only the cycle-start authentication failure propagates; per-source
// failures are absorbed into stale or empty data.
func (c *Coordinator) refreshCycle(ctx context.Context) error {
	start := time.Now()
	refreshTotal.Inc()

	if err := c.auth.Authenticate(ctx); err != nil {
		refreshAuthFailures.Inc()
		refreshSuccess.Set(0)
		c.log.Error().Err(err).Msg("cycle authentication failed")
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	b := c.builder()
	for _, src := range c.primarySources(b) {
		c.fetchWithRetries(ctx, src)
	}
	for _, src := range c.deviceSources(b) {
		c.fetchWithRetries(ctx, src)
	}

	b.errorInfo = normalize.DeriveErrorInfo(b.devices, c.opts.DeviceID, time.Now())
	c.snapshot.Store(b.build(time.Now()))

	refreshSuccess.Set(1)
	refreshDuration.Set(time.Since(start).Seconds())
	lastRefreshTime.SetToCurrentTime()
	c.log.Debug().Dur("took", time.Since(start)).Int("devices", len(b.devices)).Msg("refresh cycle complete")

	c.notifyListeners()
	return nil
}

// Snapshot returns the last published snapshot. The returned value is
// immutable; a refresh cycle replaces it wholesale.
func (c *Coordinator) Snapshot() *model.Snapshot {
	return c.snapshot.Load()
}

// AddListener registers fn to run after each published refresh. The
// returned function removes the listener.
func (c *Coordinator) AddListener(fn func()) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListener
	c.nextListener++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) notifyListeners() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close cancels any pending quick refresh, stops the schedule, and releases
// transport connections. In-flight HTTP calls complete naturally.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		if c.quickTimer != nil {
			c.quickTimer.Stop()
			c.quickTimer = nil
		}
		c.quickPending = false
		c.mu.Unlock()

		close(c.done)
		c.api.CloseIdleConnections()
	})
}

func (c *Coordinator) setNextUpdate(t time.Time) {
	c.mu.Lock()
	c.nextUpdate = t
	c.mu.Unlock()
}
