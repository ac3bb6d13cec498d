package coordinator

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/Roagert/fluidra-pool/internal/fluidra"
	"github.com/Roagert/fluidra-pool/internal/model"
	"github.com/Roagert/fluidra-pool/internal/normalize"
)

// snapshotBuilder accumulates the results of one refresh cycle. It starts
// from the previous snapshot so that a failed source leaves its last known
// data in place instead of blanking it.
type snapshotBuilder struct {
	consumer    map[string]any
	devices     map[string]model.Device
	userProfile map[string]any
	userPools   map[string]model.UserPool
	poolStatus  map[string]any
	components  map[string]map[string]model.Component
	uiConfig    map[string]model.UIConfig
	errorInfo   *model.ErrorInfo
}

func (c *Coordinator) builder() *snapshotBuilder {
	prev := c.snapshot.Load()

	b := &snapshotBuilder{
		consumer:    prev.Consumer,
		devices:     prev.Devices,
		userProfile: prev.UserProfile,
		userPools:   prev.UserPools,
		poolStatus:  prev.PoolStatus,
		components:  make(map[string]map[string]model.Component, len(prev.Components)),
		uiConfig:    make(map[string]model.UIConfig, len(prev.UIConfig)),
	}
	// The outer per-device maps get keys replaced during the cycle, so they
	// must not be shared with the published snapshot.
	for id, comps := range prev.Components {
		b.components[id] = comps
	}
	for id, cfg := range prev.UIConfig {
		b.uiConfig[id] = cfg
	}
	return b
}

func (b *snapshotBuilder) build(at time.Time) *model.Snapshot {
	return &model.Snapshot{
		Consumer:    b.consumer,
		Devices:     b.devices,
		UserProfile: b.userProfile,
		UserPools:   b.userPools,
		PoolStatus:  b.poolStatus,
		Components:  b.components,
		UIConfig:    b.uiConfig,
		ErrorInfo:   b.errorInfo,
		UpdatedAt:   at,
	}
}

func (b *snapshotBuilder) firstDeviceID() string {
	if len(b.devices) == 0 {
		return ""
	}
	ids := make([]string, 0, len(b.devices))
	for id := range b.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[0]
}

func (b *snapshotBuilder) firstPoolID() string {
	if len(b.userPools) == 0 {
		return ""
	}
	ids := make([]string, 0, len(b.userPools))
	for id := range b.userPools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids[0]
}

// source describes one fetchable data source within a refresh cycle. clear,
// set on optional sources, empties the source's slot when the endpoint
// reports it is not available for this account.
type source struct {
	name  string
	fetch func(ctx context.Context) error
	empty func() bool
	clear func()
}

func (c *Coordinator) primarySources(b *snapshotBuilder) []source {
	return []source{
		{
			name: "consumer",
			fetch: func(ctx context.Context) error {
				obj, err := c.fetchObject(ctx, fluidra.ConsumerPath(), false)
				if err != nil {
					return err
				}
				b.consumer = obj
				return nil
			},
			empty: func() bool { return len(b.consumer) == 0 },
		},
		{
			name: "devices",
			fetch: func(ctx context.Context) error {
				raw, err := c.fetchBody(ctx, fluidra.DevicesPath(), false)
				if err != nil {
					return err
				}
				b.devices = normalize.Devices(raw)
				return nil
			},
			empty: func() bool { return len(b.devices) == 0 },
		},
		{
			name: "user_profile",
			fetch: func(ctx context.Context) error {
				obj, err := c.fetchObject(ctx, fluidra.UserProfilePath(), false)
				if err != nil {
					return err
				}
				b.userProfile = obj
				return nil
			},
			empty: func() bool { return len(b.userProfile) == 0 },
		},
		{
			name: "user_pools",
			fetch: func(ctx context.Context) error {
				raw, err := c.fetchBody(ctx, fluidra.UserPoolsPath(), true)
				if err != nil {
					return err
				}
				b.userPools = normalize.UserPools(raw)
				return nil
			},
			empty: func() bool { return len(b.userPools) == 0 },
			clear: func() { b.userPools = map[string]model.UserPool{} },
		},
	}
}

// deviceSources covers the endpoints scoped to the first discovered device
// and pool. They run after the primary sources so device discovery can feed
// them within the same cycle.
func (c *Coordinator) deviceSources(b *snapshotBuilder) []source {
	var sources []source

	if poolID := b.firstPoolID(); poolID != "" {
		sources = append(sources, source{
			name: "pool_status",
			fetch: func(ctx context.Context) error {
				obj, err := c.fetchObject(ctx, fluidra.PoolStatusPath(poolID), true)
				if err != nil {
					return err
				}
				b.poolStatus = obj
				return nil
			},
			empty: func() bool { return len(b.poolStatus) == 0 },
			clear: func() { b.poolStatus = map[string]any{} },
		})
	}

	deviceID := b.firstDeviceID()
	if deviceID == "" {
		return sources
	}

	sources = append(sources,
		source{
			name: "components",
			fetch: func(ctx context.Context) error {
				raw, err := c.fetchBody(ctx, fluidra.DeviceComponentsPath(deviceID), true)
				if err != nil {
					return err
				}
				b.components[deviceID] = normalize.Components(raw)
				return nil
			},
			empty: func() bool { return len(b.components[deviceID]) == 0 },
			clear: func() { b.components[deviceID] = map[string]model.Component{} },
		},
		source{
			name: "ui_config",
			fetch: func(ctx context.Context) error {
				raw, err := c.fetchBody(ctx, fluidra.DeviceUIConfigPath(deviceID), true)
				if err != nil {
					return err
				}
				b.uiConfig[deviceID] = normalize.UIConfig(raw)
				return nil
			},
			empty: func() bool {
				_, ok := b.uiConfig[deviceID]
				return !ok
			},
			clear: func() { delete(b.uiConfig, deviceID) },
		},
	)
	return sources
}

// fetchWithRetries runs one source with the cycle's retry policy. Failures
// are logged and absorbed; the previous cycle's data stays in place. A
// rate-limit refusal is a no-op attempt, not a failure.
func (c *Coordinator) fetchWithRetries(ctx context.Context, src source) {
	var lastErr error
	for attempt := 1; attempt <= c.opts.RetryAttempts; attempt++ {
		if err := c.auth.EnsureValid(ctx); err != nil {
			lastErr = err
			c.log.Warn().Err(err).Str("source", src.name).Msg("token refresh failed")
		} else {
			err := src.fetch(ctx)
			switch {
			case err == nil:
				if src.empty() {
					c.log.Warn().Str("source", src.name).Int("attempt", attempt).Msg("source returned no data")
				}
				return
			case errors.Is(err, errUnavailable):
				c.log.Debug().Str("source", src.name).Msg("endpoint not available for this account")
				if src.clear != nil {
					src.clear()
				}
				return
			case errors.Is(err, ErrRateLimited):
				c.log.Debug().Str("source", src.name).Int("attempt", attempt).Msg("rate limit reached, skipping attempt")
			default:
				lastErr = err
				c.log.Warn().Err(err).Str("source", src.name).Int("attempt", attempt).Msg("source fetch failed")
			}
		}

		if attempt < c.opts.RetryAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.opts.RetryDelay):
			}
		}
	}

	if lastErr == nil {
		return
	}
	sourceFailures.WithLabelValues(src.name).Inc()
	c.log.Error().Err(lastErr).Str("source", src.name).Msg("source failed after retries, keeping previous data")
}

// fetchBody performs one rate-limited GET. A 401 triggers a single inline
// re-authentication and retry. For optional endpoints a 400 or 403 means
// the account simply lacks the feature and yields errUnavailable.
func (c *Coordinator) fetchBody(ctx context.Context, path string, optional bool) ([]byte, error) {
	if !c.limiter.Admit() {
		rateLimitedTotal.Inc()
		return nil, ErrRateLimited
	}
	c.limiter.Record()

	resp, err := c.api.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if resp.Status == http.StatusUnauthorized {
		if err := c.auth.Authenticate(ctx); err != nil {
			return nil, err
		}
		resp, err = c.api.Get(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case resp.Status == http.StatusOK:
		return resp.Body, nil
	case optional && (resp.Status == http.StatusForbidden || resp.Status == http.StatusBadRequest):
		return nil, errUnavailable
	default:
		return nil, &fluidra.HTTPStatusError{Status: resp.Status, Body: string(resp.Body)}
	}
}

// fetchObject fetches one object-shaped resource. A payload that does not
// decode to an object yields an empty result, mirroring the list-shaped
// normalizers.
func (c *Coordinator) fetchObject(ctx context.Context, path string, optional bool) (map[string]any, error) {
	body, err := c.fetchBody(ctx, path, optional)
	if err != nil {
		return nil, err
	}
	obj, err := normalize.Object(body)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("malformed response, storing empty result")
		return map[string]any{}, nil
	}
	return obj, nil
}
