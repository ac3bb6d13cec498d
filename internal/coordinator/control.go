package coordinator

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Roagert/fluidra-pool/internal/fluidra"
)

// Dispatcher issues control writes against device components. Every write
// checks the rate limit, token validity, and component existence before
// touching the network, and arms a quick refresh only after the cloud
// acknowledges the write.
type Dispatcher struct {
	coord *Coordinator
	log   zerolog.Logger
}

func NewDispatcher(coord *Coordinator, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		coord: coord,
		log:   log.With().Str("component", "dispatcher").Logger(),
	}
}

// SetComponentValue writes a desired value to one device component.
func (d *Dispatcher) SetComponentValue(ctx context.Context, deviceID, componentID string, value any) error {
	return d.setValue(ctx, deviceID, componentID, value)
}

// SetTemperature writes a target temperature component. Callers pre-scale
// to tenths of a degree, so 25.0 degrees arrives as 250.
func (d *Dispatcher) SetTemperature(ctx context.Context, deviceID, componentID string, value int) error {
	return d.setValue(ctx, deviceID, componentID, value)
}

// SetPower switches a device mode component on or off.
func (d *Dispatcher) SetPower(ctx context.Context, deviceID, componentID string, on bool) error {
	value := 0
	if on {
		value = 1
	}
	return d.setValue(ctx, deviceID, componentID, value)
}

func (d *Dispatcher) setValue(ctx context.Context, deviceID, componentID string, value any) error {
	c := d.coord

	if !c.limiter.Admit() {
		rateLimitedTotal.Inc()
		return ErrRateLimited
	}
	if err := c.auth.EnsureValid(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if _, ok := c.Snapshot().Component(deviceID, componentID); !ok {
		return &ComponentNotFoundError{DeviceID: deviceID, ComponentID: componentID}
	}

	c.limiter.Record()
	resp, err := c.api.Put(ctx, fluidra.SetComponentValuePath(deviceID, componentID), map[string]any{
		"desiredValue": value,
	})
	if err != nil {
		controlWriteFailures.Inc()
		return err
	}
	if resp.Status != http.StatusOK {
		controlWriteFailures.Inc()
		d.log.Warn().Int("status", resp.Status).Str("body", string(resp.Body)).
			Str("device", deviceID).Str("component", componentID).Msg("control write rejected")
		if resp.Status == http.StatusNotFound {
			return &ComponentNotFoundError{DeviceID: deviceID, ComponentID: componentID}
		}
		return &fluidra.HTTPStatusError{Status: resp.Status, Body: string(resp.Body)}
	}

	controlWriteTotal.Inc()
	d.log.Info().Str("device", deviceID).Str("component", componentID).Interface("value", value).Msg("component value set")
	c.ScheduleQuickRefresh()
	return nil
}
