package coordinator

import (
	"time"

	"github.com/Roagert/fluidra-pool/internal/model"
	"github.com/Roagert/fluidra-pool/internal/normalize"
)

// DeviceErrorInfo derives error information for one device from the current
// snapshot, without waiting for the next refresh cycle.
func (c *Coordinator) DeviceErrorInfo(deviceID string) *model.ErrorInfo {
	return normalize.DeriveErrorInfo(c.Snapshot().Devices, deviceID, time.Now())
}

// DeviceConnectionInfo returns the connectivity view for one device.
func (c *Coordinator) DeviceConnectionInfo(deviceID string) (model.ConnectionInfo, bool) {
	d, ok := c.Snapshot().Device(deviceID)
	if !ok {
		return model.ConnectionInfo{}, false
	}
	return model.ConnectionInfo{
		ConnectionStatus:      d.ConnectionStatus,
		SessionID:             d.SessionID,
		ConnectivityTimestamp: d.ConnectivityTimestamp,
		FirstConnection:       d.FirstConnection,
	}, true
}

// APIManagementInfo reports rate-limit accounting and the next scheduled
// refresh time.
func (c *Coordinator) APIManagementInfo() model.APIInfo {
	stats := c.limiter.Stats()

	info := model.APIInfo{
		RateLimit:         stats.Limit,
		CallsInLastMinute: stats.InWindow,
	}
	if !stats.LastCall.IsZero() {
		t := stats.LastCall
		info.LastAPICall = &t
	}

	c.mu.Lock()
	next := c.nextUpdate
	c.mu.Unlock()
	if !next.IsZero() {
		info.NextUpdate = &next
	}
	return info
}
