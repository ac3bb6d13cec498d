package normalize

import (
	"sort"
	"time"

	"github.com/Roagert/fluidra-pool/internal/model"
)

// DeriveErrorInfo computes the snapshot's error record from the device map.
// With a configured device id only that device is consulted; otherwise
// devices are scanned in sorted-id order and the first one exhibiting any
// error signal wins. Returns nil when no device reports an error.
func DeriveErrorInfo(devices map[string]model.Device, deviceID string, now time.Time) *model.ErrorInfo {
	if len(devices) == 0 {
		return nil
	}

	if deviceID != "" {
		if d, ok := devices[deviceID]; ok {
			return errorInfoFor(d, now)
		}
		return nil
	}

	ids := make([]string, 0, len(devices))
	for id := range devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if info := errorInfoFor(devices[id], now); info != nil {
			return info
		}
	}
	return nil
}

func errorInfoFor(d model.Device, now time.Time) *model.ErrorInfo {
	if d.ErrorCode == "" && d.ErrorMessage == "" && (d.AlarmStatus == "" || d.AlarmStatus == model.AlarmNormal) {
		return nil
	}
	return &model.ErrorInfo{
		ErrorCode:        d.ErrorCode,
		ErrorMessage:     d.ErrorMessage,
		AlarmStatus:      d.AlarmStatus,
		AlarmCount:       d.AlarmCount,
		DeviceID:         d.ID,
		Timestamp:        now,
		ErrorDescription: ErrorDescription(d.ErrorCode),
		Alarms:           d.Alarms,
	}
}
