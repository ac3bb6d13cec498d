package normalize

import (
	"github.com/Roagert/fluidra-pool/internal/model"
)

// serialCandidates are the raw field names that may carry a device serial
// number, in priority order. The API has shipped all three spellings.
var serialCandidates = []string{"sn", "serialNumber", "SerialNumber"}

// Devices maps a raw devices payload to normalized records keyed by device
// id. A malformed payload yields an empty map, never an error.
func Devices(raw []byte) map[string]model.Device {
	items, err := Items(raw)
	if err != nil {
		return map[string]model.Device{}
	}

	out := make(map[string]model.Device, len(items))
	for _, item := range items {
		id := key(item["id"])
		if id == "" {
			continue
		}
		out[id] = device(id, item)
	}
	return out
}

func device(id string, obj map[string]any) model.Device {
	info := section(obj, "info")
	connectivity := section(obj, "connectivity")

	d := model.Device{
		ID:           id,
		Name:         str(obj["name"]),
		SerialNumber: field(obj, serialCandidates...),
		Type:         str(obj["type"]),
		Status:       str(obj["status"]),
		Model:        str(info["family"]),
		SKU:          str(obj["sku"]),
		ThingType:    str(obj["thingType"]),
		Firmware:     field(obj, "vr", "currentFirmwareVersion"),
		PoolID:       key(obj["poolId"]),

		FirstConnection:       str(obj["firstConnection"]),
		ConnectionStatus:      "disconnected",
		SessionID:             str(connectivity["sessionIdentifier"]),
		ConnectivityTimestamp: key(connectivity["timestamp"]),

		AlarmStatus: model.AlarmNormal,
	}
	if d.Name == "" {
		d.Name = str(info["name"])
	}
	if d.Name == "" {
		d.Name = "Unknown Device"
	}
	if connected, _ := connectivity["connected"].(bool); connected {
		d.ConnectionStatus = "connected"
	}

	applyAlarms(&d, obj)

	if components, ok := obj["components"].([]any); ok {
		d.Components = make(map[string]model.Component, len(components))
		for _, c := range components {
			obj, ok := c.(map[string]any)
			if !ok {
				continue
			}
			cid := key(obj["id"])
			if cid == "" {
				continue
			}
			d.Components[cid] = component(cid, obj)
		}
	}

	return d
}

func applyAlarms(d *model.Device, obj map[string]any) {
	rawAlarms, ok := obj["alarms"].([]any)
	if !ok || len(rawAlarms) == 0 {
		return
	}

	for _, a := range rawAlarms {
		entry, ok := a.(map[string]any)
		if !ok {
			continue
		}
		alarm := model.Alarm{
			Kind:        str(entry["type"]),
			ErrorCode:   key(entry["errorCode"]),
			DefaultText: str(section(entry, "default")["text"]),
		}
		d.Alarms = append(d.Alarms, alarm)
	}

	d.AlarmCount = len(d.Alarms)
	d.AlarmStatus = model.AlarmWarning
	for _, alarm := range d.Alarms {
		if alarm.Kind == "error" {
			d.AlarmStatus = model.AlarmError
			break
		}
	}

	// Capture the first error-kind alarm's code and message. The message
	// falls back from the code table to the alarm's own default text.
	for _, alarm := range d.Alarms {
		if alarm.Kind != "error" {
			continue
		}
		d.ErrorCode = alarm.ErrorCode
		if desc, ok := errorCodes[alarm.ErrorCode]; ok {
			d.ErrorMessage = desc
		} else if alarm.DefaultText != "" {
			d.ErrorMessage = alarm.DefaultText
		} else {
			d.ErrorMessage = "Unknown error"
		}
		break
	}
}
