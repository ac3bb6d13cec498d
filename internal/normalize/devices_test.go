package normalize

import (
	"fmt"
	"testing"

	"github.com/Roagert/fluidra-pool/internal/model"
)

const deviceJSON = `{
	"id": "LSE1234",
	"name": "Pool Heat Pump",
	"sn": "SN-001",
	"type": "connected",
	"status": "ok",
	"vr": "2.4.1",
	"sku": "Z400",
	"poolId": "pool-1",
	"info": {"name": "Eco Elyo", "family": "Z400iQ"},
	"connectivity": {"connected": true, "sessionIdentifier": "sess-9", "timestamp": 1700000000},
	"alarms": [],
	"components": [{"id": 19, "reportedValue": 1}]
}`

func TestDevicesShapeTolerance(t *testing.T) {
	shapes := map[string]string{
		"bare list":     fmt.Sprintf(`[%s]`, deviceJSON),
		"data envelope": fmt.Sprintf(`{"data":[%s]}`, deviceJSON),
		"single object": deviceJSON,
	}

	var reference map[string]model.Device
	for name, payload := range shapes {
		devices := Devices([]byte(payload))
		if len(devices) != 1 {
			t.Fatalf("%s: expected 1 device, got %d", name, len(devices))
		}
		d, ok := devices["LSE1234"]
		if !ok {
			t.Fatalf("%s: device key missing", name)
		}
		if d.Name != "Pool Heat Pump" || d.SerialNumber != "SN-001" || d.Model != "Z400iQ" {
			t.Fatalf("%s: unexpected device: %+v", name, d)
		}
		if d.ConnectionStatus != "connected" {
			t.Fatalf("%s: unexpected connection status %q", name, d.ConnectionStatus)
		}
		if _, ok := d.Components["19"]; !ok {
			t.Fatalf("%s: embedded component not normalized: %v", name, d.Components)
		}
		if reference == nil {
			reference = devices
			continue
		}
		if fmt.Sprintf("%+v", devices) != fmt.Sprintf("%+v", reference) {
			t.Fatalf("%s: normalization differs across shapes", name)
		}
	}
}

func TestDeviceSerialCandidateOrder(t *testing.T) {
	cases := []struct {
		payload string
		want    string
	}{
		{`[{"id":"a","serialNumber":"B","SerialNumber":"C"}]`, "B"},
		{`[{"id":"a","sn":"A","serialNumber":"B"}]`, "A"},
		{`[{"id":"a","SerialNumber":"C"}]`, "C"},
		{`[{"id":"a"}]`, ""},
	}
	for _, tc := range cases {
		d := Devices([]byte(tc.payload))["a"]
		if d.SerialNumber != tc.want {
			t.Fatalf("payload %s: expected serial %q, got %q", tc.payload, tc.want, d.SerialNumber)
		}
	}
}

func TestDeviceAlarmDerivation(t *testing.T) {
	payload := `[{"id":"a","alarms":[
		{"type":"warning","errorCode":"W1"},
		{"type":"error","errorCode":"DEVICE_NOT_FOUND"},
		{"type":"error","errorCode":"E9"}
	]}]`

	d := Devices([]byte(payload))["a"]
	if d.AlarmStatus != model.AlarmError {
		t.Fatalf("expected error status, got %s", d.AlarmStatus)
	}
	if d.AlarmCount != 3 {
		t.Fatalf("expected 3 alarms, got %d", d.AlarmCount)
	}
	if d.ErrorCode != "DEVICE_NOT_FOUND" {
		t.Fatalf("expected first error alarm's code, got %s", d.ErrorCode)
	}
	if d.ErrorMessage != "Device not found" {
		t.Fatalf("expected table description, got %q", d.ErrorMessage)
	}
}

func TestDeviceAlarmMessageFallback(t *testing.T) {
	payload := `[{"id":"a","alarms":[{"type":"error","errorCode":"E42","default":{"text":"Compressor stalled"}}]}]`
	d := Devices([]byte(payload))["a"]
	if d.ErrorMessage != "Compressor stalled" {
		t.Fatalf("expected alarm default text, got %q", d.ErrorMessage)
	}

	payload = `[{"id":"a","alarms":[{"type":"error","errorCode":"E42"}]}]`
	d = Devices([]byte(payload))["a"]
	if d.ErrorMessage != "Unknown error" {
		t.Fatalf("expected generic fallback, got %q", d.ErrorMessage)
	}
}

func TestDeviceWarningOnlyAlarms(t *testing.T) {
	payload := `[{"id":"a","alarms":[{"type":"warning","errorCode":"W1"}]}]`
	d := Devices([]byte(payload))["a"]
	if d.AlarmStatus != model.AlarmWarning {
		t.Fatalf("expected warning status, got %s", d.AlarmStatus)
	}
	if d.ErrorCode != "" {
		t.Fatalf("expected no error code for warnings, got %s", d.ErrorCode)
	}
}

func TestDevicesMalformedPayload(t *testing.T) {
	if got := Devices([]byte(`"nonsense"`)); len(got) != 0 {
		t.Fatalf("expected empty map for malformed payload, got %v", got)
	}
	if got := Devices([]byte(`{invalid`)); len(got) != 0 {
		t.Fatalf("expected empty map for invalid JSON, got %v", got)
	}
}

func TestDeviceNameFallbacks(t *testing.T) {
	d := Devices([]byte(`[{"id":"a","info":{"name":"From Info"}}]`))["a"]
	if d.Name != "From Info" {
		t.Fatalf("expected info name fallback, got %q", d.Name)
	}
	d = Devices([]byte(`[{"id":"a"}]`))["a"]
	if d.Name != "Unknown Device" {
		t.Fatalf("expected placeholder name, got %q", d.Name)
	}
}
