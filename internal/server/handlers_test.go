package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Roagert/fluidra-pool/internal/registry"
)

func fakeCognito(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-amz-json-1.1")
		_, _ = io.WriteString(w, `{"AuthenticationResult":{"AccessToken":"access-1","IdToken":"id-1","RefreshToken":"refresh-1","ExpiresIn":3600}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			w.WriteHeader(http.StatusOK)
			return
		}
		switch r.URL.Path {
		case "/mobile/consumers/me":
			_, _ = io.WriteString(w, `{"id":"consumer-1"}`)
		case "/generic/devices":
			_, _ = io.WriteString(w, `[{"id":"dev-1","name":"Heat Pump","sn":"SN123","connectivity":{"connected":true}}]`)
		case "/generic/users/me":
			_, _ = io.WriteString(w, `{"id":"user-1"}`)
		case "/generic/users/me/pools":
			_, _ = io.WriteString(w, `[]`)
		case "/generic/devices/dev-1/components":
			_, _ = io.WriteString(w, `[{"id":15,"reportedValue":280}]`)
		case "/generic/devices/dev-1/uiconfig":
			_, _ = io.WriteString(w, `{"language":"en"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	reg := registry.New(zerolog.Nop())
	t.Cleanup(reg.Close)

	_, err := reg.Create("home", registry.Options{
		Username:        "pool@example.com",
		Password:        "secret",
		BaseURL:         fakeAPI(t).URL,
		CognitoEndpoint: fakeCognito(t).URL,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	srv := httptest.NewServer(NewHandler(reg, zerolog.Nop()).Router())
	t.Cleanup(srv.Close)
	return srv
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestRefreshThenSnapshot(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /refresh: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/snapshot")
	if err != nil {
		t.Fatalf("GET /snapshot: %v", err)
	}
	body := decodeJSON(t, resp)

	devices, ok := body["devices"].(map[string]any)
	if !ok {
		t.Fatalf("snapshot devices = %v", body["devices"])
	}
	if _, ok := devices["dev-1"]; !ok {
		t.Error("dev-1 missing from snapshot")
	}
}

func TestUnknownAccountIs404(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/snapshot?account=nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDeviceInfoEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /refresh: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/devices/dev-1/connection")
	if err != nil {
		t.Fatalf("GET connection: %v", err)
	}
	conn := decodeJSON(t, resp)
	if conn["connection_status"] != "connected" {
		t.Errorf("connection = %v", conn)
	}

	resp, err = http.Get(srv.URL + "/api/v1/devices/dev-1/error")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	errInfo := decodeJSON(t, resp)
	// A healthy device reports normal status with no code.
	if errInfo["status"] != "normal" {
		t.Errorf("error info = %v", errInfo)
	}

	// A serial number resolves to the same device.
	resp, err = http.Get(srv.URL + "/api/v1/devices/SN123/connection")
	if err != nil {
		t.Fatalf("GET by serial: %v", err)
	}
	bySerial := decodeJSON(t, resp)
	if bySerial["connection_status"] != "connected" {
		t.Errorf("serial lookup = %v", bySerial)
	}

	resp, err = http.Get(srv.URL + "/api/v1/devices/ghost/connection")
	if err != nil {
		t.Fatalf("GET unknown device: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown device status = %d, want 404", resp.StatusCode)
	}
}

func TestManagementEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /refresh: %v", err)
	}
	resp.Body.Close()

	resp, err = http.Get(srv.URL + "/api/v1/management")
	if err != nil {
		t.Fatalf("GET management: %v", err)
	}
	info := decodeJSON(t, resp)
	if info["rate_limit"] != float64(60) {
		t.Errorf("rate_limit = %v, want 60", info["rate_limit"])
	}
	if info["api_calls_in_last_minute"] == float64(0) {
		t.Error("call count should be non-zero after refresh")
	}
}

func putJSON(t *testing.T, url string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT: %v", err)
	}
	return resp
}

func TestSetComponentValue(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /refresh: %v", err)
	}
	resp.Body.Close()

	resp = putJSON(t, srv.URL+"/api/v1/devices/dev-1/components/15", `{"value":300}`)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestSetComponentValueValidation(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/refresh", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /refresh: %v", err)
	}
	resp.Body.Close()

	resp = putJSON(t, srv.URL+"/api/v1/devices/dev-1/components/15", `{}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing value status = %d, want 400", resp.StatusCode)
	}

	resp = putJSON(t, srv.URL+"/api/v1/devices/dev-1/components/99", `{"value":1}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown component status = %d, want 404", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := MetricsHandler(MetricsRegistry())
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte("fluidra_")) {
		t.Error("metrics output missing fluidra collectors")
	}
}
