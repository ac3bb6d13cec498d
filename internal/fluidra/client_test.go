package fluidra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticHeaders http.Header

func (h staticHeaders) Headers() http.Header {
	return http.Header(h)
}

func TestGetReturnsStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Fatalf("unexpected authorization header: %s", got)
		}
		if got := r.Header.Get("x-api-key"); got != "id-tok" {
			t.Fatalf("unexpected x-api-key header: %s", got)
		}
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"nope"}`)
	}))
	defer server.Close()

	headers := staticHeaders{}
	http.Header(headers).Set("Authorization", "Bearer tok")
	http.Header(headers).Set("x-api-key", "id-tok")

	client := NewClient(server.URL, headers)
	resp, err := client.Get(context.Background(), DevicesPath())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Status != http.StatusForbidden {
		t.Fatalf("expected 403 passed through, got %d", resp.Status)
	}
	if string(resp.Body) != `{"message":"nope"}` {
		t.Fatalf("unexpected body: %s", resp.Body)
	}
}

func TestPutSendsJSONPayload(t *testing.T) {
	var gotPath, gotQuery, gotBody, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, staticHeaders{})
	resp, err := client.Put(context.Background(), SetComponentValuePath("dev-1", "15"), map[string]int{"desiredValue": 250})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if resp.Status != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Status)
	}
	if gotPath != "/generic/devices/dev-1/components/15" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotQuery != "deviceType=connected" {
		t.Fatalf("unexpected query: %s", gotQuery)
	}
	if gotBody != `{"desiredValue":250}` {
		t.Fatalf("unexpected body: %s", gotBody)
	}
	if gotContentType != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type: %s", gotContentType)
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := HTTPStatusError{Status: 502, Body: "bad gateway\n"}
	if got := err.Error(); got != "fluidra api error 502: bad gateway" {
		t.Fatalf("unexpected error string: %s", got)
	}
}
