package rate

import (
	"testing"
	"time"
)

func TestAdmitDoesNotMutateWindow(t *testing.T) {
	l := NewLimiter(2)

	for i := 0; i < 10; i++ {
		if !l.Admit() {
			t.Fatalf("admit %d refused with empty window", i)
		}
	}
	if got := l.Stats().InWindow; got != 0 {
		t.Fatalf("expected empty window after admits, got %d", got)
	}
}

func TestWindowInvariant(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLimiter(3)
	l.now = func() time.Time { return now }

	admitted := 0
	for i := 0; i < 10; i++ {
		if l.Admit() {
			l.Record()
			admitted++
		}
	}
	if admitted != 3 {
		t.Fatalf("expected 3 admitted calls, got %d", admitted)
	}
	if got := l.Stats().InWindow; got != 3 {
		t.Fatalf("expected 3 calls in window, got %d", got)
	}
	if l.Admit() {
		t.Fatal("expected refusal at limit")
	}
}

func TestPurgeExpiredEntries(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLimiter(2)
	l.now = func() time.Time { return now }

	l.Record()
	l.Record()
	if l.Admit() {
		t.Fatal("expected refusal with full window")
	}

	now = now.Add(61 * time.Second)
	if !l.Admit() {
		t.Fatal("expected admission after window expiry")
	}
	if got := l.Stats().InWindow; got != 0 {
		t.Fatalf("expected purged window, got %d entries", got)
	}
}

func TestStatsTracksLastCall(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewLimiter(5)
	l.now = func() time.Time { return now }

	l.Record()
	now = now.Add(10 * time.Second)
	l.Record()

	stats := l.Stats()
	if !stats.LastCall.Equal(now) {
		t.Fatalf("expected last call %s, got %s", now, stats.LastCall)
	}
	if stats.Limit != 5 {
		t.Fatalf("expected limit 5, got %d", stats.Limit)
	}
}
