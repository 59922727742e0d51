package ratelimit

import (
	"testing"
	"time"
)

func TestKeyedLimiter_IsolatesKeys(t *testing.T) {
	// 10 rpm gives a burst of 1
	k := NewKeyed(10, time.Minute)

	if !k.Allow("a") {
		t.Fatal("first request for a should pass")
	}
	if k.Allow("a") {
		t.Fatal("second immediate request for a should be limited")
	}
	if !k.Allow("b") {
		t.Fatal("b has its own bucket")
	}
}

func TestKeyedLimiter_Disabled(t *testing.T) {
	k := NewKeyed(0, time.Minute)
	for i := 0; i < 100; i++ {
		if !k.Allow("a") {
			t.Fatal("disabled limiter must allow everything")
		}
	}
	if k.Len() != 0 {
		t.Errorf("disabled limiter should not track keys, got %d", k.Len())
	}
}

func TestKeyedLimiter_EvictsIdleKeys(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	k := NewKeyed(60, time.Minute)
	k.now = func() time.Time { return now }

	k.Allow("a")
	k.Allow("b")
	if k.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", k.Len())
	}

	now = now.Add(2 * time.Minute)
	k.Allow("c")

	if k.Len() != 1 {
		t.Errorf("Len() = %d after sweep, want 1", k.Len())
	}
}

func TestNew_BurstFloor(t *testing.T) {
	l := New(5)
	if !l.Allow() {
		t.Fatal("burst floor of 1 should allow the first request")
	}
	if l.Allow() {
		t.Fatal("second immediate request should be limited")
	}
}
