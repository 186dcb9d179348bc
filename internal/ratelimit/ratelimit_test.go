package ratelimit

import (
	"testing"
	"time"
)

func TestAllowSlidingWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	l := New(3, time.Minute)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("hit %d rejected under limit", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("fourth hit allowed over limit")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatal("different key must not share the window")
	}

	// Half the window later: still blocked.
	now = now.Add(30 * time.Second)
	if l.Allow("1.2.3.4") {
		t.Fatal("hit allowed before the window slid")
	}

	// Past the window: old hits expire.
	now = now.Add(31 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatal("hit rejected after the window slid")
	}
}
