package timer

import (
	"testing"
	"time"
)

func TestTimerInitialState(t *testing.T) {
	tm := New()
	if tm.Running() {
		t.Fatal("new timer should not be running")
	}
	if got := tm.ElapsedSeconds(); got != 0 {
		t.Fatalf("ElapsedSeconds() = %d, want 0", got)
	}
}

func TestTimerStartIsIdempotent(t *testing.T) {
	cur := time.Unix(1000, 0)
	tm := New()
	tm.now = func() time.Time { return cur }

	tm.Start()
	cur = cur.Add(5 * time.Second)
	tm.Start() // second start must not reset startInstant

	if got := tm.ElapsedSeconds(); got != 5 {
		t.Fatalf("ElapsedSeconds() = %d, want 5", got)
	}
}

func TestTimerFreezesOnStop(t *testing.T) {
	cur := time.Unix(1000, 0)
	tm := New()
	tm.now = func() time.Time { return cur }

	tm.Start()
	cur = cur.Add(10 * time.Second)
	tm.Stop()
	cur = cur.Add(100 * time.Second)

	if got := tm.ElapsedSeconds(); got != 10 {
		t.Fatalf("ElapsedSeconds() after stop = %d, want 10 (frozen)", got)
	}

	tm.Stop() // idempotent
	if got := tm.ElapsedSeconds(); got != 10 {
		t.Fatalf("ElapsedSeconds() after second stop = %d, want 10", got)
	}
}

func TestTimerReset(t *testing.T) {
	cur := time.Unix(1000, 0)
	tm := New()
	tm.now = func() time.Time { return cur }

	tm.Start()
	cur = cur.Add(20 * time.Second)
	tm.Stop()

	tm.Reset()
	if got := tm.ElapsedSeconds(); got != 0 {
		t.Fatalf("ElapsedSeconds() after Reset = %d, want 0", got)
	}
	if tm.Running() {
		t.Fatal("Reset must not change running state")
	}
}

func TestTimerMonotonicWhileRunning(t *testing.T) {
	cur := time.Unix(1000, 0)
	tm := New()
	tm.now = func() time.Time { return cur }
	tm.Start()

	prev := tm.ElapsedSeconds()
	for i := 0; i < 5; i++ {
		cur = cur.Add(time.Second)
		next := tm.ElapsedSeconds()
		if next < prev {
			t.Fatalf("ElapsedSeconds() went backwards: %d -> %d", prev, next)
		}
		prev = next
	}
}
