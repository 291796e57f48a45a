package session

import (
	"testing"
	"time"
)

func TestSchedulerFires(t *testing.T) {
	s := newScheduler()
	fired := make(chan struct{})
	s.schedule(5*time.Millisecond, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled callback never fired")
	}
}

func TestSchedulerStopCancelsPending(t *testing.T) {
	s := newScheduler()
	fired := make(chan struct{}, 1)
	s.schedule(20*time.Millisecond, func() { fired <- struct{}{} })
	s.stop()

	select {
	case <-fired:
		t.Fatal("callback fired after stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSchedulerRefusesAfterStop(t *testing.T) {
	s := newScheduler()
	s.stop()

	fired := make(chan struct{}, 1)
	s.schedule(time.Millisecond, func() { fired <- struct{}{} })

	select {
	case <-fired:
		t.Fatal("callback fired on a stopped scheduler")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSchedulerReplacesPendingTimer(t *testing.T) {
	s := newScheduler()
	fired := make(chan string, 2)
	s.schedule(50*time.Millisecond, func() { fired <- "slow" })
	s.schedule(5*time.Millisecond, func() { fired <- "fast" })

	select {
	case got := <-fired:
		if got != "fast" {
			t.Fatalf("expected the replacement timer to fire, got %q", got)
		}
	case <-time.After(time.Second):
		t.Fatal("no callback fired")
	}

	select {
	case got := <-fired:
		t.Fatalf("replaced timer fired too: %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}
