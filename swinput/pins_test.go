package swinput

import (
	"context"
	"testing"
	"time"

	"servolink-go/coord"
	"servolink-go/platform"
	"servolink-go/types"
)

func TestPinSourceReadInvertsPullUp(t *testing.T) {
	p0 := platform.NewSimPin(true)  // pulled high: switch off
	p1 := platform.NewSimPin(false) // grounded: switch on
	src := NewPinSource([]string{"s0", "s1"},
		map[string]types.InputPin{"s0": p0, "s1": p1}, time.Millisecond)

	s := src.Read()
	if on, _ := s.Get("s0"); on {
		t.Error("high line read as on")
	}
	if on, _ := s.Get("s1"); !on {
		t.Error("grounded line read as off")
	}

	p0.Set(false)
	if on, _ := src.Read().Get("s0"); !on {
		t.Error("toggled line not picked up")
	}
}

func TestPollDeliversChangesOnly(t *testing.T) {
	pin := platform.NewSimPin(true)
	src := NewPinSource([]string{"s0"},
		map[string]types.InputPin{"s0": pin}, 2*time.Millisecond)
	c := coord.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go src.Poll(ctx, c)

	// First scan delivers the initial all-off snapshot.
	first, err := c.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if on, _ := first.Get("s0"); on {
		t.Fatalf("initial snapshot %v, want s0 off", first)
	}

	// Flip the switch; the next delivery carries the change.
	pin.Set(false)
	next, err := c.Acquire(ctx)
	if err != nil {
		t.Fatalf("Acquire after flip: %v", err)
	}
	if on, _ := next.Get("s0"); !on {
		t.Fatalf("snapshot after flip %v, want s0 on", next)
	}

	// Steady state: scans continue but nothing new is delivered.
	quiet, qcancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer qcancel()
	if _, err := c.Acquire(quiet); err != context.DeadlineExceeded {
		t.Fatalf("Acquire with no change returned %v, want deadline exceeded", err)
	}
}

func TestPollStopsOnCancel(t *testing.T) {
	src := NewPinSource([]string{"s0"},
		map[string]types.InputPin{"s0": platform.NewSimPin(true)}, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- src.Poll(ctx, coord.New()) }()
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Poll returned %v, want canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Poll did not stop on cancel")
	}
}
