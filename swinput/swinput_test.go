package swinput

import (
	"testing"

	"servolink-go/errcode"
	"servolink-go/types"
)

var testSwitches = []types.SwitchConfig{
	{ID: "s0", Pin: 26, Channels: []string{"ch0", "ch1"}},
	{ID: "s1", Pin: 27, Channels: []string{"ch2"}},
	{ID: "s2", Pin: 28, Channels: []string{"ch3"}},
}

var testChannels = []string{"ch0", "ch1", "ch2", "ch3"}

func TestNewRouterRejectsUnknownChannel(t *testing.T) {
	bad := []types.SwitchConfig{{ID: "s0", Channels: []string{"ch9"}}}
	if _, err := NewRouter(bad, testChannels); errcode.Of(err) != errcode.UnknownChannel {
		t.Fatalf("NewRouter error = %v, want unknown_channel", err)
	}
}

func TestDemandFanOut(t *testing.T) {
	r, err := NewRouter(testSwitches, testChannels)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	s := types.NewSwitchState([]string{"s0", "s1", "s2"})
	s.Set("s0", true)
	s.Set("s2", true)

	d := r.Demand(s)
	want := types.DemandMap{
		"ch0": types.StateOn,
		"ch1": types.StateOn,
		"ch2": types.StateOff,
		"ch3": types.StateOn,
	}
	if len(d) != len(want) {
		t.Fatalf("demand %v, want %v", d, want)
	}
	for ch, st := range want {
		if d[ch] != st {
			t.Errorf("demand[%s] = %v, want %v", ch, d[ch], st)
		}
	}
}

func TestDemandSkipsAbsentSwitches(t *testing.T) {
	r, err := NewRouter(testSwitches, testChannels)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	// Snapshot only knows s1; the channels of s0 and s2 get no demand.
	s := types.NewSwitchState([]string{"s1"})
	s.Set("s1", true)

	d := r.Demand(s)
	if len(d) != 1 || d["ch2"] != types.StateOn {
		t.Fatalf("demand %v, want only ch2 on", d)
	}
}
