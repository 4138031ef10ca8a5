package servo

import (
	"context"
	"testing"
	"time"

	"servolink-go/errcode"
	"servolink-go/platform"
	"servolink-go/types"
)

func instant(ctx context.Context, d time.Duration) error { return nil }

func testChannel(id string) types.ChannelConfig {
	return types.ChannelConfig{
		ID:           id,
		Pin:          2,
		OffDegrees:   45,  // 1000us
		OnDegrees:    135, // 2000us
		TransitionMs: 100,
		Profile:      "linear",
	}
}

func newTestServo(t *testing.T, cfg types.ChannelConfig) (*Servo, *platform.SimPWM) {
	t.Helper()
	out := &platform.SimPWM{}
	s, err := New(cfg, out)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.pause = instant
	return s, out
}

func TestNewConfiguresOutput(t *testing.T) {
	s, out := newTestServo(t, testChannel("ch0"))
	if got := out.FreqHz(); got != types.PWMFreqHz {
		t.Fatalf("configured %dHz, want %d", got, types.PWMFreqHz)
	}
	if s.State() != types.StateUnset {
		t.Fatalf("new servo state %v, want unset", s.State())
	}
	if s.PulseUs() != 1000 {
		t.Fatalf("new servo pulse %d, want off position 1000", s.PulseUs())
	}
}

func TestNewRejectsUnknownProfile(t *testing.T) {
	cfg := testChannel("ch0")
	cfg.Profile = "teleport"
	if _, err := New(cfg, &platform.SimPWM{}); errcode.Of(err) != errcode.UnknownProfile {
		t.Fatalf("New error = %v, want unknown_profile", err)
	}
}

func TestInitialise(t *testing.T) {
	s, out := newTestServo(t, testChannel("ch0"))
	if err := s.Initialise(context.Background()); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	if s.State() != types.StateOff {
		t.Fatalf("state %v after Initialise, want off", s.State())
	}
	if out.Last() != 1000 {
		t.Fatalf("last write %d, want 1000", out.Last())
	}
	if !out.Disabled() {
		t.Fatal("output not idled after Initialise")
	}
}

func TestMoveSweepsToExactTarget(t *testing.T) {
	s, out := newTestServo(t, testChannel("ch0"))
	ctx := context.Background()
	if err := s.Initialise(ctx); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	out.Reset()

	rep, err := s.Move(ctx, types.StateOn)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if rep.Channel != "ch0" || rep.State != types.StateOn {
		t.Fatalf("report %+v", rep)
	}

	writes := out.Writes()
	if len(writes) < 3 {
		t.Fatalf("only %d writes for a sweep", len(writes))
	}
	// Re-activation at the committed position, then exact target last.
	if writes[0] != 1000 {
		t.Fatalf("first write %d, want re-activation at 1000", writes[0])
	}
	if last := writes[len(writes)-1]; last != 2000 {
		t.Fatalf("final write %d, want exact 2000", last)
	}
	if !out.Disabled() {
		t.Fatal("output not idled after sweep")
	}

	// Reverse sweep lands exactly back on the off position.
	out.Reset()
	if _, err := s.Move(ctx, types.StateOff); err != nil {
		t.Fatalf("Move back: %v", err)
	}
	if last := out.Last(); last != 1000 {
		t.Fatalf("final write %d, want exact 1000", last)
	}
}

func TestMoveIdempotent(t *testing.T) {
	s, out := newTestServo(t, testChannel("ch0"))
	ctx := context.Background()
	s.Initialise(ctx)
	s.Move(ctx, types.StateOn)
	out.Reset()

	rep, err := s.Move(ctx, types.StateOn)
	if err != nil {
		t.Fatalf("repeat Move: %v", err)
	}
	if rep.State != types.StateOn {
		t.Fatalf("report state %v", rep.State)
	}
	if n := len(out.Writes()); n != 0 {
		t.Fatalf("repeat Move wrote %d pulses, want none", n)
	}
}

func TestMoveRejectsUnsetTarget(t *testing.T) {
	s, _ := newTestServo(t, testChannel("ch0"))
	if _, err := s.Move(context.Background(), types.StateUnset); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("Move(unset) error = %v, want invalid_params", err)
	}
}

func TestMoveClampsOvershootExcursion(t *testing.T) {
	cfg := testChannel("ch0")
	cfg.OffDegrees = 45
	cfg.OnDegrees = 175 // 2444us, overshoot excursion would pass 2500
	cfg.Profile = "overshoot"
	s, out := newTestServo(t, cfg)
	ctx := context.Background()
	s.Initialise(ctx)
	out.Reset()

	if _, err := s.Move(ctx, types.StateOn); err != nil {
		t.Fatalf("Move: %v", err)
	}
	for i, w := range out.Writes() {
		if w < types.PulseMinUs || w > types.PulseMaxUs {
			t.Fatalf("write %d: pulse %d outside envelope", i, w)
		}
	}
}

func TestSetDirect(t *testing.T) {
	s, out := newTestServo(t, testChannel("ch0"))
	s.SetDirect(types.StateOn)
	if s.State() != types.StateOn || s.PulseUs() != 2000 {
		t.Fatalf("state %v pulse %d after SetDirect(on)", s.State(), s.PulseUs())
	}
	if out.Last() != 2000 {
		t.Fatalf("last write %d", out.Last())
	}
	// Unset target is ignored.
	s.SetDirect(types.StateUnset)
	if s.State() != types.StateOn {
		t.Fatalf("SetDirect(unset) changed state to %v", s.State())
	}
}

func TestPulseOverrideWinsOverDegrees(t *testing.T) {
	cfg := testChannel("ch0")
	cfg.OffPulseUs = 600
	cfg.OnPulseUs = 2400
	s, _ := newTestServo(t, cfg)
	s.SetDirect(types.StateOff)
	if s.PulseUs() != 600 {
		t.Fatalf("off pulse %d, want override 600", s.PulseUs())
	}
	s.SetDirect(types.StateOn)
	if s.PulseUs() != 2400 {
		t.Fatalf("on pulse %d, want override 2400", s.PulseUs())
	}
}
