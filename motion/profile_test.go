package motion

import (
	"testing"
	"time"

	"servolink-go/errcode"
	"servolink-go/types"
)

func TestWaypointWellFormedness(t *testing.T) {
	for _, p := range Profiles() {
		wps := p.Waypoints()
		if len(wps) == 0 {
			t.Fatalf("%s: empty waypoint table", p)
		}
		prev := 0
		for i, wp := range wps {
			if wp.TimePct <= prev {
				t.Errorf("%s: waypoint %d time %d not strictly increasing (prev %d)",
					p, i, wp.TimePct, prev)
			}
			prev = wp.TimePct
		}
		last := wps[len(wps)-1]
		if last.TimePct != 100 || last.PosPct != 100 {
			t.Errorf("%s: terminal waypoint (%d,%d), want (100,100)", p, last.TimePct, last.PosPct)
		}
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		want Profile
	}{
		{"linear", Linear},
		{"s_curve", SCurve},
		{"slowing", Slowing},
		{"bounce", Bounce},
		{"overshoot", Overshoot},
	}
	for _, c := range cases {
		got, err := Parse(c.name)
		if err != nil || got != c.want {
			t.Errorf("Parse(%q) = %v, %v", c.name, got, err)
		}
	}
	if _, err := Parse("warp"); errcode.Of(err) != errcode.UnknownProfile {
		t.Errorf("Parse(warp) error = %v, want unknown_profile", err)
	}
}

func TestTrajectoryEndpointsExact(t *testing.T) {
	for _, p := range Profiles() {
		fwd := p.Trajectory(1000, 2000, time.Second)
		if got := fwd[len(fwd)-1].PulseUs; got != 2000 {
			t.Errorf("%s forward: final pulse %d, want 2000", p, got)
		}
		rev := p.Trajectory(2000, 1000, time.Second)
		if got := rev[len(rev)-1].PulseUs; got != 1000 {
			t.Errorf("%s reverse: final pulse %d, want 1000", p, got)
		}
	}
}

func TestTrajectoryClampTotality(t *testing.T) {
	spans := []struct{ start, end uint32 }{
		{types.PulseMinUs, types.PulseMaxUs},
		{types.PulseMaxUs, types.PulseMinUs},
		{1000, 2000},
		{2400, 600},
	}
	for _, p := range Profiles() {
		for _, s := range spans {
			for i, st := range p.Trajectory(s.start, s.end, time.Second) {
				if st.PulseUs < types.PulseMinUs || st.PulseUs > types.PulseMaxUs {
					t.Fatalf("%s %d->%d step %d: pulse %d outside envelope",
						p, s.start, s.end, i, st.PulseUs)
				}
			}
		}
	}
}

func TestTrajectoryStepTiming(t *testing.T) {
	cases := []struct {
		duration  time.Duration
		wantPause time.Duration
	}{
		{time.Second, 20 * time.Millisecond},         // 50 steps
		{2 * time.Second, 20 * time.Millisecond},     // 100 steps
		{4 * time.Second, 40 * time.Millisecond},     // 100 steps
		{10 * time.Millisecond, 1 * time.Millisecond}, // floor
	}
	for _, c := range cases {
		steps := Linear.Trajectory(1000, 2000, c.duration)
		for _, st := range steps {
			if st.Pause != c.wantPause {
				t.Fatalf("duration %v: pause %v, want %v", c.duration, st.Pause, c.wantPause)
			}
		}
	}
}

func TestTrajectoryLinearStepCount(t *testing.T) {
	steps := Linear.Trajectory(1000, 2000, time.Second)
	if len(steps) != 50 {
		t.Fatalf("linear 1s: %d steps, want 50", len(steps))
	}
	long := Linear.Trajectory(1000, 2000, 2*time.Second)
	if len(long) != 100 {
		t.Fatalf("linear 2s: %d steps, want 100", len(long))
	}
	// monotone for the single-segment profile
	prev := steps[0].PulseUs
	for _, st := range steps[1:] {
		if st.PulseUs < prev {
			t.Fatalf("linear trajectory not monotone: %d after %d", st.PulseUs, prev)
		}
		prev = st.PulseUs
	}
}

func TestTrajectoryZeroSpan(t *testing.T) {
	steps := SCurve.Trajectory(1500, 1500, time.Second)
	for _, st := range steps {
		if st.PulseUs != 1500 {
			t.Fatalf("zero-span trajectory moved to %d", st.PulseUs)
		}
	}
}
