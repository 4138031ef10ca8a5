// Package motion generates time-stepped servo trajectories from named
// waypoint tables.
package motion

import (
	"time"

	"servolink-go/errcode"
	"servolink-go/types"
	"servolink-go/x/mathx"
)

// Profile selects one of the built-in waypoint tables. The set is
// closed; profiles are chosen at configuration time, not extended at
// runtime.
type Profile uint8

const (
	Linear Profile = iota
	SCurve
	Slowing
	Bounce
	Overshoot
)

var profileNames = map[Profile]string{
	Linear:    "linear",
	SCurve:    "s_curve",
	Slowing:   "slowing",
	Bounce:    "bounce",
	Overshoot: "overshoot",
}

func (p Profile) String() string {
	if n, ok := profileNames[p]; ok {
		return n
	}
	return "unknown"
}

// Parse resolves a configured profile name.
func Parse(name string) (Profile, error) {
	for p, n := range profileNames {
		if n == name {
			return p, nil
		}
	}
	return Linear, &errcode.E{C: errcode.UnknownProfile, Op: "motion", Msg: name}
}

// Profiles returns every built-in profile.
func Profiles() []Profile {
	return []Profile{Linear, SCurve, Slowing, Bounce, Overshoot}
}

// Waypoint is one segment endpoint of a motion shape. TimePct is the
// percentage of the transition time elapsed, PosPct the percentage of
// the position range covered. The implicit origin is (0, 0) and every
// table terminates at exactly (100, 100). PosPct may exceed 100 for
// shapes that overshoot; the hardware envelope clamp bounds the
// excursion.
type Waypoint struct {
	TimePct int
	PosPct  int
}

// Segment-end coordinates for each motion shape, on a
// (0,0) -> (100,100) scale.
var waypointTables = map[Profile][]Waypoint{
	Linear:    {{100, 100}},
	Overshoot: {{50, 110}, {65, 120}, {90, 90}, {100, 100}},
	Bounce:    {{50, 100}, {62, 75}, {75, 100}, {88, 90}, {100, 100}},
	SCurve:    {{25, 10}, {75, 90}, {100, 100}},
	Slowing:   {{25, 54}, {50, 81}, {75, 95}, {100, 100}},
}

// Waypoints returns a copy of the profile's table.
func (p Profile) Waypoints() []Waypoint {
	return append([]Waypoint(nil), waypointTables[p]...)
}

// Step is one hardware write of a trajectory: command PulseUs, then
// pause for Pause before the next step.
type Step struct {
	PulseUs uint32
	Pause   time.Duration
}

// stepCount keeps the per-step pause practical: short transitions use
// fewer, coarser steps.
func stepCount(duration time.Duration) int {
	if duration < 2*time.Second {
		return 50
	}
	return 100
}

// Trajectory produces the ordered pulse-width steps moving from
// startUs to endUs over the given duration, shaped by the profile's
// waypoints. Interpolation is linear in time and in the scaled
// position range within each segment. Every emitted pulse width is
// clamped to the global hardware envelope; the final step is exactly
// endUs so repeated sweeps cannot accumulate rounding drift.
func (p Profile) Trajectory(startUs, endUs uint32, duration time.Duration) []Step {
	steps := stepCount(duration)
	pauseMs := mathx.Max(duration.Milliseconds()/int64(steps), 1)
	pause := time.Duration(pauseMs) * time.Millisecond
	xInc := 100 / steps

	span := float64(endUs) - float64(startUs)
	out := make([]Step, 0, steps)

	x0, y0 := 0, 0
	for _, wp := range waypointTables[p] {
		if wp.TimePct == x0 {
			// zero-length segment guard
			y0 = wp.PosPct
			continue
		}
		grad := float64(wp.PosPct-y0) / float64(wp.TimePct-x0)
		for x := x0 + xInc; x <= wp.TimePct; x += xInc {
			y := float64(y0) + grad*float64(x-x0)
			us := float64(startUs) + span*y/100
			out = append(out, Step{
				PulseUs: mathx.Clamp(uint32(us+0.5), types.PulseMinUs, types.PulseMaxUs),
				Pause:   pause,
			})
		}
		x0, y0 = wp.TimePct, wp.PosPct
	}
	if len(out) == 0 {
		return []Step{{PulseUs: mathx.Clamp(endUs, types.PulseMinUs, types.PulseMaxUs), Pause: pause}}
	}
	out[len(out)-1].PulseUs = mathx.Clamp(endUs, types.PulseMinUs, types.PulseMaxUs)
	return out
}
