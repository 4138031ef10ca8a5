package types

import (
	"servolink-go/errcode"
	"servolink-go/x/mathx"
	"servolink-go/x/strx"
)

// Global servo hardware envelope (SG90-class servos at 50 Hz).
const (
	PWMFreqHz  uint32 = 50
	PulseMinUs uint32 = 500  // ~0 degrees
	PulseMaxUs uint32 = 2500 // ~180 degrees

	DegreesMin float64 = 0
	DegreesMax float64 = 180
)

// DegreesToPulseUs converts a shaft angle to a pulse width, clamped to
// the hardware envelope.
func DegreesToPulseUs(deg float64) uint32 {
	span := float64(PulseMaxUs - PulseMinUs)
	us := float64(PulseMinUs) + deg*span/(DegreesMax-DegreesMin)
	return mathx.Clamp(uint32(us+0.5), PulseMinUs, PulseMaxUs)
}

// ChannelConfig describes one servo channel.
// Positions are given in degrees; a non-zero pulse override wins.
type ChannelConfig struct {
	ID         string  `json:"id"`
	Pin        int     `json:"pin"`
	OffDegrees float64 `json:"off_degrees"`
	OnDegrees  float64 `json:"on_degrees"`
	OffPulseUs uint32  `json:"off_pulse_us,omitempty"`
	OnPulseUs  uint32  `json:"on_pulse_us,omitempty"`
	// TransitionMs is the wall-clock time of a full off<->on sweep.
	TransitionMs uint32 `json:"transition_ms,omitempty"`
	// Profile names the motion waypoint table ("linear", "s_curve",
	// "slowing", "bounce", "overshoot").
	Profile string `json:"profile,omitempty"`
}

// OffUs resolves the off-position pulse width.
func (c ChannelConfig) OffUs() uint32 {
	if c.OffPulseUs != 0 {
		return c.OffPulseUs
	}
	return DegreesToPulseUs(c.OffDegrees)
}

// OnUs resolves the on-position pulse width.
func (c ChannelConfig) OnUs() uint32 {
	if c.OnPulseUs != 0 {
		return c.OnPulseUs
	}
	return DegreesToPulseUs(c.OnDegrees)
}

// SwitchConfig describes one input switch and the channels it drives.
type SwitchConfig struct {
	ID       string   `json:"id"`
	Pin      int      `json:"pin"`
	Channels []string `json:"channels"`
}

// Config is resolved once at process start and passed into the
// components that need it. It is never mutated afterwards.
type Config struct {
	Channels []ChannelConfig `json:"channels"`
	Switches []SwitchConfig  `json:"switches"`
	// PollMs is the hardware switch scan interval.
	PollMs uint32 `json:"poll_ms,omitempty"`
}

const (
	DefaultTransitionMs uint32 = 1000
	DefaultProfile             = "linear"
	DefaultPollMs       uint32 = 200
)

// WithDefaults returns the config with per-field defaults applied.
func (c Config) WithDefaults() Config {
	for i := range c.Channels {
		if c.Channels[i].TransitionMs == 0 {
			c.Channels[i].TransitionMs = DefaultTransitionMs
		}
		c.Channels[i].Profile = strx.Coalesce(c.Channels[i].Profile, DefaultProfile)
	}
	if c.PollMs == 0 {
		c.PollMs = DefaultPollMs
	}
	return c
}

// Validate checks structural invariants: unique ids, known routing
// targets, each channel driven by at most one switch, positions within
// the hardware envelope. Violations are fatal at startup.
func (c Config) Validate() error {
	if len(c.Channels) == 0 {
		return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "no channels configured"}
	}
	channels := make(map[string]bool, len(c.Channels))
	for _, ch := range c.Channels {
		if ch.ID == "" {
			return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "channel with empty id"}
		}
		if channels[ch.ID] {
			return &errcode.E{C: errcode.DuplicateID, Op: "config", Msg: "channel " + ch.ID}
		}
		channels[ch.ID] = true
		if !mathx.Between(ch.OffDegrees, DegreesMin, DegreesMax) ||
			!mathx.Between(ch.OnDegrees, DegreesMin, DegreesMax) {
			return &errcode.E{C: errcode.OutOfRange, Op: "config", Msg: "channel " + ch.ID + " degrees"}
		}
		if !mathx.Between(ch.OffUs(), PulseMinUs, PulseMaxUs) ||
			!mathx.Between(ch.OnUs(), PulseMinUs, PulseMaxUs) {
			return &errcode.E{C: errcode.OutOfRange, Op: "config", Msg: "channel " + ch.ID + " pulse width"}
		}
	}
	switches := make(map[string]bool, len(c.Switches))
	driven := make(map[string]string)
	for _, sw := range c.Switches {
		if sw.ID == "" {
			return &errcode.E{C: errcode.InvalidParams, Op: "config", Msg: "switch with empty id"}
		}
		if switches[sw.ID] {
			return &errcode.E{C: errcode.DuplicateID, Op: "config", Msg: "switch " + sw.ID}
		}
		switches[sw.ID] = true
		for _, id := range sw.Channels {
			if !channels[id] {
				return &errcode.E{C: errcode.UnknownChannel, Op: "config", Msg: "switch " + sw.ID + " -> " + id}
			}
			if by, ok := driven[id]; ok {
				return &errcode.E{C: errcode.DuplicateID, Op: "config",
					Msg: "channel " + id + " driven by " + by + " and " + sw.ID}
			}
			driven[id] = sw.ID
		}
	}
	return nil
}

// SwitchIDs returns the configured switch ids in order.
func (c Config) SwitchIDs() []string {
	ids := make([]string, 0, len(c.Switches))
	for _, sw := range c.Switches {
		ids = append(ids, sw.ID)
	}
	return ids
}
