package types

// Minimal hardware capability handles. Domain entities hold one of
// these instead of embedding a peripheral type, so a simulated backend
// can stand in for the hardware.

// PWMOutput is the output capability a servo channel needs.
type PWMOutput interface {
	// Configure sets the pulse frequency. Called once, before any write.
	Configure(freqHz uint32) error
	// SetPulseWidth commands the high time of the periodic pulse.
	SetPulseWidth(us uint32)
	// Disable drops the output to zero duty (no holding torque).
	Disable()
}

// InputPin is the read capability a panel switch needs.
type InputPin interface {
	// Get returns the electrical level, true = high.
	Get() bool
}

// OutputPin is the write capability the activity LED needs.
type OutputPin interface {
	Set(level bool)
}
