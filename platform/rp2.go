// platform/rp2.go
//go:build rp2040 || rp2350

package platform

import (
	"machine"

	sdrv "tinygo.org/x/drivers/servo"
)

// ServoOut binds one servo channel to an RP2 PWM slice through the
// servo driver, which fixes the 20 ms period at construction.
type ServoOut struct {
	s sdrv.Servo
}

// NewServoOut claims pin on the given PWM slice.
func NewServoOut(pwm sdrv.PWM, pin machine.Pin) (*ServoOut, error) {
	s, err := sdrv.New(pwm, pin)
	if err != nil {
		return nil, err
	}
	return &ServoOut{s: s}, nil
}

func (o *ServoOut) Configure(freqHz uint32) error {
	// Period is set by the servo driver; nothing to do per channel.
	return nil
}

func (o *ServoOut) SetPulseWidth(us uint32) {
	o.s.SetMicroseconds(int16(us))
}

func (o *ServoOut) Disable() {
	// Zero high-time idles the output without releasing the slice.
	o.s.SetMicroseconds(0)
}

// PWMForPin returns the PWM slice owning an RP2 GPIO pin.
func PWMForPin(pin machine.Pin) sdrv.PWM {
	switch (pin / 2) % 8 {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

// SwitchPin reads a latching panel switch wired to ground (pull-up).
type SwitchPin struct {
	pin machine.Pin
}

func NewSwitchPin(pin machine.Pin) *SwitchPin {
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return &SwitchPin{pin: pin}
}

func (p *SwitchPin) Get() bool { return p.pin.Get() }

// LEDPin drives the activity LED.
type LEDPin struct {
	pin machine.Pin
}

func NewLEDPin(pin machine.Pin) *LEDPin {
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &LEDPin{pin: pin}
}

func (p *LEDPin) Set(level bool) { p.pin.Set(level) }
