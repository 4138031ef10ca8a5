// platform/host.go
//go:build !rp2040 && !rp2350

package platform

import "sync"

// SimPWM implements types.PWMOutput for host-side runs and tests. It
// records every commanded pulse width.
type SimPWM struct {
	mu       sync.Mutex
	freqHz   uint32
	writes   []uint32
	disabled bool
}

func (p *SimPWM) Configure(freqHz uint32) error {
	p.mu.Lock()
	p.freqHz = freqHz
	p.mu.Unlock()
	return nil
}

func (p *SimPWM) SetPulseWidth(us uint32) {
	p.mu.Lock()
	p.writes = append(p.writes, us)
	p.disabled = false
	p.mu.Unlock()
}

func (p *SimPWM) Disable() {
	p.mu.Lock()
	p.disabled = true
	p.mu.Unlock()
}

// FreqHz returns the configured pulse frequency.
func (p *SimPWM) FreqHz() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.freqHz
}

// Writes returns every commanded pulse width, in order.
func (p *SimPWM) Writes() []uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uint32(nil), p.writes...)
}

// Last returns the most recent commanded pulse width, 0 when none.
func (p *SimPWM) Last() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.writes) == 0 {
		return 0
	}
	return p.writes[len(p.writes)-1]
}

// Disabled reports whether the output is currently idled.
func (p *SimPWM) Disabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disabled
}

// Reset clears the recorded writes.
func (p *SimPWM) Reset() {
	p.mu.Lock()
	p.writes = nil
	p.mu.Unlock()
}

// SimPin implements types.InputPin and types.OutputPin for host-side
// runs and tests.
type SimPin struct {
	mu    sync.RWMutex
	level bool
}

// NewSimPin creates a pin at the given electrical level.
func NewSimPin(level bool) *SimPin { return &SimPin{level: level} }

func (p *SimPin) Get() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.level
}

func (p *SimPin) Set(level bool) {
	p.mu.Lock()
	p.level = level
	p.mu.Unlock()
}
