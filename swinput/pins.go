package swinput

import (
	"context"
	"time"

	"servolink-go/coord"
	"servolink-go/types"
)

// PinSource reads latching switches wired to input pins. Pull-up
// wiring: electrical low means the switch is on.
type PinSource struct {
	state    *types.SwitchState
	order    []string
	pins     map[string]types.InputPin
	interval time.Duration
}

// NewPinSource binds switch ids to their input pins, in id order.
func NewPinSource(ids []string, pins map[string]types.InputPin, interval time.Duration) *PinSource {
	return &PinSource{
		state:    types.NewSwitchState(ids),
		order:    append([]string(nil), ids...),
		pins:     pins,
		interval: interval,
	}
}

// Read scans every pin and returns the snapshot. Synchronous; a direct
// electrical read per switch.
func (p *PinSource) Read() *types.SwitchState {
	for _, id := range p.order {
		if pin, ok := p.pins[id]; ok {
			p.state.Set(id, !pin.Get())
		}
	}
	return p.state
}

// Poll is the producer loop: scan at the configured interval and hand
// each snapshot to the coordinator. Deliver blocks while a handed-over
// snapshot is awaiting the consumer, so scans never race ahead of it.
// Runs until the context is cancelled.
func (p *PinSource) Poll(ctx context.Context, c *coord.Coordinator) error {
	tick := time.NewTicker(p.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
			if _, err := c.Deliver(ctx, p.Read()); err != nil {
				return err
			}
		}
	}
}
