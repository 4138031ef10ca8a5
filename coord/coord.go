// Package coord implements the single-slot handshake between a switch
// snapshot producer and the servo-update consumer. At most one
// undelivered snapshot is ever in flight; rapid successive changes
// collapse to the latest state (last write wins).
package coord

import (
	"context"
	"sync"

	"servolink-go/types"
)

// State is the coordinator phase, visible for diagnostics.
type State uint8

const (
	// Scanning: nothing pending, the producer is free to offer.
	Scanning State = iota
	// ReadyToConsume: a snapshot is pending delivery.
	ReadyToConsume
	// Consuming: the consumer holds the latest snapshot and is acting
	// on it.
	Consuming
)

func (s State) String() string {
	switch s {
	case ReadyToConsume:
		return "ready_to_consume"
	case Consuming:
		return "consuming"
	default:
		return "scanning"
	}
}

// Coordinator is the handshake mailbox. The two capacity-1 channels
// realise the dataReady and consumerReady signals; the slot and the
// delivered record are guarded by the mutex.
type Coordinator struct {
	mu        sync.Mutex
	slot      *types.SwitchState // pending snapshot, nil when none
	delivered *types.SwitchState // last snapshot taken by the consumer
	state     State

	dataReady     chan struct{}
	consumerReady chan struct{}
}

func New() *Coordinator {
	return &Coordinator{
		dataReady:     make(chan struct{}, 1),
		consumerReady: make(chan struct{}, 1),
	}
}

// State returns the current phase.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Offer publishes s as the pending snapshot when it differs from the
// snapshot already pending or, with none pending, from the one last
// delivered. A pending snapshot is replaced in place, so intermediate
// transients are never queued. Non-blocking; reports whether a
// delivery is pending after the call.
func (c *Coordinator) Offer(s *types.SwitchState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot != nil {
		if !s.Equal(c.slot) {
			c.slot = s.Clone()
		}
		return true
	}
	if c.delivered != nil && s.Equal(c.delivered) {
		return false
	}
	c.slot = s.Clone()
	c.state = ReadyToConsume
	raise(c.dataReady)
	return true
}

// Deliver is the blocking producer cycle: offer s and, when a delivery
// is pending, park until the consumer signals readiness. The producer
// therefore cannot scan ahead of the consumer, and a snapshot is never
// recorded as delivered before the consumer has started its round.
// Reports whether a snapshot was handed over.
func (c *Coordinator) Deliver(ctx context.Context, s *types.SwitchState) (bool, error) {
	if !c.Offer(s) {
		return false, nil
	}
	select {
	case <-c.consumerReady:
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Acquire is the consumer side: raise consumerReady, suspend until a
// snapshot is pending, then take it and flag the coordinator busy. The
// returned snapshot is the consumer's own copy; the delivered record
// is updated at this handoff, never earlier.
func (c *Coordinator) Acquire(ctx context.Context) (*types.SwitchState, error) {
	c.mu.Lock()
	if c.slot == nil {
		c.state = Scanning
	}
	c.mu.Unlock()
	raise(c.consumerReady)
	select {
	case <-c.dataReady:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.slot
	c.slot = nil
	c.delivered = s.Clone()
	c.state = Consuming
	lower(c.consumerReady)
	return s, nil
}

// raise sets an edge-triggered flag; a flag already set stays set.
func raise(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// lower drains an edge-triggered flag if set.
func lower(ch chan struct{}) {
	select {
	case <-ch:
	default:
	}
}
