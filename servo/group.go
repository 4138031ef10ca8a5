package servo

import (
	"context"
	"sync"

	"servolink-go/types"
)

// Group fans a demand map out over a set of servos. Each servo owns a
// disjoint output line, so the per-channel moves run concurrently with
// no ordering relationship; Update joins them all before returning.
type Group struct {
	order  []string
	servos map[string]*Servo
}

// NewGroup builds a group preserving the given channel order.
func NewGroup(servos []*Servo) *Group {
	g := &Group{servos: make(map[string]*Servo, len(servos))}
	for _, s := range servos {
		g.order = append(g.order, s.id)
		g.servos[s.id] = s
	}
	return g
}

// Get returns the servo for a channel id.
func (g *Group) Get(id string) (*Servo, bool) {
	s, ok := g.servos[id]
	return s, ok
}

// IDs returns the channel ids in construction order.
func (g *Group) IDs() []string { return append([]string(nil), g.order...) }

// Initialise drives every channel to Off once and idles the outputs.
func (g *Group) Initialise(ctx context.Context) error {
	for _, id := range g.order {
		if err := g.servos[id].Initialise(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Update launches a move for every channel named in demand whose
// demanded state differs from its committed state, and waits for all
// of them. Channels absent from demand, or already matching it, are
// untouched. The returned reports are in channel order.
func (g *Group) Update(ctx context.Context, demand types.DemandMap) []Report {
	type launch struct {
		s      *Servo
		target types.LogicalState
	}
	var launches []launch
	for _, id := range g.order {
		target, ok := demand[id]
		if !ok {
			continue
		}
		if s := g.servos[id]; target != s.state {
			launches = append(launches, launch{s, target})
		}
	}

	reports := make([]Report, len(launches))
	var wg sync.WaitGroup
	for i, l := range launches {
		wg.Add(1)
		go func(i int, l launch) {
			defer wg.Done()
			reports[i], _ = l.s.Move(ctx, l.target)
		}(i, l)
	}
	wg.Wait()
	return reports
}

// Close idles every output.
func (g *Group) Close() {
	for _, s := range g.servos {
		s.Close()
	}
}
