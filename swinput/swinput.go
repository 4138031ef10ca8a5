// Package swinput produces switch-state snapshots from hardware pins
// or network submissions, and routes them to servo channel demands.
package swinput

import (
	"servolink-go/errcode"
	"servolink-go/types"
)

// Source produces the current switch-state snapshot. Read never
// blocks; network-fed sources return whatever has been received so
// far.
type Source interface {
	Read() *types.SwitchState
}

// Router is the static switch -> channels routing table. One switch
// may drive several channels; a channel is driven by at most one
// switch (enforced by config validation).
type Router struct {
	order  []string
	routes map[string][]string
}

// NewRouter builds the routing table, rejecting routes to channels the
// group does not know.
func NewRouter(switches []types.SwitchConfig, channels []string) (*Router, error) {
	known := make(map[string]bool, len(channels))
	for _, id := range channels {
		known[id] = true
	}
	r := &Router{routes: make(map[string][]string, len(switches))}
	for _, sw := range switches {
		for _, ch := range sw.Channels {
			if !known[ch] {
				return nil, &errcode.E{C: errcode.UnknownChannel, Op: "swinput.NewRouter",
					Msg: sw.ID + " -> " + ch}
			}
		}
		r.order = append(r.order, sw.ID)
		r.routes[sw.ID] = append([]string(nil), sw.Channels...)
	}
	return r, nil
}

// Demand derives the per-channel demand map from a snapshot. The
// derivation is deterministic; switches absent from the snapshot
// contribute nothing.
func (r *Router) Demand(s *types.SwitchState) types.DemandMap {
	d := make(types.DemandMap)
	for _, sw := range r.order {
		on, ok := s.Get(sw)
		if !ok {
			continue
		}
		for _, ch := range r.routes[sw] {
			d[ch] = types.StateOf(on)
		}
	}
	return d
}
