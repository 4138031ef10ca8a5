//go:build !rp2040 && !rp2350

// Command servolink-sim exercises the controller against simulated
// hardware. It reads switch commands from stdin, one line per change:
//
//	s0=1 s1=0
//	set s2 1
//	state
//	quit
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/shlex"

	"servolink-go/bus"
	"servolink-go/platform"
	"servolink-go/servo"
	"servolink-go/services/control"
	"servolink-go/types"
)

var simConfig = types.Config{
	Channels: []types.ChannelConfig{
		{ID: "ch0", Pin: 2, OffDegrees: 70, OnDegrees: 110},
		{ID: "ch1", Pin: 3, OffDegrees: 110, OnDegrees: 70},
		{ID: "ch2", Pin: 4, OffDegrees: 45, OnDegrees: 135, TransitionMs: 2000, Profile: "s_curve"},
		{ID: "ch3", Pin: 5, OffDegrees: 45, OnDegrees: 135, Profile: "overshoot"},
	},
	Switches: []types.SwitchConfig{
		{ID: "s0", Pin: 26, Channels: []string{"ch0", "ch1"}},
		{ID: "s1", Pin: 27, Channels: []string{"ch2"}},
		{ID: "s2", Pin: 28, Channels: []string{"ch3"}},
	},
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run() error {
	cfg := simConfig

	outputs := make(map[string]types.PWMOutput, len(cfg.Channels))
	sims := make(map[string]*platform.SimPWM, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		p := &platform.SimPWM{}
		outputs[ch.ID] = p
		sims[ch.ID] = p
	}

	b := bus.NewBus(16)
	svc, err := control.New(cfg, outputs, b.NewConnection("control"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go logReports(b.NewConnection("report-log"))

	if err := svc.Startup(ctx, nil); err != nil {
		return err
	}
	go svc.Run(ctx)

	state := types.NewSwitchState(svc.Config().SwitchIDs())
	fmt.Println("virtual switches:", state)

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		tokens, err := shlex.Split(sc.Text())
		if err != nil {
			log.Printf("parse: %v", err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}
		switch tokens[0] {
		case "quit", "exit":
			return nil
		case "state":
			fmt.Println("switches:", state)
			for _, id := range svc.Group().IDs() {
				sv, _ := svc.Group().Get(id)
				fmt.Printf("%s: %s pw=%dus idle=%v\n",
					id, sv.State(), sv.PulseUs(), sims[id].Disabled())
			}
			continue
		case "set":
			// "set s2 1" form
			if len(tokens) != 3 || !apply(state, tokens[1], tokens[2]) {
				log.Printf("usage: set <switch> <0|1>")
				continue
			}
		default:
			// "s0=1 s1=0" form
			ok := true
			for _, tok := range tokens {
				id, val, found := strings.Cut(tok, "=")
				if !found || !apply(state, id, val) {
					log.Printf("bad token %q", tok)
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		svc.Offer(state)
	}
	return sc.Err()
}

// apply sets one switch value, rejecting unknown ids and non-binary
// values.
func apply(state *types.SwitchState, id, val string) bool {
	if val != "0" && val != "1" {
		return false
	}
	return state.Set(id, val == "1")
}

func logReports(conn *bus.Connection) {
	sub := conn.Subscribe(control.TopicServos)
	defer conn.Unsubscribe(sub)
	for msg := range sub.Channel() {
		if reports, ok := msg.Payload.([]servo.Report); ok {
			for _, r := range reports {
				log.Printf("servo set: %s %s", r.Channel, r.State)
			}
		}
	}
}
