//go:build rp2040 || rp2350

// Command pico-servolink runs the switch-to-servo controller on a
// Raspberry Pi Pico with panel switches on GP26-GP28 and servos on
// GP2-GP5.
package main

import (
	"context"
	"machine"
	"time"

	"servolink-go/bus"
	"servolink-go/platform"
	"servolink-go/servo"
	"servolink-go/services/control"
	"servolink-go/services/heartbeat"
	"servolink-go/swinput"
	"servolink-go/types"
)

var cfg = types.Config{
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
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	outputs := make(map[string]types.PWMOutput, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		pin := machine.Pin(ch.Pin)
		out, err := platform.NewServoOut(platform.PWMForPin(pin), pin)
		if err != nil {
			println("Fatal:", "claim servo pin", ch.Pin, err.Error())
			return
		}
		outputs[ch.ID] = out
	}

	pins := make(map[string]types.InputPin, len(cfg.Switches))
	for _, sw := range cfg.Switches {
		pins[sw.ID] = platform.NewSwitchPin(machine.Pin(sw.Pin))
	}

	b := bus.NewBus(8)
	svc, err := control.New(cfg, outputs, b.NewConnection("control"))
	if err != nil {
		println("Fatal:", "build control service:", err.Error())
		return
	}

	ctx := context.Background()
	hb := &heartbeat.Service{LED: platform.NewLEDPin(machine.LED)}
	hb.Start(ctx, b.NewConnection("heartbeat"))

	diagnostics(svc.Config())

	resolved := svc.Config()
	source := swinput.NewPinSource(resolved.SwitchIDs(), pins,
		time.Duration(resolved.PollMs)*time.Millisecond)

	println("Scan switches and initialise servos")
	if err := svc.Startup(ctx, source); err != nil {
		println("Fatal:", "startup:", err.Error())
		return
	}

	go logReports(b.NewConnection("report-log"))
	go source.Poll(ctx, svc.Coordinator())
	println("Polling switches every", resolved.PollMs, "ms")

	svc.Run(ctx)
}

// diagnostics prints the resolved channel parameters once at boot.
func diagnostics(cfg types.Config) {
	for _, ch := range cfg.Channels {
		println("=== channel:", ch.ID, "pin:", ch.Pin, "===")
		println("off us:", ch.OffUs())
		println("on  us:", ch.OnUs())
		println("transit ms:", ch.TransitionMs, "profile:", ch.Profile)
	}
}

func logReports(conn *bus.Connection) {
	sub := conn.Subscribe(control.TopicServos)
	defer conn.Unsubscribe(sub)
	for msg := range sub.Channel() {
		if reports, ok := msg.Payload.([]servo.Report); ok {
			for _, r := range reports {
				println("Info: servo set:", r.Channel, r.State.String())
			}
		}
	}
}
