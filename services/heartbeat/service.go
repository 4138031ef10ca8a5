package heartbeat

import (
	"context"
	"time"

	"servolink-go/bus"
	"servolink-go/types"
)

var topicConfigHeartbeat = bus.Topic{"config", "heartbeat"}

// Service blinks an activity LED as a liveness indicator: a short
// flash, then a long gap.
type Service struct {
	LED types.OutputPin // optional; println-only when nil

	OnMs  uint32
	OffMs uint32
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	onD := time.Duration(s.OnMs) * time.Millisecond
	offD := time.Duration(s.OffMs) * time.Millisecond
	if onD == 0 {
		onD = 100 * time.Millisecond
	}
	if offD == 0 {
		offD = 2 * time.Second
	}

	var cfgCh <-chan *bus.Message
	if conn != nil {
		cfgSub := conn.Subscribe(topicConfigHeartbeat)
		defer conn.Unsubscribe(cfgSub)
		cfgCh = cfgSub.Channel()
	}

	t := time.NewTimer(offD)
	defer t.Stop()
	on := false

	for {
		select {
		case <-ctx.Done():
			println("Info: heartbeat service stopping")
			if s.LED != nil {
				s.LED.Set(false)
			}
			return
		case <-t.C:
			on = !on
			if s.LED != nil {
				s.LED.Set(on)
			}
			if on {
				t.Reset(onD)
			} else {
				t.Reset(offD)
			}
		case msg := <-cfgCh:
			// Change the gap if requested.
			if m, ok := msg.Payload.(map[string]any); ok {
				if iv, ok := m["off_ms"]; ok {
					if ms, ok := iv.(float64); ok && ms > 0 {
						offD = time.Duration(ms) * time.Millisecond
						println("Info:", "Heartbeat gap set to", int64(ms), "ms")
					}
				}
			}
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
