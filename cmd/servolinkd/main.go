//go:build linux && !rp2040 && !rp2350

// Command servolinkd runs the switch-to-servo controller on a Linux
// board, with panel switches on GPIO character-device lines and
// virtual switches over HTTP and MQTT.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servolink-go/bus"
	"servolink-go/platform"
	"servolink-go/servo"
	"servolink-go/services/control"
	"servolink-go/swinput"
	"servolink-go/types"
)

func main() {
	configPath := flag.String("config", "", "JSON config file (required)")
	chip := flag.String("chip", "gpiochip0", "GPIO character device")
	httpAddr := flag.String("http", ":8080", "HTTP switch form address (empty to disable)")
	token := flag.String("token", "", "shared token required on HTTP requests")
	broker := flag.String("broker", "", "MQTT broker address (empty to disable)")
	topic := flag.String("topic", "servolink/switches/set", "MQTT command topic")
	noPins := flag.Bool("no-pins", false, "skip hardware switch polling")
	pwmChip := flag.Int("pwmchip", 0, "sysfs pwmchip index")
	simOut := flag.Bool("sim-outputs", false, "use simulated PWM outputs")
	flag.Parse()

	if err := run(*configPath, *chip, *httpAddr, *token, *broker, *topic, *noPins, *pwmChip, *simOut); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func loadConfig(path string) (types.Config, error) {
	var cfg types.Config
	if path == "" {
		return cfg, fmt.Errorf("-config is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func run(configPath, chip, httpAddr, token, broker, topic string, noPins bool, pwmChip int, simOut bool) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	// Channel Pin selects the sysfs PWM channel on -pwmchip. Boards
	// without hardware PWM can still exercise the full virtual-switch
	// surface against simulated outputs.
	outputs := make(map[string]types.PWMOutput, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		if simOut {
			outputs[ch.ID] = &platform.SimPWM{}
			continue
		}
		out, err := platform.OpenSysfsPWM(pwmChip, ch.Pin)
		if err != nil {
			return err
		}
		outputs[ch.ID] = out
	}

	b := bus.NewBus(16)
	svc, err := control.New(cfg, outputs, b.NewConnection("control"))
	if err != nil {
		return err
	}
	resolved := svc.Config()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go logReports(b.NewConnection("report-log"))

	var pinSource *swinput.PinSource
	if !noPins && len(resolved.Switches) > 0 {
		offsets := make(map[string]int, len(resolved.Switches))
		for _, sw := range resolved.Switches {
			offsets[sw.ID] = sw.Pin
		}
		lines, err := platform.OpenLinuxPins(chip, offsets)
		if err != nil {
			return err
		}
		defer lines.Close()
		pinSource = swinput.NewPinSource(resolved.SwitchIDs(), lines.Pins(),
			time.Duration(resolved.PollMs)*time.Millisecond)
	}

	if err := svc.Startup(ctx, pinSource); err != nil {
		return err
	}
	if pinSource != nil {
		go pinSource.Poll(ctx, svc.Coordinator())
		log.Printf("polling switches every %dms", resolved.PollMs)
	}

	if httpAddr != "" {
		form := swinput.NewFormSource(resolved.SwitchIDs(), token, svc.Offer)
		srv := &http.Server{Addr: httpAddr, Handler: form.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer func() {
			shCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shCtx)
		}()
		log.Printf("switch form on %s", httpAddr)
	}

	if broker != "" {
		mq := swinput.NewMQTTSource(resolved.SwitchIDs(), svc.Offer)
		client, err := swinput.ConnectMQTT(broker, "servolinkd", topic, mq)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		log.Printf("subscribed to %s on %s", topic, broker)
	}

	err = svc.Run(ctx)
	if err == context.Canceled {
		log.Printf("shutting down")
		return nil
	}
	return err
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
