// Package control wires switch sources, the handshake coordinator and
// the servo group into the running service.
package control

import (
	"context"
	"time"

	"github.com/tiendc/go-deepcopy"

	"servolink-go/bus"
	"servolink-go/coord"
	"servolink-go/errcode"
	"servolink-go/servo"
	"servolink-go/swinput"
	"servolink-go/types"
	"servolink-go/x/timex"
)

// Bus topics observers subscribe to.
var (
	TopicSwitches = bus.Topic{"control", "switches"}
	TopicServos   = bus.Topic{"control", "servos"}
)

// Service owns the consumer side of the handshake: it takes delivered
// snapshots, derives channel demands and applies them to the group.
type Service struct {
	cfg    types.Config
	group  *servo.Group
	router *swinput.Router
	co     *coord.Coordinator
	conn   *bus.Connection
}

// New validates the configuration and builds the servo group, routing
// table and coordinator. outputs maps channel id to its claimed PWM
// line; every configured channel must have one. Construction errors
// are fatal to startup.
func New(cfg types.Config, outputs map[string]types.PWMOutput, conn *bus.Connection) (*Service, error) {
	// Keep a private copy; the caller's config must not alias ours.
	own := new(types.Config)
	if err := deepcopy.Copy(own, &cfg); err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "control.New", Err: err}
	}
	*own = own.WithDefaults()
	if err := own.Validate(); err != nil {
		return nil, err
	}

	servos := make([]*servo.Servo, 0, len(own.Channels))
	for _, ch := range own.Channels {
		out, ok := outputs[ch.ID]
		if !ok {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: "control.New",
				Msg: "no output for channel " + ch.ID}
		}
		s, err := servo.New(ch, out)
		if err != nil {
			return nil, err
		}
		servos = append(servos, s)
	}
	group := servo.NewGroup(servos)

	router, err := swinput.NewRouter(own.Switches, group.IDs())
	if err != nil {
		return nil, err
	}

	return &Service{
		cfg:    *own,
		group:  group,
		router: router,
		co:     coord.New(),
		conn:   conn,
	}, nil
}

// Config returns the resolved configuration.
func (s *Service) Config() types.Config { return s.cfg }

// Coordinator exposes the handshake mailbox for producer wiring.
func (s *Service) Coordinator() *coord.Coordinator { return s.co }

// Group exposes the servo group (diagnostics, shutdown).
func (s *Service) Group() *servo.Group { return s.group }

// Offer is the producer entry point for push sources (network
// submissions): hand a snapshot to the coordinator without blocking.
func (s *Service) Offer(state *types.SwitchState) bool {
	return s.co.Offer(state)
}

// Startup drives every channel to off once, then, when a source is
// given, scans it and sets the channels direct to the scanned demand;
// the start setting is applied without a sweep because the previous
// physical position is unknown. Establishes that no channel is left
// Unset.
func (s *Service) Startup(ctx context.Context, src swinput.Source) error {
	if err := s.group.Initialise(ctx); err != nil {
		return err
	}
	if src == nil {
		return nil
	}
	state := src.Read()
	demand := s.router.Demand(state)
	for _, id := range s.group.IDs() {
		target, ok := demand[id]
		if !ok {
			continue
		}
		if sv, ok := s.group.Get(id); ok {
			sv.SetDirect(target)
		}
	}
	// One settling period for all channels, then idle the outputs.
	t := time.NewTimer(500 * time.Millisecond)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.group.Close()
	s.publishSwitches(state)
	return nil
}

// Run is the consumer loop: acquire each delivered snapshot, derive
// the demand map and move the differing channels. Returns when the
// context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	for {
		state, err := s.co.Acquire(ctx)
		if err != nil {
			s.group.Close()
			return err
		}
		s.publishSwitches(state)
		demand := s.router.Demand(state)
		reports := s.group.Update(ctx, demand)
		s.publishReports(reports)
	}
}

func (s *Service) publishSwitches(state *types.SwitchState) {
	if s.conn == nil {
		return
	}
	msg := s.conn.NewMessage(TopicSwitches, state.Clone(), true)
	msg.TSms = timex.NowMs()
	s.conn.Publish(msg)
}

func (s *Service) publishReports(reports []servo.Report) {
	if s.conn == nil || len(reports) == 0 {
		return
	}
	msg := s.conn.NewMessage(TopicServos, reports, false)
	msg.TSms = timex.NowMs()
	s.conn.Publish(msg)
}
