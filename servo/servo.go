// Package servo drives SG90-class servo channels between two
// configured positions along motion-profile trajectories.
package servo

import (
	"context"
	"time"

	"servolink-go/errcode"
	"servolink-go/motion"
	"servolink-go/types"
)

// settle is the pause after a sweep completes, before the output is
// idled; the horn needs it to reach the commanded position.
const settle = 200 * time.Millisecond

// Report is the completion result of a move: which channel committed
// which state.
type Report struct {
	Channel string
	State   types.LogicalState
}

// Servo owns one PWM output line exclusively. It is driven from a
// single goroutine at a time; Group serialises access per channel.
type Servo struct {
	id       string
	out      types.PWMOutput
	offUs    uint32
	onUs     uint32
	duration time.Duration
	profile  motion.Profile

	state types.LogicalState
	pw    uint32 // committed pulse width

	// pause is the cooperative suspension point between trajectory
	// steps. Tests substitute an instant one.
	pause func(ctx context.Context, d time.Duration) error
}

// New builds a servo from its channel configuration and output handle,
// and configures the output frequency. The profile name must be valid.
func New(cfg types.ChannelConfig, out types.PWMOutput) (*Servo, error) {
	prof, err := motion.Parse(cfg.Profile)
	if err != nil {
		return nil, err
	}
	if err := out.Configure(types.PWMFreqHz); err != nil {
		return nil, &errcode.E{C: errcode.Error, Op: "servo.New", Msg: cfg.ID, Err: err}
	}
	return &Servo{
		id:       cfg.ID,
		out:      out,
		offUs:    cfg.OffUs(),
		onUs:     cfg.OnUs(),
		duration: time.Duration(cfg.TransitionMs) * time.Millisecond,
		profile:  prof,
		state:    types.StateUnset,
		pw:       cfg.OffUs(),
		pause:    sleep,
	}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ID returns the channel id.
func (s *Servo) ID() string { return s.id }

// State returns the last committed demand state.
func (s *Servo) State() types.LogicalState { return s.state }

// PulseUs returns the committed pulse width.
func (s *Servo) PulseUs() uint32 { return s.pw }

func (s *Servo) targetUs(state types.LogicalState) uint32 {
	if state == types.StateOn {
		return s.onUs
	}
	return s.offUs
}

// SetDirect jumps straight to the target position with no trajectory.
// Used at startup, when the previous physical position is unknown.
func (s *Servo) SetDirect(target types.LogicalState) {
	if target != types.StateOff && target != types.StateOn {
		return
	}
	s.pw = s.targetUs(target)
	s.out.SetPulseWidth(s.pw)
	s.state = target
}

// Initialise drives the channel to Off, waits for the motion to
// complete, then idles the output. After it the state is never Unset.
func (s *Servo) Initialise(ctx context.Context) error {
	s.SetDirect(types.StateOff)
	if err := s.pause(ctx, settle); err != nil {
		return err
	}
	s.out.Disable()
	return nil
}

// Move sweeps the channel to the target state along its motion
// profile. Calling it with the already-committed state is a no-op that
// returns the committed report immediately. Once a sweep starts it
// runs to completion; the context is honoured only for process
// shutdown. The exact target pulse width is committed at the end, so
// rounding in the intermediate steps never drifts the endpoints.
func (s *Servo) Move(ctx context.Context, target types.LogicalState) (Report, error) {
	if target != types.StateOff && target != types.StateOn {
		return Report{Channel: s.id, State: s.state},
			&errcode.E{C: errcode.InvalidParams, Op: "servo.Move", Msg: s.id}
	}
	if target == s.state {
		return Report{Channel: s.id, State: s.state}, nil
	}

	end := s.targetUs(target)
	traj := s.profile.Trajectory(s.pw, end, s.duration)

	// Re-activate the output at the committed position before stepping.
	s.out.SetPulseWidth(s.pw)
	for _, st := range traj {
		s.out.SetPulseWidth(st.PulseUs)
		if err := s.pause(ctx, st.Pause); err != nil {
			return Report{Channel: s.id, State: s.state}, err
		}
	}

	// Commit the exact target, not the last interpolated value.
	s.pw = end
	s.out.SetPulseWidth(s.pw)
	s.state = target

	if err := s.pause(ctx, settle); err != nil {
		return Report{Channel: s.id, State: s.state}, err
	}
	s.out.Disable()
	return Report{Channel: s.id, State: s.state}, nil
}

// Close idles the output.
func (s *Servo) Close() { s.out.Disable() }
