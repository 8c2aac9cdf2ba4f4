package sim

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/go-nao/pkg/nao"
)

// DefaultCallTimeout bounds one remote call when the config does not
// say otherwise.
const DefaultCallTimeout = 250 * time.Millisecond

// Backend drives a simulated robot through a Caller. It presents the
// same SensorFrame/ActuatorCommand shapes as the physical backend, so
// sessions are transport-agnostic. Not safe for concurrent use.
type Backend struct {
	client  Caller
	timeout time.Duration
	seq     uint64
}

var _ nao.Backend = (*Backend)(nil)

// NewBackend wraps an open simulator client. timeout <= 0 selects
// DefaultCallTimeout.
func NewBackend(client Caller, timeout time.Duration) *Backend {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &Backend{client: client, timeout: timeout}
}

// ReadState asks the simulator for the current joint state. The frame
// is marked partial: the simulator reports joints and IMU, not the
// full sensor suite of a real robot.
func (b *Backend) ReadState() (nao.SensorFrame, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	var reply JointStateReply
	if err := b.client.Call(ctx, methodGetJointState, struct{}{}, &reply); err != nil {
		return nao.SensorFrame{}, classify(err)
	}

	b.seq++
	return nao.SensorFrame{
		Seq:       b.seq,
		Time:      time.Now(),
		Partial:   true,
		Position:  reply.Position,
		Stiffness: reply.Stiffness,
		Inertial: nao.Inertial{
			Accelerometer: nao.Vector3{X: reply.Accelerometer[0], Y: reply.Accelerometer[1], Z: reply.Accelerometer[2]},
			Gyroscope:     nao.Vector3{X: reply.Gyroscope[0], Y: reply.Gyroscope[1], Z: reply.Gyroscope[2]},
			Angles:        nao.Vector2{X: reply.Angles[0], Y: reply.Angles[1]},
		},
	}, nil
}

// SendCommand forwards joint targets (and an optional sound cue) to
// the simulator. LEDs have no simulator counterpart and are dropped.
func (b *Backend) SendCommand(cmd *nao.ActuatorCommand) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	req := SetTargetRequest{
		Position:  cmd.Position,
		Stiffness: cmd.Stiffness,
		Sound:     cmd.Sound,
	}
	var reply SetTargetReply
	if err := b.client.Call(ctx, methodSetJointTarget, &req, &reply); err != nil {
		return classify(err)
	}
	if !reply.OK {
		return fmt.Errorf("sim: simulator rejected joint targets")
	}
	return nil
}

// Close tears down the simulator session.
func (b *Backend) Close() error {
	return b.client.Close()
}

// classify maps client errors onto the backend error classes.
func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", nao.ErrTimeout, err)
	case errors.Is(err, ErrClientClosed):
		return fmt.Errorf("%w: %v", nao.ErrDisconnected, err)
	}
	return err
}
