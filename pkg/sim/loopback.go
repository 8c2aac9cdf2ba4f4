package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/teslashibe/go-nao/pkg/nao"
)

// Loopback is an in-process Caller that behaves like a tiny
// simulator: joints move toward their targets at a bounded rate on
// every getJointState call. It backs tests and the idle demo without
// an external simulator process.
//
// CallFunc, when set, intercepts every call; useful for injecting
// latency or failures in tests.
type Loopback struct {
	// CallFunc overrides Call entirely when non-nil.
	CallFunc func(ctx context.Context, method string, args, reply any) error

	// StepRate caps joint movement per getJointState call, in
	// radians. Defaults to 0.1.
	StepRate float32

	mu        sync.Mutex
	closed    bool
	position  nao.JointArray[float32]
	target    nao.JointArray[float32]
	stiffness nao.JointArray[float32]
	sounds    []nao.SoundCue
}

var _ Caller = (*Loopback)(nil)

// NewLoopback returns a loopback simulator with all joints at zero.
func NewLoopback() *Loopback {
	return &Loopback{StepRate: 0.1}
}

// Call dispatches a remote-procedure request against the in-memory
// robot.
func (l *Loopback) Call(ctx context.Context, method string, args, reply any) error {
	if l.CallFunc != nil {
		return l.CallFunc(ctx, method, args, reply)
	}
	return l.dispatch(ctx, method, args, reply)
}

func (l *Loopback) dispatch(ctx context.Context, method string, args, reply any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClientClosed
	}

	switch method {
	case methodGetJointState:
		out, ok := reply.(*JointStateReply)
		if !ok {
			return fmt.Errorf("sim: getJointState reply must be *JointStateReply, got %T", reply)
		}
		l.step()
		out.Position = l.position
		out.Stiffness = l.stiffness
		return nil

	case methodSetJointTarget:
		req, ok := args.(*SetTargetRequest)
		if !ok {
			return fmt.Errorf("sim: setJointTarget args must be *SetTargetRequest, got %T", args)
		}
		out, ok := reply.(*SetTargetReply)
		if !ok {
			return fmt.Errorf("sim: setJointTarget reply must be *SetTargetReply, got %T", reply)
		}
		l.target = req.Position
		l.stiffness = req.Stiffness
		if req.Sound != nil {
			l.sounds = append(l.sounds, *req.Sound)
		}
		out.OK = true
		return nil
	}
	return fmt.Errorf("sim: unknown method %q", method)
}

// step moves every joint toward its target by at most StepRate.
func (l *Loopback) step() {
	rate := l.StepRate
	if rate <= 0 {
		rate = 0.1
	}
	for i := range l.position {
		delta := l.target[i] - l.position[i]
		if delta > rate {
			delta = rate
		} else if delta < -rate {
			delta = -rate
		}
		l.position[i] += delta
	}
}

// SetPosition teleports the robot, bypassing the rate cap.
func (l *Loopback) SetPosition(p nao.JointArray[float32]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = p
	l.target = p
}

// Position returns the current joint positions.
func (l *Loopback) Position() nao.JointArray[float32] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

// Sounds returns every sound cue received so far.
func (l *Loopback) Sounds() []nao.SoundCue {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]nao.SoundCue, len(l.sounds))
	copy(out, l.sounds)
	return out
}

// Close marks the client closed; further calls fail with
// ErrClientClosed.
func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// WithLatency wraps a loopback so every call sleeps for delay first,
// honoring the caller's deadline.
func WithLatency(l *Loopback, delay time.Duration) *Loopback {
	l.CallFunc = func(ctx context.Context, method string, args, reply any) error {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		return l.dispatch(ctx, method, args, reply)
	}
	return l
}
