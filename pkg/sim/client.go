// Package sim implements the simulated robot backend. It speaks to a
// simulator through an opaque remote-procedure client; the concrete
// client (CoppeliaSim's ZMQ remote API, a bridge process, the
// in-package loopback) is an external collaborator behind the Caller
// interface.
package sim

import (
	"context"
	"errors"

	"github.com/teslashibe/go-nao/pkg/nao"
)

// ErrClientClosed is returned by a Caller whose session has been torn
// down. The backend maps it to nao.ErrDisconnected.
var ErrClientClosed = errors.New("sim: client closed")

// Remote-procedure methods the simulator exposes. The names belong to
// the simulator's contract, not to this package.
const (
	methodGetJointState  = "getJointState"
	methodSetJointTarget = "setJointTarget"
)

// Caller is the request/response contract a simulator client must
// satisfy. Call marshals args, invokes method, and unmarshals the
// response into reply. Implementations decide transport, latency and
// partial-failure semantics; deadline handling must honor ctx.
type Caller interface {
	Call(ctx context.Context, method string, args, reply any) error
	Close() error
}

// JointStateReply is the simulator's answer to getJointState.
type JointStateReply struct {
	Position  [nao.NumJoints]float32
	Stiffness [nao.NumJoints]float32

	Accelerometer [3]float32
	Gyroscope     [3]float32
	Angles        [2]float32
}

// SetTargetRequest asks the simulator to drive joints toward targets.
type SetTargetRequest struct {
	Position  [nao.NumJoints]float32
	Stiffness [nao.NumJoints]float32

	// Sound forwards an optional cue; simulators without audio
	// ignore it.
	Sound *nao.SoundCue
}

// SetTargetReply acknowledges a SetTargetRequest.
type SetTargetReply struct {
	OK bool
}
