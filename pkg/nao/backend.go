package nao

import "errors"

// Transport error classes. Backends wrap these so callers can
// classify failures with errors.Is without knowing the transport.
var (
	// ErrDisconnected means the transport is gone. Fatal: the owner
	// must tear the backend down and reconnect explicitly.
	ErrDisconnected = errors.New("nao: backend disconnected")

	// ErrTimeout means one read or write exceeded the transport's
	// configured deadline. Retryable on the next tick.
	ErrTimeout = errors.New("nao: backend timeout")
)

// Backend is the capability contract both robot transports implement:
// a real NAO over the LoLA socket and a simulated robot over a
// remote-procedure client. Both present identical SensorFrame and
// ActuatorCommand shapes, so callers are backend-agnostic.
//
// A Backend is not safe for concurrent use. Exactly one owner (the
// session loop) may call ReadState and SendCommand, sequentially; the
// physical transport is a single duplex stream and interleaved calls
// would corrupt frame boundaries.
type Backend interface {
	// ReadState blocks for at most the transport's read timeout and
	// returns the next telemetry frame.
	ReadState() (SensorFrame, error)

	// SendCommand writes one complete command. Fire-and-forget: it
	// does not wait for a telemetry acknowledgment.
	SendCommand(cmd *ActuatorCommand) error

	// Close releases the underlying connection. Safe to call more
	// than once.
	Close() error
}
