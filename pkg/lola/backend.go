package lola

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"syscall"
	"time"

	"github.com/teslashibe/go-nao/internal/log"
	"github.com/teslashibe/go-nao/pkg/nao"
)

// DefaultSocketPath is where the LoLA daemon listens on the robot.
const DefaultSocketPath = "/tmp/robocup"

// Default per-call deadlines. The control cycle is 12ms; a transport
// that cannot answer within these is stalled, not slow.
const (
	DefaultReadTimeout  = 250 * time.Millisecond
	DefaultWriteTimeout = 250 * time.Millisecond
)

// Config selects the socket and deadlines for a physical backend.
type Config struct {
	// Network is "unix" (on the robot) or "tcp" (forwarded socket).
	Network string
	// Addr is the socket path or host:port.
	Addr string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func (c *Config) fill() {
	if c.Network == "" {
		c.Network = "unix"
	}
	if c.Addr == "" {
		c.Addr = DefaultSocketPath
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
}

// Backend drives a real NAO over the LoLA socket. One framed message
// is read or written per call; short reads and writes are looped over
// until the frame boundary. Not safe for concurrent use: the socket
// is a single duplex stream.
type Backend struct {
	conn         net.Conn
	readTimeout  time.Duration
	writeTimeout time.Duration

	// fr holds the partial frame across reads so a deadline firing
	// mid-frame never desynchronizes the stream.
	fr frameReader

	seq uint64

	mu     sync.Mutex
	closed bool
}

var _ nao.Backend = (*Backend)(nil)

// Connect opens the LoLA socket described by cfg.
func Connect(cfg Config) (*Backend, error) {
	cfg.fill()
	conn, err := net.Dial(cfg.Network, cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("lola: connect %s %s: %w", cfg.Network, cfg.Addr, err)
	}
	return &Backend{
		conn:         conn,
		readTimeout:  cfg.ReadTimeout,
		writeTimeout: cfg.WriteTimeout,
		fr:           frameReader{r: conn},
	}, nil
}

// ConnectWithRetry attempts Connect up to attempts times, sleeping
// interval between failures. The LoLA daemon comes up after the OS on
// a cold boot, so the first attempts routinely fail.
func ConnectWithRetry(cfg Config, attempts int, interval time.Duration) (*Backend, error) {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		log.Debug("connecting to LoLA socket", "attempt", i, "of", attempts, "addr", cfg.Addr)
		var b *Backend
		if b, err = Connect(cfg); err == nil {
			return b, nil
		}
		if i < attempts {
			time.Sleep(interval)
		}
	}
	return nil, err
}

// ReadState reads one framed state message and returns it as a
// sensor frame with a fresh sequence number. A timeout mid-frame is
// retryable: the bytes already consumed stay buffered and the next
// call resumes the same frame.
func (b *Backend) ReadState() (nao.SensorFrame, error) {
	if err := b.conn.SetReadDeadline(time.Now().Add(b.readTimeout)); err != nil {
		return nao.SensorFrame{}, classify(err)
	}
	payload, err := b.fr.read()
	if err != nil {
		return nao.SensorFrame{}, classify(err)
	}
	frame, err := decodeStatePayload(payload)
	if err != nil {
		return nao.SensorFrame{}, err
	}
	b.seq++
	frame.Seq = b.seq
	frame.Time = time.Now()
	return frame, nil
}

// SendCommand encodes and writes one framed control message.
// Fire-and-forget: the robot acknowledges only through the next
// telemetry frame. A write that fails after part of the frame went out
// has left the peer mid-frame with no way to unwrite; that is a
// disconnect, not a retryable timeout.
func (b *Backend) SendCommand(cmd *nao.ActuatorCommand) error {
	frame, err := EncodeCommand(cmd)
	if err != nil {
		return err
	}
	if err := b.conn.SetWriteDeadline(time.Now().Add(b.writeTimeout)); err != nil {
		return classify(err)
	}
	if n, err := b.conn.Write(frame); err != nil {
		if n > 0 && n < len(frame) {
			return fmt.Errorf("%w: short write, %d of %d bytes: %v", nao.ErrDisconnected, n, len(frame), err)
		}
		return classify(err)
	}
	return nil
}

// ReadHardwareInfo reads one state frame and returns the hardware
// identifiers it carries. The frame's telemetry is discarded.
func (b *Backend) ReadHardwareInfo() (nao.HardwareInfo, error) {
	if err := b.conn.SetReadDeadline(time.Now().Add(b.readTimeout)); err != nil {
		return nao.HardwareInfo{}, classify(err)
	}
	payload, err := b.fr.read()
	if err != nil {
		return nao.HardwareInfo{}, classify(err)
	}
	return decodeHardwareInfoPayload(payload)
}

// Close shuts the socket down. Safe to call more than once.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	return b.conn.Close()
}

// classify maps transport errors onto the backend error classes.
// Codec errors pass through untouched: they describe one bad frame,
// not a broken connection.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", nao.ErrTimeout, err)
	}
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrClosedPipe),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return fmt.Errorf("%w: %v", nao.ErrDisconnected, err)
	}
	return err
}
