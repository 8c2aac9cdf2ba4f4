// Package session owns the control loop that moves state between a
// caller and a robot backend: read one telemetry frame, validate and
// send one command, once per tick.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teslashibe/go-nao/internal/log"
	"github.com/teslashibe/go-nao/pkg/lola"
	"github.com/teslashibe/go-nao/pkg/nao"
)

// State is the session lifecycle. Transitions only move forward
// within one connection: Disconnected → Connected → Streaming →
// Closed; Connect starts a fresh connection from Disconnected or
// Closed. There is no auto-reconnect: resuming mid-motion without
// operator awareness is unsafe.
type State int

const (
	Disconnected State = iota
	Connected
	Streaming
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Streaming:
		return "streaming"
	case Closed:
		return "closed"
	}
	return "state(?)"
}

// ErrNotConnected is returned by Tick when the session has no open
// backend.
var ErrNotConnected = errors.New("session: not connected")

// DefaultPeriod is the LoLA control cycle.
const DefaultPeriod = 12 * time.Millisecond

// Dialer opens a backend. The session calls it on every Connect, so a
// closed session can be reconnected explicitly.
type Dialer func() (nao.Backend, error)

// Counters tally per-tick warnings. No error is dropped without being
// counted.
type Counters struct {
	// Codec counts frames and commands dropped by the wire codec.
	Codec uint64
	// Validation counts dropped malformed commands.
	Validation uint64
	// Timeout counts transport timeouts.
	Timeout uint64
	// Transport counts transport errors that were neither timeouts
	// nor disconnects.
	Transport uint64
	// Clamped counts commands the validator had to adjust.
	Clamped uint64
}

// Session drives exactly one backend. One goroutine owns the session
// and calls Connect/Tick/Close; SetNextCommand, LatestState and
// Counters may be called from anywhere.
type Session struct {
	dial   Dialer
	limits *nao.LimitTable
	period time.Duration
	logger *slog.Logger

	state    State
	backend  nao.Backend
	lastSent nao.ActuatorCommand
	hasSent  bool

	pendingMu sync.Mutex
	pending   *nao.ActuatorCommand

	snapMu    sync.Mutex
	lastFrame nao.SensorFrame
	hasFrame  bool
	counters  Counters
}

// Option customizes a Session.
type Option func(*Session)

// WithLimits overrides the embedded joint limit table.
func WithLimits(t *nao.LimitTable) Option {
	return func(s *Session) { s.limits = t }
}

// WithPeriod sets the control period used for the ticker and for the
// validator's velocity bound.
func WithPeriod(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.period = d
		}
	}
}

// New builds a session around a backend dialer. The session starts
// Disconnected.
func New(dial Dialer, opts ...Option) *Session {
	s := &Session{
		dial:   dial,
		limits: nao.DefaultLimits(),
		period: DefaultPeriod,
		logger: log.With("session", uuid.NewString()[:8]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state. Owner-goroutine only.
func (s *Session) State() State { return s.state }

// Connect opens the backend. Valid from Disconnected or Closed.
func (s *Session) Connect() error {
	switch s.state {
	case Connected, Streaming:
		return fmt.Errorf("session: already connected (%s)", s.state)
	}
	backend, err := s.dial()
	if err != nil {
		return fmt.Errorf("session: connect: %w", err)
	}
	s.backend = backend
	s.state = Connected
	s.hasSent = false
	s.logger.Info("session connected")
	return nil
}

// SetNextCommand stages the command the next Tick will send. The slot
// holds one command, last write wins: an old command is never applied
// after a newer one was requested.
func (s *Session) SetNextCommand(cmd nao.ActuatorCommand) {
	s.pendingMu.Lock()
	s.pending = &cmd
	s.pendingMu.Unlock()
}

// takePending consumes the staged command, if any.
func (s *Session) takePending() *nao.ActuatorCommand {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	cmd := s.pending
	s.pending = nil
	return cmd
}

// LatestState returns the most recent telemetry frame. While reads
// are failing the same frame keeps being reported with Stale set and
// a non-advancing timestamp; the session never fabricates data. The
// second return is false until the first frame arrives, so "no data
// yet" is distinguishable from a robot actually at the zero pose.
func (s *Session) LatestState() (nao.SensorFrame, bool) {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	return s.lastFrame, s.hasFrame
}

// Counters returns a snapshot of the warning counters.
func (s *Session) Counters() Counters {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	return s.counters
}

// Tick runs one control cycle: read telemetry, then validate and send
// the staged command (or re-send the last accepted one). Codec,
// validation and timeout problems are counted warnings and the loop
// continues; a disconnect closes the session and is returned.
func (s *Session) Tick() error {
	if s.state != Connected && s.state != Streaming {
		return ErrNotConnected
	}

	readOK, err := s.readOnce()
	if err != nil {
		return err
	}

	sendOK, err := s.sendOnce()
	if err != nil {
		return err
	}

	if s.state == Connected && readOK && sendOK {
		s.state = Streaming
		s.logger.Info("session streaming")
	}
	return nil
}

// readOnce pulls one frame. Returns false when the frame was dropped
// for a recoverable reason; an error means the session is closed.
func (s *Session) readOnce() (bool, error) {
	frame, err := s.backend.ReadState()
	if err == nil {
		s.snapMu.Lock()
		s.lastFrame = frame
		s.hasFrame = true
		s.snapMu.Unlock()
		return true, nil
	}

	if errors.Is(err, nao.ErrDisconnected) {
		return false, s.closeWith(err)
	}

	s.snapMu.Lock()
	s.countWarning(err)
	if s.hasFrame {
		s.lastFrame.Stale = true
	}
	s.snapMu.Unlock()
	s.logger.Warn("telemetry read failed, keeping last frame", "err", err)
	return false, nil
}

// countWarning tallies a recoverable error. Callers hold snapMu.
func (s *Session) countWarning(err error) {
	switch {
	case errors.Is(err, nao.ErrTimeout):
		s.counters.Timeout++
	case isCodecErr(err):
		s.counters.Codec++
	default:
		s.counters.Transport++
	}
}

// isCodecErr reports whether err describes one bad frame rather than
// a transport problem.
func isCodecErr(err error) bool {
	return errors.Is(err, lola.ErrTruncated) ||
		errors.Is(err, lola.ErrSchemaMismatch) ||
		errors.Is(err, lola.ErrCorrupt)
}

// sendOnce validates and writes one command.
func (s *Session) sendOnce() (bool, error) {
	cand := s.nextCommand()

	var prev *nao.ActuatorCommand
	if s.hasSent {
		prev = &s.lastSent
	}
	validated, report, err := nao.Validate(prev, cand, s.limits, s.period)
	if err != nil {
		// Malformed command: drop it, fall back to the previous
		// accepted command (or a neutral one) so the robot keeps
		// receiving frames.
		s.snapMu.Lock()
		s.counters.Validation++
		s.snapMu.Unlock()
		s.logger.Warn("command rejected", "err", err)
		if s.hasSent {
			validated = s.lastSent
		} else {
			validated = s.neutral()
		}
	} else if report.Clamped() {
		s.snapMu.Lock()
		s.counters.Clamped++
		s.snapMu.Unlock()
		s.logger.Debug("command clamped",
			"range", len(report.RangeClamped),
			"velocity", len(report.VelocityClamped),
			"stiffness", len(report.StiffnessClamped))
	}

	if err := s.backend.SendCommand(&validated); err != nil {
		if errors.Is(err, nao.ErrDisconnected) {
			return false, s.closeWith(err)
		}
		s.snapMu.Lock()
		s.countWarning(err)
		s.snapMu.Unlock()
		s.logger.Warn("command send failed", "err", err)
		return false, nil
	}

	s.lastSent = validated
	s.hasSent = true
	return true, nil
}

// nextCommand picks what to send this tick: the staged command if the
// caller set one, otherwise the last accepted command, otherwise a
// neutral stance.
func (s *Session) nextCommand() nao.ActuatorCommand {
	if cmd := s.takePending(); cmd != nil {
		return *cmd
	}
	if s.hasSent {
		return s.lastSent
	}
	return s.neutral()
}

func (s *Session) neutral() nao.ActuatorCommand {
	s.snapMu.Lock()
	defer s.snapMu.Unlock()
	if s.hasFrame {
		return nao.NeutralCommand(&s.lastFrame)
	}
	return nao.NeutralCommand(nil)
}

// closeWith tears the backend down after a fatal transport error and
// moves the session to Closed. The caller must observe the error and
// reconnect explicitly.
func (s *Session) closeWith(cause error) error {
	s.logger.Error("backend disconnected", "err", cause)
	if s.backend != nil {
		_ = s.backend.Close()
		s.backend = nil
	}
	s.state = Closed
	s.snapMu.Lock()
	if s.hasFrame {
		s.lastFrame.Stale = true
	}
	s.snapMu.Unlock()
	return fmt.Errorf("session: %w", cause)
}

// Close releases the backend. Always reachable, idempotent.
func (s *Session) Close() error {
	var err error
	if s.backend != nil {
		err = s.backend.Close()
		s.backend = nil
	}
	if s.state != Closed {
		s.state = Closed
		s.logger.Info("session closed")
	}
	return err
}

// Run ticks the session at its configured period until ctx is done or
// the backend disconnects. Shutdown happens between ticks; a frame is
// never cancelled midway.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := s.Tick(); err != nil {
				return err
			}
		}
	}
}
