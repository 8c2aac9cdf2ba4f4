package lola

import (
	"fmt"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-nao/pkg/nao"
)

// pipeBackend wires a backend to one end of an in-memory duplex pipe;
// the test drives the other end as the LoLA daemon.
func pipeBackend(t *testing.T) (*Backend, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	b := &Backend{
		conn:         client,
		readTimeout:  100 * time.Millisecond,
		writeTimeout: 100 * time.Millisecond,
		fr:           frameReader{r: client},
	}
	t.Cleanup(func() {
		b.Close()
		server.Close()
	})
	return b, server
}

func TestBackendReadState(t *testing.T) {
	b, server := pipeBackend(t)
	frame := stateFrame(t, stateFieldValues())

	go func() {
		server.Write(frame)
		server.Write(frame)
	}()

	first, err := b.ReadState()
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Seq)
	assert.False(t, first.Time.IsZero())
	assert.InDelta(t, 0.87, first.Battery.Charge, 1e-6)

	second, err := b.ReadState()
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Seq, "sequence must advance per frame")
}

func TestBackendReadStateTimeout(t *testing.T) {
	b, _ := pipeBackend(t)
	b.readTimeout = 30 * time.Millisecond

	_, err := b.ReadState()
	require.ErrorIs(t, err, nao.ErrTimeout)
}

func TestBackendReadStateDisconnected(t *testing.T) {
	b, server := pipeBackend(t)
	server.Close()

	_, err := b.ReadState()
	require.ErrorIs(t, err, nao.ErrDisconnected)
}

func TestBackendReadStateTruncated(t *testing.T) {
	b, server := pipeBackend(t)
	frame := stateFrame(t, stateFieldValues())

	go func() {
		// Header plus half the payload, then the daemon dies.
		server.Write(frame[:len(frame)/2])
		server.Close()
	}()

	_, err := b.ReadState()
	require.ErrorIs(t, err, ErrTruncated)
	assert.NotErrorIs(t, err, nao.ErrDisconnected,
		"a truncated frame is a codec problem, not a transport one")
}

// A daemon stalling mid-frame must not poison the stream: the timeout
// is retryable and the next read picks the frame up where it stopped
// instead of parsing payload bytes as a length header.
func TestBackendResumesFrameAfterTimeout(t *testing.T) {
	frame := stateFrame(t, stateFieldValues())
	next := stateFrame(t, stateFieldValues())

	// Split inside the header and inside the payload.
	for _, split := range []int{2, 10} {
		t.Run(fmt.Sprintf("split at %d", split), func(t *testing.T) {
			b, server := pipeBackend(t)
			b.readTimeout = 60 * time.Millisecond

			resume := make(chan struct{})
			go func() {
				server.Write(frame[:split])
				<-resume
				server.Write(frame[split:])
				server.Write(next)
			}()

			_, err := b.ReadState()
			require.ErrorIs(t, err, nao.ErrTimeout)
			assert.NotErrorIs(t, err, nao.ErrDisconnected)
			close(resume)

			got, err := b.ReadState()
			require.NoError(t, err)
			assert.EqualValues(t, 1, got.Seq)
			assert.InDelta(t, 0.87, got.Battery.Charge, 1e-6)

			got, err = b.ReadState()
			require.NoError(t, err)
			assert.EqualValues(t, 2, got.Seq, "stream must stay in sync after the resumed frame")
		})
	}
}

func TestBackendReadStateBadFrameDoesNotBumpSeq(t *testing.T) {
	b, server := pipeBackend(t)

	fields := stateFieldValues()
	delete(fields, "Touch")
	bad := stateFrame(t, fields)
	good := stateFrame(t, stateFieldValues())

	go func() {
		server.Write(bad)
		server.Write(good)
	}()

	_, err := b.ReadState()
	require.ErrorIs(t, err, ErrSchemaMismatch)

	frame, err := b.ReadState()
	require.NoError(t, err)
	assert.EqualValues(t, 1, frame.Seq)
}

func TestBackendSendCommand(t *testing.T) {
	b, server := pipeBackend(t)

	got := make(chan nao.ActuatorCommand, 1)
	fail := make(chan error, 1)
	go func() {
		payload, err := readFrame(server)
		if err != nil {
			fail <- err
			return
		}
		cmd, err := DecodeCommand(appendFrame(payload))
		if err != nil {
			fail <- err
			return
		}
		got <- cmd
	}()

	sent := sampleCommand()
	require.NoError(t, b.SendCommand(&sent))

	select {
	case cmd := <-got:
		assert.Equal(t, sent.Position, cmd.Position)
		assert.Equal(t, sent.Leds.Chest, cmd.Leds.Chest)
	case err := <-fail:
		t.Fatalf("daemon side: %v", err)
	case <-time.After(time.Second):
		t.Fatal("command never arrived")
	}
}

func TestBackendSendCommandShortWrite(t *testing.T) {
	b, server := pipeBackend(t)
	b.writeTimeout = 50 * time.Millisecond

	// The daemon consumes a few bytes and stalls, leaving the peer
	// mid-frame. There is no way to unwrite, so this fails closed.
	go func() {
		buf := make([]byte, 3)
		io.ReadFull(server, buf)
	}()

	cmd := sampleCommand()
	err := b.SendCommand(&cmd)
	require.ErrorIs(t, err, nao.ErrDisconnected)
}

func TestBackendSendCommandTimeout(t *testing.T) {
	b, _ := pipeBackend(t)
	b.writeTimeout = 30 * time.Millisecond

	// Nothing was consumed, so nothing went out: plain retryable
	// timeout.
	cmd := nao.ActuatorCommand{}
	err := b.SendCommand(&cmd)
	require.ErrorIs(t, err, nao.ErrTimeout)
}

func TestBackendSendCommandDisconnected(t *testing.T) {
	b, server := pipeBackend(t)
	server.Close()

	cmd := nao.ActuatorCommand{}
	err := b.SendCommand(&cmd)
	require.ErrorIs(t, err, nao.ErrDisconnected)
}

func TestBackendReadHardwareInfo(t *testing.T) {
	b, server := pipeBackend(t)

	frame := stateFrame(t, stateFieldValues())
	go func() {
		server.Write(frame)
	}()

	hw, err := b.ReadHardwareInfo()
	require.NoError(t, err)
	assert.Equal(t, "P0000123", hw.BodyID)
	assert.Equal(t, "P0000456", hw.HeadID)
}

func TestBackendCloseIdempotent(t *testing.T) {
	b, _ := pipeBackend(t)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}

func TestConnectWithRetryGivesUp(t *testing.T) {
	_, err := ConnectWithRetry(Config{
		Network: "tcp",
		Addr:    "127.0.0.1:1", // nothing listens on port 1
	}, 2, time.Millisecond)
	require.Error(t, err)
}
