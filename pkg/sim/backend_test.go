package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-nao/pkg/nao"
)

func TestBackendReadState(t *testing.T) {
	l := NewLoopback()
	l.SetPosition(nao.FillJoints(float32(0.4)))
	b := NewBackend(l, 0)

	first, err := b.ReadState()
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.Seq)
	assert.True(t, first.Partial, "simulator frames carry a partial sensor suite")
	assert.InDelta(t, 0.4, first.Position.Get(nao.HeadYaw), 1e-6)

	second, err := b.ReadState()
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Seq)
}

func TestBackendTargetsConverge(t *testing.T) {
	l := NewLoopback()
	l.StepRate = 0.25
	b := NewBackend(l, 0)

	cmd := nao.ActuatorCommand{Position: nao.FillJoints(float32(1.0))}
	require.NoError(t, b.SendCommand(&cmd))

	// Four steps at 0.25 rad reach 1.0; earlier reads stay short of it.
	var frame nao.SensorFrame
	var err error
	for i := 0; i < 4; i++ {
		frame, err = b.ReadState()
		require.NoError(t, err)
	}
	assert.InDelta(t, 1.0, frame.Position.Get(nao.LKneePitch), 1e-6)

	frame, err = b.ReadState()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, frame.Position.Get(nao.LKneePitch), 1e-6, "holds once reached")
}

func TestBackendStepIsRateBounded(t *testing.T) {
	l := NewLoopback()
	l.StepRate = 0.1
	b := NewBackend(l, 0)

	cmd := nao.ActuatorCommand{Position: nao.FillJoints(float32(5.0))}
	require.NoError(t, b.SendCommand(&cmd))

	frame, err := b.ReadState()
	require.NoError(t, err)
	assert.InDelta(t, 0.1, frame.Position.Get(nao.RElbowYaw), 1e-6)
}

func TestBackendSoundForwarding(t *testing.T) {
	l := NewLoopback()
	b := NewBackend(l, 0)

	cue := nao.SoundCue{Frequency: 440, Duration: 200 * time.Millisecond, Volume: 0.5}
	cmd := nao.ActuatorCommand{Sound: &cue}
	require.NoError(t, b.SendCommand(&cmd))

	silent := nao.ActuatorCommand{}
	require.NoError(t, b.SendCommand(&silent))

	sounds := l.Sounds()
	require.Len(t, sounds, 1)
	assert.Equal(t, cue, sounds[0])
}

func TestBackendCallTimeout(t *testing.T) {
	l := WithLatency(NewLoopback(), 200*time.Millisecond)
	b := NewBackend(l, 20*time.Millisecond)

	_, err := b.ReadState()
	require.ErrorIs(t, err, nao.ErrTimeout)

	cmd := nao.ActuatorCommand{}
	require.ErrorIs(t, b.SendCommand(&cmd), nao.ErrTimeout)
}

func TestBackendClosedClient(t *testing.T) {
	l := NewLoopback()
	b := NewBackend(l, 0)
	require.NoError(t, b.Close())

	_, err := b.ReadState()
	require.ErrorIs(t, err, nao.ErrDisconnected)

	cmd := nao.ActuatorCommand{}
	require.ErrorIs(t, b.SendCommand(&cmd), nao.ErrDisconnected)
}

func TestBackendRejectedTarget(t *testing.T) {
	l := NewLoopback()
	l.CallFunc = func(ctx context.Context, method string, args, reply any) error {
		if method == methodSetJointTarget {
			reply.(*SetTargetReply).OK = false
			return nil
		}
		return l.dispatch(ctx, method, args, reply)
	}
	b := NewBackend(l, 0)

	cmd := nao.ActuatorCommand{}
	err := b.SendCommand(&cmd)
	require.Error(t, err)
	assert.NotErrorIs(t, err, nao.ErrTimeout)
	assert.NotErrorIs(t, err, nao.ErrDisconnected)
}

func TestBackendPassesThroughUnknownErrors(t *testing.T) {
	boom := errors.New("simulator crashed")
	l := NewLoopback()
	l.CallFunc = func(context.Context, string, any, any) error { return boom }
	b := NewBackend(l, 0)

	_, err := b.ReadState()
	require.ErrorIs(t, err, boom)
}
