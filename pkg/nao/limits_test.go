package nao

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLimits(t *testing.T) {
	limits := DefaultLimits()
	require.NotNil(t, limits)

	for _, j := range Joints() {
		lim := limits.For(j)
		assert.Less(t, lim.Min, lim.Max, "%s: min must be below max", j)
		assert.Greater(t, lim.MaxVelocity, float32(0), "%s: velocity bound must be positive", j)
	}

	// Spot checks against the V6 datasheet.
	head := limits.For(HeadYaw)
	assert.InDelta(t, -2.0857, head.Min, 1e-4)
	assert.InDelta(t, 2.0857, head.Max, 1e-4)

	hand := limits.For(LHand)
	assert.Equal(t, float32(0), hand.Min)
	assert.Equal(t, float32(1), hand.Max)
}

func TestDefaultLimitsShared(t *testing.T) {
	if DefaultLimits() != DefaultLimits() {
		t.Error("DefaultLimits must return the same table")
	}
}

func TestParseLimitsRejects(t *testing.T) {
	base := string(defaultLimitsYAML)

	cases := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{
			name:    "missing joint",
			mutate:  func(s string) string { return strings.Replace(s, "  RHand:", "  #RHand:", 1) },
			wantErr: "expected 25 joints",
		},
		{
			name:    "unknown joint",
			mutate:  func(s string) string { return s + "  Tail: {min: 0.0, max: 1.0, max_velocity: 1.0}\n" },
			wantErr: "unknown joint",
		},
		{
			name: "inverted range",
			mutate: func(s string) string {
				return strings.Replace(s, "HeadYaw:        {min: -2.0857, max: 2.0857", "HeadYaw:        {min: 2.0857, max: -2.0857", 1)
			},
			wantErr: "not below max",
		},
		{
			name: "zero velocity",
			mutate: func(s string) string {
				return strings.Replace(s, "LHand:          {min: 0.0, max: 1.0, max_velocity: 8.3}", "LHand:          {min: 0.0, max: 1.0, max_velocity: 0}", 1)
			},
			wantErr: "must be positive",
		},
		{
			name:    "not yaml",
			mutate:  func(string) string { return "joints: [" },
			wantErr: "parse limits",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mutated := tc.mutate(base)
			require.NotEqual(t, base, mutated, "mutation must change the input")
			_, err := ParseLimits([]byte(mutated))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
