package nao

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMalformedCommand is returned by Validate when a command contains
// a non-finite value. Malformed commands are dropped by the caller;
// they are never partially applied.
var ErrMalformedCommand = errors.New("nao: malformed command")

// Report records which joints Validate had to clamp. Clamping is a
// soft condition: the command is still sendable, the report only
// feeds observability.
type Report struct {
	RangeClamped     []Joint
	VelocityClamped  []Joint
	StiffnessClamped []Joint
}

// Clamped reports whether any joint was adjusted.
func (r Report) Clamped() bool {
	return len(r.RangeClamped)+len(r.VelocityClamped)+len(r.StiffnessClamped) > 0
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Validate checks a candidate command against the limit table and the
// previously accepted command, clamping rather than rejecting wherever
// possible. Per joint, in order: the target angle is clamped into the
// mechanical range, then pulled toward prev so the per-tick delta
// stays within MaxVelocity*dt, then the stiffness is clamped to [0,1].
// A single aggressive joint never stalls the rest of the body.
//
// The only fatal condition is a non-finite position or stiffness,
// which yields ErrMalformedCommand and an unspecified command value.
// prev may be nil for the first command, in which case no velocity
// bound applies.
func Validate(prev *ActuatorCommand, cand ActuatorCommand, limits *LimitTable, dt time.Duration) (ActuatorCommand, Report, error) {
	var rep Report

	for _, j := range Joints() {
		pos := cand.Position[j]
		stiff := cand.Stiffness[j]
		if isBad(pos) {
			return cand, rep, fmt.Errorf("%w: %s position %v", ErrMalformedCommand, j, pos)
		}
		if isBad(stiff) {
			return cand, rep, fmt.Errorf("%w: %s stiffness %v", ErrMalformedCommand, j, stiff)
		}

		lim := limits.For(j)

		if clamped := clamp32(pos, lim.Min, lim.Max); clamped != pos {
			pos = clamped
			rep.RangeClamped = append(rep.RangeClamped, j)
		}

		if prev != nil {
			maxDelta := lim.MaxVelocity * float32(dt.Seconds())
			if maxDelta < 0 {
				maxDelta = 0
			}
			from := prev.Position[j]
			if clamped := clamp32(pos, from-maxDelta, from+maxDelta); clamped != pos {
				pos = clamped
				rep.VelocityClamped = append(rep.VelocityClamped, j)
			}
		}

		if clamped := clamp32(stiff, 0, 1); clamped != stiff {
			stiff = clamped
			rep.StiffnessClamped = append(rep.StiffnessClamped, j)
		}

		cand.Position[j] = pos
		cand.Stiffness[j] = stiff
	}

	return cand, rep, nil
}

func isBad(v float32) bool {
	f := float64(v)
	return math.IsNaN(f) || math.IsInf(f, 0)
}
