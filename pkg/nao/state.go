package nao

import "time"

// SensorFrame is one snapshot of the robot's proprioceptive state as
// read from a backend. Frames are immutable once produced; a backend
// replaces the whole frame on every read.
type SensorFrame struct {
	// Seq increases by one for every frame the backend produces.
	// It never decreases within one backend instance.
	Seq uint64
	// Time is when the backend finished reading the frame.
	Time time.Time
	// Stale marks a frame that is being re-reported because no newer
	// telemetry is available. A backend never sets it; the session
	// does when reads fail.
	Stale bool
	// Partial marks a frame whose transport does not carry the full
	// sensor suite (the simulator reports joints and IMU only).
	// Missing fields are zero because they were never measured, not
	// because they read zero.
	Partial bool

	Position    JointArray[float32]
	Stiffness   JointArray[float32]
	Temperature JointArray[float32]
	Current     JointArray[float32]
	Status      JointArray[int32]

	Battery  Battery
	Inertial Inertial
	Sonar    SonarValues
	FSR      ForceSensitiveResistors
	Touch    Touch
}

// SoundCue is a simple audio request. The physical LoLA schema has no
// audio field, so only the simulated backend carries it; the wire
// codec skips it.
type SoundCue struct {
	// Frequency in Hz.
	Frequency float32
	// Duration of the tone.
	Duration time.Duration
	// Volume in [0, 1].
	Volume float32
}

// ActuatorCommand is one complete actuation request: target angles,
// stiffnesses, LEDs and sonar enablement for every device. Commands
// are always full; a backend never sends a partial command so the
// firmware never has to infer undefined joints.
type ActuatorCommand struct {
	Position  JointArray[float32]
	Stiffness JointArray[float32]
	Leds      LedState
	Sonar     SonarEnabled
	Sound     *SoundCue
}

// NeutralCommand returns a safe default command: stiffness zero
// everywhere, LEDs off, positions copied from the given frame so the
// robot holds still. A nil frame yields all-zero positions.
func NeutralCommand(frame *SensorFrame) ActuatorCommand {
	var cmd ActuatorCommand
	if frame != nil {
		cmd.Position = frame.Position
	}
	return cmd
}
