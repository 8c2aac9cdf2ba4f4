package lola

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/teslashibe/go-nao/pkg/nao"
)

// controlPayload is the LoLA actuator message. Field names and array
// shapes are the firmware's schema; every field is emitted on every
// send so the robot never has to infer undefined joints.
type controlPayload struct {
	Position  [nao.NumJoints]float32 `msgpack:"Position"`
	Stiffness [nao.NumJoints]float32 `msgpack:"Stiffness"`
	REar      [10]float32            `msgpack:"REar"`
	LEar      [10]float32            `msgpack:"LEar"`
	Chest     [3]float32             `msgpack:"Chest"`
	LEye      [24]float32            `msgpack:"LEye"`
	REye      [24]float32            `msgpack:"REye"`
	LFoot     [3]float32             `msgpack:"LFoot"`
	RFoot     [3]float32             `msgpack:"RFoot"`
	Skull     [12]float32            `msgpack:"Skull"`
	Sonar     [2]bool                `msgpack:"Sonar"`
}

// stateFields are the required keys of a LoLA state message, with the
// exact array length each must carry. Field identity is by name; the
// firmware may add fields, which decode ignores, but a missing or
// mis-shaped required field fails closed.
var stateFields = map[string]int{
	"Position":      nao.NumJoints,
	"Stiffness":     nao.NumJoints,
	"Temperature":   nao.NumJoints,
	"Current":       nao.NumJoints,
	"Status":        nao.NumJoints,
	"Battery":       4,
	"Accelerometer": 3,
	"Gyroscope":     3,
	"Angles":        2,
	"Sonar":         2,
	"FSR":           8,
	"Touch":         14,
	"RobotConfig":   4,
}

// EncodeCommand serializes a complete actuator command into one
// framed LoLA message. The optional sound cue is not part of the LoLA
// schema and is skipped.
func EncodeCommand(cmd *nao.ActuatorCommand) ([]byte, error) {
	p := controlPayload{
		Position:  cmd.Position,
		Stiffness: cmd.Stiffness,
		LEar:      [10]float32(cmd.Leds.LeftEar),
		REar:      earToWire(cmd.Leds.RightEar),
		Chest:     rgbToWire(cmd.Leds.Chest),
		LEye:      eyeToWire(cmd.Leds.LeftEye, leftEyeOrder),
		REye:      eyeToWire(cmd.Leds.RightEye, rightEyeOrder),
		LFoot:     rgbToWire(cmd.Leds.LeftFoot),
		RFoot:     rgbToWire(cmd.Leds.RightFoot),
		Skull:     [12]float32(cmd.Leds.Skull),
		Sonar:     [2]bool{cmd.Sonar.Left, cmd.Sonar.Right},
	}
	payload, err := msgpack.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("lola: encode command: %w", err)
	}
	return appendFrame(payload), nil
}

// DecodeState parses one framed LoLA state message into a sensor
// frame. Seq and Time are left for the backend to assign.
func DecodeState(frame []byte) (nao.SensorFrame, error) {
	payload, err := splitFrame(frame)
	if err != nil {
		return nao.SensorFrame{}, err
	}
	return decodeStatePayload(payload)
}

// DecodeCommand parses a framed control message back into an actuator
// command. The inverse of EncodeCommand; used by the loopback tooling
// and the codec round-trip tests.
func DecodeCommand(frame []byte) (nao.ActuatorCommand, error) {
	payload, err := splitFrame(frame)
	if err != nil {
		return nao.ActuatorCommand{}, err
	}
	var p controlPayload
	if err := msgpack.Unmarshal(payload, &p); err != nil {
		return nao.ActuatorCommand{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nao.ActuatorCommand{
		Position:  p.Position,
		Stiffness: p.Stiffness,
		Leds: nao.LedState{
			LeftEar:   nao.EarLeds(p.LEar),
			RightEar:  earFromWire(p.REar),
			LeftEye:   eyeFromWire(p.LEye, leftEyeOrder),
			RightEye:  eyeFromWire(p.REye, rightEyeOrder),
			Chest:     rgbFromWire(p.Chest),
			LeftFoot:  rgbFromWire(p.LFoot),
			RightFoot: rgbFromWire(p.RFoot),
			Skull:     nao.SkullLeds(p.Skull),
		},
		Sonar: nao.SonarEnabled{Left: p.Sonar[0], Right: p.Sonar[1]},
	}, nil
}

// DecodeHardwareInfo extracts the hardware identifiers from a framed
// state message.
func DecodeHardwareInfo(frame []byte) (nao.HardwareInfo, error) {
	payload, err := splitFrame(frame)
	if err != nil {
		return nao.HardwareInfo{}, err
	}
	return decodeHardwareInfoPayload(payload)
}

func decodeHardwareInfoPayload(payload []byte) (nao.HardwareInfo, error) {
	fields, err := stateFieldMap(payload)
	if err != nil {
		return nao.HardwareInfo{}, err
	}
	var cfg []string
	if err := msgpack.Unmarshal(fields["RobotConfig"], &cfg); err != nil || len(cfg) != 4 {
		return nao.HardwareInfo{}, fmt.Errorf("%w: RobotConfig", ErrSchemaMismatch)
	}
	return nao.HardwareInfo{
		BodyID:      cfg[0],
		BodyVersion: cfg[1],
		HeadID:      cfg[2],
		HeadVersion: cfg[3],
	}, nil
}

// stateFieldMap decodes the top-level map and verifies every required
// field is present. Unknown fields are kept out of the way but
// tolerated for forward compatibility.
func stateFieldMap(payload []byte) (map[string]msgpack.RawMessage, error) {
	var fields map[string]msgpack.RawMessage
	if err := msgpack.Unmarshal(payload, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for name := range stateFields {
		if _, ok := fields[name]; !ok {
			return nil, fmt.Errorf("%w: missing required field %s", ErrSchemaMismatch, name)
		}
	}
	return fields, nil
}

func decodeStatePayload(payload []byte) (nao.SensorFrame, error) {
	fields, err := stateFieldMap(payload)
	if err != nil {
		return nao.SensorFrame{}, err
	}

	floats := make(map[string][]float32, len(stateFields))
	for name, want := range stateFields {
		if name == "Status" || name == "RobotConfig" {
			continue
		}
		var vals []float32
		if err := msgpack.Unmarshal(fields[name], &vals); err != nil {
			return nao.SensorFrame{}, fmt.Errorf("%w: field %s: %v", ErrSchemaMismatch, name, err)
		}
		if len(vals) != want {
			return nao.SensorFrame{}, fmt.Errorf("%w: field %s has %d values, want %d", ErrSchemaMismatch, name, len(vals), want)
		}
		floats[name] = vals
	}

	var status []int32
	if err := msgpack.Unmarshal(fields["Status"], &status); err != nil {
		return nao.SensorFrame{}, fmt.Errorf("%w: field Status: %v", ErrSchemaMismatch, err)
	}
	if len(status) != nao.NumJoints {
		return nao.SensorFrame{}, fmt.Errorf("%w: field Status has %d values, want %d", ErrSchemaMismatch, len(status), nao.NumJoints)
	}

	var frame nao.SensorFrame
	copy(frame.Position[:], floats["Position"])
	copy(frame.Stiffness[:], floats["Stiffness"])
	copy(frame.Temperature[:], floats["Temperature"])
	copy(frame.Current[:], floats["Current"])
	copy(frame.Status[:], status)

	b := floats["Battery"]
	frame.Battery = nao.Battery{Charge: b[0], Current: b[1], Status: b[2], Temperature: b[3]}

	acc, gyro, ang := floats["Accelerometer"], floats["Gyroscope"], floats["Angles"]
	frame.Inertial = nao.Inertial{
		Accelerometer: nao.Vector3{X: acc[0], Y: acc[1], Z: acc[2]},
		Gyroscope:     nao.Vector3{X: gyro[0], Y: gyro[1], Z: gyro[2]},
		Angles:        nao.Vector2{X: ang[0], Y: ang[1]},
	}

	sonar := floats["Sonar"]
	frame.Sonar = nao.SonarValues{Left: sonar[0], Right: sonar[1]}

	fsr := floats["FSR"]
	frame.FSR = nao.ForceSensitiveResistors{
		LeftFoot:  nao.FSRFoot{FrontLeft: fsr[0], FrontRight: fsr[1], RearLeft: fsr[2], RearRight: fsr[3]},
		RightFoot: nao.FSRFoot{FrontLeft: fsr[4], FrontRight: fsr[5], RearLeft: fsr[6], RearRight: fsr[7]},
	}

	t := floats["Touch"]
	frame.Touch = nao.Touch{
		ChestBoard:     t[0],
		HeadFront:      t[1],
		HeadMiddle:     t[2],
		HeadRear:       t[3],
		LeftFootLeft:   t[4],
		LeftFootRight:  t[5],
		LeftHandBack:   t[6],
		LeftHandLeft:   t[7],
		LeftHandRight:  t[8],
		RightFootLeft:  t[9],
		RightFootRight: t[10],
		RightHandBack:  t[11],
		RightHandLeft:  t[12],
		RightHandRight: t[13],
	}

	return frame, nil
}

// LED wire layouts. The firmware addresses eye LEDs channel-major
// with a rotated segment order; ears run the other way around on the
// right side. Indices below map wire slot -> model segment.
var (
	leftEyeOrder  = [8]int{7, 0, 1, 2, 3, 4, 5, 6}
	rightEyeOrder = [8]int{0, 7, 6, 5, 4, 3, 2, 1}
)

func eyeToWire(eye nao.EyeLeds, order [8]int) [24]float32 {
	var w [24]float32
	for slot, seg := range order {
		w[slot] = eye[seg].R
		w[8+slot] = eye[seg].G
		w[16+slot] = eye[seg].B
	}
	return w
}

func eyeFromWire(w [24]float32, order [8]int) nao.EyeLeds {
	var eye nao.EyeLeds
	for slot, seg := range order {
		eye[seg] = nao.RGB{R: w[slot], G: w[8+slot], B: w[16+slot]}
	}
	return eye
}

func earToWire(ear nao.EarLeds) [10]float32 {
	var w [10]float32
	for i := range w {
		w[i] = ear[len(ear)-1-i]
	}
	return w
}

func earFromWire(w [10]float32) nao.EarLeds {
	var ear nao.EarLeds
	for i := range ear {
		ear[i] = w[len(w)-1-i]
	}
	return ear
}

func rgbToWire(c nao.RGB) [3]float32 { return [3]float32{c.R, c.G, c.B} }

func rgbFromWire(w [3]float32) nao.RGB { return nao.RGB{R: w[0], G: w[1], B: w[2]} }
