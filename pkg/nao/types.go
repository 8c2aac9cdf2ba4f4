package nao

// Vector2 is a two-axis measurement (x, y).
type Vector2 struct {
	X float32
	Y float32
}

// Vector3 is a three-axis measurement (x, y, z).
type Vector3 struct {
	X float32
	Y float32
	Z float32
}

// Battery reports the charge state of the robot's battery pack.
type Battery struct {
	// Charge is the remaining capacity in [0, 1].
	Charge float32
	// Current drawn from (negative) or into (positive) the pack, in A.
	Current float32
	// Status is the raw status word reported by the firmware.
	Status float32
	// Temperature of the pack in °C.
	Temperature float32
}

// Inertial groups the IMU readings from the robot's torso board.
type Inertial struct {
	// Accelerometer is the proper acceleration in m/s², z up.
	Accelerometer Vector3
	// Gyroscope is the rotational speed in rad/s, z up.
	Gyroscope Vector3
	// Angles are the body inclination angles (x, y) in radians,
	// fused by the inertial board from the two sensors above.
	Angles Vector2
}

// SonarValues holds the distances measured by the torso sonars, in
// meters. 0 means error, the max range means no echo.
type SonarValues struct {
	Left  float32
	Right float32
}

// SonarEnabled selects which sonar emitters are active. Both default
// to off.
type SonarEnabled struct {
	Left  bool
	Right bool
}

// FSRFoot holds the four force-sensitive resistor readings of one
// foot, as approximate weight in kilograms.
type FSRFoot struct {
	FrontLeft  float32
	FrontRight float32
	RearLeft   float32
	RearRight  float32
}

// Sum returns the total weight on the foot.
func (f FSRFoot) Sum() float32 {
	return f.FrontLeft + f.FrontRight + f.RearLeft + f.RearRight
}

// Avg returns the average sensor reading for the foot.
func (f FSRFoot) Avg() float32 { return f.Sum() / 4 }

// ForceSensitiveResistors holds the FSR readings for both feet.
type ForceSensitiveResistors struct {
	LeftFoot  FSRFoot
	RightFoot FSRFoot
}

// Sum returns the total weight on both feet.
func (f ForceSensitiveResistors) Sum() float32 {
	return f.LeftFoot.Sum() + f.RightFoot.Sum()
}

// Avg returns the average weight across both feet.
func (f ForceSensitiveResistors) Avg() float32 {
	return (f.LeftFoot.Avg() + f.RightFoot.Avg()) / 2
}

// Touch holds the capacitive touch sensor activations, one value per
// sensor in [0, 1].
type Touch struct {
	ChestBoard float32

	HeadFront  float32
	HeadMiddle float32
	HeadRear   float32

	LeftFootLeft   float32
	LeftFootRight  float32
	LeftHandBack   float32
	LeftHandLeft   float32
	LeftHandRight  float32
	RightFootLeft  float32
	RightFootRight float32
	RightHandBack  float32
	RightHandLeft  float32
	RightHandRight float32
}

// HardwareInfo carries the hardware identifiers the robot reports in
// its RobotConfig field.
type HardwareInfo struct {
	BodyID      string
	BodyVersion string
	HeadID      string
	HeadVersion string
}
