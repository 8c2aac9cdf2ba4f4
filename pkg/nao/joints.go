// Package nao defines the typed state model for a NAO V6 humanoid:
// joint arrays, sensor frames, actuator commands, mechanical limits,
// and the backend contract that physical and simulated transports
// implement.
package nao

// Joint identifies one of the robot's 25 articulations. The numeric
// order matches the LoLA wire order, so a JointArray can be copied to
// and from a protocol array without reshuffling.
type Joint uint8

const (
	HeadYaw Joint = iota
	HeadPitch

	LShoulderPitch
	LShoulderRoll
	LElbowYaw
	LElbowRoll
	LWristYaw

	LHipYawPitch
	LHipRoll
	LHipPitch
	LKneePitch
	LAnklePitch
	LAnkleRoll

	RHipRoll
	RHipPitch
	RKneePitch
	RAnklePitch
	RAnkleRoll

	RShoulderPitch
	RShoulderRoll
	RElbowYaw
	RElbowRoll
	RWristYaw

	LHand
	RHand

	// NumJoints is the size of every JointArray.
	NumJoints = 25
)

var jointNames = [NumJoints]string{
	"HeadYaw", "HeadPitch",
	"LShoulderPitch", "LShoulderRoll", "LElbowYaw", "LElbowRoll", "LWristYaw",
	"LHipYawPitch", "LHipRoll", "LHipPitch", "LKneePitch", "LAnklePitch", "LAnkleRoll",
	"RHipRoll", "RHipPitch", "RKneePitch", "RAnklePitch", "RAnkleRoll",
	"RShoulderPitch", "RShoulderRoll", "RElbowYaw", "RElbowRoll", "RWristYaw",
	"LHand", "RHand",
}

// String returns the protocol name of the joint, e.g. "LShoulderPitch".
func (j Joint) String() string {
	if int(j) >= NumJoints {
		return "Joint(?)"
	}
	return jointNames[j]
}

// Joints returns all joints in wire order.
func Joints() []Joint {
	js := make([]Joint, NumJoints)
	for i := range js {
		js[i] = Joint(i)
	}
	return js
}

// JointByName resolves a protocol joint name. The second return is
// false when the name is unknown.
func JointByName(name string) (Joint, bool) {
	for i, n := range jointNames {
		if n == name {
			return Joint(i), true
		}
	}
	return 0, false
}

// JointArray holds exactly one value per joint. It is a plain array,
// so copies are value copies and every joint always has an entry.
type JointArray[T any] [NumJoints]T

// Get returns the value for joint j.
func (a *JointArray[T]) Get(j Joint) T { return a[j] }

// Set replaces the value for joint j.
func (a *JointArray[T]) Set(j Joint, v T) { a[j] = v }

// FillJoints returns a JointArray with every joint set to v.
func FillJoints[T any](v T) JointArray[T] {
	var a JointArray[T]
	for i := range a {
		a[i] = v
	}
	return a
}
