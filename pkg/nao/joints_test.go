package nao

import "testing"

func TestJointNames(t *testing.T) {
	if got := len(Joints()); got != NumJoints {
		t.Fatalf("Joints() returned %d joints, want %d", got, NumJoints)
	}

	seen := map[string]bool{}
	for _, j := range Joints() {
		name := j.String()
		if name == "" || name == "Joint(?)" {
			t.Errorf("joint %d has no name", j)
		}
		if seen[name] {
			t.Errorf("duplicate joint name %q", name)
		}
		seen[name] = true

		back, ok := JointByName(name)
		if !ok || back != j {
			t.Errorf("JointByName(%q) = %v, %v; want %v, true", name, back, ok, j)
		}
	}

	if _, ok := JointByName("LeftFlange"); ok {
		t.Error("JointByName accepted an unknown name")
	}
}

func TestJointWireOrder(t *testing.T) {
	// The enumeration must match the LoLA array order: head first,
	// left side, right legs before right arms, hands last.
	if HeadYaw != 0 || HeadPitch != 1 {
		t.Error("head joints must lead the wire order")
	}
	if RHand != NumJoints-1 || LHand != NumJoints-2 {
		t.Error("hands must close the wire order")
	}
	if !(LHipYawPitch > LWristYaw && RShoulderPitch > RAnkleRoll) {
		t.Error("wire order deviates from the LoLA layout")
	}
}

func TestJointArray(t *testing.T) {
	var a JointArray[float32]
	a.Set(LKneePitch, 1.5)
	if got := a.Get(LKneePitch); got != 1.5 {
		t.Errorf("Get(LKneePitch) = %v, want 1.5", got)
	}
	if got := a.Get(RKneePitch); got != 0 {
		t.Errorf("Get(RKneePitch) = %v, want 0", got)
	}

	filled := FillJoints(float32(0.25))
	for _, j := range Joints() {
		if filled[j] != 0.25 {
			t.Fatalf("FillJoints missed %s", j)
		}
	}
}

func TestNeutralCommand(t *testing.T) {
	frame := SensorFrame{Position: FillJoints(float32(0.5))}
	cmd := NeutralCommand(&frame)
	for _, j := range Joints() {
		if cmd.Position[j] != 0.5 {
			t.Fatalf("neutral position for %s = %v, want 0.5", j, cmd.Position[j])
		}
		if cmd.Stiffness[j] != 0 {
			t.Fatalf("neutral stiffness for %s = %v, want 0", j, cmd.Stiffness[j])
		}
	}

	if cmd := NeutralCommand(nil); cmd.Position != (JointArray[float32]{}) {
		t.Error("NeutralCommand(nil) must have zero positions")
	}
}
