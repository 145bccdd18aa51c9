package exercise

import (
	"testing"

	"github.com/Abhijeet1520/healthy-world/internal/detector"
)

func TestCatalog_Lookup(t *testing.T) {
	catalog := NewCatalog()

	def, ok := catalog.Lookup("squat")
	if !ok {
		t.Fatal("Lookup(squat) not found")
	}
	if def.Joints != [3]int{detector.LeftHip, detector.LeftKnee, detector.LeftAnkle} {
		t.Errorf("squat joints = %v, want hip/knee/ankle", def.Joints)
	}
}

func TestCatalog_LookupUnknown(t *testing.T) {
	catalog := NewCatalog()

	_, ok := catalog.Lookup("deadlift")
	if ok {
		t.Error("Lookup(deadlift) found = true, want false")
	}
}

func TestCatalog_Default(t *testing.T) {
	catalog := NewCatalog()

	if got := catalog.Default().ID; got != "bicep-curl" {
		t.Errorf("Default() = %s, want bicep-curl", got)
	}
}

func TestCatalog_BuiltinsValid(t *testing.T) {
	for _, def := range NewCatalog().List() {
		if err := def.Validate(); err != nil {
			t.Errorf("builtin %s invalid: %v", def.ID, err)
		}
	}
}

func TestDefinition_Validate(t *testing.T) {
	valid := Definition{
		ID:         "test",
		Joints:     [3]int{11, 13, 15},
		StartAngle: 160,
		EndAngle:   60,
	}

	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr bool
	}{
		{"valid", func(d *Definition) {}, false},
		{"empty id", func(d *Definition) { d.ID = "" }, true},
		{"thresholds inverted", func(d *Definition) { d.StartAngle, d.EndAngle = 60, 160 }, true},
		{"thresholds equal", func(d *Definition) { d.EndAngle = d.StartAngle }, true},
		{"duplicate joint", func(d *Definition) { d.Joints[2] = d.Joints[0] }, true},
		{"joint out of range", func(d *Definition) { d.Joints[1] = detector.NumLandmarks }, true},
		{"negative joint", func(d *Definition) { d.Joints[0] = -1 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			def := valid
			tc.mutate(&def)
			err := def.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestPoseWithJointAngle_DrivesCounter(t *testing.T) {
	// The mock pose builder and the angle calculator agree: a pose built
	// for angle A measures A at the joint triple.
	def := NewCatalog().Default()

	for _, want := range []float64{30, 60, 90, 120, 160, 175} {
		pose := detector.PoseWithJointAngle(def.Joints, want)
		p1, p2, p3 := pose.Joints(def.Joints)
		got := Angle(p1, p2, p3)
		if diff := got - want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("Angle(pose at %f) = %f", want, got)
		}
	}
}
