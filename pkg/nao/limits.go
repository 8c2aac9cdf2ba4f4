package nao

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v2"
)

//go:embed limits.yaml
var defaultLimitsYAML []byte

// JointLimit bounds one joint: mechanical range in radians and the
// maximum angular velocity in rad/s the validator will allow.
type JointLimit struct {
	Min         float32 `yaml:"min"`
	Max         float32 `yaml:"max"`
	MaxVelocity float32 `yaml:"max_velocity"`
}

// LimitTable maps every joint to its JointLimit. It is built once at
// startup and never mutated afterwards; validators take it by pointer.
type LimitTable struct {
	limits JointArray[JointLimit]
}

// For returns the limit entry for joint j.
func (t *LimitTable) For(j Joint) JointLimit { return t.limits[j] }

type limitsFile struct {
	Joints map[string]JointLimit `yaml:"joints"`
}

// ParseLimits builds a LimitTable from YAML. Every joint must be
// present exactly once and every entry must be well formed.
func ParseLimits(data []byte) (*LimitTable, error) {
	var f limitsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse limits: %w", err)
	}

	var t LimitTable
	seen := 0
	for name, lim := range f.Joints {
		j, ok := JointByName(name)
		if !ok {
			return nil, fmt.Errorf("parse limits: unknown joint %q", name)
		}
		if lim.Min >= lim.Max {
			return nil, fmt.Errorf("parse limits: %s: min %v is not below max %v", name, lim.Min, lim.Max)
		}
		if lim.MaxVelocity <= 0 {
			return nil, fmt.Errorf("parse limits: %s: max_velocity %v must be positive", name, lim.MaxVelocity)
		}
		t.limits[j] = lim
		seen++
	}
	if seen != NumJoints {
		return nil, fmt.Errorf("parse limits: expected %d joints, got %d", NumJoints, seen)
	}
	return &t, nil
}

// LoadLimits reads a limit table from a YAML file.
func LoadLimits(path string) (*LimitTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load limits: %w", err)
	}
	return ParseLimits(data)
}

var (
	defaultLimits     *LimitTable
	defaultLimitsOnce sync.Once
)

// DefaultLimits returns the embedded NAO V6 limit table. The table is
// parsed once per process and shared.
func DefaultLimits() *LimitTable {
	defaultLimitsOnce.Do(func() {
		t, err := ParseLimits(defaultLimitsYAML)
		if err != nil {
			// The embedded table is part of the build; failing to
			// parse it is a programming error.
			panic(err)
		}
		defaultLimits = t
	})
	return defaultLimits
}
