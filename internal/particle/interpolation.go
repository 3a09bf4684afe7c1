package particle

import (
	"fmt"

	"github.com/gonewx/particlefx/pkg/utils/easing"
)

// Interpolation selects the curve applied to a segment's blend fraction.
// The zero value is Linear.
type Interpolation int

const (
	Linear Interpolation = iota
	EaseIn
	EaseOut
	EaseInOut
	EaseInQuad
	EaseOutQuad
	EaseOutExpo
)

var interpolationNames = [...]string{
	Linear:      "Linear",
	EaseIn:      "EaseIn",
	EaseOut:     "EaseOut",
	EaseInOut:   "EaseInOut",
	EaseInQuad:  "EaseInQuad",
	EaseOutQuad: "EaseOutQuad",
	EaseOutExpo: "EaseOutExpo",
}

// String returns the config-file name of the curve.
func (i Interpolation) String() string {
	if i < 0 || int(i) >= len(interpolationNames) {
		return fmt.Sprintf("Interpolation(%d)", int(i))
	}
	return interpolationNames[i]
}

// Valid reports whether i is one of the known curves.
func (i Interpolation) Valid() bool {
	return i >= 0 && int(i) < len(interpolationNames)
}

// Apply maps a progress fraction through the curve.
// t is clamped to [0, 1] first; the result is in [0, 1].
func (i Interpolation) Apply(t float64) float64 {
	t = easing.Clamp01(t)

	switch i {
	case EaseIn:
		return easing.EaseInCubic(t)
	case EaseOut:
		return easing.EaseOutCubic(t)
	case EaseInOut:
		return easing.EaseInOutCubic(t)
	case EaseInQuad:
		return easing.EaseInQuad(t)
	case EaseOutQuad:
		return easing.EaseOutQuad(t)
	case EaseOutExpo:
		return easing.EaseOutExpo(t)
	default:
		return easing.EaseLinear(t)
	}
}

// ParseInterpolation converts a config keyword to an Interpolation.
// An empty string means Linear.
func ParseInterpolation(name string) (Interpolation, error) {
	if name == "" {
		return Linear, nil
	}
	for i, n := range interpolationNames {
		if n == name {
			return Interpolation(i), nil
		}
	}
	return Linear, fmt.Errorf("unknown interpolation %q", name)
}
