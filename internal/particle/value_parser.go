package particle

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ParseRange parses a scalar value string from an effect configuration.
// Supported formats:
//   - Fixed value: "1.5" → min=1.5, max=1.5
//   - Range: "[0.7 0.9]" → min=0.7, max=0.9
//   - Single bracketed value: "[2]" → min=2, max=2
//
// An empty string yields 0, 0 without error.
func ParseRange(s string) (min, max float64, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, nil
	}

	if strings.HasPrefix(s, "[") {
		if !strings.HasSuffix(s, "]") {
			return 0, 0, fmt.Errorf("unterminated range %q", s)
		}
		parts := strings.Fields(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
		switch len(parts) {
		case 1:
			v, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return 0, 0, fmt.Errorf("invalid range value %q: %w", s, err)
			}
			return v, v, nil
		case 2:
			lo, err1 := strconv.ParseFloat(parts[0], 64)
			hi, err2 := strconv.ParseFloat(parts[1], 64)
			if err1 != nil || err2 != nil {
				return 0, 0, fmt.Errorf("invalid range %q", s)
			}
			return lo, hi, nil
		default:
			return 0, 0, fmt.Errorf("range %q must have one or two values", s)
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, v, nil
}

// ParseVec3 parses a vector string. Components may be separated by spaces,
// commas, or both: "0 10 0", "0,10,0" and "0, 10, 0" are all accepted.
func ParseVec3(s string) (mgl64.Vec3, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("vector %q must have three components", s)
	}

	var out mgl64.Vec3
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("invalid vector component %q in %q: %w", f, s, err)
		}
		out[i] = v
	}
	return out, nil
}

// FormatVec3 is the inverse of ParseVec3.
func FormatVec3(v mgl64.Vec3) string {
	return strconv.FormatFloat(v.X(), 'g', -1, 64) + " " +
		strconv.FormatFloat(v.Y(), 'g', -1, 64) + " " +
		strconv.FormatFloat(v.Z(), 'g', -1, 64)
}

// RandomInRange returns a random float64 in the range [min, max].
// A nil r uses the global math/rand source.
func RandomInRange(r *rand.Rand, min, max float64) float64 {
	if min >= max {
		return min
	}
	if r == nil {
		return min + rand.Float64()*(max-min)
	}
	return min + r.Float64()*(max-min)
}
