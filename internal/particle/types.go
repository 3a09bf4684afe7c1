// Package particle provides the value types shared between particle hosts
// (emitters that own particle records) and influencers (per-frame updaters
// that mutate those records).
//
// Nothing in this package keeps state of its own: a Data record is owned by
// whoever spawned the particle and is passed by pointer into every call.
package particle

import "github.com/go-gl/mathgl/mgl64"

// Lerp interpolates component-wise between a and b.
// t=0 returns a, t=1 returns b.
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// Data is the host-owned per-particle record.
//
// The host allocates one Data per live particle, fills StartLife at spawn
// time and hands a pointer to influencers on every call. Influencers must not
// retain the pointer between calls.
type Data struct {
	// Lifecycle (生命周期, 秒)
	StartLife float64 // Total lifetime assigned by the host at spawn

	// Rotation segment bookkeeping (旋转关键帧分段)
	RotationIndex         int           // Current segment index into the keyframe list
	RotationInterval      float64       // Time elapsed inside the current segment
	RotationDuration      float64       // Length of one segment, fixed at Initialize
	RotationInterpolation Interpolation // Curve of the current segment

	// Angular speeds (角速度, 弧度/秒, 分量顺序 X Y Z)
	StartRotationSpeed mgl64.Vec3 // Resolved speed at the start of the segment
	EndRotationSpeed   mgl64.Vec3 // Resolved speed at the end of the segment
	RotationSpeed      mgl64.Vec3 // Current blended speed

	// Per-axis sign drawn once at birth when random direction is enabled.
	// true = positive, false = negated.
	RotateDirectionX bool
	RotateDirectionY bool
	RotateDirectionZ bool

	// Angles is the cumulative orientation (弧度), integrated every frame.
	Angles mgl64.Vec3
}
