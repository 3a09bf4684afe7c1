package influencers

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/particlefx/internal/particle"
)

// RotationInfluencerName is the persistence key of RotationSpeedInfluencer.
const RotationInfluencerName = "RotationSpeedInfluencer"

// speedFactorKey 是持久化时 speedFactor 的字段名
const speedFactorKey = "speedFactor"

// maxSegmentCatchUp bounds the number of segment advances in a single
// Update. A longer frame folds the remaining time into the current segment.
const maxSegmentCatchUp = 64

// defaultRotationSpeed 在没有配置任何关键帧时自动添加
var defaultRotationSpeed = mgl64.Vec3{0, 10, 0}

// RotationSpeedInfluencer interpolates a particle's angular velocity through
// a sequence of keyframes and integrates it into the particle's angles.
//
// Segment timing:
//   - cycle=false: the particle lifetime is split evenly into len(keyframes)-1
//     segments; the index wraps to 0 when it reaches len(keyframes)-1.
//   - cycle=true: every segment lasts FixedDuration and the index visits all
//     keyframes, the last segment blending back into keyframe 0.
type RotationSpeedInfluencer struct {
	speeds         []mgl64.Vec3
	interpolations []particle.Interpolation

	seedOnce sync.Once
	enabled  bool
	cycle    bool

	fixedDuration float64

	speedFactor        mgl64.Vec3
	useRandomDirection bool
	useRandomSpeed     bool
	direction          bool

	useRandomStartRotationX bool
	useRandomStartRotationY bool
	useRandomStartRotationZ bool

	rng Random
}

// NewRotationSpeedInfluencer creates an influencer with no keyframes.
// Random direction and random speed are on by default; the first
// Initialize seeds a (0,10,0) Linear keyframe if none were added.
func NewRotationSpeedInfluencer() *RotationSpeedInfluencer {
	return &RotationSpeedInfluencer{
		enabled:            true,
		useRandomDirection: true,
		useRandomSpeed:     true,
		direction:          true,
		rng:                globalRandom{},
	}
}

// Name implements Influencer.
func (ri *RotationSpeedInfluencer) Name() string {
	return RotationInfluencerName
}

// SetRandom replaces the random source. nil restores the global source.
func (ri *RotationSpeedInfluencer) SetRandom(r Random) {
	if r == nil {
		r = globalRandom{}
	}
	ri.rng = r
}

// Initialize prepares the rotation state of a newly born particle.
//
// A single keyframe is a valid configuration: the particle spins at that
// constant speed and Update never divides by the segment count. The
// auto-seeded (0,10,0) default is itself one such keyframe.
func (ri *RotationSpeedInfluencer) Initialize(p *particle.Data) error {
	ri.ensureDefaults()

	count := len(ri.speeds)
	if count == 0 {
		return ErrNoKeyframes
	}

	duration, err := ri.segmentDuration(p, count)
	if err != nil {
		return err
	}

	p.RotationIndex = 0
	p.RotationInterval = 0
	p.RotationDuration = duration

	if ri.useRandomDirection {
		p.RotateDirectionX = ri.rng.Float64() < 0.5
		p.RotateDirectionY = ri.rng.Float64() < 0.5
		p.RotateDirectionZ = ri.rng.Float64() < 0.5
	} else {
		p.RotateDirectionX, p.RotateDirectionY, p.RotateDirectionZ = true, true, true
	}

	p.StartRotationSpeed = ri.resolveKeyframeSpeed(p, 0)
	p.RotationSpeed = p.StartRotationSpeed
	if count > 1 {
		p.EndRotationSpeed = ri.resolveKeyframeSpeed(p, 1)
	} else {
		p.EndRotationSpeed = p.StartRotationSpeed
	}

	p.RotationInterpolation = ri.interpolations[0]

	p.Angles = mgl64.Vec3{}
	if ri.useRandomStartRotationX {
		p.Angles[0] = ri.rng.Float64() * 2 * math.Pi
	}
	if ri.useRandomStartRotationY {
		p.Angles[1] = ri.rng.Float64() * 2 * math.Pi
	}
	if ri.useRandomStartRotationZ {
		p.Angles[2] = ri.rng.Float64() * 2 * math.Pi
	}

	return nil
}

// ensureDefaults seeds the default keyframe the first time any particle is
// initialized. Later calls are no-ops even if the list was emptied again.
func (ri *RotationSpeedInfluencer) ensureDefaults() {
	ri.seedOnce.Do(func() {
		if len(ri.speeds) == 0 {
			log.Printf("[RotationInfluencer] No keyframes configured, seeding default speed %v", defaultRotationSpeed)
			ri.AddRotationSpeed(defaultRotationSpeed)
		}
	})
}

// segmentDuration computes the length of one segment. With a single
// keyframe there is no segment to time, so the duration is only kept when
// it is meaningful.
func (ri *RotationSpeedInfluencer) segmentDuration(p *particle.Data, count int) (float64, error) {
	var d float64
	if ri.cycle {
		d = ri.fixedDuration
	} else if count > 1 {
		d = p.StartLife / float64(count-1)
	}

	if count == 1 {
		if d > 0 && !math.IsInf(d, 0) {
			return d, nil
		}
		return 0, nil
	}

	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		if ri.cycle {
			return 0, fmt.Errorf("%w: cycle mode needs a positive fixed duration, got %v", ErrInvalidDuration, ri.fixedDuration)
		}
		return 0, fmt.Errorf("%w: particle lifetime %v split over %d segments", ErrInvalidDuration, p.StartLife, count-1)
	}
	return d, nil
}

// Update advances the particle's rotation by tpf seconds.
func (ri *RotationSpeedInfluencer) Update(p *particle.Data, tpf float64) {
	if !ri.enabled {
		return
	}
	if math.IsNaN(tpf) || math.IsInf(tpf, 0) {
		return
	}

	if len(ri.speeds) > 1 && p.RotationDuration > 0 {
		p.RotationInterval += tpf
		for steps := 0; p.RotationInterval >= p.RotationDuration; steps++ {
			if steps == maxSegmentCatchUp {
				p.RotationInterval = math.Mod(p.RotationInterval, p.RotationDuration)
				break
			}
			ri.advanceSegment(p)
		}

		blend := p.RotationInterpolation.Apply(p.RotationInterval / p.RotationDuration)
		p.RotationSpeed = particle.Lerp(p.StartRotationSpeed, p.EndRotationSpeed, blend)
	}

	p.Angles = p.Angles.Add(p.RotationSpeed.Mul(tpf))
}

// advanceSegment moves the particle into the next segment, carrying the
// overshoot of the previous one.
func (ri *RotationSpeedInfluencer) advanceSegment(p *particle.Data) {
	count := len(ri.speeds)

	p.RotationIndex++
	limit := count - 1
	if ri.cycle {
		limit = count
	}
	if p.RotationIndex >= limit {
		p.RotationIndex = 0
	}

	p.StartRotationSpeed = ri.resolveKeyframeSpeed(p, p.RotationIndex)

	next := p.RotationIndex + 1
	if next >= count {
		next = 0
	}
	p.EndRotationSpeed = ri.resolveKeyframeSpeed(p, next)

	p.RotationInterpolation = ri.interpolations[p.RotationIndex]
	p.RotationInterval -= p.RotationDuration
}

// resolveKeyframeSpeed returns the effective speed of keyframe index for p.
// Magnitude is re-rolled on every call when random speed is on; the sign
// comes from the per-particle direction drawn at Initialize.
func (ri *RotationSpeedInfluencer) resolveKeyframeSpeed(p *particle.Data, index int) mgl64.Vec3 {
	v := ri.speeds[index]

	if ri.useRandomSpeed {
		v[0] *= ri.rng.Float64()
		v[1] *= ri.rng.Float64()
		v[2] *= ri.rng.Float64()
	}

	if ri.useRandomDirection {
		if !p.RotateDirectionX {
			v[0] = -v[0]
		}
		if !p.RotateDirectionY {
			v[1] = -v[1]
		}
		if !p.RotateDirectionZ {
			v[2] = -v[2]
		}
	}

	return v
}

// Reset zeroes the particle's angles for pooled reuse. Timing state is left
// for the next Initialize.
func (ri *RotationSpeedInfluencer) Reset(p *particle.Data) {
	p.Angles = mgl64.Vec3{}
}

// Save writes the persisted configuration (speedFactor only).
func (ri *RotationSpeedInfluencer) Save(oc OutputCapsule) error {
	if err := oc.WriteVec3(speedFactorKey, ri.speedFactor, mgl64.Vec3{}); err != nil {
		return fmt.Errorf("failed to write %s: %w", speedFactorKey, err)
	}
	return nil
}

// Load reads the persisted configuration. A missing speedFactor becomes the
// zero vector.
func (ri *RotationSpeedInfluencer) Load(ic InputCapsule) error {
	v, err := ic.ReadVec3(speedFactorKey, mgl64.Vec3{})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", speedFactorKey, err)
	}
	ri.speedFactor = v
	return nil
}

// Clone implements Influencer. The keyframe slices are copied; the random
// source is shared. The clone runs its own default-seeding check.
func (ri *RotationSpeedInfluencer) Clone() Influencer {
	return &RotationSpeedInfluencer{
		speeds:                  append([]mgl64.Vec3(nil), ri.speeds...),
		interpolations:          append([]particle.Interpolation(nil), ri.interpolations...),
		enabled:                 ri.enabled,
		cycle:                   ri.cycle,
		fixedDuration:           ri.fixedDuration,
		speedFactor:             ri.speedFactor,
		useRandomDirection:      ri.useRandomDirection,
		useRandomSpeed:          ri.useRandomSpeed,
		direction:               ri.direction,
		useRandomStartRotationX: ri.useRandomStartRotationX,
		useRandomStartRotationY: ri.useRandomStartRotationY,
		useRandomStartRotationZ: ri.useRandomStartRotationZ,
		rng:                     ri.rng,
	}
}

// ========== 配置接口 ==========

// SetEnabled turns the influencer on or off. A disabled influencer leaves particles untouched.
func (ri *RotationSpeedInfluencer) SetEnabled(enabled bool) { ri.enabled = enabled }

// IsEnabled reports whether Initialize and Update take effect.
func (ri *RotationSpeedInfluencer) IsEnabled() bool { return ri.enabled }

// AddRotationSpeed appends a keyframe with Linear interpolation.
func (ri *RotationSpeedInfluencer) AddRotationSpeed(speed mgl64.Vec3) {
	ri.AddRotationSpeedWithInterpolation(speed, particle.Linear)
}

// AddRotationSpeedWithInterpolation appends a keyframe. The curve is used for
// the segment that starts at this keyframe.
func (ri *RotationSpeedInfluencer) AddRotationSpeedWithInterpolation(speed mgl64.Vec3, interp particle.Interpolation) {
	ri.speeds = append(ri.speeds, speed)
	ri.interpolations = append(ri.interpolations, interp)
}

// RemoveRotation removes the keyframe at index.
func (ri *RotationSpeedInfluencer) RemoveRotation(index int) error {
	if index < 0 || index >= len(ri.speeds) {
		return fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(ri.speeds))
	}
	ri.speeds = append(ri.speeds[:index], ri.speeds[index+1:]...)
	ri.interpolations = append(ri.interpolations[:index], ri.interpolations[index+1:]...)
	return nil
}

// RemoveAll clears every keyframe.
func (ri *RotationSpeedInfluencer) RemoveAll() {
	ri.speeds = ri.speeds[:0]
	ri.interpolations = ri.interpolations[:0]
}

// Rotations returns a copy of the configured speeds.
func (ri *RotationSpeedInfluencer) Rotations() []mgl64.Vec3 {
	return append([]mgl64.Vec3(nil), ri.speeds...)
}

// Interpolations returns a copy of the configured curves.
func (ri *RotationSpeedInfluencer) Interpolations() []particle.Interpolation {
	return append([]particle.Interpolation(nil), ri.interpolations...)
}

// SetCycle switches between lifetime-split segments and fixed-length looping.
func (ri *RotationSpeedInfluencer) SetCycle(cycle bool) { ri.cycle = cycle }

// Cycle reports whether segments use FixedDuration instead of splitting the lifetime.
func (ri *RotationSpeedInfluencer) Cycle() bool { return ri.cycle }

// SetFixedDuration sets the segment length used in cycle mode (seconds).
func (ri *RotationSpeedInfluencer) SetFixedDuration(d float64) { ri.fixedDuration = d }

// FixedDuration returns the cycle-mode segment length in seconds.
func (ri *RotationSpeedInfluencer) FixedDuration() float64 { return ri.fixedDuration }

// SetUseRandomDirection lets each particle pick a random sign per axis at birth.
func (ri *RotationSpeedInfluencer) SetUseRandomDirection(v bool) { ri.useRandomDirection = v }

// UseRandomDirection reports whether particles draw a random sign per axis at birth.
func (ri *RotationSpeedInfluencer) UseRandomDirection() bool { return ri.useRandomDirection }

// SetUseRandomSpeed scales each axis by a random factor in [0,1) whenever a
// keyframe is resolved.
func (ri *RotationSpeedInfluencer) SetUseRandomSpeed(v bool) { ri.useRandomSpeed = v }

// UseRandomSpeed reports whether keyframe speeds are scaled by a random factor.
func (ri *RotationSpeedInfluencer) UseRandomSpeed() bool { return ri.useRandomSpeed }

// SetUseRandomStartRotation enables a random initial angle in [0, 2π) per axis.
func (ri *RotationSpeedInfluencer) SetUseRandomStartRotation(x, y, z bool) {
	ri.useRandomStartRotationX = x
	ri.useRandomStartRotationY = y
	ri.useRandomStartRotationZ = z
}

// UseRandomStartRotationX reports whether the X angle starts at a random value.
func (ri *RotationSpeedInfluencer) UseRandomStartRotationX() bool { return ri.useRandomStartRotationX }

// UseRandomStartRotationY reports whether the Y angle starts at a random value.
func (ri *RotationSpeedInfluencer) UseRandomStartRotationY() bool { return ri.useRandomStartRotationY }

// UseRandomStartRotationZ reports whether the Z angle starts at a random value.
func (ri *RotationSpeedInfluencer) UseRandomStartRotationZ() bool { return ri.useRandomStartRotationZ }

// SetDirection stores the "constant direction" flag. Update does not read it.
func (ri *RotationSpeedInfluencer) SetDirection(direction bool) { ri.direction = direction }

// Direction returns the stored "constant direction" flag.
func (ri *RotationSpeedInfluencer) Direction() bool { return ri.direction }

// SetSpeedFactor stores the persisted speed factor. Update does not read it.
func (ri *RotationSpeedInfluencer) SetSpeedFactor(v mgl64.Vec3) { ri.speedFactor = v }

// SpeedFactor returns the persisted speed factor.
func (ri *RotationSpeedInfluencer) SpeedFactor() mgl64.Vec3 { return ri.speedFactor }
