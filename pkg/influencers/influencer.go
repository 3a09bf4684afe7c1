// Package influencers contains per-particle parameter updaters.
//
// An influencer is configured once by the host and then called for every
// particle: Initialize at birth, Update once per frame, Reset when the host
// recycles the record. All per-particle state lives in the host-owned
// particle.Data; an influencer only holds its own configuration.
//
// Concurrency: Initialize/Update/Reset may run concurrently for different
// particles as long as nobody mutates the influencer configuration at the
// same time. Configuration mutators are expected to run between frames.
package influencers

import (
	"errors"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/particlefx/internal/particle"
)

var (
	// ErrInvalidDuration is returned by Initialize when the keyframe list has
	// more than one entry but the segment duration is not a finite positive
	// number (cycle mode with a non-positive fixed duration, or a particle
	// without a lifetime).
	ErrInvalidDuration = errors.New("invalid rotation segment duration")

	// ErrNoKeyframes is returned by Initialize when all keyframes were removed
	// after the default keyframe had already been seeded.
	ErrNoKeyframes = errors.New("no rotation keyframes configured")

	// ErrIndexOutOfRange is returned by keyframe removal with a bad index.
	ErrIndexOutOfRange = errors.New("keyframe index out of range")
)

// Influencer mutates one aspect of a particle every frame.
type Influencer interface {
	// Name identifies the influencer kind, used as the persistence key.
	Name() string
	Initialize(p *particle.Data) error
	Update(p *particle.Data, tpf float64)
	Reset(p *particle.Data)
	IsEnabled() bool
	Save(oc OutputCapsule) error
	Load(ic InputCapsule) error
	// Clone returns an independent copy of the configuration.
	Clone() Influencer
}

// OutputCapsule receives named values when an influencer is saved.
// Writers may skip a value equal to its default.
type OutputCapsule interface {
	WriteVec3(name string, v, def mgl64.Vec3) error
}

// InputCapsule supplies named values when an influencer is loaded.
// An absent name yields def; a present but malformed value is an error.
type InputCapsule interface {
	ReadVec3(name string, def mgl64.Vec3) (mgl64.Vec3, error)
}

// Random is the source of uniform [0,1) floats used for randomized
// speeds, directions and start angles.
type Random interface {
	Float64() float64
}

// globalRandom draws from the math/rand package source, which is safe for
// concurrent use. A caller-supplied *rand.Rand is not.
type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }
