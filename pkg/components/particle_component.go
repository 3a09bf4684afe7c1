package components

import (
	"github.com/gonewx/particlefx/internal/particle"
	"github.com/gonewx/particlefx/pkg/ecs"
)

// ParticleComponent is a single live particle.
//
// Data is the record handed to influencers every frame; the remaining fields
// are host bookkeeping and render state. The particle dies when Age reaches
// Data.StartLife.
//
// This is a pure data component following ECS principles - it contains no methods.
type ParticleComponent struct {
	// Influencer-facing record (影响器读写的粒子数据)
	Data particle.Data

	// Emitter 产生该粒子的发射器实体，用于回收计数
	Emitter ecs.EntityID

	// Lifecycle (生命周期, 秒)
	Age float64 // Time this particle has been alive

	// Rendering properties
	Size  float64 // Edge length of the rendered quad in pixels
	Alpha float64 // 0 = fully transparent, 1 = fully opaque
}

// PositionComponent is the world position of an emitter or particle (pixels).
type PositionComponent struct {
	X float64
	Y float64
}
