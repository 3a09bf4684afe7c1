package components

import (
	"github.com/gonewx/particlefx/pkg/ecs"
	"github.com/gonewx/particlefx/pkg/influencers"
)

// EmitterComponent represents a particle emitter that spawns particles and
// drives its influencers over them.
//
// Every emitter owns its own influencer instances (cloned from the effect
// preset), so configuration changes on one emitter never leak into another.
//
// This is a pure data component following ECS principles - it contains no methods.
type EmitterComponent struct {
	// Name of the effect this emitter was built from
	Name string

	// Emitter state (发射器状态)
	Active bool    // Whether the emitter is currently spawning particles
	Age    float64 // Time the emitter has been running (seconds)

	// SystemDuration: total duration before the emitter stops (seconds, 0 = infinite)
	SystemDuration float64

	// Spawn timing (发射时机)
	SpawnRate        float64 // Particles spawned per second; 0 = one burst of SpawnMaxActive
	SpawnMaxActive   int     // Maximum simultaneously alive particles (0 = unlimited)
	SpawnMaxLaunched int     // Maximum total particles to launch (0 = unlimited)
	NextSpawnTime    float64 // Emitter age at which the next particle spawns

	// Particle lifetime range, drawn per particle (秒)
	LifetimeMin float64
	LifetimeMax float64

	// ParticleSize 渲染尺寸（像素）
	ParticleSize float64

	// Particle tracking (粒子追踪)
	ActiveParticles []ecs.EntityID
	TotalLaunched   int

	// Influencers run in order: Initialize at spawn, Update every frame,
	// Reset before the particle is destroyed.
	Influencers []influencers.Influencer

	// LastError 最近一次 Initialize 失败的原因，发射器会因此停用
	LastError error
}
