package systems

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/gonewx/particlefx/internal/particle"
	"github.com/gonewx/particlefx/pkg/components"
	"github.com/gonewx/particlefx/pkg/config"
	"github.com/gonewx/particlefx/pkg/ecs"
	"github.com/gonewx/particlefx/pkg/influencers"
	"github.com/gonewx/particlefx/pkg/utils/easing"
)

// defaultParticleSize 配置未指定尺寸时的渲染边长（像素）
const defaultParticleSize = 16.0

// fadeOutStart 粒子寿命比例超过该值后开始淡出
const fadeOutStart = 0.8

// ParticleSystem manages all particle emitters and individual particles.
// It handles spawning particles from emitters, running each emitter's
// influencers over its particles every frame, and destroying particles
// when their lifetime expires.
//
// The system processes particles in two phases:
//  1. Update all emitters (spawn new particles, check duration limits)
//  2. Update all particles (age, influencers, fade, expiry)
//
// Destroyed entities are only marked; the caller runs
// EntityManager.RemoveMarkedEntities at the end of the frame.
//
// Follows ECS zero-coupling principle: communicates only through EntityManager.
type ParticleSystem struct {
	EntityManager *ecs.EntityManager

	// rng 用于寿命抽样；nil 使用全局随机源
	rng *rand.Rand
}

// NewParticleSystem creates a new ParticleSystem instance.
func NewParticleSystem(em *ecs.EntityManager) *ParticleSystem {
	return &ParticleSystem{
		EntityManager: em,
	}
}

// SetRand sets the source used for per-particle lifetime sampling.
// nil restores the global source.
func (ps *ParticleSystem) SetRand(r *rand.Rand) {
	ps.rng = r
}

// SpawnEffect creates an emitter entity for cfg at (x, y).
//
// The rotation influencer is built from cfg.Rotation.
func (ps *ParticleSystem) SpawnEffect(cfg *config.EffectConfig, x, y float64) (ecs.EntityID, error) {
	ri, err := cfg.Rotation.BuildRotationInfluencer()
	if err != nil {
		return 0, fmt.Errorf("effect %q: %w", cfg.Name, err)
	}
	return ps.SpawnEffectWith(cfg, []influencers.Influencer{ri}, x, y)
}

// SpawnEffectWith creates an emitter entity for cfg at (x, y) driven by
// clones of the given influencers. The presets are never mutated.
func (ps *ParticleSystem) SpawnEffectWith(cfg *config.EffectConfig, presets []influencers.Influencer, x, y float64) (ecs.EntityID, error) {
	lo, hi, err := cfg.LifetimeRange()
	if err != nil {
		return 0, fmt.Errorf("effect %q: %w", cfg.Name, err)
	}

	size := cfg.ParticleSize
	if size <= 0 {
		size = defaultParticleSize
	}

	owned := make([]influencers.Influencer, 0, len(presets))
	for _, inf := range presets {
		owned = append(owned, inf.Clone())
	}

	id := ps.EntityManager.CreateEntity()
	ecs.AddComponent(ps.EntityManager, id, &components.EmitterComponent{
		Name:             cfg.Name,
		Active:           true,
		SystemDuration:   cfg.SystemDuration,
		SpawnRate:        cfg.SpawnRate,
		SpawnMaxActive:   cfg.SpawnMaxActive,
		SpawnMaxLaunched: cfg.SpawnMaxLaunched,
		LifetimeMin:      lo,
		LifetimeMax:      hi,
		ParticleSize:     size,
		Influencers:      owned,
	})
	ecs.AddComponent(ps.EntityManager, id, &components.PositionComponent{X: x, Y: y})

	log.Printf("[ParticleSystem] Spawned effect %q at (%.1f, %.1f), emitter=%d", cfg.Name, x, y, id)
	return id, nil
}

// Update processes all emitters and particles for the current frame.
// dt is the delta time in seconds since the last frame.
func (ps *ParticleSystem) Update(dt float64) {
	ps.updateEmitters(dt)
	ps.updateParticles(dt)
}

// Clear destroys every emitter and particle, resetting particle records
// through their influencers first.
func (ps *ParticleSystem) Clear() {
	for _, id := range ecs.GetEntitiesWith1[*components.ParticleComponent](ps.EntityManager) {
		p, _ := ecs.GetComponent[*components.ParticleComponent](ps.EntityManager, id)
		ps.resetParticle(p)
		ps.EntityManager.DestroyEntity(id)
	}
	for _, id := range ecs.GetEntitiesWith1[*components.EmitterComponent](ps.EntityManager) {
		ps.EntityManager.DestroyEntity(id)
	}
}

// updateEmitters processes all emitter entities, spawning new particles
// and managing emitter lifecycle.
func (ps *ParticleSystem) updateEmitters(dt float64) {
	emitterEntities := ecs.GetEntitiesWith2[
		*components.EmitterComponent,
		*components.PositionComponent,
	](ps.EntityManager)

	for _, emitterID := range emitterEntities {
		emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.EntityManager, emitterID)
		if !ok {
			continue
		}
		position, ok := ecs.GetComponent[*components.PositionComponent](ps.EntityManager, emitterID)
		if !ok {
			continue
		}

		emitter.Age += dt

		// Check system duration (0 = infinite)
		if emitter.SystemDuration > 0 && emitter.Age >= emitter.SystemDuration {
			emitter.Active = false
		}

		if emitter.Active {
			ps.spawnDue(emitterID, emitter, position)
		}

		ps.cleanupDestroyedParticles(emitter)

		// 发射器停止且粒子全部结束后自动销毁
		if !emitter.Active && len(emitter.ActiveParticles) == 0 {
			ps.EntityManager.DestroyEntity(emitterID)
		}
	}
}

// spawnDue spawns every particle the emitter owes for its current age.
//
// SpawnRate=0 is a one-shot burst of SpawnMaxActive particles (at least one)
// on the first update.
func (ps *ParticleSystem) spawnDue(emitterID ecs.EntityID, emitter *components.EmitterComponent, position *components.PositionComponent) {
	if emitter.SpawnRate == 0 {
		if emitter.TotalLaunched > 0 {
			return
		}
		target := emitter.SpawnMaxActive
		if target == 0 {
			target = 1
		}
		for i := 0; i < target && ps.canSpawn(emitter); i++ {
			if !ps.spawnParticle(emitterID, emitter, position) {
				return
			}
		}
		return
	}

	for emitter.Age >= emitter.NextSpawnTime {
		if !ps.canSpawn(emitter) {
			break
		}
		if !ps.spawnParticle(emitterID, emitter, position) {
			return
		}
		emitter.NextSpawnTime += 1.0 / emitter.SpawnRate

		// 防止长时间停顿后一次性补发过多粒子
		if emitter.NextSpawnTime > emitter.Age+10 {
			break
		}
	}
}

func (ps *ParticleSystem) canSpawn(emitter *components.EmitterComponent) bool {
	if emitter.SpawnMaxActive > 0 && len(emitter.ActiveParticles) >= emitter.SpawnMaxActive {
		return false
	}
	if emitter.SpawnMaxLaunched > 0 && emitter.TotalLaunched >= emitter.SpawnMaxLaunched {
		return false
	}
	return true
}

// spawnParticle creates one particle and runs every influencer's Initialize
// on it. If an influencer rejects the particle, the particle is discarded,
// the emitter is deactivated and the error is kept in LastError.
func (ps *ParticleSystem) spawnParticle(emitterID ecs.EntityID, emitter *components.EmitterComponent, emitterPos *components.PositionComponent) bool {
	p := &components.ParticleComponent{
		Emitter: emitterID,
		Size:    emitter.ParticleSize,
		Alpha:   1,
	}
	p.Data.StartLife = particle.RandomInRange(ps.rng, emitter.LifetimeMin, emitter.LifetimeMax)

	for _, inf := range emitter.Influencers {
		if err := inf.Initialize(&p.Data); err != nil {
			emitter.Active = false
			emitter.LastError = fmt.Errorf("%s: %w", inf.Name(), err)
			log.Printf("[ParticleSystem] Emitter %d (%s) stopped: %v", emitterID, emitter.Name, emitter.LastError)
			return false
		}
	}

	particleID := ps.EntityManager.CreateEntity()
	ecs.AddComponent(ps.EntityManager, particleID, p)
	ecs.AddComponent(ps.EntityManager, particleID, &components.PositionComponent{X: emitterPos.X, Y: emitterPos.Y})

	emitter.ActiveParticles = append(emitter.ActiveParticles, particleID)
	emitter.TotalLaunched++
	return true
}

// cleanupDestroyedParticles removes dead particle IDs from emitter's active list
func (ps *ParticleSystem) cleanupDestroyedParticles(emitter *components.EmitterComponent) {
	alive := emitter.ActiveParticles[:0]
	for _, particleID := range emitter.ActiveParticles {
		if ps.EntityManager.IsAlive(particleID) {
			alive = append(alive, particleID)
		}
	}
	emitter.ActiveParticles = alive
}

// updateParticles ages every particle, runs its emitter's influencers and
// destroys particles whose lifetime is over.
func (ps *ParticleSystem) updateParticles(dt float64) {
	particleEntities := ecs.GetEntitiesWith1[*components.ParticleComponent](ps.EntityManager)

	for _, particleID := range particleEntities {
		p, ok := ecs.GetComponent[*components.ParticleComponent](ps.EntityManager, particleID)
		if !ok || !ps.EntityManager.IsAlive(particleID) {
			continue
		}

		p.Age += dt
		if p.Age >= p.Data.StartLife {
			ps.resetParticle(p)
			ps.EntityManager.DestroyEntity(particleID)
			continue
		}

		for _, inf := range ps.influencersOf(p) {
			inf.Update(&p.Data, dt)
		}

		p.Alpha = particleAlpha(p.Age, p.Data.StartLife)
	}
}

// resetParticle hands the record back to every influencer before the
// particle is dropped.
func (ps *ParticleSystem) resetParticle(p *components.ParticleComponent) {
	for _, inf := range ps.influencersOf(p) {
		inf.Reset(&p.Data)
	}
}

func (ps *ParticleSystem) influencersOf(p *components.ParticleComponent) []influencers.Influencer {
	emitter, ok := ecs.GetComponent[*components.EmitterComponent](ps.EntityManager, p.Emitter)
	if !ok {
		return nil
	}
	return emitter.Influencers
}

// particleAlpha 寿命最后 20% 线性淡出
func particleAlpha(age, life float64) float64 {
	if life <= 0 {
		return 0
	}
	t := age / life
	if t <= fadeOutStart {
		return 1
	}
	return 1 - easing.Clamp01((t-fadeOutStart)/(1-fadeOutStart))
}
