package systems

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/particlefx/pkg/components"
	"github.com/gonewx/particlefx/pkg/config"
	"github.com/gonewx/particlefx/pkg/ecs"
	"github.com/gonewx/particlefx/pkg/influencers"
)

func boolPtr(v bool) *bool { return &v }

// steadySpin 一个关键帧、无随机的旋转效果
func steadySpin(speed string) *config.EffectConfig {
	return &config.EffectConfig{
		Name:           "steady",
		SpawnMaxActive: 1,
		Lifetime:       "10",
		Rotation: config.RotationConfig{
			UseRandomDirection: boolPtr(false),
			UseRandomSpeed:     boolPtr(false),
			Keyframes:          []config.KeyframeConfig{{Speed: speed}},
		},
	}
}

func newTestParticleSystem() (*ecs.EntityManager, *ParticleSystem) {
	em := ecs.NewEntityManager()
	ps := NewParticleSystem(em)
	ps.SetRand(rand.New(rand.NewSource(1)))
	return em, ps
}

func particlesOf(em *ecs.EntityManager) []*components.ParticleComponent {
	var out []*components.ParticleComponent
	for _, id := range ecs.GetEntitiesWith1[*components.ParticleComponent](em) {
		p, _ := ecs.GetComponent[*components.ParticleComponent](em, id)
		out = append(out, p)
	}
	return out
}

// TestParticleSystem_ParticleLifecycle tests that particles age and are destroyed when expired
func TestParticleSystem_ParticleLifecycle(t *testing.T) {
	em, ps := newTestParticleSystem()

	cfg := steadySpin("0 0 1")
	cfg.SpawnMaxActive = 3
	cfg.Lifetime = "1"
	cfg.SystemDuration = 1

	emitterID, err := ps.SpawnEffect(cfg, 100, 100)
	if err != nil {
		t.Fatalf("SpawnEffect() error: %v", err)
	}

	ps.Update(0.5)
	em.RemoveMarkedEntities()
	if got := len(particlesOf(em)); got != 3 {
		t.Fatalf("Expected 3 particles after burst, got %d", got)
	}

	// 超过寿命，粒子销毁；发射器同时到期
	ps.Update(0.6)
	em.RemoveMarkedEntities()
	if got := len(particlesOf(em)); got != 0 {
		t.Errorf("Particles should be destroyed after exceeding lifetime, %d left", got)
	}

	ps.Update(0.1)
	em.RemoveMarkedEntities()
	if em.IsAlive(emitterID) {
		t.Error("Finished emitter with no particles should be destroyed")
	}
	if em.EntityCount() != 0 {
		t.Errorf("EntityCount = %d, want 0", em.EntityCount())
	}
}

// TestParticleSystem_EmitterSpawnsParticles tests that emitters spawn particles at the correct rate
func TestParticleSystem_EmitterSpawnsParticles(t *testing.T) {
	em, ps := newTestParticleSystem()

	cfg := steadySpin("0 0 1")
	cfg.SpawnRate = 10
	cfg.SpawnMaxActive = 100

	emitterID, err := ps.SpawnEffect(cfg, 200, 200)
	if err != nil {
		t.Fatalf("SpawnEffect() error: %v", err)
	}

	ps.Update(0.5)

	emitter, _ := ecs.GetComponent[*components.EmitterComponent](em, emitterID)
	// 0.0, 0.1, ..., 0.5 各发射一个，浮点累积允许少一个
	if emitter.TotalLaunched < 5 || emitter.TotalLaunched > 6 {
		t.Errorf("Expected ~6 particles, got %d", emitter.TotalLaunched)
	}
}

// TestParticleSystem_EmitterMaxActive tests that emitter respects max active particle limit
func TestParticleSystem_EmitterMaxActive(t *testing.T) {
	em, ps := newTestParticleSystem()

	cfg := steadySpin("0 0 1")
	cfg.SpawnRate = 100
	cfg.SpawnMaxActive = 4

	emitterID, _ := ps.SpawnEffect(cfg, 0, 0)
	for i := 0; i < 10; i++ {
		ps.Update(0.1)
		em.RemoveMarkedEntities()
	}

	emitter, _ := ecs.GetComponent[*components.EmitterComponent](em, emitterID)
	if len(emitter.ActiveParticles) != 4 {
		t.Errorf("ActiveParticles = %d, want 4", len(emitter.ActiveParticles))
	}
	if emitter.TotalLaunched != 4 {
		t.Errorf("TotalLaunched = %d, want 4", emitter.TotalLaunched)
	}
}

func TestParticleSystem_EmitterMaxLaunched(t *testing.T) {
	em, ps := newTestParticleSystem()

	cfg := steadySpin("0 0 1")
	cfg.SpawnRate = 10
	cfg.SpawnMaxActive = 0
	cfg.SpawnMaxLaunched = 3
	cfg.Lifetime = "0.1"

	emitterID, _ := ps.SpawnEffect(cfg, 0, 0)
	for i := 0; i < 20; i++ {
		ps.Update(0.1)
		em.RemoveMarkedEntities()
	}

	emitter, ok := ecs.GetComponent[*components.EmitterComponent](em, emitterID)
	if !ok {
		t.Fatal("emitter without SystemDuration should stay alive")
	}
	if emitter.TotalLaunched != 3 {
		t.Errorf("TotalLaunched = %d, want 3", emitter.TotalLaunched)
	}
}

func TestParticleSystem_RotationIntegrated(t *testing.T) {
	em, ps := newTestParticleSystem()

	if _, err := ps.SpawnEffect(steadySpin("0 1 2"), 0, 0); err != nil {
		t.Fatalf("SpawnEffect() error: %v", err)
	}

	// 出生帧也会积分一次
	ps.Update(0.5)
	ps.Update(0.25)

	parts := particlesOf(em)
	if len(parts) != 1 {
		t.Fatalf("expected 1 particle, got %d", len(parts))
	}
	angles := parts[0].Data.Angles
	if math.Abs(angles.Y()-0.75) > 0.001 || math.Abs(angles.Z()-1.5) > 0.001 {
		t.Errorf("Angles = %+v, want Y=0.75 Z=1.5", angles)
	}
	if parts[0].Data.RotationSpeed != (mgl64.Vec3{0, 1, 2}) {
		t.Errorf("RotationSpeed = %+v", parts[0].Data.RotationSpeed)
	}
}

func TestParticleSystem_KeyframesFollowLifetime(t *testing.T) {
	em, ps := newTestParticleSystem()

	cfg := steadySpin("0 0 0")
	cfg.Lifetime = "2"
	cfg.Rotation.Keyframes = append(cfg.Rotation.Keyframes, config.KeyframeConfig{Speed: "0 0 8"})

	if _, err := ps.SpawnEffect(cfg, 0, 0); err != nil {
		t.Fatalf("SpawnEffect() error: %v", err)
	}

	for i := 0; i < 4; i++ {
		ps.Update(0.25)
	}

	p := particlesOf(em)[0]
	// 一段时长 = 寿命 / (K-1) = 2，t=1 时线性插值到一半
	if math.Abs(p.Data.RotationSpeed.Z()-4) > 0.001 {
		t.Errorf("RotationSpeed.Z() = %v, want 4", p.Data.RotationSpeed.Z())
	}
}

func TestParticleSystem_InitializeErrorStopsEmitter(t *testing.T) {
	em, ps := newTestParticleSystem()

	ri := influencers.NewRotationSpeedInfluencer()
	ri.AddRotationSpeed(mgl64.Vec3{0, 0, 1})
	ri.AddRotationSpeed(mgl64.Vec3{0, 0, 2})
	ri.SetCycle(true)
	ri.SetFixedDuration(0)

	cfg := &config.EffectConfig{Name: "broken", Lifetime: "1", SpawnRate: 10}
	emitterID, err := ps.SpawnEffectWith(cfg, []influencers.Influencer{ri}, 0, 0)
	if err != nil {
		t.Fatalf("SpawnEffectWith() error: %v", err)
	}

	ps.Update(0.1)
	em.RemoveMarkedEntities()

	if got := len(particlesOf(em)); got != 0 {
		t.Errorf("rejected particle should not be created, got %d", got)
	}

	// 停用且没有粒子的发射器在同一帧被回收
	if em.IsAlive(emitterID) {
		t.Error("stopped emitter without particles should be destroyed")
	}
}

func TestParticleSystem_InitializeErrorRecorded(t *testing.T) {
	em, ps := newTestParticleSystem()

	ri := influencers.NewRotationSpeedInfluencer()
	ri.AddRotationSpeed(mgl64.Vec3{0, 0, 1})
	ri.AddRotationSpeed(mgl64.Vec3{0, 0, 2})
	ri.SetCycle(true)

	cfg := &config.EffectConfig{Name: "broken", Lifetime: "1"}
	emitterID, _ := ps.SpawnEffectWith(cfg, []influencers.Influencer{ri}, 0, 0)
	emitter, _ := ecs.GetComponent[*components.EmitterComponent](em, emitterID)

	ps.Update(0.1)

	if emitter.Active {
		t.Error("emitter should be deactivated")
	}
	if !errors.Is(emitter.LastError, influencers.ErrInvalidDuration) {
		t.Errorf("LastError = %v, want ErrInvalidDuration", emitter.LastError)
	}
}

func TestParticleSystem_PresetsAreCloned(t *testing.T) {
	em, ps := newTestParticleSystem()

	preset := influencers.NewRotationSpeedInfluencer()
	preset.AddRotationSpeed(mgl64.Vec3{0, 0, 1})
	preset.SetUseRandomDirection(false)
	preset.SetUseRandomSpeed(false)

	cfg := &config.EffectConfig{Name: "a", Lifetime: "5"}
	id1, _ := ps.SpawnEffectWith(cfg, []influencers.Influencer{preset}, 0, 0)
	id2, _ := ps.SpawnEffectWith(cfg, []influencers.Influencer{preset}, 0, 0)

	e1, _ := ecs.GetComponent[*components.EmitterComponent](em, id1)
	e2, _ := ecs.GetComponent[*components.EmitterComponent](em, id2)

	if e1.Influencers[0] == influencers.Influencer(preset) || e1.Influencers[0] == e2.Influencers[0] {
		t.Fatal("each emitter must own its influencer")
	}

	preset.RemoveAll()
	preset.AddRotationSpeed(mgl64.Vec3{0, 0, 100})

	ps.Update(0.5)
	for _, p := range particlesOf(em) {
		if p.Data.RotationSpeed.Z() != 1 {
			t.Errorf("preset change leaked into emitter: speed %v", p.Data.RotationSpeed)
		}
	}
}

func TestParticleSystem_Clear(t *testing.T) {
	em, ps := newTestParticleSystem()

	cfg := steadySpin("0 0 1")
	cfg.SpawnMaxActive = 5
	ps.SpawnEffect(cfg, 0, 0)
	ps.SpawnEffect(cfg, 10, 10)
	ps.Update(0.1)

	ps.Clear()
	em.RemoveMarkedEntities()

	if em.EntityCount() != 0 {
		t.Errorf("EntityCount after Clear = %d", em.EntityCount())
	}
}

func TestParticleSystem_AlphaFade(t *testing.T) {
	tests := []struct {
		age, life, want float64
	}{
		{0, 1, 1},
		{0.8, 1, 1},
		{0.9, 1, 0.5},
		{1, 1, 0},
		{2, 1, 0},
		{1, 0, 0},
	}

	for _, tt := range tests {
		if got := particleAlpha(tt.age, tt.life); math.Abs(got-tt.want) > 0.001 {
			t.Errorf("particleAlpha(%v, %v) = %v, want %v", tt.age, tt.life, got, tt.want)
		}
	}
}
