package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gonewx/particlefx/internal/particle"
	"github.com/gonewx/particlefx/pkg/influencers"
)

// EffectLibrary 粒子效果库
//
// 一个 YAML 文件中可以定义多个效果，按 name 查找。
//
// 配置文件位置: data/effects.yaml
type EffectLibrary struct {
	Effects []EffectConfig `yaml:"effects"`
}

// EffectConfig 单个粒子效果（一个发射器）的配置
//
// 标量字段沿用粒子配置的值字符串格式：
//   - Lifetime: "2" 或 "[1.5 2.5]"（每个粒子在范围内随机）
type EffectConfig struct {
	// Name 效果名，在效果库中唯一
	Name string `yaml:"name"`

	// SpawnRate 每秒发射粒子数，0 表示一次性发射 SpawnMaxActive 个
	SpawnRate float64 `yaml:"spawnRate"`

	// SpawnMaxActive 同时存活粒子上限（0 = 不限）
	SpawnMaxActive int `yaml:"spawnMaxActive"`

	// SpawnMaxLaunched 总发射上限（0 = 不限）
	SpawnMaxLaunched int `yaml:"spawnMaxLaunched"`

	// Lifetime 粒子寿命（秒）
	Lifetime string `yaml:"lifetime"`

	// SystemDuration 发射器持续时间（秒，0 = 无限）
	SystemDuration float64 `yaml:"systemDuration"`

	// ParticleSize 渲染尺寸（像素），0 使用默认值
	ParticleSize float64 `yaml:"particleSize"`

	// Rotation 旋转速度影响器配置
	Rotation RotationConfig `yaml:"rotation"`
}

// RotationConfig 旋转速度影响器配置
//
// 未填写的布尔开关使用影响器自身的默认值（enabled、useRandomDirection、
// useRandomSpeed、direction 默认为 true）。
type RotationConfig struct {
	Enabled                *bool            `yaml:"enabled"`
	Cycle                  bool             `yaml:"cycle"`
	FixedDuration          float64          `yaml:"fixedDuration"`
	UseRandomDirection     *bool            `yaml:"useRandomDirection"`
	UseRandomSpeed         *bool            `yaml:"useRandomSpeed"`
	UseRandomStartRotation AxisFlags        `yaml:"useRandomStartRotation"`
	Direction              *bool            `yaml:"direction"`
	SpeedFactor            string           `yaml:"speedFactor"`
	Keyframes              []KeyframeConfig `yaml:"keyframes"`
}

// AxisFlags 按轴开关
type AxisFlags struct {
	X bool `yaml:"x"`
	Y bool `yaml:"y"`
	Z bool `yaml:"z"`
}

// KeyframeConfig 一个角速度关键帧
type KeyframeConfig struct {
	// Speed 角速度（弧度/秒），格式 "x y z" 或 "x,y,z"
	Speed string `yaml:"speed"`
	// Interpolation 从该关键帧开始的分段使用的曲线，空表示 Linear
	Interpolation string `yaml:"interpolation"`
}

// LoadEffectLibrary 加载粒子效果库
//
// 参数:
//   - path: 配置文件路径（如 "data/effects.yaml"）
//
// 返回:
//   - *EffectLibrary: 通过校验的效果库
//   - error: 读取、解析或校验失败
func LoadEffectLibrary(path string) (*EffectLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read effect library: %w", err)
	}

	lib, err := ParseEffectLibrary(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// ParseEffectLibrary 从 YAML 数据解析效果库并校验
func ParseEffectLibrary(data []byte) (*EffectLibrary, error) {
	var lib EffectLibrary
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse effect library: %w", err)
	}

	if err := lib.Validate(); err != nil {
		return nil, fmt.Errorf("invalid effect library: %w", err)
	}
	return &lib, nil
}

// ParseEffectConfig 解析单个效果（无 effects 包装）并校验
func ParseEffectConfig(data []byte) (*EffectConfig, error) {
	var cfg EffectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse effect config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid effect config %q: %w", cfg.Name, err)
	}
	return &cfg, nil
}

// Validate 校验库中每个效果，并检查名称唯一
func (l *EffectLibrary) Validate() error {
	if len(l.Effects) == 0 {
		return fmt.Errorf("no effects defined")
	}

	seen := make(map[string]bool, len(l.Effects))
	for i := range l.Effects {
		e := &l.Effects[i]
		if e.Name == "" {
			return fmt.Errorf("effect #%d has no name", i)
		}
		if !validEffectName(e.Name) {
			return fmt.Errorf("invalid effect name %q: only letters, digits, '-' and '_' are allowed", e.Name)
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate effect name %q", e.Name)
		}
		seen[e.Name] = true

		if err := e.Validate(); err != nil {
			return fmt.Errorf("effect %q: %w", e.Name, err)
		}
	}
	return nil
}

// validEffectName 效果名同时用作预设名（即存储文件名），字符集与预设名一致
func validEffectName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Find 按名称查找效果
func (l *EffectLibrary) Find(name string) (*EffectConfig, bool) {
	for i := range l.Effects {
		if l.Effects[i].Name == name {
			return &l.Effects[i], true
		}
	}
	return nil, false
}

// Names 返回所有效果名（按文件顺序）
func (l *EffectLibrary) Names() []string {
	names := make([]string, len(l.Effects))
	for i, e := range l.Effects {
		names[i] = e.Name
	}
	return names
}

// Validate 验证效果配置
//
// 检查：
//   - 发射参数非负
//   - 寿命范围合法，且分段模式下寿命必须为正（否则分段时长为 0）
//   - 旋转配置合法
func (c *EffectConfig) Validate() error {
	if c.SpawnRate < 0 {
		return fmt.Errorf("spawnRate must be >= 0, got %v", c.SpawnRate)
	}
	if c.SpawnMaxActive < 0 || c.SpawnMaxLaunched < 0 {
		return fmt.Errorf("spawn limits must be >= 0 (maxActive=%d, maxLaunched=%d)",
			c.SpawnMaxActive, c.SpawnMaxLaunched)
	}
	if c.SystemDuration < 0 {
		return fmt.Errorf("systemDuration must be >= 0, got %v", c.SystemDuration)
	}
	if c.ParticleSize < 0 {
		return fmt.Errorf("particleSize must be >= 0, got %v", c.ParticleSize)
	}

	lo, hi, err := c.LifetimeRange()
	if err != nil {
		return err
	}
	if lo <= 0 {
		return fmt.Errorf("lifetime must be positive, got [%v %v]", lo, hi)
	}

	if err := c.Rotation.Validate(); err != nil {
		return fmt.Errorf("rotation: %w", err)
	}
	return nil
}

// LifetimeRange 解析 Lifetime 字段
func (c *EffectConfig) LifetimeRange() (min, max float64, err error) {
	min, max, err = particle.ParseRange(c.Lifetime)
	if err != nil {
		return 0, 0, fmt.Errorf("lifetime: %w", err)
	}
	if min > max {
		return 0, 0, fmt.Errorf("lifetime range invalid: min(%.2f) > max(%.2f)", min, max)
	}
	return min, max, nil
}

// Validate 验证旋转配置
//
// 多个关键帧的循环模式需要正的 fixedDuration；单个关键帧没有分段，不检查时长。
func (r *RotationConfig) Validate() error {
	for i, kf := range r.Keyframes {
		if _, err := particle.ParseVec3(kf.Speed); err != nil {
			return fmt.Errorf("keyframe #%d: %w", i, err)
		}
		if _, err := particle.ParseInterpolation(kf.Interpolation); err != nil {
			return fmt.Errorf("keyframe #%d: %w", i, err)
		}
	}

	if r.Cycle && len(r.Keyframes) > 1 && r.FixedDuration <= 0 {
		return fmt.Errorf("cycle mode with %d keyframes needs fixedDuration > 0, got %v",
			len(r.Keyframes), r.FixedDuration)
	}
	if r.FixedDuration < 0 {
		return fmt.Errorf("fixedDuration must be >= 0, got %v", r.FixedDuration)
	}

	if r.SpeedFactor != "" {
		if _, err := particle.ParseVec3(r.SpeedFactor); err != nil {
			return fmt.Errorf("speedFactor: %w", err)
		}
	}
	return nil
}

// BuildRotationInfluencer 根据配置创建旋转速度影响器
//
// 没有关键帧时不添加任何关键帧，影响器会在第一次 Initialize 时使用默认值。
func (r *RotationConfig) BuildRotationInfluencer() (*influencers.RotationSpeedInfluencer, error) {
	ri := influencers.NewRotationSpeedInfluencer()

	for i, kf := range r.Keyframes {
		speed, err := particle.ParseVec3(kf.Speed)
		if err != nil {
			return nil, fmt.Errorf("keyframe #%d: %w", i, err)
		}
		interp, err := particle.ParseInterpolation(kf.Interpolation)
		if err != nil {
			return nil, fmt.Errorf("keyframe #%d: %w", i, err)
		}
		ri.AddRotationSpeedWithInterpolation(speed, interp)
	}

	ri.SetEnabled(boolOr(r.Enabled, true))
	ri.SetCycle(r.Cycle)
	ri.SetFixedDuration(r.FixedDuration)
	ri.SetUseRandomDirection(boolOr(r.UseRandomDirection, true))
	ri.SetUseRandomSpeed(boolOr(r.UseRandomSpeed, true))
	ri.SetUseRandomStartRotation(r.UseRandomStartRotation.X, r.UseRandomStartRotation.Y, r.UseRandomStartRotation.Z)
	ri.SetDirection(boolOr(r.Direction, true))

	if r.SpeedFactor != "" {
		sf, err := particle.ParseVec3(r.SpeedFactor)
		if err != nil {
			return nil, fmt.Errorf("speedFactor: %w", err)
		}
		ri.SetSpeedFactor(sf)
	}

	return ri, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
