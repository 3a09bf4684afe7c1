package game

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/particlefx/internal/particle"
)

// YAMLCapsule 影响器序列化容器
//
// 实现 influencers.OutputCapsule 和 influencers.InputCapsule。
// 值以 "x y z" 字符串保存在一个扁平的 YAML 映射中：
//
//	speedFactor: "2 1 1"
//
// 等于默认值的字段不写入，读取时缺失字段返回默认值。
type YAMLCapsule struct {
	values map[string]string
}

// NewYAMLCapsule 创建空容器
func NewYAMLCapsule() *YAMLCapsule {
	return &YAMLCapsule{values: make(map[string]string)}
}

// UnmarshalCapsule 从 YAML 数据恢复容器
func UnmarshalCapsule(data []byte) (*YAMLCapsule, error) {
	c := NewYAMLCapsule()
	if err := yaml.Unmarshal(data, &c.values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal capsule: %w", err)
	}
	if c.values == nil {
		c.values = make(map[string]string)
	}
	return c, nil
}

// Marshal 序列化为 YAML
func (c *YAMLCapsule) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c.values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal capsule: %w", err)
	}
	return data, nil
}

// WriteVec3 写入向量；等于 def 时移除该字段
func (c *YAMLCapsule) WriteVec3(name string, v, def mgl64.Vec3) error {
	if name == "" {
		return fmt.Errorf("capsule field name is empty")
	}
	if v == def {
		delete(c.values, name)
		return nil
	}
	c.values[name] = particle.FormatVec3(v)
	return nil
}

// ReadVec3 读取向量；字段缺失返回 def，格式错误返回 error
func (c *YAMLCapsule) ReadVec3(name string, def mgl64.Vec3) (mgl64.Vec3, error) {
	raw, ok := c.values[name]
	if !ok {
		return def, nil
	}
	v, err := particle.ParseVec3(raw)
	if err != nil {
		return def, fmt.Errorf("capsule field %q: %w", name, err)
	}
	return v, nil
}

// Keys 返回已写入的字段名（排序）
func (c *YAMLCapsule) Keys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
