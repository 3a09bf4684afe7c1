package game

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/gonewx/particlefx/pkg/influencers"
)

// 存储路径常量
const presetObject = "presets"

// ErrPresetNotFound 预设不存在
var ErrPresetNotFound = errors.New("preset not found")

// presetData 一个预设：影响器名 -> 容器字段
type presetData map[string]map[string]string

// PresetStore 影响器预设存储
//
// 每个预设按名称保存一组影响器状态（通过 YAMLCapsule 序列化）。
// gdataManager 为 nil 时进入降级模式，预设只保存在内存中。
type PresetStore struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	memory       map[string][]byte
}

// NewPresetStore 创建预设存储
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（仅内存）
func NewPresetStore(gdataManager *gdata.Manager) *PresetStore {
	return &PresetStore{
		gdataManager: gdataManager,
		memory:       make(map[string][]byte),
	}
}

// Exists 预设是否存在
func (s *PresetStore) Exists(name string) bool {
	if s.gdataManager == nil {
		_, ok := s.memory[name]
		return ok
	}
	return s.gdataManager.ObjectPropExists(presetObject, name)
}

// SaveInfluencer 把影响器状态写入预设 name
//
// 同一预设中其他影响器的状态保持不变。
func (s *PresetStore) SaveInfluencer(name string, inf influencers.Influencer) error {
	if err := validatePresetName(name); err != nil {
		return err
	}

	preset, err := s.loadPreset(name)
	if err != nil && !errors.Is(err, ErrPresetNotFound) {
		return err
	}
	if preset == nil {
		preset = make(presetData)
	}

	capsule := NewYAMLCapsule()
	if err := inf.Save(capsule); err != nil {
		return fmt.Errorf("failed to save %s: %w", inf.Name(), err)
	}
	preset[inf.Name()] = capsule.values

	data, err := yaml.Marshal(preset)
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := s.write(name, data); err != nil {
		return err
	}
	log.Printf("[PresetStore] Saved %s into preset %q", inf.Name(), name)
	return nil
}

// LoadInfluencer 从预设 name 恢复影响器状态
//
// 预设中没有该影响器的记录时，以空容器加载（所有字段取默认值）。
func (s *PresetStore) LoadInfluencer(name string, inf influencers.Influencer) error {
	preset, err := s.loadPreset(name)
	if err != nil {
		return err
	}

	capsule := NewYAMLCapsule()
	if values, ok := preset[inf.Name()]; ok && values != nil {
		capsule.values = values
	}
	if err := inf.Load(capsule); err != nil {
		return fmt.Errorf("preset %q: failed to load %s: %w", name, inf.Name(), err)
	}
	return nil
}

// ExportArchive 把指定预设打包为 lz4 压缩归档
func (s *PresetStore) ExportArchive(names []string) ([]byte, error) {
	entries := make(map[string][]byte, len(names))
	for _, name := range names {
		data, err := s.read(name)
		if err != nil {
			return nil, err
		}
		entries[name] = data
	}
	return PackArchive(entries)
}

// ImportArchive 导入归档中的全部预设，返回导入的预设名（排序）
//
// 任何条目无法解析时不写入任何预设。
func (s *PresetStore) ImportArchive(data []byte) ([]string, error) {
	entries, err := UnpackArchive(data)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for name, raw := range entries {
		if err := validatePresetName(name); err != nil {
			return nil, err
		}
		var preset presetData
		if err := yaml.Unmarshal(raw, &preset); err != nil {
			return nil, fmt.Errorf("archive preset %q: %w", name, err)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := s.write(name, entries[name]); err != nil {
			return nil, err
		}
	}
	log.Printf("[PresetStore] Imported %d presets", len(names))
	return names, nil
}

func (s *PresetStore) loadPreset(name string) (presetData, error) {
	data, err := s.read(name)
	if err != nil {
		return nil, err
	}

	var preset presetData
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preset %q: %w", name, err)
	}
	if preset == nil {
		preset = make(presetData)
	}
	return preset, nil
}

func (s *PresetStore) read(name string) ([]byte, error) {
	if !s.Exists(name) {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}
	if s.gdataManager == nil {
		return s.memory[name], nil
	}

	data, err := s.gdataManager.LoadObjectProp(presetObject, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load preset %q: %w", name, err)
	}
	return data, nil
}

func (s *PresetStore) write(name string, data []byte) error {
	// 降级模式：仅内存
	if s.gdataManager == nil {
		s.memory[name] = data
		return nil
	}

	if err := s.gdataManager.SaveObjectProp(presetObject, name, data); err != nil {
		return fmt.Errorf("failed to save preset %q: %w", name, err)
	}
	return nil
}

// validatePresetName 预设名会成为文件名，只允许字母、数字、'-' 和 '_'
func validatePresetName(name string) error {
	if name == "" {
		return fmt.Errorf("preset name is empty")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("invalid preset name %q: only letters, digits, '-' and '_' are allowed", name)
		}
	}
	return nil
}
