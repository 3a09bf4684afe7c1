package app

import (
	"fmt"
	"log"

	"github.com/gonewx/particlefx/pkg/config"
	"github.com/gonewx/particlefx/pkg/embedded"
)

// LoadLibrary 加载效果库
//
// 嵌入数据中存在该路径时优先使用嵌入版本（发布构建和移动端），
// 否则从磁盘读取（开发时可直接编辑 data/effects.yaml）。
func LoadLibrary(path string) (*config.EffectLibrary, error) {
	if embedded.Exists(path) {
		data, err := embedded.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded effect library: %w", err)
		}
		lib, err := config.ParseEffectLibrary(data)
		if err != nil {
			return nil, fmt.Errorf("embedded %s: %w", path, err)
		}
		log.Printf("[App] Loaded %d effects from embedded %s", len(lib.Effects), path)
		return lib, nil
	}

	lib, err := config.LoadEffectLibrary(path)
	if err != nil {
		return nil, err
	}
	log.Printf("[App] Loaded %d effects from %s", len(lib.Effects), path)
	return lib, nil
}
