package game

import (
	"log"

	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/particlefx/pkg/utils"
)

// GameState 查看器的持久化状态入口
//
// 持有 gdata 存储以及基于它的设置和预设管理器。
// gdata 打开失败时进入降级模式：设置和预设只保存在内存中。
type GameState struct {
	gdataManager *gdata.Manager
	settings     *SettingsManager
	presets      *PresetStore
}

// NewGameState 打开应用存储并创建各管理器
//
// 参数：
//   - appName: gdata 应用名（决定存储目录），为空时直接使用降级模式
func NewGameState(appName string) *GameState {
	var manager *gdata.Manager
	if appName != "" {
		if err := utils.EnsureStorageDir(); err != nil {
			log.Printf("[GameState] Warning: storage dir check failed: %v", err)
		}
		m, err := gdata.Open(gdata.Config{AppName: appName})
		if err != nil {
			log.Printf("[GameState] Warning: gdata unavailable, running in memory: %v", err)
		} else {
			manager = m
		}
	}

	return &GameState{
		gdataManager: manager,
		settings:     NewSettingsManager(manager),
		presets:      NewPresetStore(manager),
	}
}

// GetGdataManager 返回 gdata 管理器，降级模式下为 nil
func (gs *GameState) GetGdataManager() *gdata.Manager {
	return gs.gdataManager
}

// GetSettingsManager 返回设置管理器
func (gs *GameState) GetSettingsManager() *SettingsManager {
	return gs.settings
}

// GetPresetStore 返回预设存储
func (gs *GameState) GetPresetStore() *PresetStore {
	return gs.presets
}

// IsPersistent 是否写入磁盘
func (gs *GameState) IsPersistent() bool {
	return gs.gdataManager != nil
}
