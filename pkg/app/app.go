// Package app 提供粒子效果查看器的核心包装器
//
// 该包将查看器初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 或 cmd/particles 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gonewx/particlefx/pkg/components"
	"github.com/gonewx/particlefx/pkg/config"
	"github.com/gonewx/particlefx/pkg/ecs"
	"github.com/gonewx/particlefx/pkg/game"
	"github.com/gonewx/particlefx/pkg/influencers"
	"github.com/gonewx/particlefx/pkg/systems"
	"github.com/gonewx/particlefx/pkg/utils"
)

const (
	// ScreenWidth 逻辑屏幕宽度
	ScreenWidth = 1024
	// ScreenHeight 逻辑屏幕高度
	ScreenHeight = 768

	// DefaultConfigPath 默认效果库路径
	DefaultConfigPath = "data/effects.yaml"
	// DefaultAppName 默认 gdata 应用名
	DefaultAppName = "particlefx"
	// ArchivePath 导出预设的文件名
	ArchivePath = "presets.pfxa"
)

// ErrQuit 用户请求退出时由 Update 返回
var ErrQuit = errors.New("quit requested")

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 效果库路径，为空使用 DefaultConfigPath
	ConfigPath string
	// Effect 启动时选中的效果，为空则恢复上次会话的选择
	Effect string
	// AppName gdata 应用名，为空时设置和预设只保存在内存中
	AppName string
}

// App 是查看器的核心包装器，实现 ebiten.Game 接口
type App struct {
	entityManager  *ecs.EntityManager
	particleSystem *systems.ParticleSystem
	renderSystem   *systems.ParticleRenderSystem

	state    *game.GameState
	settings *game.SettingsManager

	library *config.EffectLibrary
	names   []string
	// presets 每个效果一份影响器配置，发射器生成时克隆
	presets      map[string]*influencers.RotationSpeedInfluencer
	currentIndex int

	drag *utils.DragTracker
	// dragEmitter 正在被拖动的发射器，0 表示没有
	dragEmitter ecs.EntityID

	paused        bool
	statusMessage string
	verbose       bool
}

// NewApp 创建并初始化查看器
//
// 发布构建应先调用 embedded.Init()，否则效果库从磁盘读取。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	path := cfg.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}
	lib, err := LoadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("效果库加载失败: %w", err)
	}

	presets := make(map[string]*influencers.RotationSpeedInfluencer, len(lib.Effects))
	for i := range lib.Effects {
		effect := &lib.Effects[i]
		ri, err := effect.Rotation.BuildRotationInfluencer()
		if err != nil {
			return nil, fmt.Errorf("effect %q: %w", effect.Name, err)
		}
		presets[effect.Name] = ri
	}

	em := ecs.NewEntityManager()
	state := game.NewGameState(cfg.AppName)

	a := &App{
		entityManager:  em,
		particleSystem: systems.NewParticleSystem(em),
		renderSystem:   systems.NewParticleRenderSystem(em, nil),
		state:          state,
		settings:       state.GetSettingsManager(),
		library:        lib,
		names:          lib.Names(),
		presets:        presets,
		drag:           utils.NewDragTracker(),
		verbose:        cfg.Verbose,
	}

	// 命令行参数优先，其次是上次会话的效果
	start := cfg.Effect
	if start == "" {
		start = a.settings.GetSettings().LastEffect
	}
	for i, name := range a.names {
		if name == start {
			a.currentIndex = i
			break
		}
	}

	a.selectCurrent()
	log.Printf("[App] Viewer initialized: %d effects, persistent storage: %v", len(a.names), state.IsPersistent())
	a.spawnAt(ScreenWidth/2, ScreenHeight/2)

	return a, nil
}

// Update 处理输入并推进模拟一帧
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrQuit
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		fullscreen := !ebiten.IsFullscreen()
		ebiten.SetFullscreen(fullscreen)
		a.settings.SetFullscreen(fullscreen)
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		a.togglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft):
		a.switchEffect(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowRight):
		a.switchEffect(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		a.scaleTime(0.5)
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		a.scaleTime(2)
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		a.settings.SetShowHUD(!a.settings.GetSettings().ShowHUD)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		a.particleSystem.Clear()
		a.dragEmitter = 0
		a.statusMessage = "Cleared all particles"
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		a.savePreset()
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		a.loadPreset()
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		a.exportPresets(ArchivePath)
	case inpututil.IsKeyJustPressed(ebiten.KeyI):
		a.importPresets(ArchivePath)
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		a.spawnAt(ScreenWidth/2, ScreenHeight/2)
	}

	a.handlePointer()

	if !a.paused {
		dt := 1.0 / float64(ebiten.TPS())
		a.particleSystem.Update(dt * a.settings.GetSettings().TimeScale)
	}
	a.entityManager.RemoveMarkedEntities()

	return nil
}

// handlePointer 点击生成发射器，拖动时发射器跟随指针
func (a *App) handlePointer() {
	if pressed, x, y := utils.PointerJustPressed(); pressed {
		a.dragEmitter = a.spawnAt(float64(x), float64(y))
	}

	a.drag.Update()
	if a.drag.IsDragging() {
		x, y := a.drag.Position()
		a.moveEmitter(a.dragEmitter, float64(x), float64(y))
	}
	if a.drag.State() == utils.DragStateNone {
		a.dragEmitter = 0
	}
}

// Draw 绘制粒子和 HUD
func (a *App) Draw(screen *ebiten.Image) {
	a.renderSystem.Draw(screen)

	if !a.settings.GetSettings().ShowHUD {
		return
	}
	for i, line := range a.hudLines() {
		ebitenutil.DebugPrintAt(screen, line, 10, 10+i*20)
	}
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 全屏时用黑色 letterbox 并线性缩放
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回查看器的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// GetSettingsManager 返回设置管理器，用于退出时保存
func (a *App) GetSettingsManager() *game.SettingsManager {
	return a.settings
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

func (a *App) hudLines() []string {
	help := "Click/Space spawn  drag move  <-/-> switch  P pause  -/= speed  R clear  S/L preset  E/I archive  H hud"
	if utils.IsMobile() {
		help = "Tap to spawn, drag to move the new emitter"
	}
	return []string{
		fmt.Sprintf("Effect: %s (%d/%d)", a.currentName(), a.currentIndex+1, len(a.names)),
		fmt.Sprintf("Emitters: %d  Particles: %d  FPS: %.0f",
			len(ecs.GetEntitiesWith1[*components.EmitterComponent](a.entityManager)),
			len(ecs.GetEntitiesWith1[*components.ParticleComponent](a.entityManager)),
			ebiten.ActualFPS()),
		fmt.Sprintf("Time scale: x%.2f", a.settings.GetSettings().TimeScale),
		a.statusMessage,
		help,
	}
}

func (a *App) currentName() string {
	if len(a.names) == 0 {
		return ""
	}
	return a.names[a.currentIndex]
}

// spawnAt 在指定位置生成当前效果，失败时返回 0
func (a *App) spawnAt(x, y float64) ecs.EntityID {
	name := a.currentName()
	effect, ok := a.library.Find(name)
	if !ok {
		a.statusMessage = "No effects to spawn"
		return 0
	}

	id, err := a.particleSystem.SpawnEffectWith(effect, []influencers.Influencer{a.presets[name]}, x, y)
	if err != nil {
		log.Printf("[App] Failed to create effect %s: %v", name, err)
		a.statusMessage = fmt.Sprintf("Error: %v", err)
		return 0
	}
	a.statusMessage = fmt.Sprintf("Spawned: %s at (%.0f, %.0f)", name, x, y)
	return id
}

// moveEmitter 移动发射器；已发射的粒子留在原处
func (a *App) moveEmitter(id ecs.EntityID, x, y float64) {
	if id == 0 || !a.entityManager.IsAlive(id) {
		return
	}
	if pos, ok := ecs.GetComponent[*components.PositionComponent](a.entityManager, id); ok {
		pos.X, pos.Y = x, y
	}
}

// switchEffect 按 delta 切换效果并在屏幕中央生成
func (a *App) switchEffect(delta int) {
	if len(a.names) == 0 {
		return
	}
	a.currentIndex = (a.currentIndex + delta + len(a.names)) % len(a.names)
	a.selectCurrent()
	a.spawnAt(ScreenWidth/2, ScreenHeight/2)
}

func (a *App) togglePause() {
	a.paused = !a.paused
	if a.paused {
		a.statusMessage = "PAUSED - Press P to resume"
	} else {
		a.statusMessage = "Resumed"
	}
}

func (a *App) scaleTime(factor float64) {
	a.settings.SetTimeScale(a.settings.GetSettings().TimeScale * factor)
	a.statusMessage = fmt.Sprintf("Time scale: x%.2f", a.settings.GetSettings().TimeScale)
}

func (a *App) savePreset() {
	name := a.currentName()
	if err := a.state.GetPresetStore().SaveInfluencer(name, a.presets[name]); err != nil {
		log.Printf("[App] Failed to save preset %s: %v", name, err)
		a.statusMessage = fmt.Sprintf("Save failed: %v", err)
		return
	}
	a.statusMessage = fmt.Sprintf("Saved preset: %s", name)
}

func (a *App) loadPreset() {
	name := a.currentName()
	if err := a.state.GetPresetStore().LoadInfluencer(name, a.presets[name]); err != nil {
		log.Printf("[App] Failed to load preset %s: %v", name, err)
		a.statusMessage = fmt.Sprintf("Load failed: %v", err)
		return
	}
	a.statusMessage = fmt.Sprintf("Loaded preset: %s", name)
}

// exportPresets 把库中已保存的预设打包写入 path
func (a *App) exportPresets(path string) {
	store := a.state.GetPresetStore()

	var saved []string
	for _, name := range a.names {
		if store.Exists(name) {
			saved = append(saved, name)
		}
	}
	if len(saved) == 0 {
		a.statusMessage = "No saved presets to export"
		return
	}

	data, err := store.ExportArchive(saved)
	if err == nil {
		err = os.WriteFile(path, data, 0644)
	}
	if err != nil {
		log.Printf("[App] Failed to export presets: %v", err)
		a.statusMessage = fmt.Sprintf("Export failed: %v", err)
		return
	}
	a.statusMessage = fmt.Sprintf("Exported %d presets to %s (%d bytes)", len(saved), path, len(data))
}

// importPresets 导入预设包，并把属于库中效果的预设应用到当前影响器
func (a *App) importPresets(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		a.statusMessage = fmt.Sprintf("Import failed: %v", err)
		return
	}

	store := a.state.GetPresetStore()
	names, err := store.ImportArchive(data)
	if err != nil {
		log.Printf("[App] Failed to import presets: %v", err)
		a.statusMessage = fmt.Sprintf("Import failed: %v", err)
		return
	}

	applied := 0
	for _, name := range names {
		ri, ok := a.presets[name]
		if !ok {
			continue
		}
		if err := store.LoadInfluencer(name, ri); err != nil {
			log.Printf("[App] Failed to apply imported preset %s: %v", name, err)
			continue
		}
		applied++
	}
	a.statusMessage = fmt.Sprintf("Imported %d presets (%d applied)", len(names), applied)
}

// selectCurrent 记录当前效果并刷新状态栏
func (a *App) selectCurrent() {
	name := a.currentName()
	if name == "" {
		a.statusMessage = "No effects available"
		return
	}
	a.settings.SetLastEffect(name)
	a.statusMessage = fmt.Sprintf("Selected: %s", name)
	log.Printf("[App] Current effect: %s (%d/%d)", name, a.currentIndex+1, len(a.names))
}
