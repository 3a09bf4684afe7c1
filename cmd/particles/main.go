// Package main provides the development launcher for the particle viewer.
// Unlike the root command it reads the effect library from disk, so edits
// to the YAML are picked up on restart without rebuilding.
//
// Usage:
//
//	go run ./cmd/particles [flags]
//
// Flags:
//
//	--config <path>       Effect library (default data/effects.yaml)
//	--effect <name>       Start with specific effect
//	--app <name>          Storage name for settings and presets (empty = memory only)
//	--verbose             Keep logging after startup
//
// Controls:
//
//	Mouse Click       - Spawn the current effect at cursor position
//	Mouse Drag        - Move the emitter spawned by the click
//	Space             - Spawn the current effect at screen center
//	Left/Right Arrow  - Switch to previous/next effect
//	P                 - Toggle pause
//	- / =             - Slow down / speed up simulation
//	H                 - Toggle HUD
//	R                 - Clear all particles
//	S                 - Save current effect's influencer as a preset
//	L                 - Load current effect's influencer from its preset
//	E                 - Export all saved presets to presets.pfxa
//	I                 - Import presets.pfxa
//	F11               - Toggle fullscreen
//	Q/Escape          - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/particlefx/pkg/app"
)

var (
	configFlag  = flag.String("config", app.DefaultConfigPath, "Effect library path")
	effectFlag  = flag.String("effect", "", "Start with specific effect name")
	appFlag     = flag.String("app", app.DefaultAppName, "Storage name for settings and presets (empty = memory only)")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()

	log.Println("=== Particle Effect Viewer (dev) ===")
	log.Printf("Config: %q", *configFlag)

	viewer, err := app.NewApp(app.Config{
		Verbose:    *verboseFlag,
		ConfigPath: *configFlag,
		Effect:     *effectFlag,
		AppName:    *appFlag,
	})
	if err != nil {
		log.Fatal("Failed to initialize viewer:", err)
	}

	settings := viewer.GetSettingsManager()

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Particle Effect Viewer (dev)")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(settings.GetSettings().Fullscreen)

	if err := ebiten.RunGame(viewer); err != nil && !errors.Is(err, app.ErrQuit) {
		log.Fatal(err)
	}

	if err := settings.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save settings: %v\n", err)
	}
}
