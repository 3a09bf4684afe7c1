// Command particlefx 是粒子效果查看器的发布入口，效果库从二进制内嵌数据读取。
// 开发时使用 cmd/particles 直接读取磁盘上的 data/effects.yaml。
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/particlefx/pkg/app"
	"github.com/gonewx/particlefx/pkg/embedded"
)

var (
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging")
	effectFlag  = flag.String("effect", "", "Start with specific effect name")
)

func main() {
	flag.Parse()

	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:    *verboseFlag,
		ConfigPath: app.DefaultConfigPath,
		Effect:     *effectFlag,
		AppName:    app.DefaultAppName,
	})
	if err != nil {
		log.Fatalf("查看器初始化失败: %v", err)
	}

	settings := gameApp.GetSettingsManager()

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Particle Effect Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(settings.GetSettings().Fullscreen)

	if err := ebiten.RunGame(gameApp); err != nil && !errors.Is(err, app.ErrQuit) {
		log.Fatal(err)
	}

	if err := settings.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save settings: %v\n", err)
	}
}
