// Command verify_rotation traces one particle through a rotation effect
// without opening a window.
//
// Usage:
//
//	go run ./cmd/verify_rotation --config data/effects.yaml --effect Tumble --dt 0.25 --frames 12
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/gonewx/particlefx/internal/particle"
	"github.com/gonewx/particlefx/pkg/config"
)

var (
	configFlag = flag.String("config", "data/effects.yaml", "Effect library path")
	effectFlag = flag.String("effect", "", "Effect name (default: first effect)")
	dtFlag     = flag.Float64("dt", 1.0/60.0, "Frame time in seconds")
	framesFlag = flag.Int("frames", 120, "Number of frames to trace")
	seedFlag   = flag.Int64("seed", 1, "Random seed")
	lifeFlag   = flag.Float64("life", 0, "Particle lifetime override (0 = upper bound of the effect's lifetime)")
)

func main() {
	flag.Parse()

	lib, err := config.LoadEffectLibrary(*configFlag)
	if err != nil {
		log.Fatal("加载效果库失败:", err)
	}

	name := *effectFlag
	if name == "" {
		name = lib.Effects[0].Name
	}
	cfg, ok := lib.Find(name)
	if !ok {
		log.Fatalf("效果 %q 不存在，可用: %v", name, lib.Names())
	}

	ri, err := cfg.Rotation.BuildRotationInfluencer()
	if err != nil {
		log.Fatal("创建旋转影响器失败:", err)
	}
	ri.SetRandom(rand.New(rand.NewSource(*seedFlag)))

	life := *lifeFlag
	if life <= 0 {
		_, life, _ = cfg.LifetimeRange()
	}

	var p particle.Data
	p.StartLife = life
	if err := ri.Initialize(&p); err != nil {
		fmt.Fprintf(os.Stderr, "Initialize 失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== %s: %d keyframes, life=%.3fs, segment=%.3fs, cycle=%v ===\n",
		cfg.Name, len(ri.Rotations()), life, p.RotationDuration, ri.Cycle())
	fmt.Printf("%6s %8s %5s %9s  %-26s %-26s\n", "frame", "time", "seg", "interval", "speed", "angles")

	t := 0.0
	for frame := 1; frame <= *framesFlag; frame++ {
		ri.Update(&p, *dtFlag)
		t += *dtFlag
		fmt.Printf("%6d %8.3f %5d %9.4f  %-26s %-26s\n",
			frame, t, p.RotationIndex, p.RotationInterval,
			particle.FormatVec3(p.RotationSpeed), particle.FormatVec3(p.Angles))
	}
}
