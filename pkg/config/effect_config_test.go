package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/particlefx/internal/particle"
)

const sampleLibrary = `
effects:
  - name: Tumble
    spawnRate: 20
    spawnMaxActive: 50
    lifetime: "[1.5 2.5]"
    particleSize: 12
    rotation:
      useRandomDirection: false
      useRandomSpeed: false
      useRandomStartRotation: {z: true}
      speedFactor: "1 1 1"
      keyframes:
        - speed: "0 10 0"
        - speed: "0,20,0"
          interpolation: EaseOut
  - name: Pinwheel
    lifetime: "3"
    rotation:
      cycle: true
      fixedDuration: 0.5
      enabled: false
      keyframes:
        - speed: "0 0 6"
        - speed: "0 0 -6"
          interpolation: EaseInOut
`

func TestLoadEffectLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "effects.yaml")
	if err := os.WriteFile(path, []byte(sampleLibrary), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	lib, err := LoadEffectLibrary(path)
	if err != nil {
		t.Fatalf("LoadEffectLibrary() error: %v", err)
	}

	names := lib.Names()
	if len(names) != 2 || names[0] != "Tumble" || names[1] != "Pinwheel" {
		t.Fatalf("Names() = %v", names)
	}

	tumble, ok := lib.Find("Tumble")
	if !ok {
		t.Fatal("Find(Tumble) failed")
	}
	lo, hi, err := tumble.LifetimeRange()
	if err != nil || lo != 1.5 || hi != 2.5 {
		t.Errorf("LifetimeRange = [%v %v], %v", lo, hi, err)
	}

	if _, ok := lib.Find("Missing"); ok {
		t.Error("Find(Missing) should fail")
	}
}

func TestLoadEffectLibraryMissingFile(t *testing.T) {
	if _, err := LoadEffectLibrary(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBuildRotationInfluencer(t *testing.T) {
	lib, err := ParseEffectLibrary([]byte(sampleLibrary))
	if err != nil {
		t.Fatalf("ParseEffectLibrary() error: %v", err)
	}

	tumble, _ := lib.Find("Tumble")
	ri, err := tumble.Rotation.BuildRotationInfluencer()
	if err != nil {
		t.Fatalf("BuildRotationInfluencer() error: %v", err)
	}

	rots := ri.Rotations()
	if len(rots) != 2 || rots[0] != (mgl64.Vec3{0, 10, 0}) || rots[1] != (mgl64.Vec3{0, 20, 0}) {
		t.Errorf("Rotations = %v", rots)
	}
	interps := ri.Interpolations()
	if interps[0] != particle.Linear || interps[1] != particle.EaseOut {
		t.Errorf("Interpolations = %v", interps)
	}
	if ri.UseRandomDirection() || ri.UseRandomSpeed() {
		t.Error("random flags should be disabled by config")
	}
	if !ri.IsEnabled() || !ri.Direction() || ri.Cycle() {
		t.Error("unset flags should keep influencer defaults")
	}
	if ri.UseRandomStartRotationX() || ri.UseRandomStartRotationY() || !ri.UseRandomStartRotationZ() {
		t.Error("random start rotation axes mismatch")
	}
	if ri.SpeedFactor() != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("SpeedFactor = %v", ri.SpeedFactor())
	}

	pin, _ := lib.Find("Pinwheel")
	ri2, err := pin.Rotation.BuildRotationInfluencer()
	if err != nil {
		t.Fatalf("BuildRotationInfluencer() error: %v", err)
	}
	if ri2.IsEnabled() || !ri2.Cycle() || ri2.FixedDuration() != 0.5 {
		t.Error("Pinwheel flags mismatch")
	}
	if !ri2.UseRandomDirection() || !ri2.UseRandomSpeed() {
		t.Error("random flags should default to true")
	}
}

func TestEffectConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		errContains string
	}{
		{
			name:        "valid single keyframe without cycle",
			yamlContent: "name: a\nlifetime: '1'\nrotation:\n  keyframes:\n    - speed: '1 2 3'\n",
		},
		{
			name:        "valid empty rotation",
			yamlContent: "name: a\nlifetime: '1'\n",
		},
		{
			name:        "missing lifetime",
			yamlContent: "name: a\n",
			errContains: "lifetime must be positive",
		},
		{
			name:        "inverted lifetime",
			yamlContent: "name: a\nlifetime: '[3 1]'\n",
			errContains: "min(3.00) > max(1.00)",
		},
		{
			name:        "negative spawn rate",
			yamlContent: "name: a\nlifetime: '1'\nspawnRate: -1\n",
			errContains: "spawnRate",
		},
		{
			name:        "negative limits",
			yamlContent: "name: a\nlifetime: '1'\nspawnMaxActive: -2\n",
			errContains: "spawn limits",
		},
		{
			name:        "bad speed",
			yamlContent: "name: a\nlifetime: '1'\nrotation:\n  keyframes:\n    - speed: '1 2'\n",
			errContains: "keyframe #0",
		},
		{
			name:        "unknown interpolation",
			yamlContent: "name: a\nlifetime: '1'\nrotation:\n  keyframes:\n    - speed: '1 2 3'\n      interpolation: Bounce\n",
			errContains: "unknown interpolation",
		},
		{
			name:        "cycle without duration",
			yamlContent: "name: a\nlifetime: '1'\nrotation:\n  cycle: true\n  keyframes:\n    - speed: '1 2 3'\n    - speed: '3 2 1'\n",
			errContains: "fixedDuration > 0",
		},
		{
			name:        "bad speed factor",
			yamlContent: "name: a\nlifetime: '1'\nrotation:\n  speedFactor: 'x'\n",
			errContains: "speedFactor",
		},
		{
			name:        "malformed yaml",
			yamlContent: "name: [a\n",
			errContains: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEffectConfig([]byte(tt.yamlContent))
			if tt.errContains == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestEffectLibraryValidate(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		errContains string
	}{
		{"empty", "effects: []\n", "no effects"},
		{"unnamed", "effects:\n  - lifetime: '1'\n", "has no name"},
		{"space in name", "effects:\n  - name: Slow Spin\n    lifetime: '1'\n", "invalid effect name"},
		{"path in name", "effects:\n  - name: ../spin\n    lifetime: '1'\n", "invalid effect name"},
		{"duplicate", "effects:\n  - name: a\n    lifetime: '1'\n  - name: a\n    lifetime: '1'\n", "duplicate"},
		{"nested error", "effects:\n  - name: a\n    lifetime: '-1'\n", `effect "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEffectLibrary([]byte(tt.yamlContent))
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error = %v, want containing %q", err, tt.errContains)
			}
		})
	}
}

// TestShippedEffectLibrary 仓库自带的效果库必须能通过校验
func TestShippedEffectLibrary(t *testing.T) {
	lib, err := LoadEffectLibrary("../../data/effects.yaml")
	if err != nil {
		t.Fatalf("LoadEffectLibrary() error: %v", err)
	}

	for _, e := range lib.Effects {
		if _, err := e.Rotation.BuildRotationInfluencer(); err != nil {
			t.Errorf("effect %q: %v", e.Name, err)
		}
	}
}
