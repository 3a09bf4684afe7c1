package game

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gonewx/particlefx/pkg/influencers"
)

var (
	_ influencers.OutputCapsule = (*YAMLCapsule)(nil)
	_ influencers.InputCapsule  = (*YAMLCapsule)(nil)
)

func TestYAMLCapsuleSkipsDefault(t *testing.T) {
	c := NewYAMLCapsule()

	if err := c.WriteVec3("speedFactor", mgl64.Vec3{}, mgl64.Vec3{}); err != nil {
		t.Fatalf("WriteVec3() error: %v", err)
	}
	if len(c.Keys()) != 0 {
		t.Errorf("default value should not be written, keys=%v", c.Keys())
	}

	// 覆盖为默认值时移除已写入的字段
	if err := c.WriteVec3("speedFactor", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}); err != nil {
		t.Fatalf("WriteVec3() error: %v", err)
	}
	if err := c.WriteVec3("speedFactor", mgl64.Vec3{}, mgl64.Vec3{}); err != nil {
		t.Fatalf("WriteVec3() error: %v", err)
	}
	if len(c.Keys()) != 0 {
		t.Errorf("rewriting the default should remove the field, keys=%v", c.Keys())
	}

	if err := c.WriteVec3("", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}); err == nil {
		t.Error("empty field name should be rejected")
	}
}

func TestYAMLCapsuleMarshalRoundTrip(t *testing.T) {
	c := NewYAMLCapsule()
	if err := c.WriteVec3("speedFactor", mgl64.Vec3{2, 0.5, -1}, mgl64.Vec3{}); err != nil {
		t.Fatalf("WriteVec3() error: %v", err)
	}

	data, err := c.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(data), "speedFactor") {
		t.Errorf("marshaled data missing field: %s", data)
	}

	c2, err := UnmarshalCapsule(data)
	if err != nil {
		t.Fatalf("UnmarshalCapsule() error: %v", err)
	}
	v, err := c2.ReadVec3("speedFactor", mgl64.Vec3{})
	if err != nil {
		t.Fatalf("ReadVec3() error: %v", err)
	}
	if v != (mgl64.Vec3{2, 0.5, -1}) {
		t.Errorf("ReadVec3 = %+v", v)
	}
}

func TestYAMLCapsuleRead(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		def     mgl64.Vec3
		want    mgl64.Vec3
		wantErr bool
	}{
		{"absent uses default", "", mgl64.Vec3{0, 3, 0}, mgl64.Vec3{0, 3, 0}, false},
		{"space separated", "speedFactor: '1 2 3'\n", mgl64.Vec3{}, mgl64.Vec3{1, 2, 3}, false},
		{"comma separated", "speedFactor: '1,2,3'\n", mgl64.Vec3{}, mgl64.Vec3{1, 2, 3}, false},
		{"malformed", "speedFactor: 'a b c'\n", mgl64.Vec3{}, mgl64.Vec3{}, true},
		{"wrong arity", "speedFactor: '1 2'\n", mgl64.Vec3{}, mgl64.Vec3{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := UnmarshalCapsule([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("UnmarshalCapsule() error: %v", err)
			}
			got, err := c.ReadVec3("speedFactor", tt.def)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadVec3() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ReadVec3() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalCapsuleRejectsNonMapping(t *testing.T) {
	if _, err := UnmarshalCapsule([]byte("- a\n- b\n")); err == nil {
		t.Error("a YAML sequence is not a capsule")
	}
}

func TestRotationInfluencerCapsule(t *testing.T) {
	ri := influencers.NewRotationSpeedInfluencer()
	ri.SetSpeedFactor(mgl64.Vec3{1.5, 1, 1})

	c := NewYAMLCapsule()
	if err := ri.Save(c); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded := influencers.NewRotationSpeedInfluencer()
	if err := loaded.Load(c); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.SpeedFactor() != ri.SpeedFactor() {
		t.Errorf("SpeedFactor = %+v, want %+v", loaded.SpeedFactor(), ri.SpeedFactor())
	}

	// 零向量是默认值，不写入
	zero := influencers.NewRotationSpeedInfluencer()
	c2 := NewYAMLCapsule()
	if err := zero.Save(c2); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if len(c2.Keys()) != 0 {
		t.Errorf("zero speedFactor should not be written, keys=%v", c2.Keys())
	}

	bad, _ := UnmarshalCapsule([]byte("speedFactor: nope\n"))
	if err := loaded.Load(bad); err == nil {
		t.Error("malformed speedFactor should fail to load")
	}
}
