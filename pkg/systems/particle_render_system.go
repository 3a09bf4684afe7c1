package systems

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/particlefx/pkg/components"
	"github.com/gonewx/particlefx/pkg/ecs"
)

// ParticleRenderSystem 把所有粒子批量绘制为带旋转的方块
//
// 粒子朝向来自影响器积分出的 Data.Angles：
//   - Angles.Z: 屏幕平面内旋转
//   - Angles.Y: 绕竖直轴翻转，表现为宽度按 cos 缩放
//   - Angles.X: 绕水平轴翻转，表现为高度按 cos 缩放
type ParticleRenderSystem struct {
	entityManager *ecs.EntityManager
	texture       *ebiten.Image

	// 复用的顶点/索引缓冲，避免每帧分配
	vertices []ebiten.Vertex
	indices  []uint16

	// Tint 粒子颜色
	Tint color.RGBA
}

// maxBatchVertices DrawTriangles 的 uint16 索引上限
const maxBatchVertices = math.MaxUint16 - 4

// NewParticleRenderSystem creates a renderer. A nil texture uses a plain
// white square created on first draw.
func NewParticleRenderSystem(em *ecs.EntityManager, texture *ebiten.Image) *ParticleRenderSystem {
	return &ParticleRenderSystem{
		entityManager: em,
		texture:       texture,
		Tint:          color.RGBA{R: 0xff, G: 0xd0, B: 0x40, A: 0xff},
	}
}

// Draw renders every live particle onto screen.
func (s *ParticleRenderSystem) Draw(screen *ebiten.Image) {
	if s.texture == nil {
		s.texture = ebiten.NewImage(4, 4)
		s.texture.Fill(color.White)
	}

	bounds := s.texture.Bounds()
	src := [4]float32{
		float32(bounds.Min.X), float32(bounds.Min.Y),
		float32(bounds.Max.X), float32(bounds.Max.Y),
	}
	tint := [3]float32{
		float32(s.Tint.R) / 0xff,
		float32(s.Tint.G) / 0xff,
		float32(s.Tint.B) / 0xff,
	}

	s.vertices = s.vertices[:0]
	s.indices = s.indices[:0]

	ids := ecs.GetEntitiesWith2[
		*components.ParticleComponent,
		*components.PositionComponent,
	](s.entityManager)

	for _, id := range ids {
		if !s.entityManager.IsAlive(id) {
			continue
		}
		p, _ := ecs.GetComponent[*components.ParticleComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		if len(s.vertices) >= maxBatchVertices {
			s.flush(screen)
		}

		quad := buildParticleVertices(p, pos, src, tint)
		base := uint16(len(s.vertices))
		s.vertices = append(s.vertices, quad[:]...)
		s.indices = append(s.indices,
			base+0, base+1, base+2,
			base+1, base+3, base+2,
		)
	}

	s.flush(screen)
}

func (s *ParticleRenderSystem) flush(screen *ebiten.Image) {
	if len(s.vertices) == 0 {
		return
	}
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	screen.DrawTriangles(s.vertices, s.indices, s.texture, op)
	s.vertices = s.vertices[:0]
	s.indices = s.indices[:0]
}

// buildParticleVertices 为单个粒子生成 4 个顶点（左上、右上、左下、右下）
//
// 生成顺序：
// 1. 中心对齐的方块四角
// 2. 按 Angles.Y / Angles.X 缩放宽高
// 3. 按 Angles.Z 旋转
// 4. 平移到粒子位置
func buildParticleVertices(p *components.ParticleComponent, pos *components.PositionComponent, src [4]float32, tint [3]float32) [4]ebiten.Vertex {
	half := p.Size / 2
	sx := half * math.Cos(p.Data.Angles.Y())
	sy := half * math.Cos(p.Data.Angles.X())

	corners := [4][2]float64{
		{-sx, -sy}, // 左上
		{sx, -sy},  // 右上
		{-sx, sy},  // 左下
		{sx, sy},   // 右下
	}
	srcXY := [4][2]float32{
		{src[0], src[1]},
		{src[2], src[1]},
		{src[0], src[3]},
		{src[2], src[3]},
	}

	cosTheta := math.Cos(p.Data.Angles.Z())
	sinTheta := math.Sin(p.Data.Angles.Z())
	alpha := float32(p.Alpha)

	var out [4]ebiten.Vertex
	for i, c := range corners {
		x := c[0]*cosTheta - c[1]*sinTheta
		y := c[0]*sinTheta + c[1]*cosTheta
		out[i] = ebiten.Vertex{
			DstX: float32(pos.X + x),
			DstY: float32(pos.Y + y),
			SrcX: srcXY[i][0],
			SrcY: srcXY[i][1],
			// 预乘 alpha
			ColorR: tint[0] * alpha,
			ColorG: tint[1] * alpha,
			ColorB: tint[2] * alpha,
			ColorA: alpha,
		}
	}
	return out
}
