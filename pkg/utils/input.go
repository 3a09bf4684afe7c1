package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerJustPressed 返回本帧新按下的指针（鼠标左键或第一个新触摸点）
func PointerJustPressed() (bool, int, int) {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		return true, x, y
	}
	if ids := inpututil.AppendJustPressedTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		return true, x, y
	}
	return false, 0, 0
}

// PointerState 返回指针是否按住及其当前位置。
// 触摸优先于鼠标。
func PointerState() (pressed bool, x, y int) {
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		x, y = ebiten.TouchPosition(ids[0])
		return true, x, y
	}
	x, y = ebiten.CursorPosition()
	return ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft), x, y
}

// DragState 拖拽状态
type DragState int

const (
	DragStateNone DragState = iota
	// DragStatePending 已按下但移动距离未超过阈值
	DragStatePending
	DragStateDragging
)

// DefaultDragThreshold 开始拖拽前指针需要移动的像素距离
const DefaultDragThreshold = 6

// DragTracker 跟踪一次按下-移动-松开的指针手势
type DragTracker struct {
	Threshold int

	state              DragState
	startX, startY     int
	currentX, currentY int
	justStarted        bool
	justEnded          bool
}

// NewDragTracker 创建使用默认阈值的拖拽跟踪器
func NewDragTracker() *DragTracker {
	return &DragTracker{Threshold: DefaultDragThreshold}
}

// Update 读取当前指针状态并推进拖拽状态机，每帧调用一次
func (d *DragTracker) Update() {
	pressed, x, y := PointerState()
	d.Step(pressed, x, y)
}

// Step 用给定的指针状态推进状态机
func (d *DragTracker) Step(pressed bool, x, y int) {
	d.justStarted = false
	d.justEnded = false

	if !pressed {
		if d.state == DragStateDragging {
			d.justEnded = true
		}
		d.state = DragStateNone
		return
	}

	d.currentX, d.currentY = x, y
	switch d.state {
	case DragStateNone:
		d.state = DragStatePending
		d.startX, d.startY = x, y
	case DragStatePending:
		dx, dy := x-d.startX, y-d.startY
		if dx*dx+dy*dy >= d.Threshold*d.Threshold {
			d.state = DragStateDragging
			d.justStarted = true
		}
	}
}

// Reset 放弃当前手势
func (d *DragTracker) Reset() {
	threshold := d.Threshold
	*d = DragTracker{Threshold: threshold}
}

func (d *DragTracker) State() DragState { return d.state }

func (d *DragTracker) IsDragging() bool { return d.state == DragStateDragging }

func (d *DragTracker) JustStarted() bool { return d.justStarted }

func (d *DragTracker) JustEnded() bool { return d.justEnded }

// Position 返回指针最近一次的位置
func (d *DragTracker) Position() (int, int) { return d.currentX, d.currentY }

// Distance 返回相对按下点的位移
func (d *DragTracker) Distance() (dx, dy int) {
	return d.currentX - d.startX, d.currentY - d.startY
}
