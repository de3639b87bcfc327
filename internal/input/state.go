// Package input содержит наблюдаемое состояние окна, ввода и выбора блоков.
// Источником событий служит внешний оконный слой; здесь только свойства.
package input

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-sim/internal/eventbus"
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world"
)

// Имена свойств в шине событий
const (
	TopicWindowSize      = "window.size"
	TopicFramebufferSize = "window.framebuffer_size"
	TopicLeftClick       = "input.left_click"
	TopicClickRay        = "picking.click_ray"
	TopicPicked          = "picking.picked"
)

// WindowState хранит размеры окна в логических пикселях и пикселях буфера кадра
type WindowState struct {
	WindowSize      *eventbus.Property[vec.Size]
	FramebufferSize *eventbus.Property[vec.Size]
}

// NewWindowState создаёт состояние окна с начальным размером
func NewWindowState(bus *eventbus.Bus, size vec.Size) *WindowState {
	return &WindowState{
		WindowSize:      eventbus.NewProperty(bus, TopicWindowSize, size),
		FramebufferSize: eventbus.NewProperty(bus, TopicFramebufferSize, size),
	}
}

// InputState хранит последний клик левой кнопкой в координатах окна
type InputState struct {
	LeftClick *eventbus.Property[mgl32.Vec2]
}

// NewInputState создаёт состояние ввода
func NewInputState(bus *eventbus.Bus) *InputState {
	return &InputState{
		LeftClick: eventbus.NewProperty(bus, TopicLeftClick, mgl32.Vec2{}),
	}
}

// Pick содержит результат выбора блока лучом
type Pick struct {
	Ray      world.Ray
	Position vec.Vec3
	Hit      bool
}

// PickingState хранит луч последнего клика и результат пересечения с миром
type PickingState struct {
	ClickRay *eventbus.Property[world.Ray]
	Picked   *eventbus.Property[Pick]
}

// NewPickingState создаёт состояние выбора
func NewPickingState(bus *eventbus.Bus) *PickingState {
	return &PickingState{
		ClickRay: eventbus.NewProperty(bus, TopicClickRay, world.Ray{}),
		Picked:   eventbus.NewProperty(bus, TopicPicked, Pick{}),
	}
}
