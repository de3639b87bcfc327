// Package camera превращает клики по окну в лучи выбора.
package camera

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-sim/internal/eventbus"
	"github.com/annel0/voxel-sim/internal/input"
	"github.com/annel0/voxel-sim/internal/logging"
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world"
)

// Camera реализует ортографическую камеру, подписанная на размер окна и клики.
// Каждый клик левой кнопкой превращается в луч и публикуется в PickingState.ClickRay.
type Camera struct {
	mu         sync.RWMutex
	view       ViewParams
	ortho      OrthographicParams
	viewMatrix mgl32.Mat4
	projection mgl32.Mat4

	window  *input.WindowState
	input   *input.InputState
	picking *input.PickingState

	sizeToken  eventbus.Token
	clickToken eventbus.Token
	logger     *logging.Logger
}

// New создаёт камеру и подписывает её на состояния окна и ввода
func New(view ViewParams, ortho OrthographicParams, window *input.WindowState,
	in *input.InputState, picking *input.PickingState, logger *logging.Logger) (*Camera, error) {
	if err := view.Validate(); err != nil {
		return nil, err
	}
	if ortho.Width <= 0 {
		return nil, fmt.Errorf("%w: ширина ортографического объёма %v", ErrInvalidView, ortho.Width)
	}

	c := &Camera{
		view:    view,
		ortho:   ortho,
		window:  window,
		input:   in,
		picking: picking,
		logger:  logger,
	}
	c.recomputeViewMatrix()
	c.recomputeProjectionMatrix()

	c.sizeToken = window.WindowSize.Subscribe(func(size vec.Size) {
		c.mu.Lock()
		c.recomputeProjectionMatrix()
		c.mu.Unlock()
		c.logger.Debug("Размер окна изменён: %dx%d", size.Width, size.Height)
	})
	c.clickToken = in.LeftClick.Subscribe(c.onClick)

	return c, nil
}

// onClick строит луч клика и публикует его
func (c *Camera) onClick(point mgl32.Vec2) {
	ray, err := c.Unproject(point)
	if err != nil {
		c.logger.Warn("Клик (%g, %g) пропущен: %v", point.X(), point.Y(), err)
		return
	}
	c.picking.ClickRay.Set(ray)
}

// Unproject строит луч для точки окна; высота объёма равна ширине, делённой на соотношение сторон
func (c *Camera) Unproject(point mgl32.Vec2) (world.Ray, error) {
	size := c.window.WindowSize.Get()
	if size.IsEmpty() {
		return world.Ray{}, fmt.Errorf("%w: %dx%d", ErrEmptyWindow, size.Width, size.Height)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	height := c.ortho.Width / size.AspectRatio()
	return UnprojectOrthographic(point, c.view, c.ortho.Width, height, size), nil
}

// View возвращает параметры вида
func (c *Camera) View() ViewParams {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.view
}

// SetView меняет положение камеры
func (c *Camera) SetView(view ViewParams) error {
	if err := view.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.view = view
	c.recomputeViewMatrix()
	c.mu.Unlock()
	return nil
}

// ViewMatrix возвращает матрицу вида
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewMatrix
}

// ProjectionMatrix возвращает матрицу проекции
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projection
}

// ViewProjectionMatrix возвращает произведение проекции и вида
func (c *Camera) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projection.Mul4(c.viewMatrix)
}

// Close отписывает камеру от состояний
func (c *Camera) Close() {
	c.window.WindowSize.Unsubscribe(c.sizeToken)
	c.input.LeftClick.Unsubscribe(c.clickToken)
}

func (c *Camera) recomputeViewMatrix() {
	c.viewMatrix = mgl32.LookAtV(c.view.LookFrom, c.view.LookAt, c.view.Up)
}

// recomputeProjectionMatrix пересчитывает проекцию; окно нулевого размера оставляет прежнюю
func (c *Camera) recomputeProjectionMatrix() {
	size := c.window.WindowSize.Get()
	if size.IsEmpty() {
		return
	}
	halfWidth := c.ortho.Width / 2
	halfHeight := c.ortho.Width / size.AspectRatio() / 2
	c.projection = mgl32.Ortho(-halfWidth, halfWidth, -halfHeight, halfHeight, c.ortho.Near, c.ortho.Far)
}
