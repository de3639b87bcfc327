package camera

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sim/internal/eventbus"
	"github.com/annel0/voxel-sim/internal/input"
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world"
)

func TestUnprojectOrthographic(t *testing.T) {
	view := ViewParams{
		LookFrom: mgl32.Vec3{0, 0, 10},
		LookAt:   mgl32.Vec3{0, 0, 0},
		Up:       mgl32.Vec3{0, 1, 0},
	}
	r := UnprojectOrthographic(mgl32.Vec2{100, 50}, view, 8, 4, vec.Size{Width: 400, Height: 200})

	assert.True(t, r.Origin.ApproxEqual(mgl32.Vec3{-2, 1, 10}), "Начало луча: %v", r.Origin)
	assert.True(t, r.Direction.Normalize().ApproxEqual(mgl32.Vec3{0, 0, -1}), "Направление: %v", r.Direction)
}

func TestUnprojectOrthographicCenter(t *testing.T) {
	view := ViewParams{
		LookFrom: mgl32.Vec3{2, 3, 10},
		LookAt:   mgl32.Vec3{2, 3, 1},
		Up:       mgl32.Vec3{0, 1, 0},
	}
	r := UnprojectOrthographic(mgl32.Vec2{400, 200}, view, 7, 8, vec.Size{Width: 800, Height: 400})

	_, ok := r.Contains(mgl32.Vec3{2, 3, -20})
	assert.True(t, ok, "Луч из центра окна проходит через ось камеры")
}

func TestViewParams_Validate(t *testing.T) {
	valid := ViewParams{LookFrom: mgl32.Vec3{0, 0, 10}, Up: mgl32.Vec3{0, 1, 0}}
	assert.NoError(t, valid.Validate())

	same := ViewParams{LookFrom: mgl32.Vec3{1, 1, 1}, LookAt: mgl32.Vec3{1, 1, 1}, Up: mgl32.Vec3{0, 1, 0}}
	assert.True(t, errors.Is(same.Validate(), ErrInvalidView))

	parallel := ViewParams{LookFrom: mgl32.Vec3{0, 10, 0}, Up: mgl32.Vec3{0, 1, 0}}
	assert.True(t, errors.Is(parallel.Validate(), ErrInvalidView))
}

// newTestCamera создаёт камеру, смотрящую вдоль -Z, с окном 400x200 и шириной объёма 8
func newTestCamera(t *testing.T) (*Camera, *input.WindowState, *input.InputState, *input.PickingState) {
	t.Helper()
	bus := eventbus.NewBus()
	window := input.NewWindowState(bus, vec.Size{Width: 400, Height: 200})
	in := input.NewInputState(bus)
	picking := input.NewPickingState(bus)

	cam, err := New(ViewParams{
		LookFrom: mgl32.Vec3{0, 0, 10},
		Up:       mgl32.Vec3{0, 1, 0},
	}, OrthographicParams{Width: 8, Near: 0.1, Far: 100}, window, in, picking, nil)
	require.NoError(t, err)
	return cam, window, in, picking
}

func TestCamera_ClickPublishesRay(t *testing.T) {
	cam, _, in, picking := newTestCamera(t)
	defer cam.Close()

	var rays []world.Ray
	picking.ClickRay.Subscribe(func(r world.Ray) { rays = append(rays, r) })

	in.LeftClick.Set(mgl32.Vec2{100, 50})

	require.Len(t, rays, 1)
	assert.True(t, rays[0].Origin.ApproxEqual(mgl32.Vec3{-2, 1, 10}), "Высота объёма выводится из соотношения сторон")
}

func TestCamera_ResizeChangesProjection(t *testing.T) {
	cam, window, _, _ := newTestCamera(t)
	defer cam.Close()

	before := cam.ProjectionMatrix()
	window.WindowSize.Set(vec.Size{Width: 400, Height: 400})
	assert.NotEqual(t, before, cam.ProjectionMatrix())

	r, err := cam.Unproject(mgl32.Vec2{400, 0})
	require.NoError(t, err)
	assert.True(t, r.Origin.ApproxEqual(mgl32.Vec3{4, 4, 10}), "Квадратное окно: высота равна ширине, %v", r.Origin)
}

func TestCamera_EmptyWindow(t *testing.T) {
	cam, window, in, picking := newTestCamera(t)
	defer cam.Close()

	published := 0
	picking.ClickRay.Subscribe(func(world.Ray) { published++ })

	window.WindowSize.Set(vec.Size{})
	_, err := cam.Unproject(mgl32.Vec2{1, 1})
	assert.True(t, errors.Is(err, ErrEmptyWindow))

	in.LeftClick.Set(mgl32.Vec2{1, 1})
	assert.Equal(t, 0, published, "Клик по свёрнутому окну не публикует луч")
}

func TestCamera_CloseUnsubscribes(t *testing.T) {
	cam, window, in, picking := newTestCamera(t)
	cam.Close()

	assert.Equal(t, 0, window.WindowSize.Subscribers())
	assert.Equal(t, 0, in.LeftClick.Subscribers())

	published := 0
	picking.ClickRay.Subscribe(func(world.Ray) { published++ })
	in.LeftClick.Set(mgl32.Vec2{1, 1})
	assert.Equal(t, 0, published)
}

func TestCamera_SetView(t *testing.T) {
	cam, _, _, _ := newTestCamera(t)
	defer cam.Close()

	err := cam.SetView(ViewParams{LookFrom: mgl32.Vec3{0, 5, 0}, Up: mgl32.Vec3{0, 1, 0}})
	assert.True(t, errors.Is(err, ErrInvalidView))

	next := ViewParams{LookFrom: mgl32.Vec3{10, 0, 0}, Up: mgl32.Vec3{0, 1, 0}}
	require.NoError(t, cam.SetView(next))
	assert.Equal(t, next, cam.View())
	assert.Equal(t, mgl32.LookAtV(next.LookFrom, next.LookAt, next.Up), cam.ViewMatrix())
}
