package camera

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world"
)

var (
	// ErrInvalidView возвращается для вырожденных параметров вида
	ErrInvalidView = errors.New("некорректные параметры вида")
	// ErrEmptyWindow возвращается, если у окна нулевая площадь
	ErrEmptyWindow = errors.New("окно нулевого размера")
)

// degenerateThreshold: минимальная длина векторов вида
const degenerateThreshold = 1e-6

// ViewParams задаёт положение камеры. Система координат правосторонняя.
type ViewParams struct {
	LookFrom mgl32.Vec3 `yaml:"look_from"`
	LookAt   mgl32.Vec3 `yaml:"look_at"`
	Up       mgl32.Vec3 `yaml:"up"`
}

// Forward возвращает LookAt - LookFrom (не нормализован)
func (v ViewParams) Forward() mgl32.Vec3 {
	return v.LookAt.Sub(v.LookFrom)
}

// Validate проверяет, что направление взгляда ненулевое и не параллельно Up
func (v ViewParams) Validate() error {
	forward := v.Forward()
	if forward.Len() < degenerateThreshold {
		return fmt.Errorf("%w: look_from совпадает с look_at", ErrInvalidView)
	}
	if forward.Cross(v.Up).Len() < degenerateThreshold*forward.Len() {
		return fmt.Errorf("%w: направление взгляда параллельно up", ErrInvalidView)
	}
	return nil
}

// OrthographicParams задаёт ширину ортографического объёма и плоскости отсечения.
// Высота выводится из ширины и соотношения сторон окна.
type OrthographicParams struct {
	Width float32 `yaml:"width"`
	Near  float32 `yaml:"near"`
	Far   float32 `yaml:"far"`
}

// UnprojectOrthographic строит луч выбора для точки окна при ортографической проекции.
//
// Точка (Y вниз) переводится в NDC (Y вверх), масштабируется на половину
// размеров объёма и откладывается от LookFrom вдоль правого и верхнего
// векторов камеры. Направление луча равно LookAt - LookFrom.
func UnprojectOrthographic(point mgl32.Vec2, view ViewParams, orthoWidth, orthoHeight float32, window vec.Size) world.Ray {
	camDirection := view.Forward()

	ndcX := 2*point.X()/float32(window.Width) - 1
	ndcY := 1 - 2*point.Y()/float32(window.Height)

	offsetX := ndcX * orthoWidth / 2
	offsetY := ndcY * orthoHeight / 2

	camRight := camDirection.Cross(view.Up).Normalize()
	camUp := camRight.Cross(camDirection).Normalize()

	origin := view.LookFrom.
		Add(camRight.Mul(offsetX)).
		Add(camUp.Mul(offsetY))

	return world.Ray{Origin: origin, Direction: camDirection}
}
