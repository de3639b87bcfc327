package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// rayContainsThreshold: допуск сравнения в Ray.Contains
const rayContainsThreshold = 1e-4

// Ray задаёт луч в мировых координатах. Направление не обязано быть нормализованным.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// Intersection описывает точку пересечения луча и параметр t, при котором она достигается
type Intersection struct {
	Point mgl32.Vec3
	T     float32
}

// At возвращает точку Origin + t*Direction
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Contains проверяет, лежит ли точка p на прямой луча, и возвращает её параметр t.
// Параметр берётся по первой ненулевой компоненте направления.
func (r Ray) Contains(p mgl32.Vec3) (float32, bool) {
	diff := p.Sub(r.Origin)

	var t float32
	switch {
	case r.Direction.X() != 0:
		t = diff.X() / r.Direction.X()
	case r.Direction.Y() != 0:
		t = diff.Y() / r.Direction.Y()
	case r.Direction.Z() != 0:
		t = diff.Z() / r.Direction.Z()
	default:
		// Вырожденный луч содержит только своё начало
		return 0, diff.ApproxEqualThreshold(mgl32.Vec3{}, rayContainsThreshold)
	}

	if r.Direction.Mul(t).ApproxEqualThreshold(diff, rayContainsThreshold) {
		return t, true
	}
	return 0, false
}

// IsFinite проверяет, что все компоненты луча конечны
func (r Ray) IsFinite() bool {
	for i := 0; i < 3; i++ {
		for _, v := range [2]float32{r.Origin[i], r.Direction[i]} {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return false
			}
		}
	}
	return true
}

// String реализует fmt.Stringer
func (r Ray) String() string {
	return fmt.Sprintf("Ray(origin=(%g, %g, %g), direction=(%g, %g, %g))",
		r.Origin.X(), r.Origin.Y(), r.Origin.Z(),
		r.Direction.X(), r.Direction.Y(), r.Direction.Z())
}
