package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-sim/internal/vec"
)

// Bounds описывает выровненный по осям параллелепипед с целочисленными углами.
// Обе проверки принадлежности включают максимальный угол.
type Bounds struct {
	Min vec.Vec3
	Max vec.Vec3
}

// chunkBounds возвращает границы чанка [origin, origin+16]
func chunkBounds(origin vec.Vec3) Bounds {
	return Bounds{
		Min: origin,
		Max: origin.Add(vec.Vec3{X: vec.ChunkSize, Y: vec.ChunkSize, Z: vec.ChunkSize}),
	}
}

// ExtendToFit расширяет границы так, чтобы они покрывали other
func (b *Bounds) ExtendToFit(other Bounds) {
	b.Min.X = min(b.Min.X, other.Min.X)
	b.Min.Y = min(b.Min.Y, other.Min.Y)
	b.Min.Z = min(b.Min.Z, other.Min.Z)

	b.Max.X = max(b.Max.X, other.Max.X)
	b.Max.Y = max(b.Max.Y, other.Max.Y)
	b.Max.Z = max(b.Max.Z, other.Max.Z)
}

// Contains проверяет, лежит ли точка внутри границ
func (b Bounds) Contains(p mgl32.Vec3) bool {
	lo, hi := b.floats()
	return p.X() >= lo.X() && p.X() <= hi.X() &&
		p.Y() >= lo.Y() && p.Y() <= hi.Y() &&
		p.Z() >= lo.Z() && p.Z() <= hi.Z()
}

// ContainsPosition проверяет целочисленную позицию
func (b Bounds) ContainsPosition(p vec.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersect выполняет тест пересечения луча с границами методом слоёв (slab test).
//
// Для каждой оси вычисляются времена входа и выхода; общий вход равен максимуму входов,
// общий выход равен минимуму выходов. Пересечение есть, если вход не позже выхода
// и выход не позади начала луча. Ось с нулевой компонентой направления
// параллельна слою: луч либо всегда внутри него, либо промахивается.
func (b Bounds) Intersect(r Ray) (Intersection, bool) {
	lo, hi := b.floats()

	tEntry := float32(math.Inf(-1))
	tExit := float32(math.Inf(1))

	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Direction[axis]
		if d == 0 {
			if o < lo[axis] || o > hi[axis] {
				return Intersection{}, false
			}
			continue
		}

		t1 := (lo[axis] - o) / d
		t2 := (hi[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tEntry = max(tEntry, t1)
		tExit = min(tExit, t2)
	}

	if tEntry > tExit || tExit < 0 {
		return Intersection{}, false
	}
	if math.IsInf(float64(tEntry), -1) {
		// Нулевое направление, начало внутри
		return Intersection{Point: r.Origin, T: 0}, true
	}

	return Intersection{Point: r.At(tEntry), T: tEntry}, true
}

// String реализует fmt.Stringer
func (b Bounds) String() string {
	return fmt.Sprintf("Bounds[%s..%s]", b.Min, b.Max)
}

func (b Bounds) floats() (mgl32.Vec3, mgl32.Vec3) {
	return mgl32.Vec3{float32(b.Min.X), float32(b.Min.Y), float32(b.Min.Z)},
		mgl32.Vec3{float32(b.Max.X), float32(b.Max.Y), float32(b.Max.Z)}
}
