package vec

import "fmt"

// ChunkSize: длина ребра чанка в блоках.
const ChunkSize = 16

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется как мировая позиция блока, локальная позиция внутри чанка
// и как начало (origin) чанка.
type Vec3 struct {
	X int
	Y int
	Z int
}

// String реализует fmt.Stringer
func (v Vec3) String() string {
	return fmt.Sprintf("(%d, %d, %d)", v.X, v.Y, v.Z)
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Up возвращает позицию на один блок выше
func (v Vec3) Up() Vec3 {
	return Vec3{X: v.X, Y: v.Y + 1, Z: v.Z}
}

// Down возвращает позицию на один блок ниже
func (v Vec3) Down() Vec3 {
	return Vec3{X: v.X, Y: v.Y - 1, Z: v.Z}
}

// ChunkOrigin возвращает начало чанка, содержащего позицию.
// Арифметический сдвиг даёт деление с округлением вниз и для отрицательных координат.
func (v Vec3) ChunkOrigin() Vec3 {
	return Vec3{X: (v.X >> 4) << 4, Y: (v.Y >> 4) << 4, Z: (v.Z >> 4) << 4}
}

// LocalInChunk возвращает локальные координаты внутри чанка (0..15)
func (v Vec3) LocalInChunk() Vec3 {
	return Vec3{X: v.X & 0xF, Y: v.Y & 0xF, Z: v.Z & 0xF}
}

// IsChunkAligned проверяет, что все координаты кратны размеру чанка
func (v Vec3) IsChunkAligned() bool {
	return v.X&0xF == 0 && v.Y&0xF == 0 && v.Z&0xF == 0
}

// InChunk проверяет, что позиция лежит в [0, ChunkSize) по каждой оси
func (v Vec3) InChunk() bool {
	return v.X >= 0 && v.X < ChunkSize &&
		v.Y >= 0 && v.Y < ChunkSize &&
		v.Z >= 0 && v.Z < ChunkSize
}

// Less задаёт лексикографический порядок (X, затем Y, затем Z)
func (v Vec3) Less(other Vec3) bool {
	if v.X != other.X {
		return v.X < other.X
	}
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	return v.Z < other.Z
}
