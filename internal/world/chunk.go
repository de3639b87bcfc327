package world

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-sim/internal/logging"
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world/block"
)

// Epsilon подставляется вместо нулевых компонент направления луча
// (машинный эпсилон float32).
const Epsilon float32 = 1.1920929e-7

// chunkVolume: количество блоков в чанке
const chunkVolume = vec.ChunkSize * vec.ChunkSize * vec.ChunkSize

// Chunk представляет участок мира размером 16x16x16 блоков.
// Блоки хранятся плотно, индекс равен x + 16y + 256z.
// Chunk не синхронизирован: доступ к нему защищает World.
type Chunk struct {
	blocks [chunkVolume]block.BlockID
}

// NewChunk создаёт пустой чанк
func NewChunk() *Chunk {
	return &Chunk{}
}

func chunkIndex(local vec.Vec3) int {
	return local.X + local.Y*vec.ChunkSize + local.Z*vec.ChunkSize*vec.ChunkSize
}

func mustInChunk(local vec.Vec3) {
	if !local.InChunk() {
		logging.Error("Позиция %s вне границ чанка", local)
		panic(fmt.Sprintf("world: позиция %s вне границ чанка", local))
	}
}

// Get возвращает блок по локальным координатам.
// Координаты вне [0,16) являются ошибкой программы и приводят к панике.
func (c *Chunk) Get(local vec.Vec3) block.BlockID {
	mustInChunk(local)
	return c.blocks[chunkIndex(local)]
}

// Set записывает блок по локальным координатам
func (c *Chunk) Set(local vec.Vec3, id block.BlockID) {
	mustInChunk(local)
	c.blocks[chunkIndex(local)] = id
}

// Fill заполняет весь чанк одним блоком
func (c *Chunk) Fill(id block.BlockID) {
	for i := range c.blocks {
		c.blocks[i] = id
	}
}

// NonEmpty возвращает количество непустых блоков
func (c *Chunk) NonEmpty() int {
	count := 0
	for _, id := range c.blocks {
		if !id.IsEmpty() {
			count++
		}
	}
	return count
}

// ForEach вызывает fn для каждого непустого блока в порядке индекса
func (c *Chunk) ForEach(fn func(local vec.Vec3, id block.BlockID)) {
	for i, id := range c.blocks {
		if id.IsEmpty() {
			continue
		}
		local := vec.Vec3{
			X: i % vec.ChunkSize,
			Y: (i / vec.ChunkSize) % vec.ChunkSize,
			Z: i / (vec.ChunkSize * vec.ChunkSize),
		}
		fn(local, id)
	}
}

// IntersectLocal находит первый непустой блок на пути луча.
//
// Луч задаётся в локальных координатах чанка (чанк занимает [0,16)^3), а его
// начало должно лежать внутри чанка: обход не входит в чанк снаружи.
// Нулевые компоненты направления заменяются на Epsilon.
func (c *Chunk) IntersectLocal(ray Ray) (vec.Vec3, bool) {
	origin := ray.Origin
	direction := withoutZeros(ray.Direction)

	pos := vec.Vec3{
		X: floorInt(origin.X()),
		Y: floorInt(origin.Y()),
		Z: floorInt(origin.Z()),
	}
	if !pos.InChunk() {
		return vec.Vec3{}, false
	}

	stepX, tDeltaX, tMaxX := ddaAxis(pos.X, origin.X(), direction.X(), 1)
	stepY, tDeltaY, tMaxY := ddaAxis(pos.Y, origin.Y(), direction.Y(), 1)
	stepZ, tDeltaZ, tMaxZ := ddaAxis(pos.Z, origin.Z(), direction.Z(), 1)

	for pos.InChunk() {
		if !c.blocks[chunkIndex(pos)].IsEmpty() {
			return pos, true
		}

		// Порядок сравнений определяет выбор оси при равных tMax
		if tMaxX < tMaxY {
			if tMaxX < tMaxZ {
				tMaxX += tDeltaX
				pos.X += stepX
			} else {
				tMaxZ += tDeltaZ
				pos.Z += stepZ
			}
		} else {
			if tMaxY < tMaxZ {
				tMaxY += tDeltaY
				pos.Y += stepY
			} else {
				tMaxZ += tDeltaZ
				pos.Z += stepZ
			}
		}
	}

	return vec.Vec3{}, false
}

// ddaAxis возвращает шаг, tDelta и начальный tMax по одной оси для сетки
// с ячейкой cell. cellStart задаёт начало текущей ячейки.
func ddaAxis(cellStart int, origin, direction float32, cell int) (step int, tDelta, tMax float32) {
	step = -cell
	next := cellStart
	if direction > 0 {
		step = cell
		next = cellStart + cell
	}
	tDelta = float32(math.Abs(float64(float32(cell) / direction)))
	tMax = (float32(next) - origin) / direction
	return step, tDelta, tMax
}

// withoutZeros заменяет нулевые компоненты вектора на Epsilon
func withoutZeros(d mgl32.Vec3) mgl32.Vec3 {
	for i := range d {
		if d[i] == 0 {
			d[i] = Epsilon
		}
	}
	return d
}

func floorInt(v float32) int {
	return int(math.Floor(float64(v)))
}
