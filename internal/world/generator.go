package world

import (
	"fmt"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world/block"
)

// Параметры шума Перлина
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
)

// Generator генерирует рельеф из столбцов по карте высот на шуме Перлина.
// Результат детерминирован для одного сида.
type Generator struct {
	Seed       int64   // Сид для генерации шума
	NoiseScale float64 // Масштаб шума (сглаженность рельефа)
	BaseHeight int     // Средняя высота поверхности внутри чанка
	Amplitude  int     // Максимальное отклонение от средней высоты

	noise *perlin.Perlin
}

// NewGenerator создаёт генератор с параметрами по умолчанию
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:       seed,
		NoiseScale: 0.05,
		BaseHeight: 3,
		Amplitude:  3,
		noise:      perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
	}
}

// Height возвращает мировую высоту поверхности столбца (x, z), в [0, 15]
func (g *Generator) Height(x, z int) int {
	n := g.noise.Noise2D(float64(x)*g.NoiseScale, float64(z)*g.NoiseScale)
	h := g.BaseHeight + int(n*float64(g.Amplitude))
	return min(max(h, 0), vec.ChunkSize-1)
}

// GenerateChunk создаёт чанк с рельефом из блока id
func (g *Generator) GenerateChunk(origin vec.Vec3, id block.BlockID) *Chunk {
	chunk := NewChunk()
	g.fill(chunk, origin, id)
	return chunk
}

// fill заполняет пустые ячейки чанка от низа чанка до высоты поверхности
func (g *Generator) fill(chunk *Chunk, origin vec.Vec3, id block.BlockID) {
	for z := 0; z < vec.ChunkSize; z++ {
		for x := 0; x < vec.ChunkSize; x++ {
			top := g.Height(origin.X+x, origin.Z+z) - origin.Y
			for y := 0; y <= min(top, vec.ChunkSize-1); y++ {
				local := vec.Vec3{X: x, Y: y, Z: z}
				if chunk.Get(local).IsEmpty() {
					chunk.Set(local, id)
				}
			}
		}
	}
}

// Populate добавляет квадрат чанков (2*radius+1)^2 на уровне y=0 вокруг начала координат.
// В уже существующие чанки рельеф дописывается только в пустые ячейки.
func (g *Generator) Populate(w *World, radius int, id block.BlockID) error {
	if radius < 0 {
		return fmt.Errorf("отрицательный радиус генерации: %d", radius)
	}

	for cz := -radius; cz <= radius; cz++ {
		for cx := -radius; cx <= radius; cx++ {
			origin := vec.Vec3{X: cx * vec.ChunkSize, Z: cz * vec.ChunkSize}

			w.mu.Lock()
			existing, ok := w.chunks[origin]
			if ok {
				g.fill(existing, origin, id)
				w.modified = true
			}
			w.mu.Unlock()

			if ok {
				continue
			}
			if err := w.AddChunk(origin, g.GenerateChunk(origin, id)); err != nil {
				return err
			}
		}
	}

	w.mu.Lock()
	w.modified = true
	w.mu.Unlock()
	return nil
}
