package world

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world/block"
)

// newRowWorld создаёт мир из чанков вдоль оси X с началами в xs
func newRowWorld(t *testing.T, xs ...int) *World {
	t.Helper()
	w := NewWorld()
	for _, x := range xs {
		require.NoError(t, w.AddChunk(vec.Vec3{X: x}, NewChunk()))
	}
	return w
}

func TestWorld_AddChunkBounds(t *testing.T) {
	w := NewWorld()
	_, ok := w.Bounds()
	assert.False(t, ok, "У пустого мира нет границ")

	require.NoError(t, w.AddChunk(vec.Vec3{X: 16}, nil))
	require.NoError(t, w.AddChunk(vec.Vec3{X: -32, Z: 48}, NewChunk()))

	b, ok := w.Bounds()
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: -32}, b.Min)
	assert.Equal(t, vec.Vec3{X: 32, Y: 16, Z: 64}, b.Max)
	assert.Equal(t, []vec.Vec3{{X: -32, Z: 48}, {X: 16}}, w.ChunkOrigins())
	assert.Equal(t, 2, w.ChunkCount())

	err := w.AddChunk(vec.Vec3{X: 8}, NewChunk())
	assert.True(t, errors.Is(err, ErrUnalignedOrigin))
}

func TestWorld_BlockRoundTrip(t *testing.T) {
	w := newRowWorld(t, -16, 0)

	positions := []vec.Vec3{{X: 0}, {X: 15, Y: 15, Z: 15}, {X: -1, Y: 3, Z: 4}, {X: -16}}
	for i, pos := range positions {
		id := block.NewBlockID(block.TypeID(i+1), uint16(i))
		require.NoError(t, w.AddBlock(pos, id))

		got, err := w.GetBlock(pos)
		require.NoError(t, err)
		assert.Equal(t, id, got, "Позиция %s", pos)
	}

	chunk, ok := w.Chunk(vec.Vec3{X: -16})
	require.True(t, ok)
	assert.Equal(t, block.TypeID(3), chunk.Get(vec.Vec3{X: 15, Y: 3, Z: 4}).TypeID(),
		"(-1,3,4) должна попасть в локальную (15,3,4) чанка -16")
}

func TestWorld_UnloadedChunk(t *testing.T) {
	w := newRowWorld(t, 0)

	_, err := w.GetBlock(vec.Vec3{X: 16})
	assert.True(t, errors.Is(err, ErrChunkNotLoaded))

	err = w.AddBlock(vec.Vec3{Y: -1}, stoneID)
	assert.True(t, errors.Is(err, ErrChunkNotLoaded))
	assert.False(t, w.Modified(), "Неудачная запись не отмечает мир изменённым")
}

func TestWorld_ModifiedFlag(t *testing.T) {
	w := newRowWorld(t, 0)
	assert.False(t, w.Modified())

	require.NoError(t, w.AddBlock(vec.Vec3{X: 1}, stoneID))
	assert.True(t, w.Modified())
	assert.True(t, w.TakeModified())
	assert.False(t, w.Modified(), "TakeModified сбрасывает флаг")

	require.NoError(t, w.RemoveBlock(vec.Vec3{X: 1}))
	assert.True(t, w.TakeModified())

	got, err := w.GetBlock(vec.Vec3{X: 1})
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestWorld_Intersect(t *testing.T) {
	w := newRowWorld(t, 16, 32, 48, 64)
	blockPos := vec.Vec3{X: 79, Y: 15, Z: 15}
	require.NoError(t, w.AddBlock(blockPos, stoneID))

	r := Ray{Origin: mgl32.Vec3{-20, 15.5, 15.8}, Direction: mgl32.Vec3{1, 0, 0}}
	pos, ok := w.Intersect(r)
	require.True(t, ok)
	assert.Equal(t, blockPos, pos)
}

func TestWorld_IntersectSparseRow(t *testing.T) {
	w := newRowWorld(t, 0, 16, 32, 48, 64)
	blockPos := vec.Vec3{X: 79, Y: 15, Z: 15}
	require.NoError(t, w.AddBlock(blockPos, stoneID))

	r := Ray{Origin: mgl32.Vec3{-20, 15.5, 15.8}, Direction: mgl32.Vec3{1, 0, 0}}
	pos, ok := w.Intersect(r)
	require.True(t, ok)
	assert.Equal(t, blockPos, pos)

	// Повторный вызов даёт тот же результат
	again, ok := w.Intersect(r)
	require.True(t, ok)
	assert.Equal(t, pos, again)
}

func TestWorld_IntersectFromMaxSide(t *testing.T) {
	w := newRowWorld(t, 0, 16, 32, 48, 64)
	blockPos := vec.Vec3{X: 79, Y: 15, Z: 15}
	require.NoError(t, w.AddBlock(blockPos, stoneID))

	r := Ray{Origin: mgl32.Vec3{100, 15.5, 15.8}, Direction: mgl32.Vec3{-1, 0, 0}}
	pos, ok := w.Intersect(r)
	require.True(t, ok, "Вход через грань максимума должен находить крайний блок")
	assert.Equal(t, blockPos, pos)
}

func TestWorld_IntersectFirstHitOrder(t *testing.T) {
	w := newRowWorld(t, 0, 16, 32)
	require.NoError(t, w.AddBlock(vec.Vec3{X: 40, Y: 8, Z: 8}, stoneID))
	require.NoError(t, w.AddBlock(vec.Vec3{X: 20, Y: 8, Z: 8}, stoneID))

	pos, ok := w.Intersect(Ray{Origin: mgl32.Vec3{-5, 8.5, 8.5}, Direction: mgl32.Vec3{1, 0, 0}})
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 20, Y: 8, Z: 8}, pos, "Возвращается ближайший по лучу блок")

	pos, ok = w.Intersect(Ray{Origin: mgl32.Vec3{60, 8.5, 8.5}, Direction: mgl32.Vec3{-1, 0, 0}})
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 40, Y: 8, Z: 8}, pos)
}

func TestWorld_IntersectInsideAndDiagonal(t *testing.T) {
	w := newRowWorld(t, 0, 16)
	require.NoError(t, w.AddBlock(vec.Vec3{X: 20, Y: 10, Z: 2}, stoneID))

	// Начало внутри мира
	pos, ok := w.Intersect(Ray{Origin: mgl32.Vec3{2.5, 10.5, 2.5}, Direction: mgl32.Vec3{1, 0, 0}})
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 20, Y: 10, Z: 2}, pos)

	// Сверху вниз
	pos, ok = w.Intersect(Ray{Origin: mgl32.Vec3{20.5, 40, 2.5}, Direction: mgl32.Vec3{0, -1, 0}})
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 20, Y: 10, Z: 2}, pos)
}

func TestWorld_IntersectMiss(t *testing.T) {
	empty := NewWorld()
	_, ok := empty.Intersect(Ray{Direction: mgl32.Vec3{1, 0, 0}})
	assert.False(t, ok, "В пустом мире нет пересечений")

	w := newRowWorld(t, 0)
	require.NoError(t, w.AddBlock(vec.Vec3{X: 5, Y: 5, Z: 5}, stoneID))

	_, ok = w.Intersect(Ray{Origin: mgl32.Vec3{-10, 40, 5.5}, Direction: mgl32.Vec3{1, 0, 0}})
	assert.False(t, ok, "Луч мимо границ")

	_, ok = w.Intersect(Ray{Origin: mgl32.Vec3{-10, 5.5, 5.5}, Direction: mgl32.Vec3{-1, 0, 0}})
	assert.False(t, ok, "Границы позади луча")

	_, ok = w.Intersect(Ray{Origin: mgl32.Vec3{-10, 1.5, 1.5}, Direction: mgl32.Vec3{1, 0, 0}})
	assert.False(t, ok, "Луч внутри границ без блоков")
}

func TestWorld_ForEachBlock(t *testing.T) {
	w := newRowWorld(t, 16, 0)
	require.NoError(t, w.AddBlock(vec.Vec3{X: 17, Y: 1}, stoneID))
	require.NoError(t, w.AddBlock(vec.Vec3{X: 2}, stoneID))

	var visited []vec.Vec3
	w.ForEachBlock(func(pos vec.Vec3, id block.BlockID) {
		visited = append(visited, pos)
	})
	assert.Equal(t, []vec.Vec3{{X: 2}, {X: 17, Y: 1}}, visited)
}
