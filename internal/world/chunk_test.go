package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world/block"
)

var stoneID = block.NewBlockID(1, 0)

func TestChunk_GetSet(t *testing.T) {
	chunk := NewChunk()
	pos := vec.Vec3{X: 3, Y: 7, Z: 11}

	assert.True(t, chunk.Get(pos).IsEmpty(), "Новый чанк должен быть пустым")

	id := block.NewBlockID(2, 0xBEEF)
	chunk.Set(pos, id)
	assert.Equal(t, id, chunk.Get(pos), "Дополнительные данные должны сохраняться")
	assert.Equal(t, 1, chunk.NonEmpty())
	assert.Equal(t, id, chunk.blocks[3+7*16+11*256], "Индекс должен быть x + 16y + 256z")
}

func TestChunk_OutOfRangePanics(t *testing.T) {
	chunk := NewChunk()

	for _, pos := range []vec.Vec3{{X: 16}, {Y: -1}, {Z: 16}, {X: -1, Y: 5, Z: 5}} {
		assert.Panics(t, func() { chunk.Get(pos) }, "Get(%s) должен паниковать", pos)
		assert.Panics(t, func() { chunk.Set(pos, stoneID) }, "Set(%s) должен паниковать", pos)
	}
}

func TestChunk_ForEachAndFill(t *testing.T) {
	chunk := NewChunk()
	chunk.Set(vec.Vec3{X: 1, Y: 2, Z: 3}, stoneID)
	chunk.Set(vec.Vec3{X: 15, Y: 15, Z: 15}, stoneID)

	var visited []vec.Vec3
	chunk.ForEach(func(local vec.Vec3, id block.BlockID) {
		visited = append(visited, local)
	})
	assert.Equal(t, []vec.Vec3{{X: 1, Y: 2, Z: 3}, {X: 15, Y: 15, Z: 15}}, visited)

	chunk.Fill(stoneID)
	assert.Equal(t, chunkVolume, chunk.NonEmpty())
}

func TestChunk_IntersectLocal(t *testing.T) {
	chunk := NewChunk()
	chunk.Set(vec.Vec3{X: 15, Y: 15, Z: 15}, stoneID)

	// Направление с нулевыми компонентами
	r := Ray{Origin: mgl32.Vec3{0.2, 15.5, 15.8}, Direction: mgl32.Vec3{1, 0, 0}}
	pos, ok := chunk.IntersectLocal(r)
	require.True(t, ok, "Луч должен попасть в блок")
	assert.Equal(t, vec.Vec3{X: 15, Y: 15, Z: 15}, pos)

	// Луч в другую сторону ничего не находит
	back := Ray{Origin: r.Origin, Direction: mgl32.Vec3{-1, 0, 0}}
	_, ok = chunk.IntersectLocal(back)
	assert.False(t, ok)

	// После удаления единственного блока тот же луч промахивается
	chunk.Set(vec.Vec3{X: 15, Y: 15, Z: 15}, block.Empty)
	_, ok = chunk.IntersectLocal(r)
	assert.False(t, ok, "Пустой чанк не даёт попадания")
}

func TestChunk_IntersectLocalOriginOutside(t *testing.T) {
	chunk := NewChunk()
	chunk.Fill(stoneID)

	r := Ray{Origin: mgl32.Vec3{-0.5, 1, 1}, Direction: mgl32.Vec3{1, 0, 0}}
	_, ok := chunk.IntersectLocal(r)
	assert.False(t, ok, "Обход не должен входить в чанк снаружи")
}

func TestChunk_IntersectLocalStartVoxel(t *testing.T) {
	chunk := NewChunk()
	chunk.Set(vec.Vec3{X: 4, Y: 4, Z: 4}, stoneID)

	r := Ray{Origin: mgl32.Vec3{4.5, 4.5, 4.5}, Direction: mgl32.Vec3{0, 1, 0}}
	pos, ok := chunk.IntersectLocal(r)
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 4, Y: 4, Z: 4}, pos, "Блок в начальной ячейке возвращается сразу")
}

func TestChunk_IntersectLocalTieBreak(t *testing.T) {
	// Из центра ячейки по диагонали все tMax равны.
	// При равенстве X и Y шаг делается по Y (затем Z), а не по X.
	origin := mgl32.Vec3{0.5, 0.5, 0.5}
	dir := mgl32.Vec3{1, 1, 1}

	chunk := NewChunk()
	chunk.Set(vec.Vec3{X: 0, Y: 0, Z: 1}, stoneID)
	chunk.Set(vec.Vec3{X: 1, Y: 0, Z: 0}, stoneID)
	chunk.Set(vec.Vec3{X: 0, Y: 1, Z: 0}, stoneID)

	pos, ok := chunk.IntersectLocal(Ray{Origin: origin, Direction: dir})
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 0, Y: 0, Z: 1}, pos, "При tMaxX == tMaxY == tMaxZ шаг по Z")

	// tMaxX < tMaxY, tMaxX == tMaxZ: ветвь X<Y, затем X<Z ложно, шаг по Z
	chunk = NewChunk()
	chunk.Set(vec.Vec3{X: 1, Y: 0, Z: 0}, stoneID)
	chunk.Set(vec.Vec3{X: 0, Y: 0, Z: 1}, stoneID)

	pos, ok = chunk.IntersectLocal(Ray{Origin: origin, Direction: mgl32.Vec3{1, 0.5, 1}})
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 0, Y: 0, Z: 1}, pos)

	// tMaxX == tMaxY < tMaxZ: ветвь X>=Y, Y<Z, шаг по Y
	chunk = NewChunk()
	chunk.Set(vec.Vec3{X: 1, Y: 0, Z: 0}, stoneID)
	chunk.Set(vec.Vec3{X: 0, Y: 1, Z: 0}, stoneID)

	pos, ok = chunk.IntersectLocal(Ray{Origin: origin, Direction: mgl32.Vec3{1, 1, 0.5}})
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 0, Y: 1, Z: 0}, pos)
}
