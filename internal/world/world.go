package world

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world/block"
)

var (
	// ErrChunkNotLoaded возвращается при обращении к позиции без загруженного чанка
	ErrChunkNotLoaded = errors.New("чанк не загружен")
	// ErrUnalignedOrigin возвращается, если начало чанка не кратно размеру чанка
	ErrUnalignedOrigin = errors.New("начало чанка не выровнено")
)

// chunkCell хранит чанк, пересечённый лучом, и параметр t входа в него
type chunkCell struct {
	origin vec.Vec3
	tEntry float32
}

// World хранит разреженную карту чанков.
//
// Границы мира покрывают объединение всех когда-либо добавленных чанков; флаг modified
// выставляется любой записью блока и сбрасывается владельцем через TakeModified.
// RWMutex позволяет читать мир из других горутин, пока симуляция пишет в него.
type World struct {
	mu        sync.RWMutex
	chunks    map[vec.Vec3]*Chunk // Чанки по их началу
	bounds    Bounds              // Объединение границ всех чанков
	hasBounds bool                // false, пока не добавлен ни один чанк
	modified  bool                // Есть изменения с последнего TakeModified
}

// NewWorld создаёт пустой мир
func NewWorld() *World {
	return &World{
		chunks: make(map[vec.Vec3]*Chunk),
	}
}

// AddChunk добавляет чанк (или заменяет существующий) и расширяет границы мира
func (w *World) AddChunk(origin vec.Vec3, chunk *Chunk) error {
	if !origin.IsChunkAligned() {
		return fmt.Errorf("%w: %s", ErrUnalignedOrigin, origin)
	}
	if chunk == nil {
		chunk = NewChunk()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.chunks[origin] = chunk
	if w.hasBounds {
		w.bounds.ExtendToFit(chunkBounds(origin))
	} else {
		w.bounds = chunkBounds(origin)
		w.hasBounds = true
	}
	return nil
}

// Chunk возвращает чанк по его началу.
// Изменять чанк напрямую можно только пока мир не используется другими горутинами.
func (w *World) Chunk(origin vec.Vec3) (*Chunk, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	chunk, ok := w.chunks[origin]
	return chunk, ok
}

// ChunkOrigins возвращает начала всех чанков в лексикографическом порядке
func (w *World) ChunkOrigins() []vec.Vec3 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	origins := make([]vec.Vec3, 0, len(w.chunks))
	for origin := range w.chunks {
		origins = append(origins, origin)
	}
	sort.Slice(origins, func(i, j int) bool { return origins[i].Less(origins[j]) })
	return origins
}

// ChunkCount возвращает количество чанков
func (w *World) ChunkCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.chunks)
}

// Bounds возвращает границы мира; false, если в мире нет чанков
func (w *World) Bounds() (Bounds, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.bounds, w.hasBounds
}

// GetBlock возвращает блок по мировым координатам
func (w *World) GetBlock(pos vec.Vec3) (block.BlockID, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	chunk, ok := w.chunks[pos.ChunkOrigin()]
	if !ok {
		return block.Empty, fmt.Errorf("%w: позиция %s", ErrChunkNotLoaded, pos)
	}
	return chunk.Get(pos.LocalInChunk()), nil
}

// AddBlock записывает блок по мировым координатам и отмечает мир изменённым
func (w *World) AddBlock(pos vec.Vec3, id block.BlockID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	chunk, ok := w.chunks[pos.ChunkOrigin()]
	if !ok {
		return fmt.Errorf("%w: позиция %s", ErrChunkNotLoaded, pos)
	}
	chunk.Set(pos.LocalInChunk(), id)
	w.modified = true
	return nil
}

// RemoveBlock заменяет блок пустым
func (w *World) RemoveBlock(pos vec.Vec3) error {
	return w.AddBlock(pos, block.Empty)
}

// Modified сообщает, были ли записи с последнего TakeModified
func (w *World) Modified() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.modified
}

// TakeModified возвращает флаг изменений и сбрасывает его
func (w *World) TakeModified() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	modified := w.modified
	w.modified = false
	return modified
}

// ForEachBlock обходит все непустые блоки мира (чанки в порядке ChunkOrigins).
// fn вызывается под блокировкой чтения и не должна изменять мир.
func (w *World) ForEachBlock(fn func(pos vec.Vec3, id block.BlockID)) {
	origins := w.ChunkOrigins()

	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, origin := range origins {
		chunk, ok := w.chunks[origin]
		if !ok {
			continue
		}
		chunk.ForEach(func(local vec.Vec3, id block.BlockID) {
			fn(origin.Add(local), id)
		})
	}
}

// Intersect возвращает позицию первого непустого блока на пути луча.
//
// Сначала луч обрезается границами мира (если начало снаружи), затем сетка
// чанков обходится тем же алгоритмом DDA с ячейкой 16. Все присутствующие
// чанки на пути собираются вместе с параметром входа, сортируются по нему
// и проверяются по порядку через Chunk.IntersectLocal.
func (w *World) Intersect(ray Ray) (vec.Vec3, bool) {
	if !ray.IsFinite() {
		return vec.Vec3{}, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	if !w.hasBounds {
		return vec.Vec3{}, false
	}

	origin := ray.Origin
	if !w.bounds.Contains(origin) {
		hit, ok := w.bounds.Intersect(ray)
		if !ok {
			return vec.Vec3{}, false
		}
		origin = hit.Point
	}

	direction := withoutZeros(ray.Direction)
	cells := w.traverseChunks(origin, direction)

	sort.SliceStable(cells, func(i, j int) bool { return cells[i].tEntry < cells[j].tEntry })

	travel := Ray{Origin: origin, Direction: direction}
	for _, cell := range cells {
		chunk := w.chunks[cell.origin]
		cellStart := mgl32.Vec3{float32(cell.origin.X), float32(cell.origin.Y), float32(cell.origin.Z)}
		local := Ray{
			Origin:    clampToChunk(travel.At(cell.tEntry).Sub(cellStart)),
			Direction: direction,
		}

		if pos, ok := chunk.IntersectLocal(local); ok {
			return cell.origin.Add(pos), true
		}
	}

	return vec.Vec3{}, false
}

// traverseChunks обходит ячейки сетки чанков от origin вдоль direction,
// пока ячейка не выйдет за границы мира. Вызывается под блокировкой чтения.
func (w *World) traverseChunks(origin, direction mgl32.Vec3) []chunkCell {
	var cells []chunkCell

	cell := vec.Vec3{
		X: floorInt(origin.X()/vec.ChunkSize) * vec.ChunkSize,
		Y: floorInt(origin.Y()/vec.ChunkSize) * vec.ChunkSize,
		Z: floorInt(origin.Z()/vec.ChunkSize) * vec.ChunkSize,
	}

	stepX, tDeltaX, tMaxX := ddaAxis(cell.X, origin.X(), direction.X(), vec.ChunkSize)
	stepY, tDeltaY, tMaxY := ddaAxis(cell.Y, origin.Y(), direction.Y(), vec.ChunkSize)
	stepZ, tDeltaZ, tMaxZ := ddaAxis(cell.Z, origin.Z(), direction.Z(), vec.ChunkSize)

	var tEntry float32
	for {
		if _, ok := w.chunks[cell]; ok {
			cells = append(cells, chunkCell{origin: cell, tEntry: tEntry})
		}

		tEntry = min(tMaxX, tMaxY, tMaxZ)
		if tMaxX < tMaxY {
			if tMaxX < tMaxZ {
				cell.X += stepX
				tMaxX += tDeltaX
			} else {
				cell.Z += stepZ
				tMaxZ += tDeltaZ
			}
		} else {
			if tMaxY < tMaxZ {
				cell.Y += stepY
				tMaxY += tDeltaY
			} else {
				cell.Z += stepZ
				tMaxZ += tDeltaZ
			}
		}

		if !w.bounds.ContainsPosition(cell) {
			return cells
		}
	}
}

// chunkUpperLimit: наибольшее float32 меньше 16
var chunkUpperLimit = math.Nextafter32(vec.ChunkSize, 0)

// clampToChunk прижимает локальную точку входа к [0,16).
// Точка входа лежит на грани чанка, и погрешность float32 может вынести её
// на соседнюю ячейку; при входе со стороны максимума грань равна ровно 16.
func clampToChunk(p mgl32.Vec3) mgl32.Vec3 {
	for i := range p {
		p[i] = min(max(p[i], 0), chunkUpperLimit)
	}
	return p
}
