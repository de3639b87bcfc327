package app

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/annel0/voxel-sim/internal/logging"
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world"
	"github.com/annel0/voxel-sim/internal/world/block"
)

// RenderRebuilder пересобирает буферы отрисовки целиком по текущему состоянию мира.
// Вызывается из Scene.Frame, если мир изменился с прошлого кадра.
type RenderRebuilder interface {
	Rebuild(w *world.World) error
}

// MeshStats содержит сводку последней пересборки
type MeshStats struct {
	Rebuilds uint64     `json:"rebuilds"`
	Blocks   int        `json:"blocks"`
	Boxes    int        `json:"boxes"`
	Textures []string   `json:"textures"`
	Min      mgl32.Vec3 `json:"min"`
	Max      mgl32.Vec3 `json:"max"`
}

// MeshSummary реализует RenderRebuilder без GPU: раскладывает геометрию блоков по
// мировым позициям и собирает сводку (число параллелепипедов, текстуры, габариты).
type MeshSummary struct {
	registry *block.Registry
	logger   *logging.Logger

	mu    sync.Mutex
	stats MeshStats
}

// NewMeshSummary создаёт сводку поверх регистра блоков
func NewMeshSummary(r *block.Registry, logger *logging.Logger) *MeshSummary {
	return &MeshSummary{registry: r, logger: logger}
}

// Rebuild обходит все непустые блоки мира
func (m *MeshSummary) Rebuild(w *world.World) error {
	stats := MeshStats{}
	seen := make(map[string]struct{})
	var errs []error
	first := true

	w.ForEachBlock(func(pos vec.Vec3, id block.BlockID) {
		info, err := m.registry.LookupInfo(id)
		if err != nil {
			errs = append(errs, fmt.Errorf("блок в %s: %w", pos, err))
			return
		}

		stats.Blocks++
		at := mgl32.Vec3{float32(pos.X), float32(pos.Y), float32(pos.Z)}
		for _, component := range info.Components {
			placed := component.At(at)
			stats.Boxes++

			lo, hi := placed.Bounds.Min(), placed.Bounds.Max()
			if first {
				stats.Min, stats.Max = lo, hi
				first = false
			} else {
				for i := 0; i < 3; i++ {
					stats.Min[i] = min(stats.Min[i], lo[i])
					stats.Max[i] = max(stats.Max[i], hi[i])
				}
			}
		}
		for _, name := range info.TextureNames() {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				stats.Textures = append(stats.Textures, name)
			}
		}
	})

	m.mu.Lock()
	stats.Rebuilds = m.stats.Rebuilds + 1
	m.stats = stats
	m.mu.Unlock()

	m.logger.Debug("Пересборка #%d: блоков %d, параллелепипедов %d", stats.Rebuilds, stats.Blocks, stats.Boxes)
	return errors.Join(errs...)
}

// Stats возвращает сводку последней пересборки
func (m *MeshSummary) Stats() MeshStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := m.stats
	stats.Textures = append([]string(nil), m.stats.Textures...)
	return stats
}
