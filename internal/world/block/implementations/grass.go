package implementations

import (
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world/block"
)

// GrassBehavior реализует поведение статичного блока травы
type GrassBehavior struct{}

// Tick ничего не делает: трава статична
func (b *GrassBehavior) Tick(api block.API, pos vec.Vec3, id block.BlockID) error {
	return nil
}
