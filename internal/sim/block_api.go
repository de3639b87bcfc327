package sim

import (
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world/block"
)

// tickAPI реализует block.API для поведений, вызванных в тике
type tickAPI struct {
	scheduler *Scheduler
}

var _ block.API = (*tickAPI)(nil)

// GetBlock возвращает блок по мировым координатам
func (api *tickAPI) GetBlock(pos vec.Vec3) (block.BlockID, error) {
	return api.scheduler.world.GetBlock(pos)
}

// SetBlock перенаправляет запись в мир
func (api *tickAPI) SetBlock(pos vec.Vec3, id block.BlockID) error {
	return api.scheduler.world.AddBlock(pos, id)
}

// RemoveBlock очищает позицию
func (api *tickAPI) RemoveBlock(pos vec.Vec3) error {
	return api.scheduler.world.RemoveBlock(pos)
}

// ScheduleTick планирует позицию на следующий тик
func (api *tickAPI) ScheduleTick(pos vec.Vec3) {
	api.scheduler.Schedule(pos)
}
