package block

import (
	"github.com/annel0/voxel-sim/internal/vec"
)

// API определяет интерфейс для взаимодействия блоков с игровым миром.
// Реализацию предоставляет планировщик тиков; все координаты мировые.
type API interface {
	// GetBlock возвращает блок в указанной позиции.
	GetBlock(pos vec.Vec3) (BlockID, error)

	// SetBlock записывает блок в указанную позицию.
	SetBlock(pos vec.Vec3, id BlockID) error

	// RemoveBlock заменяет блок в позиции пустым.
	RemoveBlock(pos vec.Vec3) error

	// ScheduleTick ставит позицию в очередь следующего тика.
	// Позиции, добавленные во время тика, никогда не выполняются в том же тике.
	ScheduleTick(pos vec.Vec3)
}
