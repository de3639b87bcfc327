package block

import (
	"github.com/annel0/voxel-sim/internal/vec"
)

// Behavior определяет поведение типа блока в тике симуляции.
//
// Поведение может читать и изменять любые позиции мира через api. Обычно оно
// пересчитывает свои дополнительные данные, убирает блок со старой позиции,
// записывает блок в новую и снова планирует себя на следующий тик.
type Behavior interface {
	Tick(api API, pos vec.Vec3, id BlockID) error
}

// BehaviorFunc позволяет использовать функцию как Behavior
type BehaviorFunc func(api API, pos vec.Vec3, id BlockID) error

// Tick вызывает f
func (f BehaviorFunc) Tick(api API, pos vec.Vec3, id BlockID) error {
	return f(api, pos, id)
}
