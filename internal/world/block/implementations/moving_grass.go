package implementations

import (
	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world/block"
)

const (
	// movingGrassRisePeriod: через сколько тиков блок поднимается на одну клетку
	movingGrassRisePeriod = 20
	// movingGrassFallPeriod: через сколько тиков блок опускается и сбрасывает счётчик
	movingGrassFallPeriod = 40
)

// MovingData содержит дополнительные данные движущегося блока.
// Упаковка: в старших 8 битах счётчик тиков, в младших 8 битах ось движения.
type MovingData struct {
	TickCounter uint8
	Axis        uint8
}

// UnpackMovingData разбирает дополнительные данные BlockID
func UnpackMovingData(data uint16) MovingData {
	return MovingData{
		TickCounter: uint8(data >> 8),
		Axis:        uint8(data & 0xFF),
	}
}

// Pack упаковывает данные обратно в 16 бит
func (d MovingData) Pack() uint16 {
	return uint16(d.TickCounter)<<8 | uint16(d.Axis)
}

// MovingGrassBehavior реализует блок травы, который раз в секунду
// поднимается на клетку и раз в две секунды возвращается вниз
type MovingGrassBehavior struct{}

// Tick продвигает счётчик, перемещает блок и планирует его на следующий тик
func (b *MovingGrassBehavior) Tick(api block.API, pos vec.Vec3, id block.BlockID) error {
	data := UnpackMovingData(id.InstanceData())
	data.TickCounter++

	newPos := pos
	if data.TickCounter%movingGrassFallPeriod == 0 {
		newPos = newPos.Down()
		data.TickCounter = 0
	} else if data.TickCounter%movingGrassRisePeriod == 0 {
		newPos = newPos.Up()
	}

	// Целевая позиция проверяется до удаления: при ошибке блок остаётся на месте
	if newPos != pos {
		if _, err := api.GetBlock(newPos); err != nil {
			return err
		}
	}

	if err := api.RemoveBlock(pos); err != nil {
		return err
	}
	if err := api.SetBlock(newPos, id.WithInstanceData(data.Pack())); err != nil {
		_ = api.SetBlock(pos, id)
		return err
	}
	api.ScheduleTick(newPos)
	return nil
}
