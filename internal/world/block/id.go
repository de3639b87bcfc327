package block

import "fmt"

// TypeID идентифицирует тип блока. Именно он является ключом во всех картах.
type TypeID uint16

// AirTypeID обозначает пустой блок (воздух)
const AirTypeID TypeID = 0

// BlockID упаковывает тип блока (младшие 16 бит) и дополнительные данные
// экземпляра (старшие 16 бит).
//
// Идентичность блока определяется только TypeID: дополнительные данные
// принадлежат конкретному экземпляру и интерпретируются поведением его типа.
// Для сравнения используйте Same, для ключей карт используйте TypeID; оператор ==
// сравнивает и дополнительные данные.
type BlockID uint32

// Empty: пустой блок без дополнительных данных
const Empty BlockID = 0

// NewBlockID создаёт BlockID из типа и дополнительных данных
func NewBlockID(typeID TypeID, instanceData uint16) BlockID {
	return BlockID(uint32(instanceData)<<16 | uint32(typeID))
}

// TypeID возвращает младшие 16 бит
func (b BlockID) TypeID() TypeID {
	return TypeID(b & 0xFFFF)
}

// InstanceData возвращает старшие 16 бит
func (b BlockID) InstanceData() uint16 {
	return uint16(b >> 16)
}

// WithInstanceData возвращает копию с заменёнными дополнительными данными
func (b BlockID) WithInstanceData(data uint16) BlockID {
	return NewBlockID(b.TypeID(), data)
}

// IsEmpty возвращает true для воздуха независимо от дополнительных данных
func (b BlockID) IsEmpty() bool {
	return b.TypeID() == AirTypeID
}

// Same сравнивает блоки только по типу
func (b BlockID) Same(other BlockID) bool {
	return b.TypeID() == other.TypeID()
}

// String реализует fmt.Stringer
func (b BlockID) String() string {
	return fmt.Sprintf("BlockID(type=%d, data=0x%04x)", b.TypeID(), b.InstanceData())
}
