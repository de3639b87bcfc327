package implementations

import (
	"errors"
	"testing"

	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/annel0/voxel-sim/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBlockAPI реализует block.API для тестирования
type mockBlockAPI struct {
	blocks    map[vec.Vec3]block.BlockID
	scheduled []vec.Vec3
	failSet   map[vec.Vec3]error // Ошибки записи по позициям
}

func newMockBlockAPI() *mockBlockAPI {
	return &mockBlockAPI{
		blocks: make(map[vec.Vec3]block.BlockID),
	}
}

func (m *mockBlockAPI) GetBlock(pos vec.Vec3) (block.BlockID, error) {
	return m.blocks[pos], nil
}

func (m *mockBlockAPI) SetBlock(pos vec.Vec3, id block.BlockID) error {
	if err := m.failSet[pos]; err != nil && !id.IsEmpty() {
		return err
	}
	if id.IsEmpty() {
		delete(m.blocks, pos)
		return nil
	}
	m.blocks[pos] = id
	return nil
}

func (m *mockBlockAPI) RemoveBlock(pos vec.Vec3) error {
	return m.SetBlock(pos, block.Empty)
}

func (m *mockBlockAPI) ScheduleTick(pos vec.Vec3) {
	m.scheduled = append(m.scheduled, pos)
}

// step выполняет один тик для единственного блока в mock API
func (m *mockBlockAPI) step(t *testing.T, b block.Behavior) (vec.Vec3, block.BlockID) {
	t.Helper()
	require.Len(t, m.blocks, 1)
	for pos, id := range m.blocks {
		m.scheduled = nil
		require.NoError(t, b.Tick(m, pos, id))
		require.Len(t, m.scheduled, 1, "блок должен перепланировать себя")
		newPos := m.scheduled[0]
		return newPos, m.blocks[newPos]
	}
	return vec.Vec3{}, block.Empty
}

func TestMovingDataRoundTrip(t *testing.T) {
	for counter := 0; counter <= 0xFF; counter++ {
		for axis := 0; axis <= 0xFF; axis++ {
			d := MovingData{TickCounter: uint8(counter), Axis: uint8(axis)}
			assert.Equal(t, d, UnpackMovingData(d.Pack()))
		}
	}
}

func TestMovingDataLayout(t *testing.T) {
	d := UnpackMovingData(0x1402)
	assert.Equal(t, uint8(0x14), d.TickCounter)
	assert.Equal(t, uint8(0x02), d.Axis)
}

func TestMovingGrassBehavior_Cycle(t *testing.T) {
	behavior := &MovingGrassBehavior{}
	api := newMockBlockAPI()

	start := vec.Vec3{X: 1, Y: 1, Z: 1}
	id := block.NewBlockID(2, MovingData{Axis: 3}.Pack())
	api.blocks[start] = id

	var pos vec.Vec3
	var cur block.BlockID
	for tick := 1; tick <= 19; tick++ {
		pos, cur = api.step(t, behavior)
		assert.Equal(t, start, pos, "до 20-го тика блок стоит на месте (тик %d)", tick)
		assert.Equal(t, uint8(tick), UnpackMovingData(cur.InstanceData()).TickCounter)
	}

	pos, cur = api.step(t, behavior)
	assert.Equal(t, start.Up(), pos, "на 20-м тике блок поднимается")
	assert.Equal(t, uint8(20), UnpackMovingData(cur.InstanceData()).TickCounter)

	for tick := 21; tick <= 39; tick++ {
		pos, _ = api.step(t, behavior)
		assert.Equal(t, start.Up(), pos)
	}

	pos, cur = api.step(t, behavior)
	assert.Equal(t, start, pos, "на 40-м тике блок опускается")

	data := UnpackMovingData(cur.InstanceData())
	assert.Equal(t, uint8(0), data.TickCounter, "счётчик сбрасывается")
	assert.Equal(t, uint8(3), data.Axis, "ось сохраняется")
	assert.True(t, cur.Same(id))
}

func TestMovingGrassBehavior_RestoresBlockOnFailedMove(t *testing.T) {
	behavior := &MovingGrassBehavior{}
	api := newMockBlockAPI()

	pos := vec.Vec3{X: 1, Y: 1, Z: 1}
	id := block.NewBlockID(2, MovingData{TickCounter: 19}.Pack())
	api.blocks[pos] = id

	errWrite := errors.New("запись запрещена")
	api.failSet = map[vec.Vec3]error{pos.Up(): errWrite}

	err := behavior.Tick(api, pos, id)
	assert.ErrorIs(t, err, errWrite)
	assert.Equal(t, id, api.blocks[pos], "блок возвращается на исходную позицию")
	assert.Empty(t, api.scheduled)
}

func TestRegisterDefaults(t *testing.T) {
	r := block.NewRegistry()
	require.NoError(t, RegisterDefaults(r))

	grass := r.MustLookupID(GrassName)
	moving := r.MustLookupID(MovingGrassName)
	assert.Equal(t, block.TypeID(1), grass.TypeID())
	assert.Equal(t, block.TypeID(2), moving.TypeID())

	info, err := r.LookupInfo(grass)
	require.NoError(t, err)
	require.Len(t, info.Components, 1)
	assert.Equal(t, "grassTop", info.Components[0].Textures.Top)
	assert.Equal(t, []string{"grassSide", "grassTop", "grassBottom"}, info.TextureNames())

	behavior, err := r.Behavior(moving)
	require.NoError(t, err)
	assert.IsType(t, &MovingGrassBehavior{}, behavior)
}

func TestRegisterCatalogUnknownBehavior(t *testing.T) {
	catalog := &block.Catalog{Blocks: []block.Definition{{
		Name:       "weird",
		Behavior:   "teleporting",
		Components: []block.ComponentDefinition{{Max: [3]float32{1, 1, 1}}},
	}}}

	err := RegisterCatalog(block.NewRegistry(), catalog)
	assert.Error(t, err)
}
