package block

import (
	"errors"
	"testing"

	"github.com/annel0/voxel-sim/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noop = BehaviorFunc(func(API, vec.Vec3, BlockID) error { return nil })

func TestRegistrySequentialIDs(t *testing.T) {
	r := NewRegistry()

	grass, err := r.Register("grass", Info{}, noop)
	require.NoError(t, err)
	stone, err := r.Register("stone", Info{}, noop)
	require.NoError(t, err)

	assert.Equal(t, TypeID(1), grass.TypeID())
	assert.Equal(t, TypeID(2), stone.TypeID())
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "stone", r.Name(stone))

	id, err := r.LookupID("grass")
	require.NoError(t, err)
	assert.True(t, id.Same(grass))
}

func TestRegistryRejectsInvalidRegistration(t *testing.T) {
	r := NewRegistry()
	_, err := r.Register("grass", Info{}, noop)
	require.NoError(t, err)

	_, err = r.Register("grass", Info{}, noop)
	assert.ErrorIs(t, err, ErrDuplicateBlock)

	_, err = r.Register("", Info{}, noop)
	assert.Error(t, err)

	_, err = r.Register("nil", Info{}, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, r.Len(), "неудачная регистрация не должна расходовать идентификатор")
}

func TestRegistryUnknownLookups(t *testing.T) {
	r := NewRegistry()

	_, err := r.LookupID("missing")
	assert.ErrorIs(t, err, ErrUnknownBlock)

	_, err = r.LookupInfo(NewBlockID(42, 0))
	assert.ErrorIs(t, err, ErrUnknownBlock)

	err = r.Dispatch(nil, vec.Vec3{}, NewBlockID(42, 0))
	assert.ErrorIs(t, err, ErrUnknownBlock)

	assert.Panics(t, func() { r.MustLookupID("missing") })
}

func TestRegistryLookupInfoIgnoresInstanceData(t *testing.T) {
	r := NewRegistry()
	info := Info{Components: []BoxInfo{{Textures: FaceTextures{Top: "grassTop"}}}}
	id, err := r.Register("grass", info, noop)
	require.NoError(t, err)

	got, err := r.LookupInfo(id.WithInstanceData(0xFFFF))
	require.NoError(t, err)
	assert.Equal(t, info, got)
}

func TestRegistryDispatch(t *testing.T) {
	r := NewRegistry()
	var calls []vec.Vec3
	failure := errors.New("boom")

	id, err := r.Register("recorder", Info{}, BehaviorFunc(func(_ API, pos vec.Vec3, got BlockID) error {
		calls = append(calls, pos)
		if got.InstanceData() == 1 {
			return failure
		}
		return nil
	}))
	require.NoError(t, err)

	require.NoError(t, r.Dispatch(nil, vec.Vec3{X: 1}, id))
	assert.ErrorIs(t, r.Dispatch(nil, vec.Vec3{X: 2}, id.WithInstanceData(1)), failure)
	assert.Equal(t, []vec.Vec3{{X: 1}, {X: 2}}, calls)
}
