package block

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/voxel-sim/internal/logging"
	"github.com/annel0/voxel-sim/internal/vec"
)

var (
	// ErrUnknownBlock возвращается при обращении к незарегистрированному имени или типу
	ErrUnknownBlock = errors.New("блок не зарегистрирован")
	// ErrDuplicateBlock возвращается при повторной регистрации имени
	ErrDuplicateBlock = errors.New("блок уже зарегистрирован")
	// ErrRegistryFull возвращается, когда пространство TypeID исчерпано
	ErrRegistryFull = errors.New("пространство идентификаторов блоков исчерпано")
)

// Registry хранит статические описания и поведения типов блоков.
//
// Идентификаторы выдаются последовательно начиная с 1 в порядке регистрации.
// Регистрация выполняется владельцем один раз при старте, до запуска симуляции;
// отмены регистрации нет. Registry не синхронизирован.
type Registry struct {
	lastID    TypeID
	ids       map[string]TypeID
	names     map[TypeID]string
	infos     map[TypeID]Info
	behaviors map[TypeID]Behavior
}

// NewRegistry создаёт пустой регистр
func NewRegistry() *Registry {
	return &Registry{
		ids:       make(map[string]TypeID),
		names:     make(map[TypeID]string),
		infos:     make(map[TypeID]Info),
		behaviors: make(map[TypeID]Behavior),
	}
}

// Register добавляет тип блока и возвращает его идентификатор
func (r *Registry) Register(name string, info Info, behavior Behavior) (BlockID, error) {
	if name == "" {
		return Empty, fmt.Errorf("пустое имя блока")
	}
	if behavior == nil {
		return Empty, fmt.Errorf("блок %q: поведение не задано", name)
	}
	if _, exists := r.ids[name]; exists {
		return Empty, fmt.Errorf("%w: %q", ErrDuplicateBlock, name)
	}
	if r.lastID == math.MaxUint16 {
		return Empty, fmt.Errorf("%w: %q", ErrRegistryFull, name)
	}

	r.lastID++
	id := r.lastID
	r.ids[name] = id
	r.names[id] = name
	r.infos[id] = info
	r.behaviors[id] = behavior

	logging.Debug("Зарегистрирован блок %q (id=%d)", name, id)
	return NewBlockID(id, 0), nil
}

// LookupID возвращает идентификатор блока по имени
func (r *Registry) LookupID(name string) (BlockID, error) {
	id, exists := r.ids[name]
	if !exists {
		return Empty, fmt.Errorf("%w: имя %q", ErrUnknownBlock, name)
	}
	return NewBlockID(id, 0), nil
}

// MustLookupID как LookupID, но завершает работу паникой.
// Предназначен для имён, наличие которых гарантировано регистрацией при старте.
func (r *Registry) MustLookupID(name string) BlockID {
	id, err := r.LookupID(name)
	if err != nil {
		logging.Error("MustLookupID: %v", err)
		panic(err)
	}
	return id
}

// LookupInfo возвращает статическое описание типа блока
func (r *Registry) LookupInfo(id BlockID) (Info, error) {
	info, exists := r.infos[id.TypeID()]
	if !exists {
		return Info{}, fmt.Errorf("%w: id=%d", ErrUnknownBlock, id.TypeID())
	}
	return info, nil
}

// Behavior возвращает поведение типа блока
func (r *Registry) Behavior(id BlockID) (Behavior, error) {
	behavior, exists := r.behaviors[id.TypeID()]
	if !exists {
		return nil, fmt.Errorf("%w: id=%d", ErrUnknownBlock, id.TypeID())
	}
	return behavior, nil
}

// Name возвращает имя типа блока или пустую строку
func (r *Registry) Name(id BlockID) string {
	return r.names[id.TypeID()]
}

// Len возвращает количество зарегистрированных типов
func (r *Registry) Len() int {
	return len(r.ids)
}

// Dispatch передаёт тик поведению типа блока
func (r *Registry) Dispatch(api API, pos vec.Vec3, id BlockID) error {
	behavior, err := r.Behavior(id)
	if err != nil {
		logging.Error("Тик блока в %v: %v", pos, err)
		return err
	}
	return behavior.Tick(api, pos, id)
}
