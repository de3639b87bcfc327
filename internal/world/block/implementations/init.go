package implementations

import (
	_ "embed"
	"fmt"

	"github.com/annel0/voxel-sim/internal/world/block"
)

//go:embed defaults.yaml
var defaultCatalog []byte

// Имена блоков из встроенного каталога
const (
	GrassName       = "grass"
	MovingGrassName = "movingGrass"
)

// behaviorKinds сопоставляет поле behavior каталога с конструктором поведения
var behaviorKinds = map[string]func() block.Behavior{
	"static": func() block.Behavior { return &GrassBehavior{} },
	"moving": func() block.Behavior { return &MovingGrassBehavior{} },
}

// DefaultCatalog возвращает встроенный каталог блоков
func DefaultCatalog() (*block.Catalog, error) {
	return block.ParseCatalog(defaultCatalog)
}

// RegisterCatalog регистрирует все блоки каталога в порядке их описания
func RegisterCatalog(r *block.Registry, catalog *block.Catalog) error {
	for _, def := range catalog.Blocks {
		kind := def.Behavior
		if kind == "" {
			kind = "static"
		}
		newBehavior, ok := behaviorKinds[kind]
		if !ok {
			return fmt.Errorf("блок %q: неизвестное поведение %q", def.Name, def.Behavior)
		}
		if _, err := r.Register(def.Name, def.Info(), newBehavior()); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefaults регистрирует встроенный каталог блоков
func RegisterDefaults(r *block.Registry) error {
	catalog, err := DefaultCatalog()
	if err != nil {
		return err
	}
	return RegisterCatalog(r, catalog)
}
