package block

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Catalog описывает набор типов блоков в YAML
type Catalog struct {
	Blocks []Definition `yaml:"blocks"`
}

// Definition описывает один тип блока в каталоге
type Definition struct {
	Name       string                `yaml:"name"`
	Behavior   string                `yaml:"behavior"`
	Components []ComponentDefinition `yaml:"components"`
}

// ComponentDefinition описывает одну компоненту геометрии
type ComponentDefinition struct {
	Min      [3]float32   `yaml:"min"`
	Max      [3]float32   `yaml:"max"`
	Textures FaceTextures `yaml:"textures"`
}

// Info преобразует определение в статическое описание блока
func (d Definition) Info() Info {
	components := make([]BoxInfo, 0, len(d.Components))
	for _, c := range d.Components {
		components = append(components, BoxInfo{
			Bounds: BoxBounds{
				Corner1: mgl32.Vec3(c.Min),
				Corner2: mgl32.Vec3(c.Max),
			},
			Textures: c.Textures,
		})
	}
	return Info{Components: components}
}

// ParseCatalog разбирает YAML-каталог блоков
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("ошибка разбора каталога блоков: %w", err)
	}

	seen := make(map[string]struct{}, len(catalog.Blocks))
	for i, def := range catalog.Blocks {
		if def.Name == "" {
			return nil, fmt.Errorf("блок #%d: не задано имя", i)
		}
		if _, ok := seen[def.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBlock, def.Name)
		}
		seen[def.Name] = struct{}{}
		if len(def.Components) == 0 {
			return nil, fmt.Errorf("блок %q: нет ни одной компоненты", def.Name)
		}
	}
	return &catalog, nil
}

// LoadCatalog читает каталог блоков из файла
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}
