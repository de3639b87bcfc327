package block

import "github.com/go-gl/mathgl/mgl32"

// BoxBounds описывает прямоугольный параллелепипед двумя противоположными углами
type BoxBounds struct {
	Corner1 mgl32.Vec3
	Corner2 mgl32.Vec3
}

// At переносит параллелепипед так, чтобы Corner1 оказался в pos
func (b BoxBounds) At(pos mgl32.Vec3) BoxBounds {
	translation := pos.Sub(b.Corner1)
	return BoxBounds{
		Corner1: pos,
		Corner2: b.Corner2.Add(translation),
	}
}

// Min возвращает покомпонентно минимальный угол
func (b BoxBounds) Min() mgl32.Vec3 {
	return mgl32.Vec3{
		min(b.Corner1[0], b.Corner2[0]),
		min(b.Corner1[1], b.Corner2[1]),
		min(b.Corner1[2], b.Corner2[2]),
	}
}

// Max возвращает покомпонентно максимальный угол
func (b BoxBounds) Max() mgl32.Vec3 {
	return mgl32.Vec3{
		max(b.Corner1[0], b.Corner2[0]),
		max(b.Corner1[1], b.Corner2[1]),
		max(b.Corner1[2], b.Corner2[2]),
	}
}

// FaceTextures содержит имена текстур для шести граней
type FaceTextures struct {
	Front  string `yaml:"front"`
	Back   string `yaml:"back"`
	Left   string `yaml:"left"`
	Right  string `yaml:"right"`
	Top    string `yaml:"top"`
	Bottom string `yaml:"bottom"`
}

// Names возвращает имена в порядке front, back, left, right, top, bottom
func (f FaceTextures) Names() [6]string {
	return [6]string{f.Front, f.Back, f.Left, f.Right, f.Top, f.Bottom}
}

// BoxInfo описывает одну компоненту геометрии блока
type BoxInfo struct {
	Bounds   BoxBounds
	Textures FaceTextures
}

// At переносит компоненту в указанную позицию
func (b BoxInfo) At(pos mgl32.Vec3) BoxInfo {
	return BoxInfo{Bounds: b.Bounds.At(pos), Textures: b.Textures}
}

// Info содержит статическое описание типа блока, общее для всех экземпляров.
// После регистрации не изменяется.
type Info struct {
	Components []BoxInfo
}

// TextureNames возвращает уникальные имена текстур в порядке первого появления
func (i Info) TextureNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, c := range i.Components {
		for _, name := range c.Textures.Names() {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}
