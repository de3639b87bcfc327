package vec

// Size описывает размеры окна или буфера кадра в пикселях
type Size struct {
	Width  int
	Height int
}

// IsEmpty возвращает true, если хотя бы одно измерение не положительно
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// AspectRatio возвращает отношение ширины к высоте
func (s Size) AspectRatio() float32 {
	return float32(s.Width) / float32(s.Height)
}
