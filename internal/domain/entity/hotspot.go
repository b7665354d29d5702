package entity

// Hotspot ограничивающий прямоугольник области, которую модель сочла значимой
type Hotspot struct {
	X      int // координата X левого верхнего угла
	Y      int // координата Y левого верхнего угла
	Width  int // ширина области в пикселях
	Height int // высота области в пикселях
	Area   int // число ненулевых пикселей карты внутри области
}

// Center возвращает координаты центра области
func (h Hotspot) Center() (x, y int) {
	return h.X + h.Width/2, h.Y + h.Height/2
}

// Empty сообщает, что после порога не осталось ни одного пикселя
func (h Hotspot) Empty() bool {
	return h.Area == 0
}
