package vision

import "image"

// Mask: булева сетка размером с канал. Помнит область, в которую
// производилась запись, чтобы Reset и подсчёты не обходили весь кадр.
type Mask struct {
	rect  image.Rectangle
	bits  []bool
	dirty image.Rectangle
}

// NewMask создаёт пустую маску для области rect
func NewMask(rect image.Rectangle) *Mask {
	return &Mask{
		rect: rect,
		bits: make([]bool, rect.Dx()*rect.Dy()),
	}
}

// Bounds возвращает размеры маски
func (m *Mask) Bounds() image.Rectangle {
	return m.rect
}

// At сообщает, покрыт ли пиксель (x, y)
func (m *Mask) At(x, y int) bool {
	if !image.Pt(x, y).In(m.rect) {
		return false
	}
	return m.bits[m.index(x, y)]
}

func (m *Mask) index(x, y int) int {
	return (y-m.rect.Min.Y)*m.rect.Dx() + (x - m.rect.Min.X)
}

func (m *Mask) set(x, y int) {
	m.bits[m.index(x, y)] = true
	m.dirty = m.dirty.Union(image.Rect(x, y, x+1, y+1))
}

// Reset полностью очищает маску
func (m *Mask) Reset() {
	for y := m.dirty.Min.Y; y < m.dirty.Max.Y; y++ {
		for x := m.dirty.Min.X; x < m.dirty.Max.X; x++ {
			m.bits[m.index(x, y)] = false
		}
	}
	m.dirty = image.Rectangle{}
}

// FillDisc отмечает заполненный круг dx²+dy² ≤ r² с центром (cx, cy).
// Части круга за пределами маски отсекаются.
func (m *Mask) FillDisc(cx, cy, r int) {
	if r < 0 {
		return
	}
	area := image.Rect(cx-r, cy-r, cx+r+1, cy+r+1).Intersect(m.rect)
	r2 := r * r
	for y := area.Min.Y; y < area.Max.Y; y++ {
		dy := y - cy
		for x := area.Min.X; x < area.Max.X; x++ {
			dx := x - cx
			if dx*dx+dy*dy <= r2 {
				m.set(x, y)
			}
		}
	}
}

// Subtract записывает в dst пиксели m, не покрытые other (m AND NOT other)
func (m *Mask) Subtract(other, dst *Mask) {
	dst.Reset()
	for y := m.dirty.Min.Y; y < m.dirty.Max.Y; y++ {
		for x := m.dirty.Min.X; x < m.dirty.Max.X; x++ {
			if m.bits[m.index(x, y)] && !other.At(x, y) {
				dst.set(x, y)
			}
		}
	}
}

// Count возвращает число покрытых пикселей
func (m *Mask) Count() int {
	n := 0
	for y := m.dirty.Min.Y; y < m.dirty.Max.Y; y++ {
		for x := m.dirty.Min.X; x < m.dirty.Max.X; x++ {
			if m.bits[m.index(x, y)] {
				n++
			}
		}
	}
	return n
}

// Mean возвращает среднюю яркость канала под маской; пустая маска даёт 0
func (m *Mask) Mean(ch *image.Gray) float64 {
	sum, n := 0, 0
	for y := m.dirty.Min.Y; y < m.dirty.Max.Y; y++ {
		for x := m.dirty.Min.X; x < m.dirty.Max.X; x++ {
			if m.bits[m.index(x, y)] {
				sum += int(ch.GrayAt(x, y).Y)
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
