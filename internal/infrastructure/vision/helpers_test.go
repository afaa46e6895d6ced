package vision

import (
	"image"
	"image/color"
)

// disc описывает яркое пятно на синтетическом снимке
type disc struct {
	x, y, r int
	value   uint8
}

// newSpotImage создаёт RGB-снимок с фоном bg в красном канале и пятнами
func newSpotImage(width, height int, bg uint8, discs ...disc) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: bg, G: bg / 2, B: 10, A: 255})
		}
	}
	for _, d := range discs {
		for y := d.y - d.r; y <= d.y+d.r; y++ {
			for x := d.x - d.r; x <= d.x+d.r; x++ {
				dx, dy := x-d.x, y-d.y
				if dx*dx+dy*dy <= d.r*d.r && image.Pt(x, y).In(img.Rect) {
					img.SetRGBA(x, y, color.RGBA{R: d.value, G: d.value / 2, B: 10, A: 255})
				}
			}
		}
	}
	return img
}

// newSpotChannel создаёт одноканальный аналог newSpotImage
func newSpotChannel(width, height int, bg uint8, discs ...disc) *image.Gray {
	src := newSpotImage(width, height, bg, discs...)
	ch := image.NewGray(src.Rect)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ch.SetGray(x, y, color.Gray{Y: src.RGBAAt(x, y).R})
		}
	}
	return ch
}
