package vision

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"spot-counter/internal/domain/entity"
)

// labelOrigin: базовая точка подписи с количеством
var labelOrigin = image.Pt(20, 40)

// Overlay рисует принятые пятна окружностями и подписывает количество.
// Возвращает новую картинку, исходная не меняется.
func Overlay(img image.Image, spots []entity.AcceptedSpot, minRadius int, markerHex string) (*image.NRGBA, error) {
	marker, err := parseMarkerColor(markerHex)
	if err != nil {
		return nil, err
	}

	out := imaging.Clone(img)
	for _, s := range spots {
		drawCircle(out, s.X, s.Y, s.MarkerRadius(minRadius), marker)
	}
	drawLabel(out, labelOrigin, fmt.Sprintf("count number: %d", len(spots)), color.White)
	return out, nil
}

// parseMarkerColor разбирает цвет вида "#RRGGBB"
func parseMarkerColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("marker color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// drawCircle рисует окружность толщиной в пиксель (алгоритм средней точки)
func drawCircle(img *image.NRGBA, cx, cy, radius int, c color.NRGBA) {
	x, y := radius, 0
	decision := 1 - radius
	for x >= y {
		for _, p := range [...]image.Point{
			{cx + x, cy + y}, {cx + y, cy + x}, {cx - y, cy + x}, {cx - x, cy + y},
			{cx - x, cy - y}, {cx - y, cy - x}, {cx + y, cy - x}, {cx + x, cy - y},
		} {
			if p.In(img.Rect) {
				img.SetNRGBA(p.X, p.Y, c)
			}
		}
		y++
		if decision <= 0 {
			decision += 2*y + 1
		} else {
			x--
			decision += 2*(y-x) + 1
		}
	}
}

// drawLabel выводит текст шрифтом basicfont
func drawLabel(img *image.NRGBA, at image.Point, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(img.Rect.Min.X+at.X, img.Rect.Min.Y+at.Y),
	}
	d.DrawString(text)
}
