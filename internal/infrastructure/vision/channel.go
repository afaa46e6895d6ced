package vision

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/channel"
	"github.com/disintegration/imaging"

	"spot-counter/internal/domain/entity"
)

// ExtractChannel возвращает 8-битную плоскость заданного цвета.
// Исходное изображение не изменяется.
func ExtractChannel(img image.Image, c entity.Channel) (*image.Gray, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", entity.ErrInvalidImage)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", entity.ErrInvalidImage)
	}
	if err := checkColorPlanes(img); err != nil {
		return nil, err
	}

	var ch channel.Channel
	switch c {
	case entity.ChannelRed:
		ch = channel.Red
	case entity.ChannelGreen:
		ch = channel.Green
	case entity.ChannelBlue:
		ch = channel.Blue
	default:
		return nil, fmt.Errorf("%w: unknown channel %q", entity.ErrInvalidParams, c)
	}

	// bild домножает цвет на альфу; яркость флуоресценции от неё не зависит
	opaque := imaging.Clone(img)
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 0xff
	}

	gray := channel.Extract(opaque, ch)
	if gray == nil {
		return nil, errors.New("channel extraction returned no data")
	}
	return normalizeGray(gray), nil
}

// checkColorPlanes отклоняет одноплоскостные (серые) изображения
func checkColorPlanes(img image.Image) error {
	switch img.(type) {
	case *image.Gray, *image.Gray16, *image.Alpha, *image.Alpha16:
		return fmt.Errorf("%w: expected 3 color planes, got single-plane %T", entity.ErrInvalidImage, img)
	}
	return nil
}

// normalizeGray переносит канал в начало координат с плотным шагом строк
func normalizeGray(src *image.Gray) *image.Gray {
	b := src.Bounds()
	if b.Min == (image.Point{}) && src.Stride == b.Dx() {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		srcOff := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], src.Pix[srcOff:srcOff+b.Dx()])
	}
	return dst
}
