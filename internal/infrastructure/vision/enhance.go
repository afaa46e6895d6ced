package vision

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"spot-counter/internal/domain/entity"
)

const histBins = 256

// NativeEnhancer сглаживает канал и применяет CLAHE без OpenCV.
type NativeEnhancer struct{}

// NewNativeEnhancer создаёт энхансер на чистом Go
func NewNativeEnhancer() *NativeEnhancer {
	return &NativeEnhancer{}
}

// Enhance возвращает новый канал тех же размеров, исходный не меняется.
func (e *NativeEnhancer) Enhance(ch *image.Gray, params entity.DetectionParams) (*image.Gray, error) {
	params.Normalize()
	out := Smooth(ch, params.BlurKernel)
	if params.ClaheClip > 0 {
		gx, gy := params.GridSize()
		out = EqualizeCLAHE(out, params.ClaheClip, gx, gy)
	}
	return out, nil
}

// gaussianSigma повторяет выбор сигмы OpenCV для sigma=0
func gaussianSigma(kernel int) float64 {
	return 0.3*(float64(kernel-1)*0.5-1) + 0.8
}

// Smooth применяет гауссово размытие с ядром kernel×kernel.
// Ядро 1 возвращает копию канала.
func Smooth(ch *image.Gray, kernel int) *image.Gray {
	if kernel <= 1 {
		return cloneGray(ch)
	}
	blurred := imaging.Blur(ch, gaussianSigma(kernel))

	b := blurred.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			// серый вход: R == G == B
			out.Pix[y*out.Stride+x] = blurred.Pix[y*blurred.Stride+x*4]
		}
	}
	return out
}

// EqualizeCLAHE выполняет адаптивное выравнивание гистограммы с ограничением
// контраста. Канал делится на gridX×gridY равных тайлов (при некратном размере
// канал дополняется зеркально, BORDER_REFLECT_101), гистограмма каждого тайла
// обрезается по clipLimit, излишек распределяется равномерно, а значение
// пикселя интерполируется билинейно между LUT четырёх соседних тайлов.
func EqualizeCLAHE(ch *image.Gray, clipLimit float64, gridX, gridY int) *image.Gray {
	w, h := ch.Bounds().Dx(), ch.Bounds().Dy()
	if w == 0 || h == 0 {
		return cloneGray(ch)
	}
	if gridX < 1 {
		gridX = 1
	}
	if gridY < 1 {
		gridY = 1
	}

	src := cloneGray(ch)
	pw, ph, tileW, tileH := claheLayout(w, h, gridX, gridY)
	padded := src
	if pw != w || ph != h {
		padded = padReflect101(src, pw, ph)
	}

	luts := make([][histBins]uint8, gridX*gridY)
	for ty := 0; ty < gridY; ty++ {
		for tx := 0; tx < gridX; tx++ {
			rect := image.Rect(tx*tileW, ty*tileH, (tx+1)*tileW, (ty+1)*tileH)
			luts[ty*gridX+tx] = tileLUT(padded, rect, clipLimit)
		}
	}

	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		tyf := float64(y)/float64(tileH) - 0.5
		ty1 := int(math.Floor(tyf))
		ya := tyf - float64(ty1)
		ty2 := clampInt(ty1+1, 0, gridY-1)
		ty1 = clampInt(ty1, 0, gridY-1)

		for x := 0; x < w; x++ {
			txf := float64(x)/float64(tileW) - 0.5
			tx1 := int(math.Floor(txf))
			xa := txf - float64(tx1)
			tx2 := clampInt(tx1+1, 0, gridX-1)
			tx1 = clampInt(tx1, 0, gridX-1)

			v := src.Pix[y*src.Stride+x]
			top := float64(luts[ty1*gridX+tx1][v])*(1-xa) + float64(luts[ty1*gridX+tx2][v])*xa
			bottom := float64(luts[ty2*gridX+tx1][v])*(1-xa) + float64(luts[ty2*gridX+tx2][v])*xa
			out.Pix[y*out.Stride+x] = clampUint8(top*(1-ya) + bottom*ya)
		}
	}
	return out
}

// claheLayout возвращает размер дополненного канала и размер тайла.
// Канал дополняется справа и снизу до кратного числу тайлов.
func claheLayout(w, h, gridX, gridY int) (pw, ph, tileW, tileH int) {
	pw, ph = w, h
	if r := w % gridX; r != 0 {
		pw += gridX - r
	}
	if r := h % gridY; r != 0 {
		ph += gridY - r
	}
	return pw, ph, pw / gridX, ph / gridY
}

// padReflect101 дополняет канал до pw×ph зеркальным отражением без повтора края
func padReflect101(src *image.Gray, pw, ph int) *image.Gray {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewGray(image.Rect(0, 0, pw, ph))
	for y := 0; y < ph; y++ {
		sy := reflect101(y, h)
		for x := 0; x < pw; x++ {
			dst.Pix[y*dst.Stride+x] = src.Pix[sy*src.Stride+reflect101(x, w)]
		}
	}
	return dst
}

// reflect101 отображает индекс p в [0, n) по схеме gfedcb|abcdefgh|gfedcba
func reflect101(p, n int) int {
	if n == 1 {
		return 0
	}
	for p < 0 || p >= n {
		if p < 0 {
			p = -p
		} else {
			p = 2*(n-1) - p
		}
	}
	return p
}

// tileLUT строит таблицу отображения для одного тайла
func tileLUT(ch *image.Gray, rect image.Rectangle, clipLimit float64) [histBins]uint8 {
	var hist [histBins]int
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := ch.Pix[y*ch.Stride:]
		for x := rect.Min.X; x < rect.Max.X; x++ {
			hist[row[x]]++
		}
	}

	area := rect.Dx() * rect.Dy()
	var lut [histBins]uint8
	if area == 0 {
		return lut
	}

	limit := int(clipLimit * float64(area) / histBins)
	if limit < 1 {
		limit = 1
	}

	clipped := 0
	for i := range hist {
		if hist[i] > limit {
			clipped += hist[i] - limit
			hist[i] = limit
		}
	}

	batch := clipped / histBins
	residual := clipped - batch*histBins
	for i := range hist {
		hist[i] += batch
	}
	if residual > 0 {
		step := histBins / residual
		if step < 1 {
			step = 1
		}
		for i := 0; i < histBins && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}

	scale := float64(histBins-1) / float64(area)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = clampUint8(float64(sum) * scale)
	}
	return lut
}

func cloneGray(src *image.Gray) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	for y := 0; y < dst.Rect.Dy(); y++ {
		off := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[off:off+dst.Rect.Dx()])
	}
	return dst
}

// clampInt ограничивает значение диапазоном [lo, hi]
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampUint8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
