package vision

import (
	"image"
	"math"

	"spot-counter/internal/domain/entity"
)

// relEpsilon защищает деление при почти нулевом фоне
const relEpsilon = 1e-6

// Gate сравнивает яркость ядра кандидата с яркостью окружающего кольца.
// Буферы масок переиспользуются в пределах одного изображения.
type Gate struct {
	channel *image.Gray
	inner   *Mask
	outer   *Mask
	ring    *Mask
}

// NewGate создаёт фильтр для канала одного изображения
func NewGate(ch *image.Gray) *Gate {
	rect := ch.Bounds()
	return &Gate{
		channel: ch,
		inner:   NewMask(rect),
		outer:   NewMask(rect),
		ring:    NewMask(rect),
	}
}

// RingRadii возвращает радиусы ядра и внешнего круга для кандидата
func RingRadii(c entity.Candidate, ambientScale float64) (inner, outer int) {
	inner = int(math.Floor(c.Size / 2))
	if inner < 0 {
		inner = 0
	}
	outer = int(math.Floor(float64(inner) * ambientScale))
	return inner, outer
}

// Evaluate оценивает кандидата. Для VerdictOutOfBounds замер не заполняется.
func (g *Gate) Evaluate(c entity.Candidate, params entity.DetectionParams) (entity.PhotometricSample, entity.Verdict) {
	innerR, outerR := RingRadii(c, params.AmbientScale)

	w, h := g.channel.Bounds().Dx(), g.channel.Bounds().Dy()
	if c.X-outerR < 0 || c.X+outerR >= w || c.Y-outerR < 0 || c.Y+outerR >= h {
		return entity.PhotometricSample{}, entity.VerdictOutOfBounds
	}

	g.inner.Reset()
	g.outer.Reset()
	g.inner.FillDisc(c.X, c.Y, innerR)
	g.outer.FillDisc(c.X, c.Y, outerR)
	g.outer.Subtract(g.inner, g.ring)

	sample := Measure(g.channel, g.inner, g.ring)
	sample.X, sample.Y = c.X, c.Y
	sample.InnerRadius, sample.OuterRadius = innerR, outerR

	if Accepts(sample, params) {
		return sample, entity.VerdictAccepted
	}
	return sample, entity.VerdictLowContrast
}

// Measure считает средние под масками ядра и кольца и обе разницы
func Measure(ch *image.Gray, inner, ring *Mask) entity.PhotometricSample {
	innerMean := inner.Mean(ch)
	outerMean := ring.Mean(ch)
	return entity.PhotometricSample{
		InnerMean: innerMean,
		OuterMean: outerMean,
		AbsDiff:   innerMean - outerMean,
		RelDiff:   innerMean/(outerMean+relEpsilon) - 1.0,
	}
}

// Accepts: правило принятия: достаточно любого из двух порогов
func Accepts(s entity.PhotometricSample, params entity.DetectionParams) bool {
	return s.AbsDiff >= params.ContrastThreshold || s.RelDiff >= params.RelThreshold
}
