package entity

import "math"

// Candidate: кандидат в пятна, найденный детектором блобов
type Candidate struct {
	X    int     // координата X центра
	Y    int     // координата Y центра
	Size float64 // эквивалентный диаметр блоба в пикселях
}

// Radius возвращает радиус блоба
func (c Candidate) Radius() float64 {
	return c.Size / 2
}

// Verdict итог проверки кандидата фотометрическим фильтром
type Verdict int

const (
	VerdictAccepted    Verdict = iota // пятно принято
	VerdictLowContrast                // контраст ниже обоих порогов
	VerdictOutOfBounds                // кольцо выходит за край изображения
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccepted:
		return "accepted"
	case VerdictLowContrast:
		return "low_contrast"
	case VerdictOutOfBounds:
		return "out_of_bounds"
	default:
		return "unknown"
	}
}

// PhotometricSample: яркость ядра и окружающего кольца для одного кандидата
type PhotometricSample struct {
	X           int
	Y           int
	InnerRadius int
	OuterRadius int
	InnerMean   float64
	OuterMean   float64
	AbsDiff     float64
	RelDiff     float64
}

// AcceptedSpot: пятно, прошедшее фильтр
type AcceptedSpot struct {
	X      int
	Y      int
	Radius int
}

// MarkerRadius возвращает радиус отметки на оверлее, не меньше minRadius
func (s AcceptedSpot) MarkerRadius(minRadius int) int {
	return int(math.Max(float64(s.Radius), float64(minRadius)))
}

// DetectionResult хранит итог анализа одного изображения.
type DetectionResult struct {
	ImageWidth  int                 // ширина изображения
	ImageHeight int                 // высота изображения
	Candidates  int                 // сколько блобов нашёл генератор
	OutOfBounds int                 // сколько кандидатов отброшено у края
	Samples     []PhotometricSample // замеры всех оценённых кандидатов
	Spots       []AcceptedSpot      // принятые пятна
}

// Count возвращает число принятых пятен
func (r *DetectionResult) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Spots)
}
