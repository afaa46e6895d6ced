package entity

import "time"

// ImageResult: строка журнала для одного обработанного изображения
type ImageResult struct {
	Name       string // имя файла без расширения
	Count      int    // число принятых пятен
	OutputPath string // путь к сохранённому оверлею
}

// FailedImage: изображение, которое не удалось обработать
type FailedImage struct {
	Name string
	Err  error
}

// ContrastPercentiles: перцентили распределения разниц яркости
type ContrastPercentiles struct {
	Levels  []float64 // уровни, например 10, 25, 50, 75, 90
	Abs     []float64 // перцентили абсолютной разницы
	Rel     []float64 // перцентили относительной разницы
	AbsMean float64
	RelMean float64
	Samples int // сколько кандидатов учтено
}

// BatchSummary: итог пакетной обработки каталога
type BatchSummary struct {
	OutputDir   string
	LedgerPath  string
	TablePath   string
	Results     []ImageResult
	Failed      []FailedImage
	Percentiles ContrastPercentiles
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Total возвращает суммарное число пятен по всем изображениям
func (s *BatchSummary) Total() int {
	total := 0
	for _, r := range s.Results {
		total += r.Count
	}
	return total
}
