package diagnostics

import (
	"math"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"spot-counter/internal/domain/entity"
	"spot-counter/internal/domain/port"
)

// DefaultLevels: перцентили, которые печатаются после партии
var DefaultLevels = []float64{10, 25, 50, 75, 90}

// Collector накапливает разницы яркости всех оценённых кандидатов партии.
type Collector struct {
	mu     sync.Mutex
	levels []float64
	abs    []float64
	rel    []float64
}

// NewCollector создаёт сборщик; без уровней используются DefaultLevels
func NewCollector(levels ...float64) *Collector {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	return &Collector{levels: append([]float64(nil), levels...)}
}

// Record добавляет замер независимо от вердикта
func (c *Collector) Record(sample entity.PhotometricSample) {
	c.mu.Lock()
	c.abs = append(c.abs, sample.AbsDiff)
	c.rel = append(c.rel, sample.RelDiff)
	c.mu.Unlock()
}

// Len возвращает число накопленных замеров
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.abs)
}

// Percentiles считает перцентили по накопленным замерам.
// Пустой сборщик возвращает уровни без значений.
func (c *Collector) Percentiles() entity.ContrastPercentiles {
	c.mu.Lock()
	abs := append([]float64(nil), c.abs...)
	rel := append([]float64(nil), c.rel...)
	c.mu.Unlock()

	out := entity.ContrastPercentiles{
		Levels:  append([]float64(nil), c.levels...),
		Samples: len(abs),
	}
	if len(abs) == 0 {
		return out
	}
	out.AbsMean = stat.Mean(abs, nil)
	out.RelMean = stat.Mean(rel, nil)
	out.Abs = quantiles(abs, c.levels)
	out.Rel = quantiles(rel, c.levels)
	return out
}

// Reset очищает сборщик перед новой партией
func (c *Collector) Reset() {
	c.mu.Lock()
	c.abs = c.abs[:0]
	c.rel = c.rel[:0]
	c.mu.Unlock()
}

// quantiles сортирует values на месте и интерполирует линейно между
// соседними порядковыми статистиками: h = (n-1)p, как percentile в numpy.
func quantiles(values, levels []float64) []float64 {
	sort.Float64s(values)
	n := len(values)
	out := make([]float64, len(levels))
	for i, level := range levels {
		p := level / 100
		if p < 0 {
			p = 0
		}
		if p > 1 {
			p = 1
		}
		h := float64(n-1) * p
		lo := int(math.Floor(h))
		if lo >= n-1 {
			out[i] = values[n-1]
			continue
		}
		out[i] = values[lo] + (h-float64(lo))*(values[lo+1]-values[lo])
	}
	return out
}

var _ port.ContrastStats = (*Collector)(nil)
