package app

import (
	"fmt"
	"strings"

	"spot-counter/internal/domain/entity"
)

// FormatSummary формирует текстовую сводку партии для консоли и уведомлений
func FormatSummary(s *entity.BatchSummary) string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Processed %d image(s), %d failed, %d spot(s) total\n", len(s.Results), len(s.Failed), s.Total())
	for _, r := range s.Results {
		fmt.Fprintf(&b, "%s: %d\n", r.Name, r.Count)
	}
	for _, f := range s.Failed {
		fmt.Fprintf(&b, "%s: failed (%v)\n", f.Name, f.Err)
	}

	p := s.Percentiles
	if p.Samples > 0 {
		fmt.Fprintf(&b, "Contrast percentiles over %d candidate(s):\n", p.Samples)
		b.WriteString(formatPercentileRow("abs_diff", p.Levels, p.Abs, "%.2f"))
		b.WriteString(formatPercentileRow("rel_diff", p.Levels, p.Rel, "%.3f"))
		fmt.Fprintf(&b, "  mean: abs_diff=%.2f rel_diff=%.3f\n", p.AbsMean, p.RelMean)
	}
	if s.OutputDir != "" {
		fmt.Fprintf(&b, "Output: %s\n", s.OutputDir)
	}
	return b.String()
}

func formatPercentileRow(label string, levels, values []float64, valueFormat string) string {
	parts := make([]string, 0, len(levels))
	for i, level := range levels {
		if i >= len(values) {
			break
		}
		parts = append(parts, fmt.Sprintf("p%g="+valueFormat, level, values[i]))
	}
	return fmt.Sprintf("  %s: %s\n", label, strings.Join(parts, " "))
}
