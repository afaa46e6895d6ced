package vision

import (
	"context"
	"errors"
	"image"

	"github.com/rs/zerolog"

	"spot-counter/internal/domain/entity"
	"spot-counter/internal/domain/port"
)

// SpotDetector собирает конвейер: канал → усиление → кандидаты → фильтр.
type SpotDetector struct {
	enhancer  port.Enhancer
	generator port.CandidateGenerator
	log       zerolog.Logger
}

// NewSpotDetector создаёт детектор с заданными энхансером и генератором кандидатов.
func NewSpotDetector(enhancer port.Enhancer, generator port.CandidateGenerator, log zerolog.Logger) *SpotDetector {
	return &SpotDetector{
		enhancer:  enhancer,
		generator: generator,
		log:       log.With().Str("component", "detector").Logger(),
	}
}

// NewNativeSpotDetector создаёт детектор без зависимости от OpenCV.
func NewNativeSpotDetector(log zerolog.Logger) *SpotDetector {
	return NewSpotDetector(NewNativeEnhancer(), NewBlobDetector(), log)
}

// Detect запускает анализ изображения и возвращает принятые пятна.
// Замеры всех оценённых кандидатов уходят в sink, если он задан.
func (d *SpotDetector) Detect(ctx context.Context, img image.Image, params entity.DetectionParams, sink port.DiagnosticsSink) (*entity.DetectionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.enhancer == nil || d.generator == nil {
		return nil, errors.New("detector is not configured")
	}
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	ch, err := ExtractChannel(img, params.Channel)
	if err != nil {
		return nil, err
	}

	enhanced, err := d.enhancer.Enhance(ch, params)
	if err != nil {
		return nil, err
	}

	candidates, err := d.generator.Generate(enhanced, params)
	if err != nil {
		return nil, err
	}

	result := &entity.DetectionResult{
		ImageWidth:  enhanced.Bounds().Dx(),
		ImageHeight: enhanced.Bounds().Dy(),
		Candidates:  len(candidates),
		Samples:     make([]entity.PhotometricSample, 0, len(candidates)),
		Spots:       make([]entity.AcceptedSpot, 0, len(candidates)),
	}

	gate := NewGate(enhanced)
	for _, c := range candidates {
		sample, verdict := gate.Evaluate(c, params)
		if verdict == entity.VerdictOutOfBounds {
			result.OutOfBounds++
			continue
		}

		result.Samples = append(result.Samples, sample)
		if sink != nil {
			sink.Record(sample)
		}
		if verdict == entity.VerdictAccepted {
			result.Spots = append(result.Spots, entity.AcceptedSpot{
				X:      sample.X,
				Y:      sample.Y,
				Radius: sample.InnerRadius,
			})
		}
	}

	d.log.Debug().
		Int("candidates", result.Candidates).
		Int("out_of_bounds", result.OutOfBounds).
		Int("accepted", result.Count()).
		Msg("detection finished")

	return result, nil
}

// HighlightSpots рисует окружности вокруг пятен и возвращает новую картинку.
func (d *SpotDetector) HighlightSpots(img image.Image, result *entity.DetectionResult, params entity.DetectionParams) (image.Image, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("empty image")
	}
	var spots []entity.AcceptedSpot
	if result != nil {
		spots = result.Spots
	}
	return Overlay(img, spots, params.MinMarkerRadius, params.MarkerColor)
}
