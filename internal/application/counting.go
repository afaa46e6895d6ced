package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/rs/zerolog"

	"spot-counter/internal/domain/entity"
	"spot-counter/internal/domain/port"
)

// CountingService считает пятна на одном изображении и сохраняет оверлей.
type CountingService struct {
	detector port.SpotDetector
	images   port.ImageStore
	log      zerolog.Logger
}

// CountOutput содержит результат детекции и картинку с отмеченными пятнами.
type CountOutput struct {
	Result  *entity.DetectionResult
	Overlay image.Image
}

// NewCountingService создаёт сервис подсчёта.
func NewCountingService(detector port.SpotDetector, images port.ImageStore, log zerolog.Logger) *CountingService {
	return &CountingService{
		detector: detector,
		images:   images,
		log:      log.With().Str("component", "counting").Logger(),
	}
}

// CountImage запускает детектор и рисует оверлей.
func (s *CountingService) CountImage(ctx context.Context, img image.Image, params entity.DetectionParams, sink port.DiagnosticsSink) (*CountOutput, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}

	result, err := s.detector.Detect(ctx, img, params, sink)
	if err != nil {
		return nil, err
	}

	overlay, err := s.detector.HighlightSpots(img, result, params)
	if err != nil {
		return nil, fmt.Errorf("draw overlay: %w", err)
	}

	return &CountOutput{Result: result, Overlay: overlay}, nil
}

// CountFile читает файл, считает пятна и пишет «<имя>_counted<расширение>» в outDir.
func (s *CountingService) CountFile(ctx context.Context, path, outDir string, params entity.DetectionParams, sink port.DiagnosticsSink) (entity.ImageResult, error) {
	img, err := s.images.Open(path)
	if err != nil {
		return entity.ImageResult{}, err
	}

	// замеры попадают в sink только для изображений, дошедших до оверлея
	var samples sampleBuffer
	out, err := s.CountImage(ctx, img, params, &samples)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidImage) {
			return entity.ImageResult{}, &entity.ImageError{Path: path, Err: err}
		}
		return entity.ImageResult{}, err
	}

	outPath := entity.OverlayPath(outDir, path)
	if err := s.images.Save(out.Overlay, outPath); err != nil {
		return entity.ImageResult{}, err
	}
	samples.flush(sink)

	result := entity.ImageResult{
		Name:       entity.ImageName(path),
		Count:      out.Result.Count(),
		OutputPath: outPath,
	}
	s.log.Debug().
		Str("image", result.Name).
		Int("count", result.Count).
		Int("candidates", out.Result.Candidates).
		Msg("image counted")

	return result, nil
}

// sampleBuffer придерживает замеры одного изображения до его сохранения
type sampleBuffer []entity.PhotometricSample

func (b *sampleBuffer) Record(sample entity.PhotometricSample) {
	*b = append(*b, sample)
}

func (b sampleBuffer) flush(sink port.DiagnosticsSink) {
	if sink == nil {
		return
	}
	for _, sample := range b {
		sink.Record(sample)
	}
}

// CountUpload декодирует присланное изображение и возвращает оверлей в JPEG.
func (s *CountingService) CountUpload(ctx context.Context, r io.Reader, params entity.DetectionParams) (*entity.DetectionResult, []byte, error) {
	img, err := s.images.Decode(r)
	if err != nil {
		return nil, nil, err
	}

	out, err := s.CountImage(ctx, img, params, nil)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := s.images.EncodeJPEG(&buf, out.Overlay); err != nil {
		return nil, nil, fmt.Errorf("encode overlay: %w", err)
	}

	return out.Result, buf.Bytes(), nil
}
