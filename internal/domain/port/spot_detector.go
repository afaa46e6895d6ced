package port

import (
	"context"
	"image"

	"spot-counter/internal/domain/entity"
)

// Enhancer интерфейс подготовки канала перед поиском блобов
type Enhancer interface {
	// Enhance сглаживает канал и выравнивает локальную гистограмму
	Enhance(ch *image.Gray, params entity.DetectionParams) (*image.Gray, error)
}

// CandidateGenerator интерфейс генератора кандидатов
type CandidateGenerator interface {
	// Generate ищет яркие округлые блобы и возвращает их центры и размеры
	Generate(ch *image.Gray, params entity.DetectionParams) ([]entity.Candidate, error)
}

// SpotDetector интерфейс детектора пятен
type SpotDetector interface {
	// Detect анализирует изображение и возвращает принятые пятна
	Detect(ctx context.Context, img image.Image, params entity.DetectionParams, sink DiagnosticsSink) (*entity.DetectionResult, error)

	// HighlightSpots создаёт копию изображения с отмеченными пятнами и подписью
	HighlightSpots(img image.Image, result *entity.DetectionResult, params entity.DetectionParams) (image.Image, error)
}
