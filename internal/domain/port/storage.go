package port

import (
	"context"
	"image"
	"io"

	"spot-counter/internal/domain/entity"
)

// ImageStore интерфейс чтения и записи файлов изображений
type ImageStore interface {
	// Open декодирует файл, ошибки оборачиваются в entity.ErrInvalidImage
	Open(path string) (image.Image, error)

	// Save кодирует изображение в формат по расширению пути
	Save(img image.Image, path string) error

	// Decode декодирует изображение из потока
	Decode(r io.Reader) (image.Image, error)

	// EncodeJPEG кодирует изображение в JPEG
	EncodeJPEG(w io.Writer, img image.Image) error
}

// ResultRepository интерфейс хранилища результатов партии
type ResultRepository interface {
	// Save добавляет результат изображения
	Save(ctx context.Context, result entity.ImageResult) error

	// List возвращает результаты в порядке добавления
	List(ctx context.Context) ([]entity.ImageResult, error)

	// Reset очищает хранилище перед новой партией
	Reset(ctx context.Context) error
}

// ReportWriter интерфейс журнала и таблицы подсчётов
type ReportWriter interface {
	// Begin создаёт журнал с таблицей параметров
	Begin(outputDir string, params entity.DetectionParams) error

	// Record дописывает строку «имя: количество» в журнал
	Record(result entity.ImageResult) error

	// Finish записывает структурированную таблицу и закрывает журнал
	Finish(results []entity.ImageResult) error

	// LedgerPath и TablePath возвращают пути созданных файлов
	LedgerPath() string
	TablePath() string
}
