package storage

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"spot-counter/internal/domain/entity"
	"spot-counter/internal/domain/port"
)

const jpegQuality = 95

// ImageFiles читает и пишет изображения на диск через imaging
type ImageFiles struct{}

// NewImageFiles создаёт файловое хранилище изображений
func NewImageFiles() *ImageFiles {
	return &ImageFiles{}
}

// Open декодирует файл; любая ошибка оборачивается в ErrInvalidImage
func (s *ImageFiles) Open(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, entity.NewInvalidImage(path, err)
	}
	if img.Bounds().Empty() {
		return nil, entity.NewInvalidImage(path, fmt.Errorf("empty image"))
	}
	return img, nil
}

// Decode декодирует изображение из потока (загрузки бота)
func (s *ImageFiles) Decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, entity.NewInvalidImage("upload", err)
	}
	return img, nil
}

// Save кодирует изображение в формат по расширению, каталог создаётся при необходимости
func (s *ImageFiles) Save(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(jpegQuality)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// EncodeJPEG пишет изображение в JPEG, используется для ответов бота
func (s *ImageFiles) EncodeJPEG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality))
}

var _ port.ImageStore = (*ImageFiles)(nil)
