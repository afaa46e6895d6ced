package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidImage: файл отсутствует, не декодируется или не цветной
	ErrInvalidImage = errors.New("invalid image")
	// ErrInvalidParams: некорректные параметры детекции
	ErrInvalidParams = errors.New("invalid detection parameters")
)

// ImageError привязывает ошибку к конкретному файлу
type ImageError struct {
	Path string
	Err  error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}

// NewInvalidImage оборачивает причину в ErrInvalidImage
func NewInvalidImage(path string, cause error) error {
	if cause == nil {
		return &ImageError{Path: path, Err: ErrInvalidImage}
	}
	return &ImageError{Path: path, Err: fmt.Errorf("%w: %v", ErrInvalidImage, cause)}
}
