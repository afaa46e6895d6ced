//go:build !gocv
// +build !gocv

package vision

import (
	"errors"
	"image"

	"spot-counter/internal/domain/entity"
)

// OpenCVBackend: заглушка для сборки без OpenCV.
type OpenCVBackend struct{}

// NewOpenCVBackend возвращает ошибку, если сборка без тега gocv.
func NewOpenCVBackend() (*OpenCVBackend, error) {
	return nil, errors.New("gocv build tag is not enabled")
}

// Enhance возвращает ошибку, если сборка без тега gocv.
func (b *OpenCVBackend) Enhance(ch *image.Gray, params entity.DetectionParams) (*image.Gray, error) {
	_ = ch
	_ = params
	return nil, errors.New("gocv build tag is not enabled")
}

// Generate возвращает ошибку, если сборка без тега gocv.
func (b *OpenCVBackend) Generate(ch *image.Gray, params entity.DetectionParams) ([]entity.Candidate, error) {
	_ = ch
	_ = params
	return nil, errors.New("gocv build tag is not enabled")
}
