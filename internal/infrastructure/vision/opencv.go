//go:build gocv
// +build gocv

package vision

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"spot-counter/internal/domain/entity"
)

// OpenCVBackend реализует усиление и поиск блобов через OpenCV.
type OpenCVBackend struct{}

// NewOpenCVBackend создаёт бэкенд OpenCV.
func NewOpenCVBackend() (*OpenCVBackend, error) {
	return &OpenCVBackend{}, nil
}

// Enhance размывает канал гауссом и применяет CLAHE.
func (b *OpenCVBackend) Enhance(ch *image.Gray, params entity.DetectionParams) (*image.Gray, error) {
	params.Normalize()

	mat, err := grayToMat(ch)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	blur := gocv.NewMat()
	defer blur.Close()
	if params.BlurKernel > 1 {
		gocv.GaussianBlur(mat, &blur, image.Pt(params.BlurKernel, params.BlurKernel), 0, 0, gocv.BorderDefault)
	} else {
		mat.CopyTo(&blur)
	}

	if params.ClaheClip <= 0 {
		return matToGray(blur)
	}

	gx, gy := params.GridSize()
	clahe := gocv.NewCLAHEWithParams(params.ClaheClip, image.Pt(gx, gy))
	defer clahe.Close()

	eq := gocv.NewMat()
	defer eq.Close()
	clahe.Apply(blur, &eq)

	return matToGray(eq)
}

// Generate запускает SimpleBlobDetector с параметрами запуска.
func (b *OpenCVBackend) Generate(ch *image.Gray, params entity.DetectionParams) ([]entity.Candidate, error) {
	mat, err := grayToMat(ch)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	p := gocv.NewSimpleBlobDetectorParams()
	p.SetMinThreshold(params.BlobMinThreshold)
	p.SetMaxThreshold(params.BlobMaxThreshold)
	p.SetThresholdStep(params.BlobThresholdStep)
	p.SetMinRepeatability(params.BlobMinRepeatability)
	p.SetFilterByArea(true)
	p.SetMinArea(params.BlobMinArea)
	p.SetMaxArea(params.BlobMaxArea)
	p.SetFilterByColor(params.BrightOnly)
	p.SetBlobColor(255)
	p.SetFilterByCircularity(false)
	p.SetFilterByInertia(false)
	p.SetFilterByConvexity(false)
	p.SetMinDistBetweenBlobs(params.MinDistance)

	detector := gocv.NewSimpleBlobDetectorWithParams(p)
	defer detector.Close()

	keypoints := detector.Detect(mat)
	candidates := make([]entity.Candidate, 0, len(keypoints))
	for _, kp := range keypoints {
		candidates = append(candidates, entity.Candidate{
			X:    int(kp.X),
			Y:    int(kp.Y),
			Size: kp.Size,
		})
	}
	return candidates, nil
}

// grayToMat копирует канал в gocv.Mat типа CV_8U.
func grayToMat(ch *image.Gray) (gocv.Mat, error) {
	plane := cloneGray(ch)
	mat, err := gocv.NewMatFromBytes(plane.Rect.Dy(), plane.Rect.Dx(), gocv.MatTypeCV8U, plane.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to convert channel to mat: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return gocv.NewMat(), errors.New("empty image")
	}
	return mat, nil
}

// matToGray превращает одноканальный gocv.Mat обратно в *image.Gray.
func matToGray(mat gocv.Mat) (*image.Gray, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected mat image type %T", img)
	}
	return gray, nil
}
