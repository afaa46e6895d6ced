package entity

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Channel: цветовой канал, в котором ищутся пятна
type Channel string

const (
	ChannelRed   Channel = "red"
	ChannelGreen Channel = "green"
	ChannelBlue  Channel = "blue"
)

// DetectionParams: полный набор параметров одного запуска.
// Передаётся явно в каждый вызов, глобальных настроек нет.
type DetectionParams struct {
	Channel    Channel `yaml:"channel"`
	BlurKernel int     `yaml:"blur_kernel"`

	ClaheClip float64 `yaml:"clahe_clip"`
	ClaheGrid []int   `yaml:"clahe_grid,flow"`

	MinDistance          float64 `yaml:"min_distance_between_spots"`
	BlobMinThreshold     float64 `yaml:"blob_min_threshold"`
	BlobMaxThreshold     float64 `yaml:"blob_max_threshold"`
	BlobThresholdStep    float64 `yaml:"blob_threshold_step"`
	BlobMinArea          float64 `yaml:"blob_min_area"`
	BlobMaxArea          float64 `yaml:"blob_max_area"`
	BlobMinRepeatability int     `yaml:"blob_min_repeatability"`
	BrightOnly           bool    `yaml:"bright_only"`

	AmbientScale      float64 `yaml:"ambient_scale"`
	ContrastThreshold float64 `yaml:"contrast_threshold"`
	RelThreshold      float64 `yaml:"rel_threshold"`

	MinMarkerRadius int    `yaml:"min_marker_radius"`
	MarkerColor     string `yaml:"marker_color"`
}

// DefaultDetectionParams возвращает параметры, подобранные для снимков митохондрий
func DefaultDetectionParams() DetectionParams {
	return DetectionParams{
		Channel:              ChannelRed,
		BlurKernel:           5,
		ClaheClip:            3,
		ClaheGrid:            []int{8, 8},
		MinDistance:          8,
		BlobMinThreshold:     100,
		BlobMaxThreshold:     255,
		BlobThresholdStep:    10,
		BlobMinArea:          25,
		BlobMaxArea:          81,
		BlobMinRepeatability: 2,
		BrightOnly:           true,
		AmbientScale:         2.0,
		ContrastThreshold:    25,
		RelThreshold:         0.25,
		MinMarkerRadius:      5,
		MarkerColor:          "#0000FF",
	}
}

// Clone возвращает копию параметров, не разделяющую срезы с исходной
func (p DetectionParams) Clone() DetectionParams {
	p.ClaheGrid = append([]int(nil), p.ClaheGrid...)
	return p
}

// Normalize приводит размер ядра размытия к нечётному числу не меньше 1
func (p *DetectionParams) Normalize() {
	if p.BlurKernel < 1 {
		p.BlurKernel = 1
	}
	if p.BlurKernel%2 == 0 {
		p.BlurKernel++
	}
	p.Channel = Channel(strings.ToLower(string(p.Channel)))
}

// Validate проверяет параметры и возвращает ошибку, обёрнутую в ErrInvalidParams
func (p DetectionParams) Validate() error {
	switch p.Channel {
	case ChannelRed, ChannelGreen, ChannelBlue:
	default:
		return fmt.Errorf("%w: unknown channel %q", ErrInvalidParams, p.Channel)
	}
	if len(p.ClaheGrid) != 2 || p.ClaheGrid[0] < 1 || p.ClaheGrid[1] < 1 {
		return fmt.Errorf("%w: clahe_grid must be a pair of positive integers, got %v", ErrInvalidParams, p.ClaheGrid)
	}
	if p.AmbientScale <= 1.0 || math.IsNaN(p.AmbientScale) {
		return fmt.Errorf("%w: ambient_scale must be > 1.0, got %g", ErrInvalidParams, p.AmbientScale)
	}
	if !(p.BlobThresholdStep > 0) {
		return fmt.Errorf("%w: blob_threshold_step must be > 0, got %g", ErrInvalidParams, p.BlobThresholdStep)
	}
	if p.BlobMinThreshold >= p.BlobMaxThreshold {
		return fmt.Errorf("%w: blob_min_threshold (%g) must be below blob_max_threshold (%g)",
			ErrInvalidParams, p.BlobMinThreshold, p.BlobMaxThreshold)
	}
	if p.BlobMinArea < 0 || p.BlobMinArea >= p.BlobMaxArea {
		return fmt.Errorf("%w: blob area range [%g, %g) is empty", ErrInvalidParams, p.BlobMinArea, p.BlobMaxArea)
	}
	if p.MinDistance < 0 {
		return fmt.Errorf("%w: min_distance_between_spots must be >= 0, got %g", ErrInvalidParams, p.MinDistance)
	}
	if p.BlobMinRepeatability < 1 {
		return fmt.Errorf("%w: blob_min_repeatability must be >= 1, got %d", ErrInvalidParams, p.BlobMinRepeatability)
	}
	if p.MinMarkerRadius < 0 {
		return fmt.Errorf("%w: min_marker_radius must be >= 0, got %d", ErrInvalidParams, p.MinMarkerRadius)
	}
	if _, err := colorful.Hex(p.MarkerColor); err != nil {
		return fmt.Errorf("%w: marker_color must be #RRGGBB, got %q", ErrInvalidParams, p.MarkerColor)
	}
	return nil
}

// GridSize возвращает число тайлов CLAHE по осям
func (p DetectionParams) GridSize() (int, int) {
	if len(p.ClaheGrid) != 2 {
		return 8, 8
	}
	return p.ClaheGrid[0], p.ClaheGrid[1]
}

// ParamLine: строка таблицы параметров в журнале
type ParamLine struct {
	Name        string
	Value       string
	Description string
}

// Describe возвращает параметры в виде строк для журнала
func (p DetectionParams) Describe() []ParamLine {
	gx, gy := p.GridSize()
	return []ParamLine{
		{"CHANNEL", string(p.Channel), "detection channel"},
		{"BLUR_KERNEL", fmt.Sprint(p.BlurKernel), "smoothing kernel size (px)"},
		{"MIN_DIST", fmt.Sprint(p.MinDistance), "minimum spot separation (px)"},
		{"AMBIENT_SCALE", fmt.Sprint(p.AmbientScale), "ring radius / core radius"},
		{"CONTRAST_THR", fmt.Sprint(p.ContrastThreshold), "absolute contrast threshold"},
		{"REL_THR", fmt.Sprint(p.RelThreshold), "relative contrast threshold"},
		{"CLAHE_CLIP", fmt.Sprint(p.ClaheClip), "CLAHE clip limit"},
		{"CLAHE_GRID", fmt.Sprintf("%dx%d", gx, gy), "CLAHE tile grid"},
		{"BLOB_MIN_THR", fmt.Sprint(p.BlobMinThreshold), "blob minimum gray threshold"},
		{"BLOB_MAX_THR", fmt.Sprint(p.BlobMaxThreshold), "blob maximum gray threshold"},
		{"BLOB_STEP", fmt.Sprint(p.BlobThresholdStep), "blob threshold step"},
		{"BLOB_MIN_AREA", fmt.Sprint(p.BlobMinArea), "blob minimum area (px^2)"},
		{"BLOB_MAX_AREA", fmt.Sprint(p.BlobMaxArea), "blob maximum area (px^2)"},
		{"BLOB_MIN_REPEAT", fmt.Sprint(p.BlobMinRepeatability), "thresholds a blob must survive"},
		{"BRIGHT_ONLY", fmt.Sprint(p.BrightOnly), "detect bright blobs only"},
		{"MIN_MARKER_R", fmt.Sprint(p.MinMarkerRadius), "minimum marker radius (px)"},
		{"MARKER_COLOR", p.MarkerColor, "marker color"},
	}
}
