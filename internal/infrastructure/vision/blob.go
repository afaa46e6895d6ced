package vision

import (
	"fmt"
	"image"
	"math"

	"spot-counter/internal/domain/entity"
)

// BlobDetector: генератор кандидатов по схеме SimpleBlobDetector:
// серия порогов, связные компоненты на каждом пороге, группировка центров
// между порогами и отбор по повторяемости.
type BlobDetector struct{}

// NewBlobDetector создаёт генератор кандидатов на чистом Go
func NewBlobDetector() *BlobDetector {
	return &BlobDetector{}
}

// blobCenter: центр блоба на одном пороге
type blobCenter struct {
	x, y   float64
	radius float64
}

// Generate возвращает кандидатов; блобы вне диапазона площади отбрасываются молча.
func (d *BlobDetector) Generate(ch *image.Gray, params entity.DetectionParams) ([]entity.Candidate, error) {
	w, h := ch.Bounds().Dx(), ch.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, nil
	}
	if !(params.BlobThresholdStep > 0) {
		return nil, fmt.Errorf("%w: blob_threshold_step must be > 0, got %v", entity.ErrInvalidParams, params.BlobThresholdStep)
	}

	var groups [][]blobCenter
	for t := params.BlobMinThreshold; t < params.BlobMaxThreshold; t += params.BlobThresholdStep {
		current := findBlobs(ch, t, params)

		var fresh [][]blobCenter
		for _, c := range current {
			merged := false
			for gi := range groups {
				mid := groups[gi][len(groups[gi])/2]
				dist := math.Hypot(mid.x-c.x, mid.y-c.y)
				if dist < params.MinDistance || dist < mid.radius || dist < c.radius {
					groups[gi] = insertByRadius(groups[gi], c)
					merged = true
					break
				}
			}
			if !merged {
				fresh = append(fresh, []blobCenter{c})
			}
		}
		groups = append(groups, fresh...)
	}

	candidates := make([]entity.Candidate, 0, len(groups))
	for _, g := range groups {
		if len(g) < params.BlobMinRepeatability {
			continue
		}
		var sx, sy float64
		for _, c := range g {
			sx += c.x
			sy += c.y
		}
		n := float64(len(g))
		candidates = append(candidates, entity.Candidate{
			X:    int(sx / n),
			Y:    int(sy / n),
			Size: g[len(g)/2].radius * 2,
		})
	}
	return candidates, nil
}

// insertByRadius вставляет центр, сохраняя порядок по радиусу
func insertByRadius(group []blobCenter, c blobCenter) []blobCenter {
	k := len(group)
	group = append(group, c)
	for k > 0 && c.radius < group[k-1].radius {
		group[k] = group[k-1]
		k--
	}
	group[k] = c
	return group
}

// findBlobs бинаризует канал по порогу и возвращает центры подходящих компонент
func findBlobs(ch *image.Gray, threshold float64, params entity.DetectionParams) []blobCenter {
	w, h := ch.Bounds().Dx(), ch.Bounds().Dy()
	fg := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			fg[y*w+x] = float64(ch.Pix[y*ch.Stride+x]) > threshold
		}
	}

	blobs := labelComponents(fg, w, h, true, params)
	if !params.BrightOnly {
		blobs = append(blobs, labelComponents(fg, w, h, false, params)...)
	}
	return blobs
}

// labelComponents находит 8-связные компоненты со значением want
func labelComponents(fg []bool, w, h int, want bool, params entity.DetectionParams) []blobCenter {
	visited := make([]bool, w*h)
	var blobs []blobCenter
	var stack []image.Point

	for start := range fg {
		if visited[start] || fg[start] != want {
			continue
		}

		area := 0
		var sx, sy float64
		stack = append(stack[:0], image.Pt(start%w, start/w))
		visited[start] = true
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			area++
			sx += float64(p.X)
			sy += float64(p.Y)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := p.X+dx, p.Y+dy
					if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					i := ny*w + nx
					if visited[i] || fg[i] != want {
						continue
					}
					visited[i] = true
					stack = append(stack, image.Pt(nx, ny))
				}
			}
		}

		a := float64(area)
		if a < params.BlobMinArea || a >= params.BlobMaxArea {
			continue
		}
		c := blobCenter{x: sx / a, y: sy / a, radius: math.Sqrt(a / math.Pi)}

		// цвет блоба проверяется в округлённом центре, как у OpenCV
		cx := clampInt(int(math.Round(c.x)), 0, w-1)
		cy := clampInt(int(math.Round(c.y)), 0, h-1)
		if params.BrightOnly && !fg[cy*w+cx] {
			continue
		}
		blobs = append(blobs, c)
	}
	return blobs
}
