package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"

	"spot-counter/internal/domain/entity"
)

// spotImage рисует яркий диск в красном канале на ровном фоне
func spotImage(w, h int, bg, spot uint8, cx, cy, r int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := bg
			if r > 0 && (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
				v = spot
			}
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v / 2, B: 10, A: 255})
		}
	}
	return img
}

func writeImage(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(img, path))
	return path
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

type recordingNotifier struct {
	calls []*entity.BatchSummary
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, s *entity.BatchSummary) error {
	n.calls = append(n.calls, s)
	return n.err
}

var errNotify = errors.New("telegram is down")
