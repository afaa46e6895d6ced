package storage

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"spot-counter/internal/domain/entity"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: 20, B: 30, A: 255})
		}
	}
	return img
}

func TestImageFiles_SaveAndOpenPNG(t *testing.T) {
	store := NewImageFiles()
	path := filepath.Join(t.TempDir(), "nested", "a.png")

	require.NoError(t, store.Save(testImage(12, 8), path))

	img, err := store.Open(path)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 12, 8), img.Bounds())
	r, _, _, _ := img.At(5, 3).RGBA()
	require.Equal(t, uint32(50), r>>8)
}

func TestImageFiles_SaveTIFF(t *testing.T) {
	store := NewImageFiles()
	path := filepath.Join(t.TempDir(), "a.tif")

	require.NoError(t, store.Save(testImage(6, 6), path))
	img, err := store.Open(path)
	require.NoError(t, err)
	require.Equal(t, 6, img.Bounds().Dx())
}

func TestImageFiles_OpenInvalid(t *testing.T) {
	store := NewImageFiles()
	dir := t.TempDir()

	_, err := store.Open(filepath.Join(dir, "missing.png"))
	require.True(t, errors.Is(err, entity.ErrInvalidImage))

	corrupt := filepath.Join(dir, "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an image"), 0o644))
	_, err = store.Open(corrupt)
	require.True(t, errors.Is(err, entity.ErrInvalidImage))

	var imgErr *entity.ImageError
	require.True(t, errors.As(err, &imgErr))
	require.Equal(t, corrupt, imgErr.Path)
}

func TestImageFiles_EncodeAndDecode(t *testing.T) {
	store := NewImageFiles()
	var buf bytes.Buffer
	require.NoError(t, store.EncodeJPEG(&buf, testImage(10, 10)))

	img, err := store.Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 10, 10), img.Bounds())

	_, err = store.Decode(bytes.NewReader([]byte("garbage")))
	require.True(t, errors.Is(err, entity.ErrInvalidImage))
}
