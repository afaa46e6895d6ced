package vision

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"spot-counter/internal/domain/entity"
)

func TestBlobDetector_SingleDisc(t *testing.T) {
	ch := newSpotChannel(64, 64, 50, disc{x: 32, y: 32, r: 3, value: 200})

	candidates, err := NewBlobDetector().Generate(ch, entity.DefaultDetectionParams())
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	c := candidates[0]
	require.Equal(t, 32, c.X)
	require.Equal(t, 32, c.Y)
	// 29 пикселей: эквивалентный диаметр 2*sqrt(29/π) ≈ 6.08
	require.InDelta(t, 6.08, c.Size, 0.01)
}

func TestBlobDetector_EmptyImage(t *testing.T) {
	ch := newSpotChannel(64, 64, 50)

	candidates, err := NewBlobDetector().Generate(ch, entity.DefaultDetectionParams())
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestBlobDetector_AreaFilter(t *testing.T) {
	tests := []struct {
		name   string
		radius int
	}{
		{"too small", 1},
		{"too large", 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := newSpotChannel(64, 64, 50, disc{x: 32, y: 32, r: tt.radius, value: 200})
			candidates, err := NewBlobDetector().Generate(ch, entity.DefaultDetectionParams())
			require.NoError(t, err)
			require.Empty(t, candidates)
		})
	}
}

func TestBlobDetector_SingleThresholdBlobNotRepeatable(t *testing.T) {
	// пятно 200 на фоне 190 видно только на пороге 190
	ch := newSpotChannel(64, 64, 190, disc{x: 32, y: 32, r: 3, value: 200})

	candidates, err := NewBlobDetector().Generate(ch, entity.DefaultDetectionParams())
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestBlobDetector_MinDistanceMergesCloseBlobs(t *testing.T) {
	ch := newSpotChannel(64, 64, 50,
		disc{x: 28, y: 32, r: 3, value: 200},
		disc{x: 36, y: 32, r: 3, value: 200},
	)

	params := entity.DefaultDetectionParams()
	params.MinDistance = 4
	separate, err := NewBlobDetector().Generate(ch, params)
	require.NoError(t, err)
	require.Len(t, separate, 2)

	params.MinDistance = 10
	merged, err := NewBlobDetector().Generate(ch, params)
	require.NoError(t, err)
	require.Len(t, merged, 1)
}

func TestBlobDetector_DarkBlobsOnlyWhenNotBrightOnly(t *testing.T) {
	// тёмное пятно на светлом фоне
	ch := newSpotChannel(64, 64, 220, disc{x: 32, y: 32, r: 3, value: 20})

	params := entity.DefaultDetectionParams()
	bright, err := NewBlobDetector().Generate(ch, params)
	require.NoError(t, err)
	require.Empty(t, bright)

	params.BrightOnly = false
	both, err := NewBlobDetector().Generate(ch, params)
	require.NoError(t, err)
	require.Len(t, both, 1)
	require.Equal(t, 32, both[0].X)
	require.Equal(t, 32, both[0].Y)
}

func TestInsertByRadius(t *testing.T) {
	var g []blobCenter
	for _, r := range []float64{3, 1, 2, 5, 4} {
		g = insertByRadius(g, blobCenter{radius: r})
	}
	got := make([]float64, 0, len(g))
	for _, c := range g {
		got = append(got, c.radius)
	}
	require.Equal(t, []float64{1, 2, 3, 4, 5}, got)
}

func TestBlobDetector_RejectsNonPositiveStep(t *testing.T) {
	ch := newSpotChannel(16, 16, 50, disc{x: 8, y: 8, r: 3, value: 200})

	for _, step := range []float64{0, -10, math.NaN()} {
		params := entity.DefaultDetectionParams()
		params.BlobThresholdStep = step

		candidates, err := NewBlobDetector().Generate(ch, params)
		require.ErrorIs(t, err, entity.ErrInvalidParams)
		require.Nil(t, candidates)
	}
}
