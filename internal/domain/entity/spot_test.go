package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcceptedSpotMarkerRadius(t *testing.T) {
	require.Equal(t, 5, AcceptedSpot{Radius: 2}.MarkerRadius(5))
	require.Equal(t, 9, AcceptedSpot{Radius: 9}.MarkerRadius(5))
}

func TestCandidateRadius(t *testing.T) {
	require.Equal(t, 3.0, Candidate{Size: 6}.Radius())
}

func TestDetectionResultCount(t *testing.T) {
	var nilResult *DetectionResult
	require.Equal(t, 0, nilResult.Count())

	r := &DetectionResult{Spots: []AcceptedSpot{{X: 1}, {X: 2}}}
	require.Equal(t, 2, r.Count())
}

func TestInvalidImageError(t *testing.T) {
	err := NewInvalidImage("a.png", errors.New("bad header"))
	require.True(t, errors.Is(err, ErrInvalidImage))

	var imgErr *ImageError
	require.True(t, errors.As(err, &imgErr))
	require.Equal(t, "a.png", imgErr.Path)
	require.Contains(t, err.Error(), "bad header")
}

func TestBatchSummaryTotal(t *testing.T) {
	s := &BatchSummary{Results: []ImageResult{{Count: 3}, {Count: 4}}}
	require.Equal(t, 7, s.Total())
}
