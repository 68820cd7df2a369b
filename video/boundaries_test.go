package video

import (
	"testing"

	"github.com/stretchr/testify/require"

	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
)

func TestComputeSegmentBoundaries_AppendsFarDuration(t *testing.T) {
	boundaries, err := ComputeSegmentBoundaries([]float64{0.0, 4.0, 8.0}, 10.5)
	require.NoError(t, err)
	require.Equal(t, []float64{0.0, 4.0, 8.0, 10.5}, boundaries)
}

func TestComputeSegmentBoundaries_WithinEpsilonNoAppend(t *testing.T) {
	boundaries, err := ComputeSegmentBoundaries([]float64{0.0, 5.0}, 5.05)
	require.NoError(t, err)
	require.Equal(t, []float64{0.0, 5.0}, boundaries)
}

func TestComputeSegmentBoundaries_EmptyKeyframesSynthesizes(t *testing.T) {
	boundaries, err := ComputeSegmentBoundaries(nil, 3.0)
	require.NoError(t, err)
	require.Equal(t, []float64{0.0, 3.0}, boundaries)
}

func TestComputeSegmentBoundaries_TooFewBoundariesFails(t *testing.T) {
	_, err := ComputeSegmentBoundaries(nil, 0.0)
	require.Error(t, err)
	require.True(t, hlsfragerrors.IsNoSegments(err))
}

func TestComputeSegmentBoundaries_SingleKeyframeAtDurationFails(t *testing.T) {
	_, err := ComputeSegmentBoundaries([]float64{0.0}, 0.05)
	require.Error(t, err)
	require.True(t, hlsfragerrors.IsNoSegments(err))
}

func TestSourceMedia_SegmentDurations(t *testing.T) {
	m := SourceMedia{SegmentBoundaries: []float64{0.0, 4.0, 8.0, 10.5}}
	require.Equal(t, 3, m.SegmentCount())
	require.Equal(t, []float64{4.0, 4.0, 2.5}, m.SegmentDurations())
}

func TestSourceMedia_SegmentDurations_TooFewBoundaries(t *testing.T) {
	m := SourceMedia{SegmentBoundaries: []float64{0.0}}
	require.Equal(t, 0, m.SegmentCount())
	require.Nil(t, m.SegmentDurations())
}
