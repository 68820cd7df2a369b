package job

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentJob_PriorityBelowCutoffIsHigh(t *testing.T) {
	j0 := NewSegmentJob("j0", "v1", 0, "src", "out0", 0, 4)
	j1 := NewSegmentJob("j1", "v1", 1, "src", "out1", 4, 4)
	require.Equal(t, PriorityHigh, j0.Priority())
	require.Equal(t, PriorityHigh, j1.Priority())
}

func TestSegmentJob_PriorityAtOrAboveCutoffIsNormal(t *testing.T) {
	j2 := NewSegmentJob("j2", "v1", 2, "src", "out2", 8, 2.5)
	j5 := NewSegmentJob("j5", "v1", 5, "src", "out5", 20, 4)
	require.Equal(t, PriorityNormal, j2.Priority())
	require.Equal(t, PriorityNormal, j5.Priority())
}

func TestThumbnailStripJob_AlwaysNormalPriority(t *testing.T) {
	thumb := NewThumbnailStripJob("t1", "v1", "src", "out", 10.0, 160)
	require.Equal(t, PriorityNormal, thumb.Priority())
}

func TestEncodeDecode_RoundTrips(t *testing.T) {
	original := NewSegmentJob("j0", "v1", 0, "src", "out0", 0, 4)
	data, err := Encode(original)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestDecode_RejectsUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"unknown_future_variant"}`))
	require.Error(t, err)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)
}
