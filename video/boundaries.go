package video

import hlsfragerrors "github.com/livepeer/hlsfrag/errors"

// ComputeSegmentBoundaries applies the duration-append rule to a keyframe
// PTS list: duration is appended when it exceeds the last keyframe by more
// than 0.1s; if no keyframes were found but duration is positive, the
// boundaries fall back to [0.0, duration]. The result always has
// len(boundaries) == 0 or len(boundaries) >= 2.
func ComputeSegmentBoundaries(keyframeTimes []float64, duration float64) ([]float64, error) {
	boundaries := make([]float64, len(keyframeTimes))
	copy(boundaries, keyframeTimes)

	if len(boundaries) == 0 {
		if duration > 0.0 {
			boundaries = []float64{0.0, duration}
		}
	} else if last := boundaries[len(boundaries)-1]; duration-last > 0.1 {
		boundaries = append(boundaries, duration)
	}

	if len(boundaries) < 2 {
		return nil, hlsfragerrors.NoSegments("no segment boundaries could be derived from probed media")
	}
	return boundaries, nil
}
