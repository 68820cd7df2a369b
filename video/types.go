package video

// MediaInfo is the result of probing a source file: everything the
// orchestrator needs to turn a file into a segment schedule.
type MediaInfo struct {
	Format   string
	Duration float64
}

// SourceMedia is the transient record produced by analyzing one upload:
// the keyframe PTS list the prober extracted, the stream duration, and
// the segment boundaries derived from the two combined.
type SourceMedia struct {
	KeyframeTimes     []float64
	Duration          float64
	SegmentBoundaries []float64
}

// SegmentCount returns N, the number of segments implied by the boundary
// list (len(boundaries)-1), or 0 if there aren't enough boundaries to form
// a segment.
func (s SourceMedia) SegmentCount() int {
	if len(s.SegmentBoundaries) < 2 {
		return 0
	}
	return len(s.SegmentBoundaries) - 1
}

// SegmentDurations returns the duration of each of the N segments implied
// by SegmentBoundaries.
func (s SourceMedia) SegmentDurations() []float64 {
	n := s.SegmentCount()
	if n == 0 {
		return nil
	}
	durations := make([]float64, n)
	for i := 0; i < n; i++ {
		durations[i] = s.SegmentBoundaries[i+1] - s.SegmentBoundaries[i]
	}
	return durations
}
