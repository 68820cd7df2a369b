package job

// VideoStatus is the Video Status Record persisted in the state
// repository from orchestration until the finalizer deletes it. The
// completed counter is stored and incremented separately by the
// repository (see state.Repository) - it is not part of this struct's
// own JSON encoding so a worker's increment can never race a full
// read-modify-write of the descriptor.
type VideoStatus struct {
	VideoID          string    `json:"video_id"`
	SourceKey        string    `json:"source_key"`
	OutputPrefix     string    `json:"output_prefix"`
	TotalSegments    int       `json:"total_segments"`
	SegmentDurations []float64 `json:"segment_durations"`
}
