// Package job defines the wire-level job envelopes the orchestrator
// enqueues and workers dequeue, plus the Video Status Record persisted in
// the state repository until the last segment completes.
package job

import (
	"encoding/json"
	"fmt"
)

// Priority is the two-tier dispatch class a job is assigned at enqueue
// time. Segments 0 and 1 are High so a player has enough to start
// playback regardless of how busy the worker pool is; everything else is
// Normal.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// HighPrioritySegmentCutoff is the segment_index boundary below which a
// SegmentJob is dispatched at PriorityHigh (spec.md C7).
const HighPrioritySegmentCutoff = 2

// Job is the tagged-union wire envelope. Only Segment is required by the
// core; ThumbnailStrip is a supplemented, non-completion-gating variant.
type Job struct {
	Type            string  `json:"type"`
	JobID           string  `json:"job_id"`
	VideoID         string  `json:"video_id"`
	SegmentIndex    int     `json:"segment_index,omitempty"`
	SourceKey       string  `json:"source_key"`
	OutputKey       string  `json:"output_key"`
	StartTime       float64 `json:"start_time,omitempty"`
	Duration        float64 `json:"duration,omitempty"`
	IntervalSeconds float64 `json:"interval_seconds,omitempty"`
	Width           int     `json:"width,omitempty"`
}

const (
	TypeSegment        = "segment"
	TypeThumbnailStrip = "thumbnail_strip"
)

// NewSegmentJob builds the job enqueued once per output segment.
func NewSegmentJob(jobID, videoID string, segmentIndex int, sourceKey, outputKey string, startTime, duration float64) Job {
	return Job{
		Type:         TypeSegment,
		JobID:        jobID,
		VideoID:      videoID,
		SegmentIndex: segmentIndex,
		SourceKey:    sourceKey,
		OutputKey:    outputKey,
		StartTime:    startTime,
		Duration:     duration,
	}
}

// NewThumbnailStripJob builds the supplemented, non-completion-gating
// thumbnail contact-sheet job the orchestrator dispatches alongside
// segment jobs (see SPEC_FULL.md section C).
func NewThumbnailStripJob(jobID, videoID, sourceKey, outputKey string, intervalSeconds float64, width int) Job {
	return Job{
		Type:            TypeThumbnailStrip,
		JobID:           jobID,
		VideoID:         videoID,
		SourceKey:       sourceKey,
		OutputKey:       outputKey,
		IntervalSeconds: intervalSeconds,
		Width:           width,
	}
}

// Priority returns the dispatch class for this job: segment jobs below
// HighPrioritySegmentCutoff are High, everything else is Normal.
func (j Job) Priority() Priority {
	if j.Type == TypeSegment && j.SegmentIndex < HighPrioritySegmentCutoff {
		return PriorityHigh
	}
	return PriorityNormal
}

// Encode serializes a job to its wire form.
func Encode(j Job) ([]byte, error) {
	return json.Marshal(j)
}

// Decode parses a job off the wire, rejecting an unrecognized type tag so
// a queue adapter never silently drops an unknown future job variant.
func Decode(data []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return Job{}, fmt.Errorf("decoding job: %w", err)
	}
	switch j.Type {
	case TypeSegment, TypeThumbnailStrip:
		return j, nil
	default:
		return Job{}, fmt.Errorf("unrecognized job type %q", j.Type)
	}
}
