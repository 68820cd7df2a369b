// Package orchestrator implements C5: turning a newly-arrived source file
// into a persisted Video Status Record plus its segment jobs.
package orchestrator

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
	"github.com/livepeer/hlsfrag/job"
	"github.com/livepeer/hlsfrag/log"
	"github.com/livepeer/hlsfrag/metrics"
	"github.com/livepeer/hlsfrag/queue"
	"github.com/livepeer/hlsfrag/state"
	"github.com/livepeer/hlsfrag/storage"
	"github.com/livepeer/hlsfrag/video"
)

// ThumbnailInterval and ThumbnailWidth tune the supplemented thumbnail
// strip job - not part of the core completion path, see job.NewThumbnailStripJob.
const (
	ThumbnailInterval = 10.0
	ThumbnailWidth    = 160
)

type Service struct {
	Storage storage.Storage
	Queue   queue.Queue
	State   state.Repository
	Prober  video.Prober

	// EnqueueRetryAttempts bounds the per-item enqueue retry loop used to
	// recover from a transient queue failure partway through step 6
	// (spec.md §4.4, Open Question in DESIGN.md).
	EnqueueRetryAttempts uint64
}

// HandleNewSource implements "handle_new_source(source_key) -> video_id"
// (spec.md §4.4): download, probe, persist status, fan out segment jobs
// plus one thumbnail strip job.
func (s Service) HandleNewSource(ctx context.Context, sourceKey string) (string, error) {
	localPath, err := s.Storage.Download(ctx, sourceKey)
	if err != nil {
		return "", hlsfragerrors.IOFailure("downloading source "+sourceKey, err)
	}

	videoID := uuid.New().String()
	ctx = clogVideo(ctx, videoID)

	media, err := s.Prober.Probe(ctx, videoID, localPath)
	if err != nil {
		return "", err
	}

	boundaries, err := video.ComputeSegmentBoundaries(media.KeyframeTimes, media.Duration)
	if err != nil {
		return "", err
	}
	media.SegmentBoundaries = boundaries

	n := media.SegmentCount()
	if n < 1 {
		return "", hlsfragerrors.NoSegments(fmt.Sprintf("source %s produced %d segments", sourceKey, n))
	}
	durations := media.SegmentDurations()

	outputPrefix := fmt.Sprintf("hls/%s/", stem(sourceKey))

	status := job.VideoStatus{
		VideoID:          videoID,
		SourceKey:        sourceKey,
		OutputPrefix:     outputPrefix,
		TotalSegments:    n,
		SegmentDurations: durations,
	}
	if err := s.State.SaveVideoStatus(ctx, status); err != nil {
		return "", hlsfragerrors.IOFailure("saving video status", err)
	}

	if err := s.enqueueAll(ctx, videoID, sourceKey, outputPrefix, boundaries, durations); err != nil {
		return "", err
	}

	log.LogCtx(ctx, "orchestrated new video", "video_id", videoID, "segments", n)
	return videoID, nil
}

func (s Service) enqueueAll(ctx context.Context, videoID, sourceKey, outputPrefix string, boundaries, durations []float64) error {
	attempts := s.EnqueueRetryAttempts
	if attempts == 0 {
		attempts = 5
	}

	enqueueWithRetry := func(j job.Job) error {
		op := func() error { return s.Queue.Enqueue(ctx, j) }
		backOff := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), attempts)
		return backoff.Retry(op, backOff)
	}

	for i, d := range durations {
		j := job.NewSegmentJob(
			uuid.New().String(), videoID, i,
			sourceKey, fmt.Sprintf("%ssegment_%d.mp4", outputPrefix, i),
			boundaries[i], d,
		)
		if err := enqueueWithRetry(j); err != nil {
			// A partial enqueue is fatal for this video: the status record
			// stays orphaned unless we compensate by deleting it, matching
			// the Open Question decision in DESIGN.md.
			_ = s.State.DeleteVideoStatus(ctx, videoID)
			metrics.Metrics.PartialEnqueueCount.Inc()
			return hlsfragerrors.PartialEnqueue(fmt.Sprintf("enqueueing segment %d of video %s", i, videoID), err)
		}
		metrics.Metrics.SegmentsEnqueued.WithLabelValues(string(j.Priority())).Inc()
	}

	thumbJob := job.NewThumbnailStripJob(
		uuid.New().String(), videoID,
		sourceKey, outputPrefix+"thumbnails.jpg",
		ThumbnailInterval, ThumbnailWidth,
	)
	if err := enqueueWithRetry(thumbJob); err != nil {
		// Thumbnails don't gate completion; log and move on rather than
		// unwinding an otherwise-successful segment enqueue.
		log.LogCtx(ctx, "failed to enqueue thumbnail strip job", "video_id", videoID, "err", err.Error())
	}

	return nil
}

func clogVideo(ctx context.Context, videoID string) context.Context {
	return log.WithLogValues(ctx, "video_id", videoID)
}

func stem(key string) string {
	base := path.Base(key)
	return strings.TrimSuffix(base, path.Ext(base))
}
