// Package worker implements C6: pulling jobs off the queue, running the
// segment transcoder, tracking completion, and finalizing a video's
// playlist once its last segment lands.
package worker

import (
	"context"
	"os"
	"time"

	"github.com/livepeer/hlsfrag/cache"
	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
	"github.com/livepeer/hlsfrag/job"
	"github.com/livepeer/hlsfrag/log"
	"github.com/livepeer/hlsfrag/metrics"
	"github.com/livepeer/hlsfrag/playlist"
	"github.com/livepeer/hlsfrag/queue"
	"github.com/livepeer/hlsfrag/state"
	"github.com/livepeer/hlsfrag/storage"
	"github.com/livepeer/hlsfrag/video"
)

type Service struct {
	Storage    storage.Storage
	Queue      queue.Queue
	State      state.Repository
	Transcoder video.TranscoderPort

	// DequeueTimeout bounds each Dequeue call's blocking wait on the
	// normal-priority list.
	DequeueTimeout time.Duration

	// SourceCache holds locally downloaded source files keyed by video ID,
	// so that a long-lived worker (the monolith's pool, not a one-shot
	// Lambda) doesn't re-download the same source for every segment job
	// of a video it has already fetched. Per spec.md §4.5, this is purely
	// a local optimization: nil is a valid zero value (always download),
	// and a worker MUST NOT rely on another worker's cache having the
	// file, which is why entries are evicted once this worker finalizes
	// the video rather than shared or persisted anywhere.
	SourceCache *cache.Cache[string]
}

// downloadSource returns a local path to sourceKey, reusing a still-present
// cached download for videoID when one exists instead of refetching it from
// storage for every job belonging to the same video.
func (s Service) downloadSource(ctx context.Context, videoID, sourceKey string) (string, error) {
	if s.SourceCache != nil {
		if cached := s.SourceCache.Get(videoID); cached != "" {
			return cached, nil
		}
	}
	localPath, err := s.Storage.Download(ctx, sourceKey)
	if err != nil {
		return "", err
	}
	if s.SourceCache != nil {
		s.SourceCache.Store(videoID, localPath)
	}
	return localPath, nil
}

// Run drains the queue until ctx is canceled, processing one job per
// iteration. It is the body of each of the monolith's worker goroutines
// (or the entire lifetime of a single serverless worker invocation, which
// calls RunOnce instead).
func (s Service) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		timeout := s.DequeueTimeout
		if timeout == 0 {
			timeout = 20 * time.Second
		}
		j, ok, err := s.Queue.Dequeue(ctx, timeout)
		if err != nil {
			log.LogNoRequestID("dequeue error", "err", err.Error())
			continue
		}
		if !ok {
			continue
		}
		s.process(ctx, j)
	}
}

// RunOnce processes exactly one job and returns, for the serverless
// worker-lambda entrypoint (W=1 per invocation).
func (s Service) RunOnce(ctx context.Context, timeout time.Duration) error {
	j, ok, err := s.Queue.Dequeue(ctx, timeout)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	s.process(ctx, j)
	return nil
}

func (s Service) process(ctx context.Context, j job.Job) {
	ctx = log.WithLogValues(ctx, "video_id", j.VideoID, "job_id", j.JobID)
	switch j.Type {
	case job.TypeSegment:
		s.processSegment(ctx, j)
	case job.TypeThumbnailStrip:
		s.processThumbnailStrip(ctx, j)
	default:
		log.LogCtx(ctx, "dropping job with unrecognized type", "type", j.Type)
	}
}

func (s Service) processSegment(ctx context.Context, j job.Job) {
	start := time.Now()
	localSource, err := s.downloadSource(ctx, j.VideoID, j.SourceKey)
	if err != nil {
		metrics.Metrics.SegmentsFailed.WithLabelValues("download").Inc()
		log.LogCtx(ctx, "segment download failed", "err", err.Error())
		return
	}

	tmpOut, err := os.CreateTemp("", "hlsfrag-out-*.mp4")
	if err != nil {
		log.LogCtx(ctx, "segment temp file creation failed", "err", err.Error())
		return
	}
	tmpOutPath := tmpOut.Name()
	_ = tmpOut.Close()
	defer os.Remove(tmpOutPath)

	if err := s.Transcoder.TranscodeSegment(ctx, localSource, j.StartTime, j.Duration, tmpOutPath); err != nil {
		metrics.Metrics.SegmentsFailed.WithLabelValues("transcode").Inc()
		log.LogCtx(ctx, "segment transcode failed", "err", err.Error())
		return
	}

	if err := s.Storage.Upload(ctx, tmpOutPath, j.OutputKey); err != nil {
		metrics.Metrics.SegmentsFailed.WithLabelValues("upload").Inc()
		log.LogCtx(ctx, "segment upload failed", "err", err.Error())
		return
	}

	metrics.Metrics.SegmentsTranscoded.WithLabelValues(string(j.Priority())).Inc()
	metrics.Metrics.TranscodeDuration.Observe(time.Since(start).Seconds())

	completed, err := s.State.IncrementCompleted(ctx, j.VideoID)
	if err != nil {
		if hlsfragerrors.IsStaleState(err) {
			log.LogCtx(ctx, "stale state incrementing completed counter, dropping", "err", err.Error())
			return
		}
		log.LogCtx(ctx, "increment completed failed", "err", err.Error())
		return
	}

	status, err := s.State.GetVideoStatus(ctx, j.VideoID)
	if err != nil {
		if hlsfragerrors.IsStaleState(err) {
			// Finalize already ran (or is running) and removed the record.
			return
		}
		log.LogCtx(ctx, "loading video status failed", "err", err.Error())
		return
	}

	// Strict equality: a duplicate terminal increment (completed >
	// total) means finalize already ran or is in flight, so do nothing.
	if completed == status.TotalSegments {
		s.finalize(ctx, status)
	}
}

// finalize implements C6's completion coordinator: generate (or
// re-confirm) the init segment, build and upload the playlist, then
// delete the status record.
func (s Service) finalize(ctx context.Context, status job.VideoStatus) {
	start := time.Now()
	localSource, err := s.downloadSource(ctx, status.VideoID, status.SourceKey)
	if err != nil {
		log.LogCtx(ctx, "finalize: source download failed", "err", err.Error())
		return
	}

	tmpInit, err := os.CreateTemp("", "hlsfrag-init-*.mp4")
	if err != nil {
		log.LogCtx(ctx, "finalize: temp file creation failed", "err", err.Error())
		return
	}
	tmpInitPath := tmpInit.Name()
	_ = tmpInit.Close()
	defer os.Remove(tmpInitPath)

	if err := s.Transcoder.GenerateInitSegment(ctx, localSource, tmpInitPath); err != nil {
		log.LogCtx(ctx, "finalize: init segment generation failed", "err", err.Error())
		return
	}
	if err := s.Storage.Upload(ctx, tmpInitPath, status.OutputPrefix+"init.mp4"); err != nil {
		log.LogCtx(ctx, "finalize: init segment upload failed", "err", err.Error())
		return
	}

	manifest := playlist.Build(status.SegmentDurations, "init.mp4")
	tmpPlaylist, err := os.CreateTemp("", "hlsfrag-playlist-*.m3u8")
	if err != nil {
		log.LogCtx(ctx, "finalize: playlist temp file creation failed", "err", err.Error())
		return
	}
	tmpPlaylistPath := tmpPlaylist.Name()
	defer os.Remove(tmpPlaylistPath)
	if _, err := tmpPlaylist.WriteString(manifest); err != nil {
		_ = tmpPlaylist.Close()
		log.LogCtx(ctx, "finalize: writing playlist to temp file failed", "err", err.Error())
		return
	}
	_ = tmpPlaylist.Close()

	if err := s.Storage.Upload(ctx, tmpPlaylistPath, status.OutputPrefix+"playlist.m3u8"); err != nil {
		log.LogCtx(ctx, "finalize: playlist upload failed", "err", err.Error())
		return
	}

	if err := s.State.DeleteVideoStatus(ctx, status.VideoID); err != nil {
		log.LogCtx(ctx, "finalize: deleting video status failed", "err", err.Error())
		return
	}
	if s.SourceCache != nil {
		s.SourceCache.Remove(status.VideoID, status.VideoID)
	}

	metrics.Metrics.VideosFinalized.Inc()
	metrics.Metrics.FinalizeDuration.Observe(time.Since(start).Seconds())
	log.LogCtx(ctx, "finalized video", "video_id", status.VideoID)
}

func (s Service) processThumbnailStrip(ctx context.Context, j job.Job) {
	localSource, err := s.downloadSource(ctx, j.VideoID, j.SourceKey)
	if err != nil {
		log.LogCtx(ctx, "thumbnail strip download failed", "err", err.Error())
		return
	}

	tmpOut, err := os.CreateTemp("", "hlsfrag-thumbs-*.jpg")
	if err != nil {
		log.LogCtx(ctx, "thumbnail strip temp file creation failed", "err", err.Error())
		return
	}
	tmpOutPath := tmpOut.Name()
	_ = tmpOut.Close()
	defer os.Remove(tmpOutPath)

	if err := video.GenerateThumbnailStrip(ctx, localSource, j.IntervalSeconds, j.Width, tmpOutPath); err != nil {
		log.LogCtx(ctx, "thumbnail strip generation failed", "err", err.Error())
		return
	}

	if err := s.Storage.Upload(ctx, tmpOutPath, j.OutputKey); err != nil {
		log.LogCtx(ctx, "thumbnail strip upload failed", "err", err.Error())
	}
}
