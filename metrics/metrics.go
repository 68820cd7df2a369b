package metrics

import (
	"github.com/livepeer/hlsfrag/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HlsFragMetrics tracks the pipeline's per-stage throughput: how many
// segments get queued/transcoded/finalized, how long a segment transcode
// and a finalize take, and how many videos hit a partial enqueue. The
// QueueDepth gauge is registered but no code in this module sets it.
type HlsFragMetrics struct {
	Version *prometheus.CounterVec

	SegmentsEnqueued   *prometheus.CounterVec
	SegmentsTranscoded *prometheus.CounterVec
	SegmentsFailed     *prometheus.CounterVec
	TranscodeDuration  prometheus.Histogram

	QueueDepth *prometheus.GaugeVec

	VideosFinalized  prometheus.Counter
	FinalizeDuration prometheus.Histogram

	PartialEnqueueCount prometheus.Counter
}

func NewMetrics() *HlsFragMetrics {
	m := &HlsFragMetrics{
		Version: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "version",
			Help: "Current Git SHA / Tag that's running. Incremented once on app startup.",
		}, []string{"app", "version"}),

		SegmentsEnqueued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "segments_enqueued_total",
			Help: "Number of segment jobs enqueued, by priority",
		}, []string{"priority"}),

		SegmentsTranscoded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "segments_transcoded_total",
			Help: "Number of segments successfully transcoded and uploaded",
		}, []string{"priority"}),

		SegmentsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "segments_failed_total",
			Help: "Number of segment jobs that failed during transcode/upload",
		}, []string{"stage"}),

		TranscodeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "segment_transcode_duration_seconds",
			Help:    "Time taken to transcode and upload one segment",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),

		QueueDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Observed depth of each priority list at last sample",
		}, []string{"priority"}),

		VideosFinalized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "videos_finalized_total",
			Help: "Number of videos whose playlist was written and status record removed",
		}),

		FinalizeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "finalize_duration_seconds",
			Help:    "Time taken to run the completion coordinator once the last segment lands",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		}),

		PartialEnqueueCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "partial_enqueue_total",
			Help: "Number of videos that failed to enqueue all segment jobs after retries",
		}),
	}

	m.Version.WithLabelValues("hlsfrag", config.Version).Inc()
	return m
}

var Metrics = NewMetrics()
