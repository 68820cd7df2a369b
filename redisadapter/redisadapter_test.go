package redisadapter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
	"github.com/livepeer/hlsfrag/job"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client)
}

func TestDequeue_PrefersHighPriority(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	normal := job.NewSegmentJob("jn", "v1", 5, "src", "outn", 20, 4)
	high := job.NewSegmentJob("jh", "v1", 0, "src", "outh", 0, 4)

	require.NoError(t, a.Enqueue(ctx, normal))
	require.NoError(t, a.Enqueue(ctx, high))

	got, ok, err := a.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "jh", got.JobID)
}

func TestDequeue_FallsBackToNormalWhenHighEmpty(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	normal := job.NewSegmentJob("jn", "v1", 5, "src", "outn", 20, 4)
	require.NoError(t, a.Enqueue(ctx, normal))

	got, ok, err := a.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "jn", got.JobID)
}

func TestDequeue_TimesOutOnEmptyQueues(t *testing.T) {
	a := newTestAdapter(t)
	got, ok, err := a.Dequeue(context.Background(), 50*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, job.Job{}, got)
}

func TestDequeue_DeliversBothHighJobsBeforeNormal(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	j0 := job.NewSegmentJob("j0", "v1", 0, "src", "out0", 0, 4)
	j1 := job.NewSegmentJob("j1", "v1", 1, "src", "out1", 4, 4)
	j2 := job.NewSegmentJob("j2", "v1", 2, "src", "out2", 8, 2.5)

	require.NoError(t, a.Enqueue(ctx, j0))
	require.NoError(t, a.Enqueue(ctx, j1))
	require.NoError(t, a.Enqueue(ctx, j2))

	seen := map[string]bool{}
	for i := 0; i < 2; i++ {
		got, ok, err := a.Dequeue(ctx, time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		seen[got.JobID] = true
	}
	require.True(t, seen["j0"])
	require.True(t, seen["j1"])
	require.False(t, seen["j2"])
}

func TestVideoStatus_SaveGetDelete(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	status := job.VideoStatus{
		VideoID:          "v1",
		SourceKey:        "src.mp4",
		OutputPrefix:     "hls/src/",
		TotalSegments:    3,
		SegmentDurations: []float64{4.0, 4.0, 2.5},
	}
	require.NoError(t, a.SaveVideoStatus(ctx, status))

	got, err := a.GetVideoStatus(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, status, got)

	require.NoError(t, a.DeleteVideoStatus(ctx, "v1"))

	_, err = a.GetVideoStatus(ctx, "v1")
	require.True(t, hlsfragerrors.IsStaleState(err))
}

func TestIncrementCompleted_MonotonicallyIncreases(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	status := job.VideoStatus{VideoID: "v1", TotalSegments: 3}
	require.NoError(t, a.SaveVideoStatus(ctx, status))

	n1, err := a.IncrementCompleted(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, 1, n1)

	n2, err := a.IncrementCompleted(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, 2, n2)

	n3, err := a.IncrementCompleted(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, 3, n3)
}

func TestGetVideoStatus_AbsentIsStaleState(t *testing.T) {
	a := newTestAdapter(t)
	_, err := a.GetVideoStatus(context.Background(), "missing")
	require.True(t, hlsfragerrors.IsStaleState(err))
}
