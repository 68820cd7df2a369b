package worker

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livepeer/hlsfrag/cache"
	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
	"github.com/livepeer/hlsfrag/job"
)

type fakeStorage struct {
	mu        sync.Mutex
	downloads int
	uploads   map[string]string // key -> file contents
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string]string{}}
}

func (f *fakeStorage) Download(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.downloads++
	return "/tmp/fake-source", nil
}

func (f *fakeStorage) Upload(ctx context.Context, localPath, key string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[key] = string(data)
	return nil
}

// fakeTranscoder writes deterministic, recognizable contents rather than
// invoking ffmpeg, so the worker's upload/finalize plumbing can be
// exercised without a real media toolchain.
type fakeTranscoder struct {
	segmentErr error
	initErr    error
}

func (f fakeTranscoder) TranscodeSegment(ctx context.Context, sourcePath string, startSeconds, durationSeconds float64, outputPath string) error {
	if f.segmentErr != nil {
		return f.segmentErr
	}
	return os.WriteFile(outputPath, []byte("moofsegmentbytes"), 0644)
}

func (f fakeTranscoder) GenerateInitSegment(ctx context.Context, sourcePath string, outputPath string) error {
	if f.initErr != nil {
		return f.initErr
	}
	return os.WriteFile(outputPath, []byte("ftypmoovbytes"), 0644)
}

type fakeState struct {
	mu        sync.Mutex
	status    job.VideoStatus
	completed int
	deleted   bool
	finalized int
}

func (f *fakeState) SaveVideoStatus(ctx context.Context, status job.VideoStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = status
	return nil
}

func (f *fakeState) GetVideoStatus(ctx context.Context, videoID string) (job.VideoStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleted {
		return job.VideoStatus{}, hlsfragerrors.StaleState("deleted")
	}
	return f.status, nil
}

func (f *fakeState) IncrementCompleted(ctx context.Context, videoID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleted {
		return 0, hlsfragerrors.StaleState("deleted")
	}
	f.completed++
	return f.completed, nil
}

func (f *fakeState) DeleteVideoStatus(ctx context.Context, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = true
	f.finalized++
	return nil
}

func newStatus() job.VideoStatus {
	return job.VideoStatus{
		VideoID:          "v1",
		SourceKey:        "src.mp4",
		OutputPrefix:     "hls/v1/",
		TotalSegments:    2,
		SegmentDurations: []float64{4.0, 2.5},
	}
}

func TestProcessSegment_LastSegmentFinalizes(t *testing.T) {
	storage := newFakeStorage()
	state := &fakeState{status: newStatus(), completed: 1} // segment 0 already landed
	svc := Service{Storage: storage, State: state, Transcoder: fakeTranscoder{}}

	j := job.NewSegmentJob("j1", "v1", 1, "src.mp4", "hls/v1/segment_1.mp4", 4.0, 2.5)
	svc.process(context.Background(), j)

	require.Equal(t, 2, state.completed)
	require.Equal(t, 1, state.finalized)
	require.True(t, state.deleted)

	require.Contains(t, storage.uploads, "hls/v1/segment_1.mp4")
	require.True(t, strings.HasPrefix(storage.uploads["hls/v1/segment_1.mp4"], "moof"))
	require.Contains(t, storage.uploads, "hls/v1/init.mp4")
	require.Contains(t, storage.uploads, "hls/v1/playlist.m3u8")
	require.Contains(t, storage.uploads["hls/v1/playlist.m3u8"], "#EXT-X-ENDLIST")
}

func TestProcessSegment_NotLastSegmentDoesNotFinalize(t *testing.T) {
	storage := newFakeStorage()
	state := &fakeState{status: newStatus(), completed: 0}
	svc := Service{Storage: storage, State: state, Transcoder: fakeTranscoder{}}

	j := job.NewSegmentJob("j0", "v1", 0, "src.mp4", "hls/v1/segment_0.mp4", 0, 4.0)
	svc.process(context.Background(), j)

	require.Equal(t, 1, state.completed)
	require.Equal(t, 0, state.finalized)
	require.NotContains(t, storage.uploads, "hls/v1/init.mp4")
	require.NotContains(t, storage.uploads, "hls/v1/playlist.m3u8")
}

func TestProcessSegment_StaleStateAfterDeleteIsNoop(t *testing.T) {
	storage := newFakeStorage()
	state := &fakeState{status: newStatus(), completed: 2, deleted: true}
	svc := Service{Storage: storage, State: state, Transcoder: fakeTranscoder{}}

	j := job.NewSegmentJob("j-redelivered", "v1", 1, "src.mp4", "hls/v1/segment_1.mp4", 4.0, 2.5)
	require.NotPanics(t, func() { svc.process(context.Background(), j) })
	require.Equal(t, 0, state.finalized) // increment itself reports StaleState; finalize never runs
}

func TestProcessSegment_TranscodeFailureDoesNotIncrement(t *testing.T) {
	storage := newFakeStorage()
	state := &fakeState{status: newStatus(), completed: 0}
	svc := Service{Storage: storage, State: state, Transcoder: fakeTranscoder{segmentErr: context.DeadlineExceeded}}

	j := job.NewSegmentJob("j0", "v1", 0, "src.mp4", "hls/v1/segment_0.mp4", 0, 4.0)
	svc.process(context.Background(), j)

	require.Equal(t, 0, state.completed)
	require.Empty(t, storage.uploads)
}

type singleJobQueue struct {
	mu       sync.Mutex
	jobs     []job.Job
	dequeued int
}

func (q *singleJobQueue) Enqueue(ctx context.Context, j job.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, j)
	return nil
}

func (q *singleJobQueue) Dequeue(ctx context.Context, timeout time.Duration) (job.Job, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return job.Job{}, false, nil
	}
	q.dequeued++
	j := q.jobs[0]
	q.jobs = q.jobs[1:]
	return j, true, nil
}

func TestRunOnce_ProcessesExactlyOneJob(t *testing.T) {
	storage := newFakeStorage()
	state := &fakeState{status: newStatus(), completed: 0}
	q := &singleJobQueue{jobs: []job.Job{
		job.NewSegmentJob("j0", "v1", 0, "src.mp4", "hls/v1/segment_0.mp4", 0, 4.0),
	}}
	svc := Service{Storage: storage, State: state, Transcoder: fakeTranscoder{}, Queue: q}

	err := svc.RunOnce(context.Background(), time.Second)
	require.NoError(t, err)
	require.Equal(t, 1, state.completed)
	require.Equal(t, 1, q.dequeued)
}

func TestProcessSegment_ReusesCachedSourceAcrossJobsOfSameVideo(t *testing.T) {
	storage := newFakeStorage()
	state := &fakeState{status: newStatus(), completed: 0}
	svc := Service{
		Storage:     storage,
		State:       state,
		Transcoder:  fakeTranscoder{},
		SourceCache: cache.New[string](),
	}

	svc.process(context.Background(), job.NewSegmentJob("j0", "v1", 0, "src.mp4", "hls/v1/segment_0.mp4", 0, 4.0))
	require.Equal(t, 1, storage.downloads)

	svc.process(context.Background(), job.NewSegmentJob("j1", "v1", 1, "src.mp4", "hls/v1/segment_1.mp4", 4.0, 2.5))
	require.Equal(t, 1, storage.downloads, "second job for the same video must reuse the cached source, not redownload")
	require.Equal(t, 1, state.finalized)

	// finalize evicts the cache entry for v1, so a later video's job still downloads fresh.
	_, cached := (*svc.SourceCache.UnittestIntrospection())["v1"]
	require.False(t, cached)
}

func TestRunOnce_EmptyQueueReturnsNilWithoutError(t *testing.T) {
	storage := newFakeStorage()
	state := &fakeState{status: newStatus()}
	q := &singleJobQueue{}
	svc := Service{Storage: storage, State: state, Transcoder: fakeTranscoder{}, Queue: q}

	err := svc.RunOnce(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.Equal(t, 0, state.completed)
}
