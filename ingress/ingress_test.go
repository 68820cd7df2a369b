package ingress

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"

	"github.com/livepeer/hlsfrag/job"
	"github.com/livepeer/hlsfrag/orchestrator"
	"github.com/livepeer/hlsfrag/queue"
	"github.com/livepeer/hlsfrag/state"
	"github.com/livepeer/hlsfrag/storage"
	"github.com/livepeer/hlsfrag/video"
)

type stubStorage struct{}

func (stubStorage) Download(ctx context.Context, key string) (string, error) { return "/tmp/x", nil }
func (stubStorage) Upload(ctx context.Context, localPath, key string) error   { return nil }

var _ storage.Storage = stubStorage{}

type stubQueue struct{}

func (stubQueue) Enqueue(ctx context.Context, j job.Job) error { return nil }
func (stubQueue) Dequeue(ctx context.Context, timeout time.Duration) (job.Job, bool, error) {
	return job.Job{}, false, nil
}

var _ queue.Queue = stubQueue{}

type stubState struct{}

func (stubState) SaveVideoStatus(ctx context.Context, status job.VideoStatus) error { return nil }
func (stubState) GetVideoStatus(ctx context.Context, videoID string) (job.VideoStatus, error) {
	return job.VideoStatus{}, nil
}
func (stubState) IncrementCompleted(ctx context.Context, videoID string) (int, error) { return 0, nil }
func (stubState) DeleteVideoStatus(ctx context.Context, videoID string) error         { return nil }

var _ state.Repository = stubState{}

type stubProber struct{}

func (stubProber) Probe(ctx context.Context, videoID, path string) (video.SourceMedia, error) {
	return video.SourceMedia{KeyframeTimes: []float64{0.0, 4.0}, Duration: 8.0}, nil
}

func newHandler() Handlers {
	return Handlers{Orchestrator: orchestrator.Service{
		Storage: stubStorage{},
		Queue:   stubQueue{},
		State:   stubState{},
		Prober:  stubProber{},
	}}
}

func TestNewSource_ValidPayloadReturns200WithVideoID(t *testing.T) {
	h := newHandler()
	body, _ := json.Marshal(map[string]string{"source_key": "uploads/a.mp4"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sources", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.NewSource()(rec, req, httprouter.Params{})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp newSourceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.VideoID)
}

func TestNewSource_MissingSourceKeyReturns400(t *testing.T) {
	h := newHandler()
	body, _ := json.Marshal(map[string]string{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sources", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.NewSource()(rec, req, httprouter.Params{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewSource_MalformedJSONReturns400(t *testing.T) {
	h := newHandler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sources", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()

	h.NewSource()(rec, req, httprouter.Params{})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
