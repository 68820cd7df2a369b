// Package state defines the State Repository port: the per-video status
// record and atomic completion counter C5 creates and C6 reads/increments.
package state

import (
	"context"

	"github.com/livepeer/hlsfrag/job"
)

// Repository is the narrow port backing the Video Status Record and its
// completed-segment counter. SaveVideoStatus MUST persist both the
// descriptor and a zero-initialized counter; if the backing store
// supports a transactional write, use it, otherwise write the descriptor
// then the counter (spec.md C5 step 5).
type Repository interface {
	SaveVideoStatus(ctx context.Context, status job.VideoStatus) error
	GetVideoStatus(ctx context.Context, videoID string) (job.VideoStatus, error)
	// IncrementCompleted atomically increments the completed counter for
	// videoID and returns the new value.
	IncrementCompleted(ctx context.Context, videoID string) (int, error)
	// DeleteVideoStatus removes both the descriptor and the counter. The
	// finalizer calls it after a successful playlist write; the
	// orchestrator also calls it to clean up when enqueueing a video's
	// segment jobs fails.
	DeleteVideoStatus(ctx context.Context, videoID string) error
}
