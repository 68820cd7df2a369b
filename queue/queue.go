// Package queue defines the Queue port: the two-tier priority dispatch
// contract C6 workers pull jobs from and C5 enqueues them onto.
package queue

import (
	"context"
	"time"

	"github.com/livepeer/hlsfrag/job"
)

// Queue is the narrow port the orchestrator enqueues onto and workers
// dequeue from. Implementations route a job to one of two logical lists
// based on job.Priority() at enqueue time; Dequeue prefers High over
// Normal (spec.md C7): a Normal job is delivered only when the High list
// is empty at the moment of the check.
//
// Cancellation: ctx cancellation during Dequeue must not lose a message
// already popped off the backing store - implementations are expected to
// provide at-least-once delivery, not exactly-once.
type Queue interface {
	Enqueue(ctx context.Context, j job.Job) error
	// Dequeue blocks up to timeout waiting for a Normal-priority job after
	// a non-blocking check of the High-priority list comes up empty. What
	// a zero timeout means is implementation-defined: the Redis adapter
	// blocks without limit, the SQS adapter does a short poll.
	Dequeue(ctx context.Context, timeout time.Duration) (job.Job, bool, error)
}
