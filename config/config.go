package config

import (
	"os"
	"time"

	kitlog "github.com/go-kit/log"
)

var Version string

// Logger is the base logger the middleware and subprocess packages write
// to directly. Package log does not use it: it builds its own
// request/video-scoped loggers over its own destination writer.
var Logger kitlog.Logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))

// GetLogger returns the current value of Logger.
func GetLogger() kitlog.Logger {
	return Logger
}

// Number of segment-worker goroutines the monolith binary starts.
var DefaultWorkerPoolSize = 15

// Queue dequeue long-poll / BRPOP timeout.
var DefaultDequeueTimeout = 20 * time.Second

// Bounded retry count for the per-item enqueue-job step (spec.md Scenario
// around partial enqueue failure). The ffprobe retry uses its own fixed
// count, and the storage adapters do not retry.
var DefaultRetryAttempts uint64 = 5

// Input file size ceiling. No code in this module reads it; the prober
// does not check file size.
const MaxInputFileSizeBytes = 30 * 1024 * 1024 * 1024 // 30 GiB
