// Package storage defines the Storage port: the narrow download/upload
// contract used by both the orchestrator (source download) and workers
// (per-segment source download, output upload, playlist/init upload).
package storage

import "context"

// Storage is deliberately two methods - implementations choose whatever
// backend fits the deployment target (local filesystem for the monolith,
// S3 for the serverless fan-out). Keys are opaque strings the adapter
// interprets; callers never inspect them.
type Storage interface {
	// Download fetches key to a local path and returns that path.
	Download(ctx context.Context, key string) (localPath string, err error)
	// Upload pushes the contents of localPath to key.
	Upload(ctx context.Context, localPath string, key string) error
}
