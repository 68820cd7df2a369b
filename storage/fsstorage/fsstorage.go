// Package fsstorage implements the storage.Storage port over the local
// filesystem for the monolith deployment, grounded on original_source's
// FsAdapter: download hands back the stored file's own path, upload is a
// copy-if-different-path operation with parent directories created as
// needed.
package fsstorage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
)

// Adapter roots every key under BaseDir - the monolith's UPLOAD_DIR - so a
// "key" is a path relative to that root.
type Adapter struct {
	BaseDir string
}

func New(baseDir string) Adapter {
	return Adapter{BaseDir: baseDir}
}

func (a Adapter) resolve(key string) string {
	return filepath.Join(a.BaseDir, key)
}

// Download returns the path key resolves to under BaseDir, failing with
// IOFailure if nothing exists there. It does not copy the file: callers
// get the stored file itself, not a private copy.
func (a Adapter) Download(ctx context.Context, key string) (string, error) {
	src := a.resolve(key)
	if _, err := os.Stat(src); err != nil {
		return "", hlsfragerrors.IOFailure("downloading "+key, err)
	}
	return src, nil
}

func (a Adapter) Upload(ctx context.Context, localPath string, key string) error {
	dst := a.resolve(key)
	if dst == localPath {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return hlsfragerrors.IOFailure("creating upload parent dir for "+key, err)
	}
	if err := copyFile(localPath, dst); err != nil {
		return hlsfragerrors.IOFailure("uploading to "+key, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
