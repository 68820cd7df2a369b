package fsstorage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	hlsfragerrors "github.com/livepeer/hlsfrag/errors"
)

func TestDownload_ReturnsResolvedPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "source.mp4"), []byte("data"), 0644))

	a := New(dir)
	path, err := a.Download(context.Background(), "source.mp4")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "source.mp4"), path)
}

func TestDownload_MissingKeyFails(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)
	_, err := a.Download(context.Background(), "missing.mp4")
	require.Error(t, err)
	require.True(t, hlsfragerrors.IsIOFailure(err))
}

func TestUpload_CreatesParentDirsAndCopiesBytes(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(t.TempDir(), "local-out.mp4")
	require.NoError(t, os.WriteFile(srcPath, []byte("segment bytes"), 0644))

	a := New(dir)
	require.NoError(t, a.Upload(context.Background(), srcPath, "hls/v1/segment_0.mp4"))

	got, err := os.ReadFile(filepath.Join(dir, "hls/v1/segment_0.mp4"))
	require.NoError(t, err)
	require.Equal(t, "segment bytes", string(got))
}

func TestUpload_OverwritesExistingObject(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(t.TempDir(), "local-out.mp4")

	a := New(dir)
	require.NoError(t, os.WriteFile(srcPath, []byte("first"), 0644))
	require.NoError(t, a.Upload(context.Background(), srcPath, "out.mp4"))

	require.NoError(t, os.WriteFile(srcPath, []byte("second"), 0644))
	require.NoError(t, a.Upload(context.Background(), srcPath, "out.mp4"))

	got, err := os.ReadFile(filepath.Join(dir, "out.mp4"))
	require.NoError(t, err)
	require.Equal(t, "second", string(got))
}
