package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreAndRetrieveSourcePath(t *testing.T) {
	c := New[string]()
	c.Store("video-123", "/tmp/hlsfrag-video-123-abc.mp4")
	require.Equal(t, "/tmp/hlsfrag-video-123-abc.mp4", c.Get("video-123"))
}

func TestRemoveEvictsEntry(t *testing.T) {
	c := New[string]()
	c.Store("video-123", "/tmp/hlsfrag-video-123-abc.mp4")
	require.Equal(t, "/tmp/hlsfrag-video-123-abc.mp4", c.Get("video-123"))

	c.Remove("video-123", "video-123")
	require.Equal(t, "", c.Get("video-123"))
}

func TestGetMissReturnsZeroValue(t *testing.T) {
	c := New[string]()
	require.Equal(t, "", c.Get("never-stored"))
}
