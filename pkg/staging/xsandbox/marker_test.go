package xsandbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerLifecycle(t *testing.T) {
	r := newResolver(t, nil)
	root, _ := r.Resolve("cred")
	_, err := r.Ensure(context.Background(), root)
	require.NoError(t, err)

	m, err := r.AcquireMarker(context.Background(), root, "stage-1")
	require.NoError(t, err)
	assert.Equal(t, root, filepath.Dir(m.Path()))
	assert.True(t, IsMarkerName(filepath.Base(m.Path())))

	info, err := os.Stat(m.Path())
	require.NoError(t, err)
	assert.Equal(t, MarkerPerm, info.Mode().Perm())
	content, err := os.ReadFile(m.Path())
	require.NoError(t, err)
	assert.Equal(t, "stage-1", string(content))

	require.NoError(t, m.Release())
	require.NoError(t, m.Release(), "幂等")
	_, err = os.Stat(m.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestMarkerReleaseAfterSweep(t *testing.T) {
	r := newResolver(t, nil)
	root, _ := r.Resolve("cred")
	_, err := r.Ensure(context.Background(), root)
	require.NoError(t, err)

	m, err := r.AcquireMarker(context.Background(), root, "")
	require.NoError(t, err)
	require.NoError(t, os.Remove(m.Path()))
	assert.NoError(t, m.Release())
}

func TestMarkerErrors(t *testing.T) {
	r := newResolver(t, nil)
	root, _ := r.Resolve("cred")

	_, err := r.AcquireMarker(context.Background(), root, "x")
	assert.Error(t, err, "根目录尚未创建")

	_, err = r.AcquireMarker(context.Background(), "/etc", "x")
	assert.ErrorIs(t, err, ErrInvalidRoot)

	var nilMarker *Marker
	assert.NoError(t, nilMarker.Release())
	assert.Empty(t, nilMarker.Path())
}

func TestIsMarkerName(t *testing.T) {
	assert.True(t, IsMarkerName(".xstage-1f0c.lock"))
	assert.False(t, IsMarkerName(".xstage-.lock"))
	assert.False(t, IsMarkerName("report.lock"))
	assert.False(t, IsMarkerName(".xstage-abc"))
}
