package workspace

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	base := t.TempDir()

	s, err := NewSession(base)
	require.NoError(t, err)
	assert.DirExists(t, s.Dir())
	assert.Equal(t, base, filepath.Dir(s.Dir()))
	assert.Contains(t, s.ID(), sessionPrefix)

	p := s.Path("../escape/out.mp4")
	assert.Equal(t, filepath.Join(s.Dir(), "out.mp4"), p)
	require.NoError(t, os.WriteFile(p, []byte("frames"), 0644))

	other, err := NewSession(base)
	require.NoError(t, err)
	assert.NotEqual(t, s.Dir(), other.Dir())

	require.NoError(t, s.Cleanup())
	assert.NoDirExists(t, s.Dir())
	assert.DirExists(t, other.Dir())
}

func TestExport(t *testing.T) {
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path("silent.mp4"), []byte("frames"), 0644))

	dst := filepath.Join(t.TempDir(), "final.mp4")
	require.NoError(t, s.Export("silent.mp4", dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "frames", string(got))
	assert.NoFileExists(t, s.Path("silent.mp4"))

	assert.Error(t, s.Export("missing.mp4", dst))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0644))

	require.NoError(t, copyFile(src, filepath.Join(dir, "b")))
	got, err := os.ReadFile(filepath.Join(dir, "b"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))

	assert.Error(t, copyFile(src, filepath.Join(dir, "missing", "c")))
}

func TestCheckDiskSpace(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("disk usage not supported")
	}
	s, err := NewSession(t.TempDir())
	require.NoError(t, err)

	ok, msg, err := s.CheckDiskSpace(0)
	require.NoError(t, err)
	assert.True(t, ok, msg)

	ok, msg, err = s.CheckDiskSpace(1 << 30)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, msg, "insufficient disk space")
}

func TestEstimateStorageNeeds(t *testing.T) {
	assert.InDelta(t, 1.5, EstimateStorageNeeds(1<<30), 1e-12)
	assert.Zero(t, EstimateStorageNeeds(0))
}

func TestCleanupOldSessions(t *testing.T) {
	base := t.TempDir()
	stale := filepath.Join(base, sessionPrefix+"1_stale")
	fresh := filepath.Join(base, sessionPrefix+"2_fresh")
	unrelated := filepath.Join(base, "keep_me")
	for _, dir := range []string{stale, fresh, unrelated} {
		require.NoError(t, os.Mkdir(dir, 0755))
	}
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(unrelated, old, old))

	listed, err := ListOldSessions(base, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{stale}, listed)

	removed, err := CleanupOldSessions(base, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{stale}, removed)
	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
	assert.DirExists(t, unrelated)

	_, err = ListOldSessions(filepath.Join(base, "missing"), time.Hour)
	assert.Error(t, err)
}
