package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher creates watcher successfully with valid directories
// - NewFileWatcher returns error with invalid directory
// - Single file change fires callback after debounce
// - Multiple file changes are batched into one callback
// - Same file modified twice appears once in the batch (deduplication)
// - Extension filtering (only .py files trigger callback)
// - Pause accumulates, Resume fires the accumulated batch
// - File created in a freshly added directory still triggers callback
// - Stop() is idempotent and safe without Start()
// - Context cancellation stops the watch goroutine

const testDebounce = 50 * time.Millisecond

// batchRecorder collects callback batches for assertions.
type batchRecorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (br *batchRecorder) record(files []string) {
	br.mu.Lock()
	defer br.mu.Unlock()
	br.batches = append(br.batches, files)
}

func (br *batchRecorder) count() int {
	br.mu.Lock()
	defer br.mu.Unlock()
	return len(br.batches)
}

func (br *batchRecorder) last() []string {
	br.mu.Lock()
	defer br.mu.Unlock()
	if len(br.batches) == 0 {
		return nil
	}
	return br.batches[len(br.batches)-1]
}

func (br *batchRecorder) waitFor(t *testing.T, n int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for br.count() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d batches, have %d", n, br.count())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func startWatcher(t *testing.T, dir string) (FileWatcher, *batchRecorder) {
	t.Helper()

	fw, err := NewFileWatcher([]string{dir}, []string{".py"}, testDebounce)
	require.NoError(t, err)
	t.Cleanup(func() { fw.Stop() })

	br := &batchRecorder{}
	require.NoError(t, fw.Start(context.Background(), br.record))
	return fw, br
}

func TestNewFileWatcher_Success(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{t.TempDir()}, []string{".py"}, testDebounce)
	require.NoError(t, err)
	require.NotNil(t, fw)
	require.NoError(t, fw.Stop())
}

func TestNewFileWatcher_InvalidDirectory(t *testing.T) {
	t.Parallel()

	nonexistent := filepath.Join(t.TempDir(), "nonexistent")
	fw, err := NewFileWatcher([]string{nonexistent}, []string{".py"}, testDebounce)
	assert.Error(t, err)
	assert.Nil(t, fw)
}

func TestFileWatcher_SingleFileChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, br := startWatcher(t, dir)

	target := filepath.Join(dir, "module.py")
	require.NoError(t, os.WriteFile(target, []byte("def f(): pass\n"), 0644))

	br.waitFor(t, 1)
	assert.Equal(t, []string{target}, br.last())
}

func TestFileWatcher_BatchingAndDeduplication(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, br := startWatcher(t, dir)

	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	require.NoError(t, os.WriteFile(a, []byte("x = 1\n"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("y = 2\n"), 0644))
	require.NoError(t, os.WriteFile(a, []byte("x = 3\n"), 0644))

	br.waitFor(t, 1)
	assert.ElementsMatch(t, []string{a, b}, br.last(),
		"rapid changes collapse into one deduplicated batch")
}

func TestFileWatcher_ExtensionFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, br := startWatcher(t, dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("text"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.json"), []byte("{}"), 0644))

	time.Sleep(4 * testDebounce)
	assert.Zero(t, br.count(), "non-Python files never fire the callback")
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fw, br := startWatcher(t, dir)

	fw.Pause()

	target := filepath.Join(dir, "paused.py")
	require.NoError(t, os.WriteFile(target, []byte("def f(): pass\n"), 0644))

	time.Sleep(4 * testDebounce)
	assert.Zero(t, br.count(), "paused watcher accumulates without firing")

	fw.Resume()
	br.waitFor(t, 1)
	assert.Contains(t, br.last(), target)
}

func TestFileWatcher_NewDirectoryWatched(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, br := startWatcher(t, dir)

	subDir := filepath.Join(dir, "pkg")
	require.NoError(t, os.Mkdir(subDir, 0755))
	// Give the watcher a moment to pick up the new directory.
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(subDir, "mod.py")
	require.NoError(t, os.WriteFile(target, []byte("def g(): pass\n"), 0644))

	br.waitFor(t, 1)
	assert.Contains(t, br.last(), target)
}

func TestFileWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	fw, err := NewFileWatcher([]string{t.TempDir()}, []string{".py"}, testDebounce)
	require.NoError(t, err)

	require.NoError(t, fw.Stop())
	require.NoError(t, fw.Stop(), "second Stop is a no-op")
}

func TestFileWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fw, err := NewFileWatcher([]string{dir}, []string{".py"}, testDebounce)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	br := &batchRecorder{}
	require.NoError(t, fw.Start(ctx, br.record))

	cancel()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.py"), []byte("x = 1\n"), 0644))
	time.Sleep(4 * testDebounce)
	assert.Zero(t, br.count(), "cancelled watcher delivers nothing")

	require.NoError(t, fw.Stop())
}
