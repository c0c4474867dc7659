package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.ayling.dev/lrcside/watch"
)

func TestWatch(t *testing.T) {
	dir := t.TempDir()

	paths := make(chan string, 10)
	w := watch.Watcher{
		Debounce: 50 * time.Millisecond,
		Handler:  func(path string) { paths <- path },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, dir) }()

	// give the watch a moment to attach
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not audio"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Song.flac"), []byte("pcm"), 0644))

	assert.Equal(t, filepath.Join(dir, "Song.flac"), waitPath(t, paths))
	assertQuiet(t, paths)

	cancel()
	require.NoError(t, <-done)
}

func TestWatchNewDir(t *testing.T) {
	dir := t.TempDir()

	paths := make(chan string, 10)
	w := watch.Watcher{
		Debounce: 50 * time.Millisecond,
		Handler:  func(path string) { paths <- path },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, dir) }()

	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(dir, "new album")
	require.NoError(t, os.Mkdir(sub, os.ModePerm))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "01 - Track.opus"), []byte("pcm"), 0644))

	assert.Equal(t, filepath.Join(sub, "01 - Track.opus"), waitPath(t, paths))

	cancel()
	require.NoError(t, <-done)
}

func TestWatchDebounce(t *testing.T) {
	dir := t.TempDir()

	paths := make(chan string, 10)
	w := watch.Watcher{
		Debounce: 200 * time.Millisecond,
		Handler:  func(path string) { paths <- path },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, dir) }()

	time.Sleep(100 * time.Millisecond)

	// a burst of writes to one path collapses into one call
	path := filepath.Join(dir, "Song.mp3")
	for range 5 {
		require.NoError(t, os.WriteFile(path, []byte("pcm"), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	assert.Equal(t, path, waitPath(t, paths))
	assertQuiet(t, paths)

	cancel()
	require.NoError(t, <-done)
}

func TestWatchMissingDir(t *testing.T) {
	var w watch.Watcher
	w.Handler = func(string) {}

	err := w.Watch(context.Background(), "/definitely/not/here")
	require.Error(t, err)
}

func waitPath(t *testing.T, paths <-chan string) string {
	t.Helper()
	select {
	case p := <-paths:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("no path in time")
		return ""
	}
}

func assertQuiet(t *testing.T, paths <-chan string) {
	t.Helper()
	select {
	case p := <-paths:
		t.Fatalf("unexpected extra path %q", p)
	case <-time.After(300 * time.Millisecond):
	}
}
