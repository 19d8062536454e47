package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherRebuildsOnScriptChange(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "BrowserBox.html")
	require.NoError(t, os.WriteFile(target, []byte("<html></html>"), 0644))

	rebuilt := make(chan struct{}, 8)
	w, err := New(dir, ".py", target, 50*time.Millisecond, func() {
		rebuilt <- struct{}{}
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.py"), []byte("print('x')\n"), 0644))

	select {
	case <-rebuilt:
	case <-time.After(5 * time.Second):
		t.Fatal("expected a rebuild after a script change")
	}

	stats := w.GetStats()
	assert.GreaterOrEqual(t, stats.Events, 1)
	assert.GreaterOrEqual(t, stats.Rebuilds, 1)
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "BrowserBox.html")
	require.NoError(t, os.WriteFile(target, []byte("<html></html>"), 0644))

	rebuilt := make(chan struct{}, 8)
	w, err := New(dir, ".py", target, 50*time.Millisecond, func() {
		rebuilt <- struct{}{}
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("irrelevant"), 0644))

	select {
	case <-rebuilt:
		t.Fatal("unrelated file change must not trigger a rebuild")
	case <-time.After(500 * time.Millisecond):
	}
}

func TestStopAfterFailedStartDoesNotBlock(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "missing"), ".py", filepath.Join(dir, "BrowserBox.html"), 50*time.Millisecond, func() {}, nil)
	require.NoError(t, err)

	require.Error(t, w.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked after a failed Start")
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, ".py", filepath.Join(dir, "BrowserBox.html"), 50*time.Millisecond, func() {}, nil)
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}
