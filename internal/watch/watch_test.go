package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlefko/semindex/internal/ignore"
)

func TestWatchInvokesOnChangeAfterDebounce(t *testing.T) {
	dir := t.TempDir()
	resolver := ignore.NewResolver(dir)
	require.NoError(t, resolver.Load())

	w := New(dir, resolver, nil)
	w.debounceTime = 50 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	changesCh := make(chan []string, 1)
	go func() {
		_ = w.Watch(ctx, func(paths []string) {
			select {
			case changesCh <- paths:
			default:
			}
		})
	}()

	// Give the watcher time to register the root directory.
	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(dir, "widget.go")
	require.NoError(t, os.WriteFile(target, []byte("package widget\n"), 0o644))

	select {
	case paths := <-changesCh:
		assert.Contains(t, paths, "widget.go")
	case <-time.After(1500 * time.Millisecond):
		t.Fatal("timed out waiting for onChange callback")
	}
}

func TestWatchStopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	resolver := ignore.NewResolver(dir)
	require.NoError(t, resolver.Load())

	w := New(dir, resolver, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func([]string) {})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for Watch to return after cancel")
	}
}
