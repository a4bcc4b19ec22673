package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/viewc/internal/adapters/watcher"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/viewc/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func nextEvent(t *testing.T, events <-chan ports.WatchEvent) ports.WatchEvent {
	t.Helper()
	select {
	case e, ok := <-events:
		require.True(t, ok, "watcher stopped before delivering an event")
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a watch event")
		return ports.WatchEvent{}
	}
}

func TestWatcher_DeliversDebouncedEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), domain.DirPerm))
	require.NoError(t, os.MkdirAll(filepath.Join(root, domain.ViewcDirName), domain.DirPerm))

	w, err := watcher.NewWatcher(mockLogger, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	require.NoError(t, w.Start(ctx, root))
	defer func() { _ = w.Stop() }()

	events := make(chan ports.WatchEvent, 16)
	go func() {
		defer close(events)
		for e := range w.Events() {
			events <- e
		}
	}()

	// Writes below the metadata directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(root, domain.ViewcDirName, "x.json"), []byte("{}"), domain.FilePerm))

	target := filepath.Join(root, "src", "Widget.tmpl")
	require.NoError(t, os.WriteFile(target, []byte("<p>hi</p>"), domain.FilePerm))

	e := nextEvent(t, events)
	assert.Equal(t, target, e.Path)
}

func TestWatcher_StopEndsEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	w, err := watcher.NewWatcher(mocks.NewMockLogger(ctrl), 10*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context(), t.TempDir()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range w.Events() {
		}
	}()

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events iterator did not end after Stop")
	}
}

func TestWatcher_ContextCancelStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	w, err := watcher.NewWatcher(mocks.NewMockLogger(ctrl), 10*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	require.NoError(t, w.Start(ctx, t.TempDir()))
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range w.Events() {
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events iterator did not end after cancel")
	}
}
