package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"api.go", fsnotify.Write, true},
		{"go.mod", fsnotify.Create, true},
		{"api.go", fsnotify.Remove, true},
		{"api.go", fsnotify.Chmod, false},
		{"Chat.hub.ts", fsnotify.Write, false},
		{"notes.txt", fsnotify.Write, false},
	}
	for _, tt := range tests {
		e := fsnotify.Event{Name: filepath.Join("pkg", tt.name), Op: tt.op}
		assert.Equal(t, tt.want, relevant(e), "%s %s", tt.name, tt.op)
	}
}

func TestWatcherDebounces(t *testing.T) {
	dir := t.TempDir()
	var runs atomic.Int32
	done := make(chan struct{}, 8)

	w, err := New(func(ctx context.Context) ([]string, error) {
		runs.Add(1)
		done <- struct{}{}
		return nil, nil
	}, nil)
	require.NoError(t, err)
	w.Debounce = 50 * time.Millisecond
	require.NoError(t, w.Watch([]string{dir}))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- w.Run(ctx) }()

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "api.go"), []byte("package api // "+string(rune('a'+i))), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.ts"), []byte("x"), 0o644))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no run after source change")
	}
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())

	cancel()
	require.NoError(t, <-stopped)
}

func TestWatchReplacesDirs(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	w, err := New(func(context.Context) ([]string, error) { return nil, nil }, nil)
	require.NoError(t, err)
	defer w.watcher.Close()

	require.NoError(t, w.Watch([]string{a, a}))
	assert.Equal(t, []string{a}, w.dirs)

	require.NoError(t, w.Watch([]string{b}))
	assert.Equal(t, []string{b}, w.dirs)
	assert.Equal(t, []string{b}, w.watcher.WatchList())

	err = w.Watch([]string{filepath.Join(b, "missing")})
	assert.Error(t, err)
}
