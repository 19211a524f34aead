package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loadEvent struct {
	res *Result
	err error
}

func waitLoad(t *testing.T, events <-chan loadEvent) loadEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a reload")
		return loadEvent{}
	}
}

func startWatcher(t *testing.T, w *Watcher) <-chan loadEvent {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan loadEvent, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(res *Result, err error) {
			events <- loadEvent{res, err}
		})
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return events
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "api.raml")
	part := filepath.Join(dir, "parts", "part.yaml")
	writeFile(t, root, "title: watched\npart: !include parts/part.yaml\n")
	writeFile(t, part, "value: 1\n")

	l, err := New()
	require.NoError(t, err)
	w, err := NewWatcher(l, root, 20*time.Millisecond)
	require.NoError(t, err)
	events := startWatcher(t, w)

	first := waitLoad(t, events)
	require.NoError(t, first.err)
	assert.JSONEq(t, `{"title": "watched", "part": {"value": 1}}`, first.res.Root.String())
	assert.Len(t, w.Files(), 2)

	require.NoError(t, os.WriteFile(part, []byte("value: 2\n"), 0o600))

	second := waitLoad(t, events)
	require.NoError(t, second.err)
	assert.JSONEq(t, `{"title": "watched", "part": {"value": 2}}`, second.res.Root.String())
}

func TestWatcherRecoversFromBrokenRoot(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "api.raml")
	writeFile(t, root, "title: [broken\n")

	l, err := New()
	require.NoError(t, err)
	w, err := NewWatcher(l, root, 20*time.Millisecond)
	require.NoError(t, err)
	events := startWatcher(t, w)

	first := waitLoad(t, events)
	require.Error(t, first.err)
	assert.Nil(t, first.res)

	require.NoError(t, os.WriteFile(root, []byte("title: fixed\n"), 0o600))

	second := waitLoad(t, events)
	require.NoError(t, second.err)
	assert.JSONEq(t, `{"title": "fixed"}`, second.res.Root.String())
}

func TestNewWatcherErrors(t *testing.T) {
	_, err := NewWatcher(nil, "api.raml", 0)
	assert.Error(t, err)

	l, err := New()
	require.NoError(t, err)
	_, err = NewWatcher(l, "https://example.com/api.raml", 0)
	assert.Error(t, err)

	w, err := NewWatcher(l, "api.raml", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounceInterval, w.debounce)
}

func TestWatcherAlreadyRunning(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "api.raml")
	writeFile(t, root, "title: once\n")

	l, err := New()
	require.NoError(t, err)
	w, err := NewWatcher(l, root, 0)
	require.NoError(t, err)
	events := startWatcher(t, w)
	waitLoad(t, events)

	err = w.Watch(context.Background(), nil)
	assert.ErrorIs(t, err, ErrWatcherRunning)
}
