// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

const testDebounce = 50 * time.Millisecond

// startWatcher runs w in the background and returns a function that cancels
// it and returns the result of Run.
func startWatcher(t *testing.T, w *Watcher) (stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("watcher did not become ready")
	}

	return func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not stop")
			return nil
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatcher_DebouncesBurstOfChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	var calls atomic.Int32
	called := make(chan struct{}, 10)
	w := New(dir, testDebounce, func() error {
		calls.Add(1)
		called <- struct{}{}
		return nil
	}, zap.NewNop())
	stop := startWatcher(t, w)

	for _, name := range []string{"a.json", "b.json", "blit"} {
		writeFile(t, filepath.Join(dir, name), "{}")
	}

	select {
	case <-called:
	case <-time.After(5 * time.Second):
		t.Fatal("fn was not called after changes")
	}
	time.Sleep(4 * testDebounce)

	require.NoError(t, stop())
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresOutputDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	out := filepath.Join(dir, "dist")
	var calls atomic.Int32
	w := New(dir, testDebounce, func() error {
		calls.Add(1)
		return nil
	}, nil, out)
	stop := startWatcher(t, w)

	require.NoError(t, os.MkdirAll(filepath.Join(out, "post"), 0o755))
	require.NoError(t, os.RemoveAll(out))
	time.Sleep(6 * testDebounce)

	require.NoError(t, stop())
	assert.Zero(t, calls.Load())
}

func TestWatcher_ReturnsCallbackError(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	errBoom := errors.New("boom")
	w := New(dir, testDebounce, func() error { return errBoom }, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	<-w.Ready()

	writeFile(t, filepath.Join(dir, "a.json"), "{}")

	select {
	case err := <-done:
		assert.ErrorIs(t, err, errBoom)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not return the callback error")
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := New(filepath.Join(t.TempDir(), "missing"), 0, func() error { return nil }, nil)
	err := w.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching")
}

func TestWatcher_RunAgainAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	called := make(chan struct{}, 10)
	w := New(dir, testDebounce, func() error {
		called <- struct{}{}
		return nil
	}, nil)

	require.NoError(t, startWatcher(t, w)())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// Ready stays closed, so wait for the watch to be registered.
	time.Sleep(2 * testDebounce)

	writeFile(t, filepath.Join(dir, "a.json"), "{}")
	select {
	case <-called:
	case err := <-done:
		t.Fatalf("second run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("fn was not called on the second run")
	}

	cancel()
	require.NoError(t, <-done)
}
