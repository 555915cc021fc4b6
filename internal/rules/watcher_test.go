package rules

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

	"hookify/pkg/hooklog"
)

func TestWatcherFiresAfterBurst(t *testing.T) {
	dir := t.TempDir()

	var fires atomic.Int32
	w, err := NewWatcher(hooklog.Nop(), 50*time.Millisecond, func() { fires.Add(1) })
	require.NoError(t, err)
	w.Watch(dir)
	w.Start(context.Background())
	defer w.Stop()

	content := []byte("---\nname: x\npattern: foo\n---\n")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "hookify.x.local.md"), content, 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return fires.Load() >= 1 }, 2*time.Second, 10*time.Millisecond,
		"a settled burst must trigger the callback")

	time.Sleep(200 * time.Millisecond)
	assert.LessOrEqual(t, fires.Load(), int32(2), "rapid saves are batched, not replayed")
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()

	var fires atomic.Int32
	w, err := NewWatcher(hooklog.Nop(), 20*time.Millisecond, func() { fires.Add(1) })
	require.NoError(t, err)
	w.Watch(dir)
	w.Start(context.Background())
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "noise.txt"), []byte("x"), 0o644))
	time.Sleep(150 * time.Millisecond)
	assert.Zero(t, fires.Load())
}

func TestWatcherLifecycle(t *testing.T) {
	w, err := NewWatcher(hooklog.Nop(), 0, func() {})
	require.NoError(t, err)

	assert.NotPanics(t, func() { w.Watch(filepath.Join(t.TempDir(), "missing")) })

	w.Start(context.Background())
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}

func TestRuleFileEvent(t *testing.T) {
	assert.True(t, ruleFileEvent(fsnotify.Event{Name: "a.md", Op: fsnotify.Write}))
	assert.True(t, ruleFileEvent(fsnotify.Event{Name: "a.md", Op: fsnotify.Create}))
	assert.True(t, ruleFileEvent(fsnotify.Event{Name: "a.md", Op: fsnotify.Remove}))
	assert.False(t, ruleFileEvent(fsnotify.Event{Name: "a.md", Op: fsnotify.Chmod}))
	assert.False(t, ruleFileEvent(fsnotify.Event{Name: "a.txt", Op: fsnotify.Write}))
}
