package docipc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// takeSnapshot calls TakeHeapSnapshot, and returns the single result.
func takeSnapshot(t *testing.T, svc *Service, file OutputHandle) bool {
	t.Helper()
	var results []bool
	svc.TakeHeapSnapshot(file, func(success bool) { results = append(results, success) })
	require.Len(t, results, 1)
	return results[0]
}

func TestService_takeHeapSnapshot(t *testing.T) {
	env := newTestEnv(t)
	name := filepath.Join(t.TempDir(), `heap.out`)
	f, err := os.Create(name)
	require.NoError(t, err)

	assert.True(t, takeSnapshot(t, env.svc, NewFileHandle(f)))
	assert.Equal(t, 1, env.snap.calls)

	b, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, `snapshot`, string(b))

	// ownership was taken, and the file closed
	_, err = f.Write([]byte(`x`))
	require.ErrorIs(t, err, os.ErrClosed)
}

func TestService_takeHeapSnapshotInvalidHandle(t *testing.T) {
	env := newTestEnv(t)

	assert.False(t, takeSnapshot(t, env.svc, NewFileHandle(nil)))
	assert.False(t, takeSnapshot(t, env.svc, nil))
	assert.Equal(t, 0, env.snap.calls)
	assert.Contains(t, env.logs.String(), `unable to get the file handle`)
}

func TestService_takeHeapSnapshotConsumedHandle(t *testing.T) {
	env := newTestEnv(t)
	f, err := os.Create(filepath.Join(t.TempDir(), `heap.out`))
	require.NoError(t, err)
	h := NewFileHandle(f)
	moved, err := h.Take()
	require.NoError(t, err)
	defer moved.Close()

	assert.False(t, takeSnapshot(t, env.svc, h))
	assert.Equal(t, 0, env.snap.calls)
}

func TestService_takeHeapSnapshotFailure(t *testing.T) {
	env := newTestEnv(t)
	env.snap.err = errTest
	f, err := os.Create(filepath.Join(t.TempDir(), `heap.out`))
	require.NoError(t, err)

	assert.False(t, takeSnapshot(t, env.svc, NewFileHandle(f)))
	assert.Equal(t, 1, env.snap.calls)
	assert.Contains(t, env.logs.String(), `heap snapshot failed`)
	_, err = f.Write([]byte(`x`))
	require.ErrorIs(t, err, os.ErrClosed)
}

func TestService_takeHeapSnapshotNilCallback(t *testing.T) {
	env := newTestEnv(t)
	env.svc.TakeHeapSnapshot(nil, nil)
	assert.Equal(t, 0, env.snap.calls)
}

func TestFileHandle_unwrapOnce(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), `heap.out`))
	require.NoError(t, err)
	h := NewFileHandle(f)

	w, err := h.Unwrap()
	require.NoError(t, err)
	defer w.Close()
	assert.True(t, h.Consumed())

	_, err = h.Unwrap()
	require.ErrorIs(t, err, ErrHandleConsumed)
	require.NoError(t, h.Close())
}

func TestFileHandle_close(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), `heap.out`))
	require.NoError(t, err)
	h := NewFileHandle(f)
	require.NoError(t, h.Close())
	assert.True(t, h.Consumed())
	_, err = f.Write([]byte(`x`))
	require.ErrorIs(t, err, os.ErrClosed)
}

func TestHeapProfileSnapshotter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HeapProfileSnapshotter{}.WriteHeapSnapshot(&buf))
	assert.NotZero(t, buf.Len())
}
