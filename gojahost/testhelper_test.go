package gojahost

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-docipc"
	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for use by the loop and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// newTestLoop creates a new event loop, starts it, and registers cleanup.
func newTestLoop(t testing.TB) *eventloop.Loop {
	t.Helper()
	loop, err := eventloop.New()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return loop
}

// hostTestEnv is a running host, with a service delivering into it.
type hostTestEnv struct {
	t    *testing.T
	host *Host
	svc  *docipc.Service
	logs *syncBuffer
}

func newHostTestEnv(t *testing.T, opts ...Option) *hostTestEnv {
	t.Helper()
	logs := new(syncBuffer)
	logger := docipc.NewLogger(logs, logiface.LevelDebug)

	host, err := New(newTestLoop(t), append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, err)

	svc, err := docipc.New(host, docipc.WithLogger(logger))
	require.NoError(t, err)

	return &hostTestEnv{t: t, host: host, svc: svc, logs: logs}
}

// do runs fn on the loop, failing the test on error.
func (e *hostTestEnv) do(fn func() error) {
	e.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(e.t, e.host.Do(ctx, fn))
}

// run evaluates src on the loop.
func (e *hostTestEnv) run(src string) {
	e.t.Helper()
	e.do(func() error {
		_, err := e.host.RunScript(`test.js`, src)
		return err
	})
}

// eval evaluates src on the loop, and exports the result.
func (e *hostTestEnv) eval(src string) any {
	e.t.Helper()
	var out any
	e.do(func() error {
		v, err := e.host.RunScript(`test.js`, src)
		if err != nil {
			return err
		}
		out = v.Export()
		return nil
	})
	return out
}

// recordingScript registers a callback appending each call to globalThis.received.
const recordingScript = `
globalThis.received = [];
require('ipc').register((internal, channel, ports, args, senderId) => {
	received.push({internal, channel, ports: ports.length, args, senderId});
});
`
