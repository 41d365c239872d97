package rendererrpc

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-docipc"
	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

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

// onLoop runs fn on loop, and waits for it.
func onLoop(t testing.TB, loop *eventloop.Loop, fn func()) {
	t.Helper()
	done := make(chan struct{})
	require.NoError(t, loop.Submit(func() {
		defer close(done)
		fn()
	}))
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal(`timed out waiting for the loop`)
	}
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
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

// recordingReceiver is a docipc.Receiver that records calls, as strings.
type recordingReceiver struct {
	mu       sync.Mutex
	events   []string
	messages []*docipc.TransferableMessage
	snapshot bool
}

var _ docipc.Receiver = (*recordingReceiver)(nil)

func (r *recordingReceiver) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recordingReceiver) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingReceiver) Message(internal bool, channel string, arguments *structpb.Value, senderID int32) {
	r.record(`message %v %s %v %d`, internal, channel, arguments.AsInterface(), senderID)
}

func (r *recordingReceiver) ReceivePostMessage(channel string, message *docipc.TransferableMessage) {
	r.mu.Lock()
	r.messages = append(r.messages, message)
	r.mu.Unlock()
	r.record(`post %s %d`, channel, len(message.Ports))
}

func (r *recordingReceiver) NotifyUserActivation() {
	r.record(`activation`)
}

func (r *recordingReceiver) TakeHeapSnapshot(file docipc.OutputHandle, callback func(success bool)) {
	r.record(`snapshot`)
	if file != nil {
		if w, err := file.Unwrap(); err == nil {
			_ = w.Close()
		}
	}
	r.mu.Lock()
	success := r.snapshot
	r.mu.Unlock()
	callback(success)
}

// pipeTestEnv is a running loop, with a connected pipe.
type pipeTestEnv struct {
	loop   *eventloop.Loop
	client *Client
	ep     *Endpoint
	logs   *syncBuffer
}

func newPipeTestEnv(t *testing.T, opts ...Option) *pipeTestEnv {
	t.Helper()
	logs := new(syncBuffer)
	loop := newTestLoop(t)
	client, ep, err := NewPipe(loop, append([]Option{
		WithLogger(docipc.NewLogger(logs, logiface.LevelTrace)),
	}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return &pipeTestEnv{loop: loop, client: client, ep: ep, logs: logs}
}

// bind binds the endpoint to r on the loop, returning a channel closed on
// disconnect.
func (e *pipeTestEnv) bind(t *testing.T, r docipc.Receiver) <-chan struct{} {
	t.Helper()
	disconnected := make(chan struct{})
	var once sync.Once
	var err error
	onLoop(t, e.loop, func() {
		err = e.ep.Bind(r, func() { once.Do(func() { close(disconnected) }) })
	})
	require.NoError(t, err)
	return disconnected
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
