package docipc

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

// dispatchCall records one invocation of the dispatch callback.
type dispatchCall struct {
	Arguments any
	Channel   string
	Ports     []any
	SenderID  int32
	Internal  bool
}

// fakeContext is a ScriptContext that records what it is asked to do.
type fakeContext struct {
	t           testing.TB
	onCall      func(call dispatchCall) error
	importErr   error
	entangleErr error
	calls       []dispatchCall
	entangled   []uuid.UUID
	depth       int
	enters      int
	exits       int
	noCallback  bool
}

func (c *fakeContext) Enter() func() {
	c.enters++
	c.depth++
	return func() {
		c.depth--
		c.exits++
	}
}

func (c *fakeContext) DispatchCallback() (DispatchFunc, bool) {
	if c.noCallback {
		return nil, false
	}
	return func(internal bool, channel string, ports []any, arguments any, senderID int32) error {
		if c.depth == 0 {
			c.t.Error("dispatch callback invoked outside of a context scope")
		}
		call := dispatchCall{
			Internal:  internal,
			Channel:   channel,
			Ports:     ports,
			Arguments: arguments,
			SenderID:  senderID,
		}
		c.calls = append(c.calls, call)
		if c.onCall != nil {
			return c.onCall(call)
		}
		return nil
	}, true
}

func (c *fakeContext) ImportValue(v *structpb.Value) (any, error) {
	if c.importErr != nil {
		return nil, c.importErr
	}
	return v.AsInterface(), nil
}

func (c *fakeContext) Entangle(port *Port) (any, error) {
	if c.entangleErr != nil && len(c.entangled) > 0 {
		return nil, c.entangleErr
	}
	moved, err := port.Take()
	if err != nil {
		return nil, err
	}
	c.entangled = append(c.entangled, moved.ID())
	return `entangled:` + moved.ID().String(), nil
}

// channels returns the channel of each recorded call, in order.
func (c *fakeContext) channels() []string {
	out := make([]string, len(c.calls))
	for i, call := range c.calls {
		out[i] = call.Channel
	}
	return out
}

type fakeFrame struct {
	ctx         *fakeContext
	activations int
	noContext   bool
}

func (f *fakeFrame) ScriptContext() (ScriptContext, bool) {
	if f.noContext {
		return nil, false
	}
	return f.ctx, true
}

func (f *fakeFrame) NotifyUserActivation() {
	f.activations++
}

// fakeHost resolves a frame that may be detached.
type fakeHost struct {
	frame    *fakeFrame
	detached bool
}

func (h *fakeHost) Frame() (Frame, bool) {
	if h.detached {
		return nil, false
	}
	return h.frame, true
}

// fakeEndpoint records bind and close events to a shared log.
type fakeEndpoint struct {
	events     *[]string
	receiver   Receiver
	disconnect func()
	bindErr    error
	name       string
	closed     bool
}

func newFakeEndpoint(events *[]string, name string) *fakeEndpoint {
	return &fakeEndpoint{events: events, name: name}
}

func (e *fakeEndpoint) Bind(r Receiver, onDisconnect func()) error {
	if e.bindErr != nil {
		return e.bindErr
	}
	if e.closed {
		return ErrEndpointClosed
	}
	if e.receiver != nil {
		return ErrEndpointBound
	}
	*e.events = append(*e.events, `bind `+e.name)
	e.receiver = r
	e.disconnect = onDisconnect
	return nil
}

func (e *fakeEndpoint) Close() error {
	if !e.closed {
		*e.events = append(*e.events, `close `+e.name)
		e.closed = true
	}
	return nil
}

type fakeSnapshotter struct {
	err   error
	data  string
	calls int
}

func (s *fakeSnapshotter) WriteHeapSnapshot(w io.Writer) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	_, err := w.Write([]byte(s.data))
	return err
}

// testEnv is a service wired to fakes.
type testEnv struct {
	svc  *Service
	host *fakeHost
	ctx  *fakeContext
	snap *fakeSnapshotter
	logs *bytes.Buffer
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	ctx := &fakeContext{t: t}
	env := &testEnv{
		host: &fakeHost{frame: &fakeFrame{ctx: ctx}},
		ctx:  ctx,
		snap: &fakeSnapshotter{data: `snapshot`},
		logs: new(bytes.Buffer),
	}
	opts = append([]Option{
		WithLogger(NewLogger(env.logs, logiface.LevelDebug)),
		WithSnapshotter(env.snap),
	}, opts...)
	svc, err := New(env.host, opts...)
	require.NoError(t, err)
	env.svc = svc
	return env
}

func mustValue(t testing.TB, v any) *structpb.Value {
	t.Helper()
	out, err := structpb.NewValue(v)
	require.NoError(t, err)
	return out
}

var errTest = errors.New("test error")
