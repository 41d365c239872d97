package gojahost

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
	"github.com/joeycumines/go-docipc"
	eventloop "github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/logiface"
)

const categoryHost = `host`

// Host is a document frame whose script context is a [goja.Runtime],
// driven by an event loop. It implements [docipc.FrameResolver] and
// [docipc.Frame].
//
// Apart from [Host.Do] and [Host.Submit], methods must be called from the
// loop goroutine.
type Host struct {
	loop     *eventloop.Loop
	runtime  *goja.Runtime
	logger   *logiface.Logger[logiface.Event]
	context  *scriptContext
	callback goja.Callable
	ports    map[*jsPort]struct{}
	module   string
	// depth is the number of open context scopes, the callback may only
	// be invoked within one
	depth     int
	activated bool
	detached  bool
}

var (
	_ docipc.FrameResolver = (*Host)(nil)
	_ docipc.Frame         = (*Host)(nil)
)

// New creates a new [Host] on loop, and enables require for its runtime,
// with the IPC module registered. Scripts use the module to register the
// dispatch callback:
//
//	const ipc = require('ipc');
//	ipc.register((internal, channel, ports, args, senderId) => { ... });
func New(loop *eventloop.Loop, opts ...Option) (*Host, error) {
	if loop == nil {
		return nil, errors.New("gojahost: loop must not be nil")
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	h := &Host{
		loop:    loop,
		runtime: cfg.runtime,
		logger:  cfg.logger,
		ports:   make(map[*jsPort]struct{}),
		module:  cfg.moduleName,
	}
	if h.runtime == nil {
		h.runtime = goja.New()
	}
	if !cfg.loggerSet {
		h.logger = docipc.DefaultLogger()
	}
	h.context = &scriptContext{host: h}

	registry := require.NewRegistry()
	registry.RegisterNativeModule(h.module, h.Require())
	h.registerConsole(registry)
	registry.Enable(h.runtime)
	h.enableConsole()

	return h, nil
}

// Runtime returns the hosted runtime.
func (h *Host) Runtime() *goja.Runtime {
	return h.runtime
}

// Loop returns the event loop driving the host.
func (h *Host) Loop() *eventloop.Loop {
	return h.loop
}

// Frame implements [docipc.FrameResolver]. The frame is absent once
// detached.
func (h *Host) Frame() (docipc.Frame, bool) {
	if h.detached {
		return nil, false
	}
	return h, true
}

// ScriptContext implements [docipc.Frame].
func (h *Host) ScriptContext() (docipc.ScriptContext, bool) {
	if h.detached {
		return nil, false
	}
	return h.context, true
}

// NotifyUserActivation implements [docipc.Frame].
func (h *Host) NotifyUserActivation() {
	if !h.activated {
		h.logger.Debug().
			Str(`category`, categoryHost).
			Log(`user activation`)
	}
	h.activated = true
}

// UserActivated reports whether the frame has received user activation.
func (h *Host) UserActivated() bool {
	return h.activated
}

// Registered reports whether a script has registered the dispatch callback.
func (h *Host) Registered() bool {
	return h.callback != nil
}

// RunScript evaluates src in the hosted runtime.
func (h *Host) RunScript(name, src string) (goja.Value, error) {
	return h.runtime.RunScript(name, src)
}

// Detach tears down the frame: the dispatch callback is dropped, and every
// entangled port is closed. The runtime itself is left intact.
func (h *Host) Detach() {
	if h.detached {
		return
	}
	h.detached = true
	h.callback = nil
	for p := range h.ports {
		p.close()
	}
}

// Submit schedules fn on the loop.
func (h *Host) Submit(fn func()) error {
	return h.loop.Submit(fn)
}

// Do runs fn on the loop, and waits for it to return. It must not be
// called from the loop goroutine.
func (h *Host) Do(ctx context.Context, fn func() error) error {
	errCh := make(chan error, 1)
	if err := h.loop.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				errCh <- fmt.Errorf("gojahost: panic: %v", r)
			}
		}()
		errCh <- fn()
	}); err != nil {
		return err
	}
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
