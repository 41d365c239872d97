package rendererrpc

import (
	"sync"

	"github.com/google/uuid"
	"github.com/joeycumines/go-docipc"
	"github.com/joeycumines/logiface"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const categoryRPC = `rpc`

// Loop is the subset of the event loop API used by an [Endpoint].
type Loop interface {
	Submit(func()) error
}

// Endpoint is the receiving end of a pipe, see [NewPipe]. It implements
// [docipc.Endpoint].
//
// Calls are delivered to the bound receiver on the loop, one task per
// call, in the order the client made them. Calls made before [Endpoint.Bind]
// are held until it.
type Endpoint struct {
	loop         Loop
	logger       *logiface.Logger[logiface.Event]
	receiver     docipc.Receiver
	onDisconnect func()
	backlog      []call
	mu           sync.Mutex
	id           uuid.UUID
	bound        bool
	closed       bool
	remoteClosed bool
}

// call is one inbound call. Exactly one of run or drop is invoked.
type call struct {
	run  func(docipc.Receiver)
	drop func()
}

var _ docipc.Endpoint = (*Endpoint)(nil)

func newEndpoint(loop Loop, logger *logiface.Logger[logiface.Event]) *Endpoint {
	id := uuid.New()
	return &Endpoint{
		loop:   loop,
		logger: logger.Clone().Str(`endpoint`, id.String()).Logger(),
		id:     id,
	}
}

// ID identifies the endpoint, in logs.
func (x *Endpoint) ID() uuid.UUID {
	return x.id
}

// Bind implements [docipc.Endpoint]. Held calls are scheduled for
// delivery, after which, if the client has closed, onDisconnect is
// scheduled.
func (x *Endpoint) Bind(r docipc.Receiver, onDisconnect func()) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return docipc.ErrEndpointClosed
	}
	if x.bound {
		return docipc.ErrEndpointBound
	}
	x.bound = true
	x.receiver = r
	x.onDisconnect = onDisconnect

	backlog := x.backlog
	x.backlog = nil
	if len(backlog) != 0 {
		x.logger.Debug().
			Str(`category`, categoryRPC).
			Int(`calls`, len(backlog)).
			Log(`delivering held calls`)
	}
	for i, c := range backlog {
		if err := x.submitLocked(c); err != nil {
			for _, c := range backlog[i+1:] {
				c.drop()
			}
			return err
		}
	}
	if x.remoteClosed {
		x.submitDisconnectLocked()
	}
	return nil
}

// Close implements [docipc.Endpoint]. Held calls are dropped, and later
// calls from the client fail with [codes.Unavailable].
func (x *Endpoint) Close() error {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return nil
	}
	x.closed = true
	x.receiver = nil
	x.onDisconnect = nil
	backlog := x.backlog
	x.backlog = nil
	x.mu.Unlock()

	for _, c := range backlog {
		c.drop()
	}
	x.logger.Debug().
		Str(`category`, categoryRPC).
		Log(`endpoint closed`)
	return nil
}

// dispatch schedules c, or holds it if the endpoint is unbound. If an error
// is returned, c has been dropped.
func (x *Endpoint) dispatch(c call) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed || x.remoteClosed {
		c.drop()
		return status.Error(codes.Unavailable, docipc.ErrEndpointClosed.Error())
	}
	if !x.bound {
		x.backlog = append(x.backlog, c)
		return nil
	}
	return x.submitLocked(c)
}

func (x *Endpoint) submitLocked(c call) error {
	if err := x.loop.Submit(func() { x.deliver(c) }); err != nil {
		c.drop()
		return status.Error(codes.Unavailable, err.Error())
	}
	return nil
}

// deliver runs on the loop.
func (x *Endpoint) deliver(c call) {
	x.mu.Lock()
	r := x.receiver
	x.mu.Unlock()
	if r == nil {
		c.drop()
		return
	}
	c.run(r)
}

// disconnect is called when the client closes.
func (x *Endpoint) disconnect() {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.remoteClosed {
		return
	}
	x.remoteClosed = true
	if x.bound && !x.closed {
		x.submitDisconnectLocked()
	}
}

func (x *Endpoint) submitDisconnectLocked() {
	fn := x.onDisconnect
	if fn == nil {
		return
	}
	if err := x.loop.Submit(func() {
		x.mu.Lock()
		closed := x.closed
		x.mu.Unlock()
		if !closed {
			fn()
		}
	}); err != nil {
		x.logger.Warning().
			Str(`category`, categoryRPC).
			Err(err).
			Log(`unable to deliver disconnect`)
	}
}
