package docipc

import (
	"sync"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Port is one end of an entangled pair of communication endpoints, see
// [NewMessageChannel]. Values posted on a port are delivered to its peer.
//
// A Port is move-only: [Port.Take] transfers ownership to a new Port value,
// after which the original is unusable. This is how ports are handed across
// the service boundary, and into a script context, exactly once.
type Port struct {
	pipe  *portPipe
	id    uuid.UUID
	side  int
	moved bool
}

// portPipe is the shared state of an entangled pair.
type portPipe struct {
	queued   [2][]*structpb.Value
	handlers [2]func(*structpb.Value)
	mu       sync.Mutex
	closed   bool
}

// NewMessageChannel returns a new pair of entangled ports.
func NewMessageChannel() (*Port, *Port) {
	pipe := new(portPipe)
	return &Port{pipe: pipe, id: uuid.New(), side: 0},
		&Port{pipe: pipe, id: uuid.New(), side: 1}
}

// ID identifies this end of the pair. It is preserved by [Port.Take].
func (x *Port) ID() uuid.UUID {
	return x.id
}

// Consumed reports whether ownership of this port has been transferred.
func (x *Port) Consumed() bool {
	return x == nil || x.moved
}

// Take transfers ownership of the port to the returned value.
func (x *Port) Take() (*Port, error) {
	if x.Consumed() {
		return nil, ErrPortConsumed
	}
	x.moved = true
	return &Port{pipe: x.pipe, id: x.id, side: x.side}, nil
}

// PostMessage sends a copy of v to the peer port. Messages posted before the
// peer has started are queued, and delivered in order once it starts.
func (x *Port) PostMessage(v *structpb.Value) error {
	if x.Consumed() {
		return ErrPortConsumed
	}
	if v == nil {
		v = structpb.NewNullValue()
	} else {
		v = proto.Clone(v).(*structpb.Value)
	}
	p := x.pipe
	peer := 1 - x.side
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPortClosed
	}
	if h := p.handlers[peer]; h != nil {
		h(v)
		return nil
	}
	p.queued[peer] = append(p.queued[peer], v)
	return nil
}

// Start sets the handler for messages arriving at this port, and delivers
// any that were queued. The handler is called with the pipe locked, so it
// must not call back into either port of the pair. Calling Start again
// replaces the handler.
func (x *Port) Start(handler func(*structpb.Value)) error {
	if x.Consumed() {
		return ErrPortConsumed
	}
	p := x.pipe
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPortClosed
	}
	p.handlers[x.side] = handler
	if handler != nil {
		queued := p.queued[x.side]
		p.queued[x.side] = nil
		for _, v := range queued {
			handler(v)
		}
	}
	return nil
}

// Close disentangles the pair. Queued messages are discarded, and later
// posts from either end fail with [ErrPortClosed].
func (x *Port) Close() error {
	if x.Consumed() {
		return ErrPortConsumed
	}
	p := x.pipe
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.queued = [2][]*structpb.Value{}
	p.handlers = [2]func(*structpb.Value){}
	return nil
}

// Closed reports whether the pair has been closed.
func (x *Port) Closed() bool {
	if x == nil || x.pipe == nil {
		return true
	}
	x.pipe.mu.Lock()
	defer x.pipe.mu.Unlock()
	return x.pipe.closed
}
