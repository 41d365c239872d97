package docipc

import (
	"errors"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// Service delivers calls from the privileged controller into a document's
// script context, whose lifetime it does not control.
//
// Calls arriving before the document exists are buffered, as are channel
// binds, and both are released on [Service.DidCreateDocumentElement].
//
// A Service is not safe for concurrent use. Every method, including the
// [Receiver] methods invoked by a bound [Endpoint], must be called from the
// single execution unit (typically an event loop) that runs the script
// context.
type Service struct {
	frames      FrameResolver
	logger      *logiface.Logger[logiface.Event]
	snapshotter Snapshotter
	dropLimiter *catrate.Limiter
	binding     channelBinding
	queue       pendingQueue
	gate        readinessGate
	draining    bool
	closed      bool
}

var _ Receiver = (*Service)(nil)

// New creates a new [Service], delivering to the frame resolved by frames.
func New(frames FrameResolver, opts ...Option) (*Service, error) {
	if frames == nil {
		return nil, errors.New("docipc: frame resolver must not be nil")
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	x := &Service{
		frames:      frames,
		logger:      cfg.logger,
		snapshotter: cfg.snapshotter,
		dropLimiter: cfg.dropLimiter,
	}
	x.binding.receiver = x
	x.binding.onInstall = x.logInstall
	return x, nil
}

// Bind establishes or replaces the receive channel. Before the document
// exists, ep is held, and installed on the readiness transition. Otherwise,
// any live endpoint is closed, and ep installed immediately.
func (x *Service) Bind(ep Endpoint) error {
	if ep == nil {
		return errors.New("docipc: endpoint must not be nil")
	}
	if x.closed {
		_ = ep.Close()
		return ErrServiceClosed
	}
	if !x.gate.ready() {
		x.logger.Debug().
			Str(`category`, categoryBinding).
			Log(`holding endpoint until document element is created`)
	}
	return x.binding.bind(ep, x.gate.ready())
}

// DidCreateDocumentElement is the readiness transition. The first call
// installs any pending endpoint, then synchronously delivers every buffered
// message, in order. Later calls have no effect.
func (x *Service) DidCreateDocumentElement() {
	if x.closed || !x.gate.markReady() {
		return
	}
	_ = x.binding.activatePending()
	x.processPendingMessages()
}

// Close tears the service down: the channel binding is reset, buffered
// messages are dropped, and later calls are ignored.
func (x *Service) Close() error {
	if x.closed {
		return nil
	}
	x.closed = true
	x.binding.reset()
	x.queue.discard()
	return nil
}

// Readiness returns the state of the readiness gate.
func (x *Service) Readiness() Readiness {
	return x.gate.state
}

// BindingState returns the state of the channel binding.
func (x *Service) BindingState() BindingState {
	return x.binding.state()
}

// Pending returns the number of buffered messages.
func (x *Service) Pending() int {
	return x.queue.len()
}

func (x *Service) logInstall(ep Endpoint, err error) {
	if err != nil {
		x.logger.Err().
			Str(`category`, categoryBinding).
			Err(err).
			Log(`failed to bind endpoint`)
		return
	}
	x.logger.Debug().
		Str(`category`, categoryBinding).
		Log(`endpoint bound`)
}
