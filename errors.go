package docipc

import (
	"errors"
)

// Standard errors.
var (
	// ErrFrameDetached indicates the destination frame is not reachable,
	// e.g. because it has not been created yet, or was torn down.
	ErrFrameDetached = errors.New("docipc: frame detached")

	// ErrContextUnavailable indicates the frame exists, but has no script
	// context to deliver into.
	ErrContextUnavailable = errors.New("docipc: script context unavailable")

	// ErrNoDispatchCallback indicates the script context has not registered
	// its dispatch callback.
	ErrNoDispatchCallback = errors.New("docipc: dispatch callback not registered")

	// ErrPortConsumed is returned when a port is used after its ownership
	// has been transferred.
	ErrPortConsumed = errors.New("docipc: port already transferred")

	// ErrPortClosed is returned when posting to a closed port pair.
	ErrPortClosed = errors.New("docipc: port closed")

	// ErrHandleConsumed is returned when an output handle is unwrapped more
	// than once.
	ErrHandleConsumed = errors.New("docipc: output handle already consumed")

	// ErrInvalidHandle is returned when an output handle does not refer to a
	// usable, writable resource.
	ErrInvalidHandle = errors.New("docipc: invalid output handle")

	// ErrEndpointClosed is returned by endpoints that have been reset or
	// disconnected.
	ErrEndpointClosed = errors.New("docipc: endpoint closed")

	// ErrEndpointBound is returned when binding an endpoint that already has
	// a receiver.
	ErrEndpointBound = errors.New("docipc: endpoint already bound")

	// ErrServiceClosed is returned by Service.Bind after Service.Close.
	ErrServiceClosed = errors.New("docipc: service closed")
)

var errNilTransfer = errors.New("docipc: nil transferable message")
