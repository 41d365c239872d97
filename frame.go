package docipc

import (
	"google.golang.org/protobuf/types/known/structpb"
)

type (
	// Receiver is the set of calls the privileged controller may issue
	// through a bound [Endpoint]. Implementations are not safe for
	// concurrent use: endpoints must deliver calls one at a time, on the
	// execution unit that owns the destination script context.
	Receiver interface {
		// Message delivers a direct message. Fire-and-forget.
		Message(internal bool, channel string, arguments *structpb.Value, senderID int32)

		// ReceivePostMessage delivers a message carrying transferred ports.
		// The receiver takes ownership of message. Fire-and-forget.
		ReceivePostMessage(channel string, message *TransferableMessage)

		// NotifyUserActivation marks the frame as having received user
		// activation. Fire-and-forget.
		NotifyUserActivation()

		// TakeHeapSnapshot writes a heap snapshot to file, which the receiver
		// takes ownership of, then calls callback exactly once. This blocks
		// the calling execution unit.
		TakeHeapSnapshot(file OutputHandle, callback func(success bool))
	}

	// Endpoint is the receiving end of a controller channel, as supplied to
	// [Service.Bind]. Implementations must be comparable, and are typically
	// pointers.
	Endpoint interface {
		// Bind starts delivering calls to r. The endpoint must call
		// onDisconnect at most once, on the receiver's execution unit, if the
		// remote end closes the channel. Bind may be called at most once.
		Bind(r Receiver, onDisconnect func()) error

		// Close disconnects the endpoint. No calls are delivered to the
		// receiver once Close has returned.
		Close() error
	}

	// FrameResolver resolves the destination frame, which is owned
	// elsewhere. It is consulted on every use, and never cached.
	FrameResolver interface {
		Frame() (Frame, bool)
	}

	// FrameResolverFunc implements [FrameResolver].
	FrameResolverFunc func() (Frame, bool)

	// Frame is the document host for a script context.
	Frame interface {
		// ScriptContext returns the frame's script context, if it has one.
		ScriptContext() (ScriptContext, bool)

		// NotifyUserActivation records an interaction-equivalent user
		// activation.
		NotifyUserActivation()
	}

	// ScriptContext is the destination scripting environment.
	ScriptContext interface {
		// Enter establishes a scope for calling into the context. The
		// returned func exits the scope, and must always be called.
		Enter() (exit func())

		// DispatchCallback returns the callback the context registered during
		// its own initialization, if any.
		DispatchCallback() (DispatchFunc, bool)

		// ImportValue converts a structured value into a context-native
		// value.
		ImportValue(v *structpb.Value) (any, error)

		// Entangle takes ownership of port, binding it to this context, and
		// returns the context-native handle for it.
		Entangle(port *Port) (any, error)
	}

	// DispatchFunc is the well-known callback a script context registers to
	// receive messages. ports and arguments hold context-native values.
	DispatchFunc func(internal bool, channel string, ports []any, arguments any, senderID int32) error
)

// Frame implements [FrameResolver].
func (f FrameResolverFunc) Frame() (Frame, bool) {
	return f()
}
