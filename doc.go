// Package docipc delivers messages from a privileged controller process into
// a per-document scripting context, whose lifecycle does not align with that
// of the process.
//
// # Architecture
//
// A [Service] is bound to a controller channel via [Service.Bind], and
// receives calls through the [Receiver] interface. The destination is
// resolved through a [FrameResolver] on every delivery, since the document,
// and its [ScriptContext], are owned elsewhere.
//
// Three problems are handled together:
//
//   - Readiness: calls received before the document element exists are
//     buffered, and released in order by [Service.DidCreateDocumentElement],
//     before any later call is processed.
//   - Rebinding: at most one [Endpoint] is live. Binding a new one closes the
//     old one first, and an endpoint supplied before readiness is held until
//     the readiness transition. See [BindingState].
//   - Transfer: a [TransferableMessage] moves a serialized value, plus any
//     number of [Port] values, into the script context. Ports and output
//     handles are move-only; each is consumed exactly once.
//
// # Execution Model
//
// The service is single threaded. All calls must be made from the execution
// unit that runs the script context, e.g. an event loop from
// github.com/joeycumines/go-eventloop. The [Endpoint] implementation is
// responsible for serializing calls onto it, see the rendererrpc package.
//
// Delivery into the script context is scoped via [ScriptContext.Enter], and
// the scope is released on every path.
//
// # Errors
//
// Failures are local to the call that encountered them. Missing frames,
// contexts, and callbacks cause the message to be dropped (and logged),
// while [Service.TakeHeapSnapshot] reports failure to its caller.
package docipc
