// Package rendererrpc is the controller-facing transport for a
// [docipc.Service]: the docipc.Renderer gRPC service, served over an
// in-process channel driven by the service's event loop.
//
// [NewPipe] creates a connected [Client] and [Endpoint], like the two ends
// of a message pipe. The Endpoint is handed to [docipc.Service.Bind]; the
// Client is the controller's handle. Calls made on the client before the
// endpoint is bound are held by the endpoint, and delivered in order once
// it is.
//
// Requests carry move-only values ([docipc.TransferableMessage],
// [docipc.FileHandle]). The channel's [inprocgrpc.Cloner] transfers their
// ownership rather than copying them, so a message or handle passed to
// the client must not be used by the caller afterwards.
package rendererrpc
