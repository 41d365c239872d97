package rendererrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the Renderer service.
const ServiceName = `docipc.Renderer`

// Full method names of the Renderer service.
const (
	MethodMessage              = `/docipc.Renderer/Message`
	MethodReceivePostMessage   = `/docipc.Renderer/ReceivePostMessage`
	MethodNotifyUserActivation = `/docipc.Renderer/NotifyUserActivation`
	MethodTakeHeapSnapshot     = `/docipc.Renderer/TakeHeapSnapshot`
)

// RendererServer is the server API for the Renderer service.
type RendererServer interface {
	Message(context.Context, *MessageRequest) (*emptypb.Empty, error)
	ReceivePostMessage(context.Context, *PostMessageRequest) (*emptypb.Empty, error)
	NotifyUserActivation(context.Context, *emptypb.Empty) (*emptypb.Empty, error)
	TakeHeapSnapshot(context.Context, *HeapSnapshotRequest) (*wrapperspb.BoolValue, error)
}

// RendererServiceDesc is the [grpc.ServiceDesc] for the Renderer service.
// Its request types are not proto messages, so it may only be served over
// a channel using [Cloner].
var RendererServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RendererServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Message",
			Handler:    rendererMessageHandler,
		},
		{
			MethodName: "ReceivePostMessage",
			Handler:    rendererReceivePostMessageHandler,
		},
		{
			MethodName: "NotifyUserActivation",
			Handler:    rendererNotifyUserActivationHandler,
		},
		{
			MethodName: "TakeHeapSnapshot",
			Handler:    rendererTakeHeapSnapshotHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "docipc/renderer",
}

// RegisterRendererServer registers srv with s.
func RegisterRendererServer(s grpc.ServiceRegistrar, srv RendererServer) {
	s.RegisterService(&RendererServiceDesc, srv)
}

func rendererMessageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(MessageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RendererServer).Message(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodMessage,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RendererServer).Message(ctx, req.(*MessageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func rendererReceivePostMessageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PostMessageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RendererServer).ReceivePostMessage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodReceivePostMessage,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RendererServer).ReceivePostMessage(ctx, req.(*PostMessageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func rendererNotifyUserActivationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RendererServer).NotifyUserActivation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodNotifyUserActivation,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RendererServer).NotifyUserActivation(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func rendererTakeHeapSnapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HeapSnapshotRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RendererServer).TakeHeapSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: MethodTakeHeapSnapshot,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RendererServer).TakeHeapSnapshot(ctx, req.(*HeapSnapshotRequest))
	}
	return interceptor(ctx, in, info, handler)
}
