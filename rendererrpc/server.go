package rendererrpc

import (
	"context"

	"github.com/joeycumines/go-docipc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// server routes Renderer calls to an [Endpoint]. Handlers run off the
// loop; only the delivered calls run on it.
type server struct {
	ep *Endpoint
}

var _ RendererServer = (*server)(nil)

func (s *server) Message(_ context.Context, req *MessageRequest) (*emptypb.Empty, error) {
	if err := s.ep.dispatch(call{
		run: func(r docipc.Receiver) {
			r.Message(req.Internal, req.Channel, req.Arguments, req.SenderID)
		},
		drop: func() {},
	}); err != nil {
		return nil, err
	}
	return new(emptypb.Empty), nil
}

func (s *server) ReceivePostMessage(_ context.Context, req *PostMessageRequest) (*emptypb.Empty, error) {
	msg := req.Message
	if msg == nil {
		return nil, status.Error(codes.InvalidArgument, `message is required`)
	}
	if err := s.ep.dispatch(call{
		run: func(r docipc.Receiver) {
			r.ReceivePostMessage(req.Channel, msg)
		},
		drop: msg.Discard,
	}); err != nil {
		return nil, err
	}
	return new(emptypb.Empty), nil
}

func (s *server) NotifyUserActivation(context.Context, *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.ep.dispatch(call{
		run:  docipc.Receiver.NotifyUserActivation,
		drop: func() {},
	}); err != nil {
		return nil, err
	}
	return new(emptypb.Empty), nil
}

// TakeHeapSnapshot waits for the receiver to respond. If the call is
// dropped before it is delivered, the file is closed, and the response is
// false.
func (s *server) TakeHeapSnapshot(ctx context.Context, req *HeapSnapshotRequest) (*wrapperspb.BoolValue, error) {
	file := req.File
	var handle docipc.OutputHandle
	if file != nil {
		handle = file
	}
	result := make(chan bool, 1)
	if err := s.ep.dispatch(call{
		run: func(r docipc.Receiver) {
			r.TakeHeapSnapshot(handle, func(success bool) {
				select {
				case result <- success:
				default:
				}
			})
		},
		drop: func() {
			_ = file.Close()
			result <- false
		},
	}); err != nil {
		return nil, err
	}
	select {
	case success := <-result:
		return wrapperspb.Bool(success), nil
	case <-ctx.Done():
		return nil, status.FromContextError(ctx.Err()).Err()
	}
}
