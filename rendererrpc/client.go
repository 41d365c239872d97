package rendererrpc

import (
	"context"
	"sync/atomic"

	"github.com/joeycumines/go-docipc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client is the controller's end of a pipe, see [NewPipe]. It is safe for
// concurrent use, though calls are only ordered with respect to other
// calls made by the same goroutine.
//
// Message, ReceivePostMessage, and NotifyUserActivation return once the
// call is accepted, not once it is delivered.
type Client struct {
	cc     grpc.ClientConnInterface
	onStop func()
	closed atomic.Bool
}

// NewClient returns a client for the Renderer service served by cc, which
// must use [Cloner].
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Message sends a direct message. The arguments are copied.
func (x *Client) Message(ctx context.Context, internal bool, channel string, arguments *structpb.Value, senderID int32) error {
	if err := x.check(); err != nil {
		return err
	}
	req := &MessageRequest{
		Internal:  internal,
		Channel:   channel,
		Arguments: arguments,
		SenderID:  senderID,
	}
	return x.cc.Invoke(ctx, MethodMessage, req, new(emptypb.Empty))
}

// ReceivePostMessage sends message, which is consumed, including on error.
func (x *Client) ReceivePostMessage(ctx context.Context, channel string, message *docipc.TransferableMessage) error {
	defer message.Discard()
	if message == nil {
		return status.Error(codes.InvalidArgument, `message is required`)
	}
	if err := x.check(); err != nil {
		return err
	}
	req := &PostMessageRequest{Channel: channel, Message: message}
	return x.cc.Invoke(ctx, MethodReceivePostMessage, req, new(emptypb.Empty))
}

// NotifyUserActivation marks the destination frame as user activated.
func (x *Client) NotifyUserActivation(ctx context.Context) error {
	if err := x.check(); err != nil {
		return err
	}
	return x.cc.Invoke(ctx, MethodNotifyUserActivation, new(emptypb.Empty), new(emptypb.Empty))
}

// TakeHeapSnapshot requests a heap snapshot be written to file, which is
// consumed, including on error. It blocks until the destination responds.
func (x *Client) TakeHeapSnapshot(ctx context.Context, file *docipc.FileHandle) (bool, error) {
	defer file.Close()
	if err := x.check(); err != nil {
		return false, err
	}
	resp := new(wrapperspb.BoolValue)
	if err := x.cc.Invoke(ctx, MethodTakeHeapSnapshot, &HeapSnapshotRequest{File: file}, resp); err != nil {
		return false, err
	}
	return resp.GetValue(), nil
}

// Close closes the client. The endpoint observes this as a disconnect,
// after any calls already accepted are delivered.
func (x *Client) Close() error {
	if !x.closed.CompareAndSwap(false, true) {
		return nil
	}
	if x.onStop != nil {
		x.onStop()
	}
	return nil
}

func (x *Client) check() error {
	if x.closed.Load() {
		return status.Error(codes.Unavailable, `rendererrpc: client closed`)
	}
	return nil
}
