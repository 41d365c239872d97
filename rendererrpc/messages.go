package rendererrpc

import (
	"github.com/joeycumines/go-docipc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

type (
	// MessageRequest is the request for Renderer.Message.
	MessageRequest struct {
		Arguments *structpb.Value
		Channel   string
		SenderID  int32
		Internal  bool
	}

	// PostMessageRequest is the request for Renderer.ReceivePostMessage.
	PostMessageRequest struct {
		Message *docipc.TransferableMessage
		Channel string
	}

	// HeapSnapshotRequest is the request for Renderer.TakeHeapSnapshot.
	HeapSnapshotRequest struct {
		File *docipc.FileHandle
	}
)

func (x *MessageRequest) clone() *MessageRequest {
	out := *x
	if x.Arguments != nil {
		out.Arguments = proto.Clone(x.Arguments).(*structpb.Value)
	}
	return &out
}

// take moves the message out of x.
func (x *PostMessageRequest) take() (*PostMessageRequest, error) {
	out := &PostMessageRequest{Channel: x.Channel}
	if x.Message != nil {
		var err error
		if out.Message, err = x.Message.Take(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// take moves the file out of x.
func (x *HeapSnapshotRequest) take() (*HeapSnapshotRequest, error) {
	out := &HeapSnapshotRequest{}
	if x.File != nil {
		var err error
		if out.File, err = x.File.Take(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
