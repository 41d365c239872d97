package rendererrpc

import (
	"fmt"

	inprocgrpc "github.com/joeycumines/go-inprocgrpc"
	"google.golang.org/protobuf/proto"
)

// Cloner returns the [inprocgrpc.Cloner] required by the docipc.Renderer
// service. Transferable request fields are moved, everything else is deep
// copied. Proto messages are handled like [inprocgrpc.ProtoCloner].
func Cloner() inprocgrpc.Cloner {
	return transferCloner{}
}

type transferCloner struct{}

func (transferCloner) Clone(in any) (any, error) {
	switch in := in.(type) {
	case *MessageRequest:
		return in.clone(), nil
	case *PostMessageRequest:
		return in.take()
	case *HeapSnapshotRequest:
		return in.take()
	case proto.Message:
		return proto.Clone(in), nil
	default:
		return nil, fmt.Errorf("rendererrpc: cannot clone %T", in)
	}
}

func (transferCloner) Copy(out, in any) error {
	switch out := out.(type) {
	case *MessageRequest:
		src, ok := in.(*MessageRequest)
		if !ok {
			return mismatch(out, in)
		}
		*out = *src.clone()
	case *PostMessageRequest:
		src, ok := in.(*PostMessageRequest)
		if !ok {
			return mismatch(out, in)
		}
		v, err := src.take()
		if err != nil {
			return err
		}
		*out = *v
	case *HeapSnapshotRequest:
		src, ok := in.(*HeapSnapshotRequest)
		if !ok {
			return mismatch(out, in)
		}
		v, err := src.take()
		if err != nil {
			return err
		}
		*out = *v
	case proto.Message:
		src, ok := in.(proto.Message)
		if !ok {
			return mismatch(out, in)
		}
		proto.Reset(out)
		proto.Merge(out, src)
	default:
		return fmt.Errorf("rendererrpc: cannot copy into %T", out)
	}
	return nil
}

func mismatch(out, in any) error {
	return fmt.Errorf("rendererrpc: cannot copy %T into %T", in, out)
}
