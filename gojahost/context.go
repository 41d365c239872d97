package gojahost

import (
	"errors"

	"github.com/dop251/goja"
	"github.com/joeycumines/go-docipc"
	"github.com/joeycumines/go-docipc/internal/jsvalue"
	"google.golang.org/protobuf/types/known/structpb"
)

var errOutsideScope = errors.New("gojahost: dispatch callback invoked outside of a context scope")

// scriptContext is the host's [docipc.ScriptContext]. Values it produces
// are goja values, owned by the host's runtime.
type scriptContext struct {
	host *Host
}

var _ docipc.ScriptContext = (*scriptContext)(nil)

func (c *scriptContext) Enter() func() {
	h := c.host
	h.depth++
	var exited bool
	return func() {
		if !exited {
			exited = true
			h.depth--
		}
	}
}

func (c *scriptContext) DispatchCallback() (docipc.DispatchFunc, bool) {
	h := c.host
	callback := h.callback
	if callback == nil {
		return nil, false
	}
	rt := h.runtime
	return func(internal bool, channel string, ports []any, arguments any, senderID int32) error {
		if h.depth == 0 {
			return errOutsideScope
		}
		_, err := callback(
			goja.Undefined(),
			rt.ToValue(internal),
			rt.ToValue(channel),
			rt.NewArray(ports...),
			toValue(rt, arguments),
			rt.ToValue(senderID),
		)
		return err
	}, true
}

func (c *scriptContext) ImportValue(v *structpb.Value) (any, error) {
	return jsvalue.ToGoja(c.host.runtime, v)
}

func (c *scriptContext) Entangle(port *docipc.Port) (any, error) {
	moved, err := port.Take()
	if err != nil {
		return nil, err
	}
	p, err := c.host.newPort(moved)
	if err != nil {
		_ = moved.Close()
		return nil, err
	}
	return p.object, nil
}

func toValue(rt *goja.Runtime, v any) goja.Value {
	if val, ok := v.(goja.Value); ok {
		return val
	}
	return rt.ToValue(v)
}
