package gojahost

import (
	"github.com/dop251/goja"
	"github.com/joeycumines/go-docipc"
	"github.com/joeycumines/go-docipc/internal/jsvalue"
	"google.golang.org/protobuf/types/known/structpb"
)

// jsPort is the script-side object for an entangled [docipc.Port]. It
// exposes a subset of the MessagePort interface: postMessage, close, and
// an onmessage handler receiving events with a data property.
//
// Messages arriving before onmessage is set are held, and dispatched in
// order once it is.
type jsPort struct {
	host      *Host
	port      *docipc.Port
	object    *goja.Object
	onmessage goja.Value
	inbox     []*structpb.Value
	closed    bool
}

func (h *Host) newPort(port *docipc.Port) (*jsPort, error) {
	rt := h.runtime
	p := &jsPort{
		host:      h,
		port:      port,
		object:    rt.NewObject(),
		onmessage: goja.Null(),
	}

	if err := p.object.Set(`id`, port.ID().String()); err != nil {
		return nil, err
	}
	if err := p.object.Set(`postMessage`, func(call goja.FunctionCall) goja.Value {
		p.postMessage(call.Argument(0))
		return goja.Undefined()
	}); err != nil {
		return nil, err
	}
	if err := p.object.Set(`close`, func(goja.FunctionCall) goja.Value {
		p.close()
		return goja.Undefined()
	}); err != nil {
		return nil, err
	}
	if err := p.object.DefineAccessorProperty(`onmessage`,
		rt.ToValue(func(goja.FunctionCall) goja.Value { return p.onmessage }),
		rt.ToValue(func(call goja.FunctionCall) goja.Value {
			p.setOnMessage(call.Argument(0))
			return goja.Undefined()
		}),
		goja.FLAG_FALSE,
		goja.FLAG_TRUE,
	); err != nil {
		return nil, err
	}

	// messages arrive on the peer's goroutine, with the pipe locked
	if err := port.Start(func(v *structpb.Value) {
		if err := h.loop.Submit(func() { p.receive(v) }); err != nil {
			h.logger.Warning().
				Str(`category`, categoryHost).
				Str(`port`, port.ID().String()).
				Err(err).
				Log(`dropping port message: loop unavailable`)
		}
	}); err != nil {
		return nil, err
	}

	h.ports[p] = struct{}{}
	return p, nil
}

func (p *jsPort) postMessage(value goja.Value) {
	rt := p.host.runtime
	v, err := jsvalue.FromGoja(rt, value)
	if err != nil {
		panic(rt.NewTypeError(`postMessage: ` + err.Error()))
	}
	if p.closed {
		return
	}
	if err := p.port.PostMessage(v); err != nil {
		p.host.logger.Debug().
			Str(`category`, categoryHost).
			Str(`port`, p.port.ID().String()).
			Err(err).
			Log(`postMessage failed`)
	}
}

func (p *jsPort) setOnMessage(handler goja.Value) {
	if handler == nil || goja.IsUndefined(handler) {
		handler = goja.Null()
	}
	p.onmessage = handler
	if _, ok := goja.AssertFunction(handler); ok && len(p.inbox) != 0 {
		_ = p.host.loop.Submit(p.flush)
	}
}

// receive runs on the loop.
func (p *jsPort) receive(v *structpb.Value) {
	if p.closed {
		return
	}
	p.inbox = append(p.inbox, v)
	p.flush()
}

func (p *jsPort) flush() {
	h := p.host
	for !p.closed && !h.detached && len(p.inbox) != 0 {
		handler, ok := goja.AssertFunction(p.onmessage)
		if !ok {
			return
		}
		v := p.inbox[0]
		p.inbox[0] = nil
		p.inbox = p.inbox[1:]

		data, err := jsvalue.ToGoja(h.runtime, v)
		if err != nil {
			h.logger.Err().
				Str(`category`, categoryHost).
				Err(err).
				Log(`failed to convert port message`)
			continue
		}
		event := h.runtime.NewObject()
		_ = event.Set(`data`, data)
		_ = event.Set(`target`, p.object)
		if _, err := handler(p.object, event); err != nil {
			h.logger.Err().
				Str(`category`, categoryHost).
				Str(`port`, p.port.ID().String()).
				Err(err).
				Log(`port message handler failed`)
		}
	}
}

func (p *jsPort) close() {
	if p.closed {
		return
	}
	p.closed = true
	p.inbox = nil
	delete(p.host.ports, p)
	_ = p.port.Close()
}
