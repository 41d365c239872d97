package rendererrpc

import (
	"errors"

	"github.com/joeycumines/go-docipc"
	eventloop "github.com/joeycumines/go-eventloop"
	inprocgrpc "github.com/joeycumines/go-inprocgrpc"
)

// NewPipe creates a connected [Client] and [Endpoint], over a new
// in-process channel driven by loop. The loop must be the one that runs
// the receiver the endpoint is bound to, and must be running for calls to
// complete.
func NewPipe(loop *eventloop.Loop, opts ...Option) (*Client, *Endpoint, error) {
	if loop == nil {
		return nil, nil, errors.New("rendererrpc: loop must not be nil")
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.loggerSet {
		cfg.logger = docipc.DefaultLogger()
	}

	channel := inprocgrpc.NewChannel(append([]inprocgrpc.Option{
		inprocgrpc.WithLoop(loop),
		inprocgrpc.WithCloner(Cloner()),
		inprocgrpc.WithServerUnaryInterceptor(LoggingInterceptor(cfg.logger)),
	}, cfg.channelOptions...)...)

	ep := newEndpoint(loop, cfg.logger)
	RegisterRendererServer(channel, &server{ep: ep})

	client := NewClient(channel)
	client.onStop = ep.disconnect
	return client, ep, nil
}
