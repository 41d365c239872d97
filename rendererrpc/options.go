package rendererrpc

import (
	inprocgrpc "github.com/joeycumines/go-inprocgrpc"
	"github.com/joeycumines/logiface"
)

// pipeOptions holds configuration for [NewPipe].
type pipeOptions struct {
	logger         *logiface.Logger[logiface.Event]
	channelOptions []inprocgrpc.Option
	loggerSet      bool
}

// Option configures [NewPipe].
type Option interface {
	applyOption(*pipeOptions) error
}

// optionFunc implements [Option] via a closure.
type optionFunc struct {
	fn func(*pipeOptions) error
}

func (o *optionFunc) applyOption(opts *pipeOptions) error {
	return o.fn(opts)
}

// WithLogger configures the logger used by the endpoint, and by the
// channel's server interceptor. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionFunc{fn: func(opts *pipeOptions) error {
		opts.logger = logger
		opts.loggerSet = true
		return nil
	}}
}

// WithChannelOptions appends options for the underlying
// [inprocgrpc.Channel]. They are applied after the loop, cloner, and
// interceptor configured by [NewPipe], and so may override them.
func WithChannelOptions(opts ...inprocgrpc.Option) Option {
	return &optionFunc{fn: func(o *pipeOptions) error {
		o.channelOptions = append(o.channelOptions, opts...)
		return nil
	}}
}

// resolveOptions applies the given options to a default [pipeOptions].
func resolveOptions(opts []Option) (*pipeOptions, error) {
	cfg := &pipeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
