package gojahost

import (
	"errors"

	"github.com/dop251/goja"
	"github.com/joeycumines/logiface"
)

// hostOptions holds configuration for a [Host] instance.
type hostOptions struct {
	runtime    *goja.Runtime
	logger     *logiface.Logger[logiface.Event]
	moduleName string
	loggerSet  bool
}

// Option configures a [Host] instance.
type Option interface {
	applyOption(*hostOptions) error
}

// optionFunc implements [Option] via a closure.
type optionFunc struct {
	fn func(*hostOptions) error
}

func (o *optionFunc) applyOption(opts *hostOptions) error {
	return o.fn(opts)
}

// WithRuntime configures the [goja.Runtime] to host. It must only be
// used from the host's event loop. If not set, a new runtime is created.
func WithRuntime(runtime *goja.Runtime) Option {
	return &optionFunc{fn: func(opts *hostOptions) error {
		if runtime == nil {
			return errors.New("gojahost: runtime must not be nil")
		}
		opts.runtime = runtime
		return nil
	}}
}

// WithLogger configures the logger used for diagnostics, and as the sink
// for the console object. A nil logger disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionFunc{fn: func(opts *hostOptions) error {
		opts.logger = logger
		opts.loggerSet = true
		return nil
	}}
}

// WithModuleName configures the name scripts pass to require, to load the
// IPC module. Defaults to "ipc".
func WithModuleName(name string) Option {
	return &optionFunc{fn: func(opts *hostOptions) error {
		if name == "" {
			return errors.New("gojahost: module name must not be empty")
		}
		opts.moduleName = name
		return nil
	}}
}

// resolveOptions applies the given options to a default [hostOptions].
func resolveOptions(opts []Option) (*hostOptions, error) {
	cfg := &hostOptions{moduleName: `ipc`}
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
