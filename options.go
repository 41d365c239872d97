package docipc

import (
	"errors"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// serviceOptions holds configuration for a [Service] instance.
type serviceOptions struct {
	logger      *logiface.Logger[logiface.Event]
	snapshotter Snapshotter
	dropLimiter *catrate.Limiter
	loggerSet   bool
}

// Option configures a [Service] instance.
type Option interface {
	applyOption(*serviceOptions) error
}

// optionFunc implements [Option] via a closure.
type optionFunc struct {
	fn func(*serviceOptions) error
}

func (o *optionFunc) applyOption(opts *serviceOptions) error {
	return o.fn(opts)
}

// WithLogger configures the logger used for diagnostics. A nil logger
// disables logging. If not set, [DefaultLogger] is used.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionFunc{fn: func(opts *serviceOptions) error {
		opts.logger = logger
		opts.loggerSet = true
		return nil
	}}
}

// WithSnapshotter configures the [Snapshotter] used by
// [Service.TakeHeapSnapshot]. Defaults to [HeapProfileSnapshotter].
func WithSnapshotter(s Snapshotter) Option {
	return &optionFunc{fn: func(opts *serviceOptions) error {
		if s == nil {
			return errors.New("docipc: snapshotter must not be nil")
		}
		opts.snapshotter = s
		return nil
	}}
}

// WithDropLogRates limits how often dropped-message diagnostics are logged,
// per channel name. See [catrate.NewLimiter] for the format of rates. A nil
// or empty map disables limiting, which is the default.
func WithDropLogRates(rates map[time.Duration]int) Option {
	return &optionFunc{fn: func(opts *serviceOptions) (err error) {
		if len(rates) == 0 {
			opts.dropLimiter = nil
			return nil
		}
		defer func() {
			if r := recover(); r != nil {
				err = errors.New("docipc: invalid drop log rates")
			}
		}()
		opts.dropLimiter = catrate.NewLimiter(rates)
		return nil
	}}
}

// resolveOptions applies the given options to a default [serviceOptions].
func resolveOptions(opts []Option) (*serviceOptions, error) {
	cfg := &serviceOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyOption(cfg); err != nil {
			return nil, err
		}
	}
	if !cfg.loggerSet {
		cfg.logger = DefaultLogger()
	}
	if cfg.snapshotter == nil {
		cfg.snapshotter = HeapProfileSnapshotter{}
	}
	return cfg, nil
}
