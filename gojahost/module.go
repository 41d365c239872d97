package gojahost

import (
	"errors"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"
)

// Require returns the [require.ModuleLoader] for the IPC module. [New]
// registers it with the host's own registry, under the configured module
// name; it may also be registered with another registry, so long as that
// registry is enabled for the host's runtime.
//
// The module exports:
//
//	register(callback)    sets the dispatch callback, replacing any prior one
//	unregister()          clears the dispatch callback
//	hasUserActivation()   reports whether the frame received user activation
func (h *Host) Require() require.ModuleLoader {
	return func(runtime *goja.Runtime, module *goja.Object) {
		if runtime != h.runtime {
			panic(runtime.NewGoError(errors.New("gojahost: module loaded by a foreign runtime")))
		}
		exports := module.Get("exports").(*goja.Object)
		h.setupExports(exports)
	}
}

func (h *Host) setupExports(exports *goja.Object) {
	rt := h.runtime
	_ = exports.Set(`register`, func(call goja.FunctionCall) goja.Value {
		fn, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(rt.NewTypeError(`register: callback must be a function`))
		}
		if h.detached {
			return goja.Undefined()
		}
		h.callback = fn
		return goja.Undefined()
	})
	_ = exports.Set(`unregister`, func(goja.FunctionCall) goja.Value {
		h.callback = nil
		return goja.Undefined()
	})
	_ = exports.Set(`hasUserActivation`, func(goja.FunctionCall) goja.Value {
		return rt.ToValue(h.activated)
	})
}
