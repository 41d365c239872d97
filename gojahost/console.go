package gojahost

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"github.com/joeycumines/logiface"
)

// logPrinter is a [console.Printer] writing to a logger.
type logPrinter struct {
	logger *logiface.Logger[logiface.Event]
}

var _ console.Printer = logPrinter{}

func (p logPrinter) Log(s string) { p.print(logiface.LevelInformational, s) }

func (p logPrinter) Warn(s string) { p.print(logiface.LevelWarning, s) }

func (p logPrinter) Error(s string) { p.print(logiface.LevelError, s) }

func (p logPrinter) print(level logiface.Level, s string) {
	p.logger.Build(level).
		Str(`category`, categoryHost).
		Log(s)
}

// registerConsole replaces the console module of registry with one writing
// to the host's logger. Arguments are formatted as by util.format.
func (h *Host) registerConsole(registry *require.Registry) {
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(logPrinter{logger: h.logger}))
}

// enableConsole defines the global console, unless the runtime already has
// one.
func (h *Host) enableConsole() {
	if v := h.runtime.Get(`console`); v != nil && !goja.IsUndefined(v) {
		return
	}
	console.Enable(h.runtime)
}
