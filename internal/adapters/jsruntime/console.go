package jsruntime

import (
	"strings"

	"github.com/dop251/goja"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/zerr"
)

// installConsole exposes a console object whose output goes to logger.
func installConsole(vm *goja.Runtime, logger ports.Logger) error {
	console := vm.NewObject()

	info := func(call goja.FunctionCall) goja.Value {
		logger.Info(joinArgs(call.Arguments))
		return goja.Undefined()
	}
	warn := func(call goja.FunctionCall) goja.Value {
		logger.Warn(joinArgs(call.Arguments))
		return goja.Undefined()
	}
	fail := func(call goja.FunctionCall) goja.Value {
		logger.Error(zerr.New(joinArgs(call.Arguments)))
		return goja.Undefined()
	}

	for name, fn := range map[string]func(goja.FunctionCall) goja.Value{
		"log":   info,
		"info":  info,
		"debug": info,
		"warn":  warn,
		"error": fail,
	} {
		if err := console.Set(name, fn); err != nil {
			return err
		}
	}
	return vm.Set("console", console)
}

func joinArgs(args []goja.Value) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, arg.String())
	}
	return strings.Join(parts, " ")
}
