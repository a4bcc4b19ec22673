// Package jsruntime evaluates bundled CommonJS modules in an embedded JavaScript engine.
package jsruntime

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	wrapperHead = "(function(exports, require, module, __filename, __dirname) {"
	wrapperTail = "\n})"
)

// Runtime loads modules into isolated goja runtimes.
// It implements both ports.ModuleLoader and ports.SourceMapRegistrar.
type Runtime struct {
	logger  ports.Logger
	support atomic.Pointer[domain.SourceMapSupport]
}

// New creates a Runtime routing console output to logger.
func New(logger ports.Logger) *Runtime {
	return &Runtime{logger: logger}
}

// Register enables inline source map handling for modules loaded afterwards.
func (r *Runtime) Register(opts domain.SourceMapSupport) {
	r.support.Store(&opts)
}

// SourceMapSupport returns the registered settings, or nil before Register.
func (r *Runtime) SourceMapSupport() *domain.SourceMapSupport {
	return r.support.Load()
}

// Load evaluates code as a CommonJS module named filename and returns its exports as an artifact.
func (r *Runtime) Load(ctx context.Context, code, filename string) (ports.Artifact, error) {
	var opts []parser.Option
	if r.support.Load() == nil {
		opts = append(opts, parser.WithDisableSourceMaps)
	}

	ast, err := goja.Parse(filename, wrapperHead+code+wrapperTail, opts...)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse module"), "file", filename)
	}
	program, err := goja.CompileAST(ast, false)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to compile module"), "file", filename)
	}

	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	if err := installConsole(vm, r.logger); err != nil {
		return nil, zerr.Wrap(err, "failed to install console")
	}

	module := vm.NewObject()
	exports := vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, zerr.Wrap(err, "failed to prepare module object")
	}

	stop := context.AfterFunc(ctx, func() { vm.Interrupt(ctx.Err()) })
	defer stop()

	fn, err := vm.RunProgram(program)
	if err != nil {
		return nil, evalError(err, "failed to evaluate module", filename)
	}
	call, ok := goja.AssertFunction(fn)
	if !ok {
		return nil, zerr.With(zerr.New("module wrapper is not a function"), "file", filename)
	}
	_, err = call(goja.Undefined(), exports, vm.ToValue(requireFunc(vm)), module,
		vm.ToValue(filename), vm.ToValue(filepath.Dir(filename)))
	if err != nil {
		return nil, evalError(err, "failed to evaluate module", filename)
	}
	if !stop() {
		return nil, zerr.With(zerr.Wrap(ctx.Err(), "module evaluation interrupted"), "file", filename)
	}

	return newModule(vm, filename, interopDefault(module.Get("exports"))), nil
}

// requireFunc rejects every module. Bundles are self contained.
func requireFunc(vm *goja.Runtime) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		panic(vm.NewGoError(zerr.With(zerr.New("Cannot find module"), "module", call.Argument(0).String())))
	}
}

// interopDefault unwraps modules whose only export is default.
func interopDefault(exports goja.Value) goja.Value {
	obj, ok := exports.(*goja.Object)
	if !ok {
		return exports
	}
	def := obj.Get("default")
	if def == nil || goja.IsUndefined(def) {
		return exports
	}
	for _, key := range obj.Keys() {
		if key != "default" && key != "__esModule" {
			return exports
		}
	}
	return def
}

// evalError converts a JavaScript failure into an error carrying the script message and stack.
func evalError(err error, msg, filename string) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause := interrupted.Unwrap(); cause != nil {
			return zerr.With(zerr.Wrap(cause, msg), "file", filename)
		}
	}
	wrapped := zerr.With(zerr.Wrap(err, msg), "file", filename)
	var exception *goja.Exception
	if errors.As(err, &exception) {
		wrapped = zerr.With(wrapped, "stack", exception.String())
	}
	return wrapped
}
