package jsruntime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dop251/goja"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/zerr"
)

// Module is an evaluated module bound to its own runtime.
// Calls are serialized since a goja runtime is single threaded.
type Module struct {
	mu       sync.Mutex
	vm       *goja.Runtime
	filename string
	target   goja.Value
}

func newModule(vm *goja.Runtime, filename string, target goja.Value) *Module {
	return &Module{vm: vm, filename: filename, target: target}
}

// Callable reports whether the module target is a function.
func (m *Module) Callable() bool {
	_, ok := goja.AssertFunction(m.target)
	return ok
}

// Exports lists the enumerable keys of the module target.
func (m *Module) Exports() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.target.(*goja.Object)
	if !ok {
		return nil
	}
	return obj.Keys()
}

// Render invokes the module with props and normalizes what it returns.
// A callable target is called directly; otherwise its render method is used,
// falling back to default.render.
func (m *Module) Render(ctx context.Context, props map[string]any) (domain.RenderResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.RenderResult{}, err
	}

	fn, this, ok := m.entry()
	if !ok {
		return domain.RenderResult{}, zerr.With(zerr.Wrap(domain.ErrNotRenderable, "module has no render entry"),
			"file", m.filename)
	}

	arg, err := m.props(props)
	if err != nil {
		return domain.RenderResult{}, err
	}

	m.vm.ClearInterrupt()
	stop := context.AfterFunc(ctx, func() { m.vm.Interrupt(ctx.Err()) })
	defer stop()

	out, err := fn(this, arg)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.RenderResult{}, zerr.With(zerr.Wrap(ctxErr, "render interrupted"), "file", m.filename)
		}
		return domain.RenderResult{}, renderError(err, m.filename)
	}
	return normalize(out), nil
}

func (m *Module) entry() (goja.Callable, goja.Value, bool) {
	if fn, ok := goja.AssertFunction(m.target); ok {
		return fn, goja.Undefined(), true
	}
	obj, ok := m.target.(*goja.Object)
	if !ok {
		return nil, nil, false
	}
	if fn, ok := goja.AssertFunction(obj.Get("render")); ok {
		return fn, obj, true
	}
	if def, ok := obj.Get("default").(*goja.Object); ok {
		if fn, ok := goja.AssertFunction(def.Get("render")); ok {
			return fn, def, true
		}
	}
	return nil, nil, false
}

// props converts Go props into plain JavaScript values by way of JSON.
func (m *Module) props(props map[string]any) (goja.Value, error) {
	if props == nil {
		props = map[string]any{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return nil, zerr.With(fmt.Errorf("%w: %w", domain.ErrInvalidProps, err), "file", m.filename)
	}
	parse, ok := goja.AssertFunction(m.vm.Get("JSON").ToObject(m.vm).Get("parse"))
	if !ok {
		return nil, zerr.New("JSON.parse is unavailable")
	}
	return parse(goja.Undefined(), m.vm.ToValue(string(data)))
}

func renderError(err error, filename string) error {
	wrapped := zerr.With(fmt.Errorf("%w: %w", domain.ErrRenderFailed, err), "file", filename)
	var exception *goja.Exception
	if errors.As(err, &exception) {
		wrapped = zerr.With(wrapped, "stack", exception.String())
	}
	return wrapped
}

// normalize accepts a string or an object with html, head and css fields.
// css may be a string or an object with a code field.
func normalize(v goja.Value) domain.RenderResult {
	obj, ok := v.(*goja.Object)
	if !ok {
		return domain.RenderResult{HTML: str(v)}
	}
	res := domain.RenderResult{
		HTML: str(obj.Get("html")),
		Head: str(obj.Get("head")),
	}
	switch css := obj.Get("css").(type) {
	case *goja.Object:
		res.CSS = str(css.Get("code"))
	default:
		res.CSS = str(css)
	}
	return res
}

func str(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}
