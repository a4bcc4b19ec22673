// Package compiler implements the compile, cache and evaluate pipeline for view templates.
package compiler

import (
	"context"
	"os"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

// Compiler owns the artifact cache and the source map installer flag.
// Each Compiler is an independent context; nothing is shared between instances.
type Compiler struct {
	bundler      ports.Bundler
	tracer       ports.Tracer
	getenv       func(string) string
	cache        *Cache
	installer    *Installer
	materializer *Materializer
	inflight     singleflight.Group
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithTracer sets the tracer used for pipeline spans.
func WithTracer(t ports.Tracer) Option {
	return func(c *Compiler) {
		c.tracer = t
	}
}

// WithGetenv replaces the ambient environment lookup.
func WithGetenv(fn func(string) string) Option {
	return func(c *Compiler) {
		c.getenv = fn
	}
}

// New creates a Compiler.
func New(
	bundler ports.Bundler,
	loader ports.ModuleLoader,
	registrar ports.SourceMapRegistrar,
	opts ...Option,
) *Compiler {
	installer := NewInstaller(registrar)
	c := &Compiler{
		bundler:      bundler,
		tracer:       noopTracer{},
		getenv:       os.Getenv,
		cache:        NewCache(),
		installer:    installer,
		materializer: NewMaterializer(loader, installer),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile returns the artifact for filename, compiling and evaluating it on a cache miss.
// Cacheable requests with the same key share a single pipeline run, which is not
// cancelled when one of its callers gives up. Failures are never cached.
func (c *Compiler) Compile(ctx context.Context, filename string, opts domain.CompileOptions) (ports.Artifact, error) {
	plan := c.Plan(filename, opts)
	if plan.Key == nil {
		return c.run(ctx, plan)
	}

	if artifact, ok := c.cache.Get(*plan.Key); ok {
		return artifact, nil
	}

	// The shared run outlives any single caller; each caller stops waiting on its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(plan.Key.String(), func() (any, error) {
		if artifact, ok := c.cache.Get(*plan.Key); ok {
			return artifact, nil
		}
		artifact, err := c.run(shared, plan)
		if err != nil {
			return nil, err
		}
		c.cache.Put(*plan.Key, artifact)
		return artifact, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(ports.Artifact), nil
	}
}

// Generate runs the bundling pipeline and validation without evaluating or caching the result.
func (c *Compiler) Generate(
	ctx context.Context,
	filename string,
	opts domain.CompileOptions,
) (domain.OutputItem, domain.Plan, error) {
	plan := c.Plan(filename, opts)
	chunk, err := c.generate(ctx, plan)
	return chunk, plan, err
}

// Plan resolves opts against the ambient environment.
func (c *Compiler) Plan(filename string, opts domain.CompileOptions) domain.Plan {
	return Configure(filename, opts, c.getenv(domain.EnvVar))
}

// ClearCache drops every cached artifact. Source map support stays installed.
func (c *Compiler) ClearCache() {
	c.cache.Clear()
}

// CacheLen returns the number of cached artifacts.
func (c *Compiler) CacheLen() int {
	return c.cache.Len()
}

func (c *Compiler) run(ctx context.Context, plan domain.Plan) (ports.Artifact, error) {
	ctx, span := c.tracer.Start(ctx, "compile "+plan.Filename,
		ports.WithAttribute("env", plan.Flags.Env),
		ports.WithAttribute("hydratable", plan.Flags.Hydratable),
	)
	defer span.End()

	chunk, err := c.generate(ctx, plan)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	_, loadSpan := c.tracer.Start(ctx, "load "+plan.Filename)
	defer loadSpan.End()

	artifact, err := c.materializer.Materialize(ctx, plan.Filename, chunk, plan.Flags.Dev)
	if err != nil {
		loadSpan.RecordError(err)
		span.RecordError(err)
		return nil, err
	}
	return artifact, nil
}

func (c *Compiler) generate(ctx context.Context, plan domain.Plan) (domain.OutputItem, error) {
	ctx, span := c.tracer.Start(ctx, "bundle "+plan.Filename)
	defer span.End()

	output, err := c.bundler.Bundle(ctx, plan.Filename, plan.Stages)
	if err != nil {
		span.RecordError(err)
		return domain.OutputItem{}, err
	}
	span.SetAttribute("items", len(output.Items))

	chunk, err := Validate(plan.Filename, output)
	if err != nil {
		span.RecordError(err)
		return domain.OutputItem{}, err
	}
	span.SetAttribute("modules", len(chunk.Modules))
	return chunk, nil
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                     {}
func (noopSpan) RecordError(error)        {}
func (noopSpan) SetAttribute(string, any) {}
