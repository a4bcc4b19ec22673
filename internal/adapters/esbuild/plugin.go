package esbuild

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/zerr"
)

const pluginName = "viewc"

// transform rewrites a loaded file. It reports false when it does not apply to path.
type transform func(ctx context.Context, path, src string) (string, bool, error)

// pipeline accumulates stage configuration for one bundling run.
type pipeline struct {
	ctx        context.Context
	root       string
	transpiler ports.Transpiler

	transforms []transform
	dedupe     map[string]bool
	format     api.Format
	sourceMap  bool

	mu    sync.Mutex
	cause error
}

func (p *pipeline) fail(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cause == nil {
		p.cause = err
	}
	return err
}

func (p *pipeline) apply(stage domain.Stage) error {
	switch stage.Name {
	case domain.StageSubstitute:
		return p.applySubstitute(stage.Substitute)
	case domain.StageTranspile:
		return p.applyTranspile(stage.Transpile)
	case domain.StageResolve:
		p.applyResolve(stage.Resolve)
		return nil
	case domain.StageNormalize:
		return p.applyNormalize(stage.Normalize)
	default:
		return zerr.With(zerr.New("unknown pipeline stage"), "stage", string(stage.Name))
	}
}

func (p *pipeline) applySubstitute(cfg *domain.SubstitutionConfig) error {
	if cfg == nil {
		return nil
	}
	sub, err := NewSubstituter(cfg.Values)
	if err != nil {
		return zerr.Wrap(err, "invalid substitution values")
	}
	p.transforms = append(p.transforms, func(_ context.Context, _ string, src string) (string, bool, error) {
		return sub.Replace(src), true, nil
	})
	return nil
}

func (p *pipeline) applyTranspile(cfg *domain.TranspileConfig) error {
	if cfg == nil {
		return nil
	}
	if cfg.Generate != "" && cfg.Generate != "ssr" {
		return zerr.With(zerr.New("unsupported generate target"), "generate", cfg.Generate)
	}
	tc := *cfg
	p.transforms = append(p.transforms, func(ctx context.Context, path, src string) (string, bool, error) {
		if !domain.IsTemplate(path) {
			return src, false, nil
		}
		for _, pre := range tc.Preprocess {
			out, err := pre.Preprocess(ctx, path, src)
			if err != nil {
				return "", true, err
			}
			src = out
		}
		code, err := p.transpiler.Transpile(ctx, path, src, tc)
		return code, true, err
	})
	return nil
}

func (p *pipeline) applyResolve(cfg *domain.ResolveConfig) {
	if cfg == nil {
		return
	}
	for _, name := range cfg.Dedupe {
		p.dedupe[name] = true
	}
}

func (p *pipeline) applyNormalize(cfg *domain.NormalizeConfig) error {
	if cfg == nil {
		return nil
	}
	switch cfg.Format {
	case "", "cjs":
		p.format = api.FormatCommonJS
	case "esm":
		p.format = api.FormatESModule
	case "iife":
		p.format = api.FormatIIFE
	default:
		return zerr.With(zerr.New("unsupported module format"), "format", cfg.Format)
	}
	p.sourceMap = cfg.SourceMap
	return nil
}

// plugin wires the accumulated stages into esbuild callbacks.
func (p *pipeline) plugin() api.Plugin {
	return api.Plugin{
		Name: pluginName,
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: `^viewc(/[a-z]+)?/?$`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if _, ok := runtimeSource(args.Path); !ok {
						return api.OnResolveResult{}, nil
					}
					return api.OnResolveResult{Path: args.Path, Namespace: RuntimeNamespace}, nil
				})

			build.OnResolve(api.OnResolveOptions{Filter: `^[^./]`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return p.resolveDeduped(build, args)
				})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: RuntimeNamespace},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					src, _ := runtimeSource(args.Path)
					return api.OnLoadResult{Contents: &src, ResolveDir: p.root, Loader: api.LoaderJS}, nil
				})

			build.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					return p.load(args)
				})
		},
	}
}

func (p *pipeline) resolveDeduped(build api.PluginBuild, args api.OnResolveArgs) (api.OnResolveResult, error) {
	if args.ResolveDir == p.root || (!p.dedupe[args.Path] && !p.dedupe[packageName(args.Path)]) {
		return api.OnResolveResult{}, nil
	}

	res := build.Resolve(args.Path, api.ResolveOptions{
		Importer:   args.Importer,
		ResolveDir: p.root,
		Kind:       args.Kind,
	})
	if len(res.Errors) > 0 {
		return api.OnResolveResult{Errors: res.Errors}, nil
	}
	return api.OnResolveResult{
		Path:      res.Path,
		Namespace: res.Namespace,
		External:  res.External,
	}, nil
}

func (p *pipeline) load(args api.OnLoadArgs) (api.OnLoadResult, error) {
	if err := p.ctx.Err(); err != nil {
		return api.OnLoadResult{}, p.fail(err)
	}

	loader, ok := loaderFor(args.Path)
	if !ok {
		return api.OnLoadResult{}, nil
	}

	data, err := os.ReadFile(args.Path)
	if err != nil {
		return api.OnLoadResult{}, p.fail(zerr.With(zerr.Wrap(err, "failed to read module"), "path", args.Path))
	}

	src := string(data)
	for _, t := range p.transforms {
		out, applied, err := t(p.ctx, args.Path, src)
		if err != nil {
			return api.OnLoadResult{}, p.fail(err)
		}
		if applied {
			src = out
		}
	}

	return api.OnLoadResult{
		Contents:   &src,
		ResolveDir: filepath.Dir(args.Path),
		Loader:     loader,
	}, nil
}

func loaderFor(path string) (api.Loader, bool) {
	if domain.IsTemplate(path) {
		return api.LoaderJS, true
	}
	switch filepath.Ext(path) {
	case ".js", ".mjs", ".cjs":
		return api.LoaderJS, true
	case ".jsx":
		return api.LoaderJSX, true
	case ".ts", ".mts", ".cts":
		return api.LoaderTS, true
	case ".tsx":
		return api.LoaderTSX, true
	case ".json":
		return api.LoaderJSON, true
	case ".css":
		return api.LoaderCSS, true
	default:
		return api.LoaderNone, false
	}
}

// packageName returns the package part of a bare import path, keeping npm scopes.
func packageName(path string) string {
	parts := strings.SplitN(path, "/", 3)
	if strings.HasPrefix(path, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
