// Package esbuild implements the bundling pipeline on top of esbuild.
package esbuild

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Bundler = (*Bundler)(nil)

// Bundler bundles a single entry into one CommonJS chunk.
type Bundler struct {
	transpiler ports.Transpiler
	root       string
}

// NewBundler creates a Bundler resolving deduplicated packages from root.
func NewBundler(transpiler ports.Transpiler, root string) *Bundler {
	return &Bundler{transpiler: transpiler, root: root}
}

// Bundle runs stages against entry. Diagnostics are reported as *BuildError.
func (b *Bundler) Bundle(ctx context.Context, entry string, stages []domain.Stage) (domain.Output, error) {
	root, err := filepath.Abs(b.root)
	if err != nil {
		return domain.Output{}, zerr.Wrap(err, "failed to resolve bundle root")
	}

	if !filepath.IsAbs(entry) {
		entry = filepath.Join(root, entry)
	}
	if _, err := os.Stat(entry); err != nil {
		return domain.Output{}, zerr.With(zerr.Wrap(domain.ErrEntryNotFound, "cannot bundle entry"), "entry", entry)
	}

	p := &pipeline{
		ctx:        ctx,
		root:       root,
		transpiler: b.transpiler,
		dedupe:     make(map[string]bool),
		format:     api.FormatCommonJS,
	}
	for _, stage := range stages {
		if err := p.apply(stage); err != nil {
			return domain.Output{}, err
		}
	}

	// Output sits next to the entry so map sources resolve from the loaded filename.
	sourceMap := api.SourceMapNone
	if p.sourceMap {
		sourceMap = api.SourceMapExternal
	}

	result := api.Build(api.BuildOptions{
		EntryPoints:    []string{entry},
		AbsWorkingDir:  root,
		Outdir:         filepath.Dir(entry),
		Bundle:         true,
		Write:          false,
		Metafile:       true,
		Format:         p.format,
		Platform:       api.PlatformNeutral,
		Target:         api.ES2017,
		MainFields:     []string{"module", "main"},
		Sourcemap:      sourceMap,
		SourcesContent: api.SourcesContentInclude,
		ResolveExtensions: []string{
			".tmpl", ".svelte", ".mjs", ".js", ".cjs", ".ts", ".json",
		},
		LogLevel: api.LogLevelSilent,
		Plugins:  []api.Plugin{p.plugin()},
	})
	if len(result.Errors) > 0 {
		return domain.Output{}, newBuildError(entry, result.Errors, p.cause)
	}

	return collect(root, result)
}

// collect maps esbuild output files to output items, attaching each .map file to its chunk.
func collect(root string, result api.BuildResult) (domain.Output, error) {
	var meta Metafile
	if result.Metafile != "" {
		if err := json.Unmarshal([]byte(result.Metafile), &meta); err != nil {
			return domain.Output{}, zerr.Wrap(err, "failed to parse esbuild metafile")
		}
	}

	maps := make(map[string][]byte)
	for _, f := range result.OutputFiles {
		if strings.HasSuffix(f.Path, ".map") {
			maps[strings.TrimSuffix(f.Path, ".map")] = f.Contents
		}
	}

	var out domain.Output
	for _, f := range result.OutputFiles {
		if strings.HasSuffix(f.Path, ".map") {
			continue
		}
		name := filepath.Base(f.Path)
		if !isCode(f.Path) {
			out.Items = append(out.Items, domain.OutputItem{
				Kind:     domain.KindAsset,
				FileName: name,
				Source:   f.Contents,
			})
			continue
		}

		item := domain.OutputItem{
			Kind:     domain.KindChunk,
			FileName: name,
			Code:     string(f.Contents),
			Modules:  moduleList(root, f.Path, meta),
		}
		if m, ok := maps[f.Path]; ok {
			item.Map = &domain.SourceMap{JSON: m}
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

func isCode(path string) bool {
	switch filepath.Ext(path) {
	case ".js", ".cjs", ".mjs":
		return true
	default:
		return false
	}
}

func moduleList(root, path string, meta Metafile) []string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return nil
	}
	output, ok := meta.Outputs[filepath.ToSlash(rel)]
	if !ok {
		return nil
	}
	modules := make([]string, 0, len(output.Inputs))
	for input := range output.Inputs {
		modules = append(modules, input)
	}
	slices.Sort(modules)
	return modules
}
