package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/viewc/internal/adapters/telemetry"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/zerr"
)

// watchedExtensions are the non-template files whose changes trigger a re-render.
var watchedExtensions = []string{".js", ".mjs", ".cjs", ".css", ".json", ".yaml", ".yml"}

// RenderOptions configuration for the Render method.
type RenderOptions struct {
	CompileFlags

	Props   map[string]any
	Watch   bool
	Timings bool
}

// Render compiles file, renders it with the given props and prints head then HTML.
// In watch mode it re-renders after every relevant change until ctx is done.
func (a *App) Render(ctx context.Context, file string, opts RenderOptions) error {
	cfg, err := a.loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	entry, err := a.resolveEntry(file)
	if err != nil {
		return err
	}

	if opts.Timings {
		shutdown := telemetry.InstallTimings(a.logger)
		defer func() { _ = shutdown(context.WithoutCancel(ctx)) }()
	}

	compileOpts := a.compileOptions(cfg, opts.CompileFlags)
	if err := a.renderOnce(ctx, entry, compileOpts, opts.Props); err != nil {
		if !opts.Watch {
			return err
		}
		a.logger.Error(err)
	}

	if !opts.Watch {
		return nil
	}
	return a.watch(ctx, cfg.Root, entry, compileOpts, opts.Props)
}

func (a *App) renderOnce(ctx context.Context, entry string, opts domain.CompileOptions, props map[string]any) error {
	artifact, err := a.compiler.Compile(ctx, entry, opts)
	if err != nil {
		return err
	}

	result, err := artifact.Render(ctx, props)
	if err != nil {
		return err
	}
	return writeResult(a.out, result)
}

func writeResult(w io.Writer, result domain.RenderResult) error {
	var b strings.Builder
	if result.Head != "" {
		b.WriteString(result.Head)
		b.WriteByte('\n')
	}
	b.WriteString(result.HTML)
	b.WriteByte('\n')
	if _, err := io.WriteString(w, b.String()); err != nil {
		return zerr.Wrap(err, "failed to write rendered output")
	}
	return nil
}

func (a *App) watch(
	ctx context.Context,
	root, entry string,
	opts domain.CompileOptions,
	props map[string]any,
) error {
	w, err := a.watcherFactory()
	if err != nil {
		return err
	}
	if err := w.Start(ctx, root); err != nil {
		_ = w.Stop()
		return err
	}
	defer func() { _ = w.Stop() }()

	a.logger.Info(fmt.Sprintf("watching %s for changes", root))

	for event := range w.Events() {
		if !relevant(event.Path) {
			continue
		}
		rel, relErr := filepath.Rel(root, event.Path)
		if relErr != nil {
			rel = event.Path
		}
		a.logger.Info("change detected: " + rel)

		a.compiler.ClearCache()
		start := time.Now()
		if err := a.renderOnce(ctx, entry, opts, props); err != nil {
			if ctx.Err() != nil {
				break
			}
			a.logger.Error(err)
			continue
		}
		a.logger.Info(fmt.Sprintf("re-rendered %s in %s", filepath.Base(entry), time.Since(start).Round(time.Millisecond)))
	}
	return nil
}

func relevant(path string) bool {
	if domain.IsTemplate(path) {
		return true
	}
	return slices.Contains(watchedExtensions, filepath.Ext(path))
}

// ParseReplacements turns key=value pairs into replacement values.
// Values that parse as a JSON literal keep their type; anything else is a string.
func ParseReplacements(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidReplacement, "cannot parse replacement"), "value", pair)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[key] = v
	}
	return out, nil
}

// LoadProps decodes props from an inline JSON document or a file.
// The inline document wins when both are given; neither yields nil props.
func LoadProps(inline, file string) (map[string]any, error) {
	var data []byte
	switch {
	case inline != "":
		data = []byte(inline)
	case file != "":
		b, err := os.ReadFile(file) //nolint:gosec // path is provided by user
		if err != nil {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidProps, err.Error()), "path", file)
		}
		data = b
	default:
		return nil, nil
	}

	var props map[string]any
	if err := json.Unmarshal(data, &props); err != nil {
		var typeErr *json.UnmarshalTypeError
		msg := err.Error()
		if errors.As(err, &typeErr) {
			msg = "props must be a JSON object"
		}
		return nil, zerr.Wrap(domain.ErrInvalidProps, msg)
	}
	return props, nil
}
