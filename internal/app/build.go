package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/viewc/internal/ui/output"
	"go.trai.ch/viewc/internal/ui/style"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// digestWidth is the number of digest characters shown in the build report.
const digestWidth = 8

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	CompileFlags

	// Jobs bounds concurrent generation. Zero means one per CPU.
	Jobs int
}

type buildResult struct {
	entry     string
	info      *domain.BundleInfo
	unchanged bool
	err       error
}

// Build generates every file without evaluating it and stores the code with its bundle info.
// With no files, every template below the project root is built.
func (a *App) Build(ctx context.Context, files []string, opts BuildOptions) error {
	cfg, err := a.loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	entries, err := a.collectEntries(cfg.Root, files)
	if err != nil {
		return err
	}

	store, err := a.storeFactory(cfg.StoreDir)
	if err != nil {
		return err
	}

	compileOpts := a.compileOptions(cfg, opts.CompileFlags)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	results := make([]buildResult, len(entries))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = a.buildOne(ctx, store, entry, compileOpts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return zerr.Wrap(err, "build interrupted")
	}

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			a.logger.Error(r.err)
		}
	}

	if err := a.writeReport(a.out, cfg, results); err != nil {
		return err
	}

	if failed > 0 {
		return zerr.With(
			zerr.Wrap(domain.ErrBuildFailed, fmt.Sprintf("%d of %d templates failed", failed, len(results))),
			"failed", failed,
		)
	}
	return nil
}

func (a *App) buildOne(
	ctx context.Context,
	store ports.BundleStore,
	entry string,
	opts domain.CompileOptions,
) buildResult {
	result := buildResult{entry: entry}

	sourceDigest, err := a.hasher.HashFile(entry)
	if err != nil {
		result.err = err
		return result
	}

	chunk, plan, err := a.compiler.Generate(ctx, entry, opts)
	if err != nil {
		result.err = err
		return result
	}
	digest := a.hasher.HashBytes([]byte(chunk.Code))

	prev, err := store.Get(entry)
	if err != nil {
		result.err = err
		return result
	}
	if prev != nil && prev.Digest == digest && prev.SourceDigest == sourceDigest &&
		prev.Env == plan.Flags.Env && prev.Hydratable == plan.Flags.Hydratable {
		result.info = prev
		result.unchanged = true
		return result
	}

	info, err := store.Put(domain.BundleInfo{
		Filename:     entry,
		Env:          plan.Flags.Env,
		Hydratable:   plan.Flags.Hydratable,
		Dev:          plan.Flags.Dev,
		SourceDigest: sourceDigest,
		Digest:       digest,
		Modules:      chunk.Modules,
		BuiltAt:      time.Now().UTC(),
	}, []byte(chunk.Code))
	if err != nil {
		result.err = err
		return result
	}
	result.info = info
	return result
}

// collectEntries resolves the given files, or discovers templates below root.
func (a *App) collectEntries(root string, files []string) ([]string, error) {
	if len(files) == 0 {
		var found []string
		for path := range a.walker.WalkFiles(root, nil) {
			if domain.IsTemplate(path) {
				found = append(found, path)
			}
		}
		if len(found) == 0 {
			return nil, zerr.With(zerr.Wrap(domain.ErrNoEntrySpecified, "no templates found"), "root", root)
		}
		slices.Sort(found)
		return found, nil
	}

	entries := make([]string, 0, len(files))
	for _, f := range files {
		entry, err := a.resolveEntry(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return slices.Compact(entries), nil
}

func (a *App) writeReport(w io.Writer, cfg *domain.ProjectConfig, results []buildResult) error {
	r := lipgloss.NewRenderer(w)
	if output.IsTerminal(w) {
		r.SetColorProfile(output.ColorProfile())
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	success := r.NewStyle().Inherit(style.Success)
	failure := r.NewStyle().Inherit(style.Failure)
	muted := r.NewStyle().Inherit(style.Muted)
	heading := r.NewStyle().Inherit(style.Heading)

	rel := func(path string) string {
		if p, err := filepath.Rel(cfg.Root, path); err == nil {
			return p
		}
		return path
	}

	width := 0
	for _, res := range results {
		width = max(width, len(rel(res.entry)))
	}

	var b strings.Builder
	built, unchanged := 0, 0
	for _, res := range results {
		name := fmt.Sprintf("%-*s", width, rel(res.entry))
		switch {
		case res.err != nil:
			fmt.Fprintf(&b, "  %s %s  %s\n", failure.Render(style.Cross), name, failure.Render(firstLine(res.err)))
		case res.unchanged:
			unchanged++
			fmt.Fprintf(&b, "  %s %s  %s\n", muted.Render(style.Dot), name, muted.Render("unchanged"))
		default:
			built++
			fmt.Fprintf(&b, "  %s %s  %8s  %s  %s\n",
				success.Render(style.Check), name,
				formatSize(res.info.Size),
				pluralize(len(res.info.Modules), "module"),
				muted.Render(shortDigest(res.info.Digest)),
			)
		}
	}

	summary := fmt.Sprintf("built %d of %d templates", built, len(results))
	if unchanged > 0 {
		summary += fmt.Sprintf(", %d unchanged", unchanged)
	}
	summary += " into " + rel(cfg.StoreDir)
	b.WriteString(heading.Render(summary))
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return zerr.Wrap(err, "failed to write build report")
	}
	return nil
}

func firstLine(err error) string {
	msg := err.Error()
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		return msg[:i]
	}
	return msg
}

func shortDigest(d string) string {
	if len(d) > digestWidth {
		return d[:digestWidth]
	}
	return d
}

func formatSize(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d B", n)
	}
	return fmt.Sprintf("%.1f kB", float64(n)/1000)
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
