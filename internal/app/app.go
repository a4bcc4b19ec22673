// Package app implements the application layer for viewc.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/viewc/internal/engine/compiler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader   ports.ConfigLoader
	compiler       *compiler.Compiler
	logger         ports.Logger
	hasher         ports.Hasher
	walker         ports.Walker
	storeFactory   ports.BundleStoreFactory
	preprocessors  ports.PreprocessorFactory
	watcherFactory ports.WatcherFactory
	out            io.Writer
	getwd          func() (string, error)
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	comp *compiler.Compiler,
	log ports.Logger,
	hasher ports.Hasher,
	walker ports.Walker,
	storeFactory ports.BundleStoreFactory,
	preprocessors ports.PreprocessorFactory,
	watcherFactory ports.WatcherFactory,
) *App {
	return &App{
		configLoader:   loader,
		compiler:       comp,
		logger:         log,
		hasher:         hasher,
		walker:         walker,
		storeFactory:   storeFactory,
		preprocessors:  preprocessors,
		watcherFactory: watcherFactory,
		out:            os.Stdout,
		getwd:          os.Getwd,
	}
}

// WithOutput sets the writer receiving rendered markup and reports.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithWorkingDir pins the directory used to find the project config.
func (a *App) WithWorkingDir(dir string) *App {
	a.getwd = func() (string, error) { return dir, nil }
	return a
}

// CompileFlags are the compile settings given on the command line.
// Unset fields defer to the project config.
type CompileFlags struct {
	ConfigPath string
	Env        string
	Dev        *bool
	Cache      *bool
	Hydratable *bool
	Replace    map[string]any
	Dedupe     []string
}

// loadConfig reads the explicit config file or searches upward from the working directory.
func (a *App) loadConfig(path string) (*domain.ProjectConfig, error) {
	if path != "" {
		cfg, err := a.configLoader.LoadFile(path)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to load configuration")
		}
		return cfg, nil
	}

	cwd, err := a.getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

// compileOptions layers flags over the project config.
func (a *App) compileOptions(cfg *domain.ProjectConfig, flags CompileFlags) domain.CompileOptions {
	opts := domain.CompileOptions{
		Env:        cfg.Env,
		Dev:        cfg.Dev,
		Cache:      cfg.Cache,
		Hydratable: cfg.Hydratable,
		Dedupe:     append(append([]string(nil), cfg.Dedupe...), flags.Dedupe...),
	}
	if flags.Env != "" {
		opts.Env = flags.Env
	}
	if flags.Dev != nil {
		opts.Dev = flags.Dev
	}
	if flags.Cache != nil {
		opts.Cache = flags.Cache
	}
	if flags.Hydratable != nil {
		opts.Hydratable = flags.Hydratable
	}

	if len(cfg.Replace) > 0 || len(flags.Replace) > 0 {
		opts.Replace = make(map[string]any, len(cfg.Replace)+len(flags.Replace))
		for k, v := range cfg.Replace {
			opts.Replace[k] = v
		}
		for k, v := range flags.Replace {
			opts.Replace[k] = v
		}
	}

	if len(cfg.Preprocess) > 0 && a.preprocessors != nil {
		opts.Preprocess = a.preprocessors(cfg.Root, cfg.Preprocess)
	}
	return opts
}

// resolveEntry makes file absolute and checks that it exists.
func (a *App) resolveEntry(file string) (string, error) {
	if file == "" {
		return "", domain.ErrNoEntrySpecified
	}
	if !filepath.IsAbs(file) {
		cwd, err := a.getwd()
		if err != nil {
			return "", zerr.Wrap(err, "failed to get working directory")
		}
		file = filepath.Join(cwd, file)
	}
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		return "", zerr.With(zerr.Wrap(domain.ErrEntryNotFound, "cannot compile entry"), "file", file)
	}
	return file, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
}

// Clean removes the viewc metadata directory and the bundle store.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	cfg, err := a.loadConfig(options.ConfigPath)
	if err != nil {
		return err
	}

	var errs error
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)), "path", path))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	metaDir := filepath.Join(cfg.Root, domain.DefaultViewcPath())
	if !within(metaDir, cfg.StoreDir) {
		remove(cfg.StoreDir, "bundle store")
	}
	remove(metaDir, "viewc directory")

	return errs
}

// within reports whether path lies inside dir.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
