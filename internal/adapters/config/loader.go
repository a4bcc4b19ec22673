// Package config provides the configuration loader for viewc.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// supportedVersion is the only viewc.yaml schema version understood by this loader.
const supportedVersion = "1"

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds the nearest viewc.yaml at or above cwd.
// Without one, defaults rooted at cwd are returned.
func (l *Loader) Load(cwd string) (*domain.ProjectConfig, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve working directory")
	}

	path, ok := findConfig(abs)
	if !ok {
		return defaults(abs), nil
	}
	return l.LoadFile(path)
}

// LoadFile parses the configuration file at path.
func (l *Loader) LoadFile(path string) (*domain.ProjectConfig, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve config path")
	}

	var file Viewcfile
	if err := readAndUnmarshalYAML(abs, &file); err != nil {
		return nil, err
	}

	if file.Version != "" && file.Version != supportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares unknown version %q, reading it as version %s",
			domain.ConfigFileName, file.Version, supportedVersion))
	}

	root := filepath.Dir(abs)
	cfg := defaults(root)
	cfg.Env = strings.TrimSpace(file.Env)
	cfg.Dev = file.Dev
	cfg.Cache = file.Cache
	cfg.Hydratable = file.Hydratable
	cfg.Replace = file.Replace
	cfg.Dedupe = canonicalizeStrings(file.Dedupe)
	if file.Store != "" {
		cfg.StoreDir = resolvePath(root, file.Store)
	}

	for i, dto := range file.Preprocess {
		spec, err := toPreprocessSpec(i, dto)
		if err != nil {
			return nil, zerr.With(err, "config", abs)
		}
		cfg.Preprocess = append(cfg.Preprocess, spec)
	}
	return cfg, nil
}

func defaults(root string) *domain.ProjectConfig {
	return &domain.ProjectConfig{
		Root:     root,
		StoreDir: filepath.Join(root, domain.DefaultStorePath()),
	}
}

func findConfig(dir string) (string, bool) {
	for {
		path := filepath.Join(dir, domain.ConfigFileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func readAndUnmarshalYAML(path string, out any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", path)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, err.Error()), "path", path)
	}
	return nil
}

func toPreprocessSpec(index int, dto PreprocessorDTO) (domain.PreprocessSpec, error) {
	name := strings.TrimSpace(dto.Name)
	if name == "" {
		name = fmt.Sprintf("preprocess[%d]", index)
	}
	if len(dto.Cmd) == 0 || strings.TrimSpace(dto.Cmd[0]) == "" {
		return domain.PreprocessSpec{}, zerr.With(zerr.Wrap(domain.ErrInvalidPreprocessor, "invalid preprocess entry"),
			"preprocessor", name)
	}

	exts := make([]string, 0, len(dto.Extensions))
	for _, ext := range dto.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = slices.Clone(domain.TemplateExtensions)
	}

	return domain.PreprocessSpec{
		Name:       name,
		Command:    slices.Clone(dto.Cmd),
		Extensions: canonicalizeStrings(exts),
	}, nil
}

func resolvePath(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// canonicalizeStrings sorts and deduplicates strs, dropping blanks.
func canonicalizeStrings(strs []string) []string {
	if len(strs) == 0 {
		return nil
	}
	sorted := make([]string, 0, len(strs))
	for _, s := range strs {
		if s = strings.TrimSpace(s); s != "" {
			sorted = append(sorted, s)
		}
	}
	slices.Sort(sorted)
	return slices.Compact(sorted)
}
