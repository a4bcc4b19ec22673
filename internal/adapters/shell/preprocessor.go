// Package shell runs external commands as template preprocessors.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/zerr"
)

// FilenameEnvVar carries the template path to preprocessor commands.
const FilenameEnvVar = "VIEWC_FILENAME"

var _ domain.Preprocessor = (*CommandPreprocessor)(nil)

// CommandPreprocessor pipes template source through an external command.
// The source is written to stdin and stdout replaces it.
type CommandPreprocessor struct {
	spec   domain.PreprocessSpec
	dir    string
	logger ports.Logger
}

// NewCommandPreprocessor creates a preprocessor running spec.Command in dir.
func NewCommandPreprocessor(spec domain.PreprocessSpec, dir string, logger ports.Logger) *CommandPreprocessor {
	return &CommandPreprocessor{spec: spec, dir: dir, logger: logger}
}

// Name returns the configured preprocessor name.
func (p *CommandPreprocessor) Name() string {
	return p.spec.Name
}

// Preprocess runs the command for files matching the configured extensions.
// Other files pass through unchanged.
func (p *CommandPreprocessor) Preprocess(ctx context.Context, filename, source string) (string, error) {
	if len(p.spec.Command) == 0 || !slices.Contains(p.spec.Extensions, filepath.Ext(filename)) {
		return source, nil
	}

	name := p.spec.Command[0]
	env := resolveEnvironment(os.Environ(), map[string]string{FilenameEnvVar: filename})

	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	cmd := exec.CommandContext(ctx, executable, p.spec.Command[1:]...) //nolint:gosec // user provided command
	cmd.Args[0] = name
	cmd.Dir = p.dir
	cmd.Env = env
	cmd.Stdin = strings.NewReader(source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if p.logger != nil {
		for line := range strings.Lines(stderr.String()) {
			if line = strings.TrimRight(line, "\r\n"); line != "" {
				p.logger.Warn(p.spec.Name + ": " + line)
			}
		}
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", zerr.With(zerr.Wrap(ctxErr, "preprocessor interrupted"), "preprocessor", p.spec.Name)
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		wrapped := zerr.With(zerr.Wrap(domain.ErrPreprocessFailed, err.Error()), "preprocessor", p.spec.Name)
		wrapped = zerr.With(wrapped, "file", filename)
		wrapped = zerr.With(wrapped, "exit_code", exitCode)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			wrapped = zerr.With(wrapped, "stderr", msg)
		}
		return "", wrapped
	}
	return stdout.String(), nil
}

// NewPreprocessors builds one preprocessor per spec, preserving order.
func NewPreprocessors(root string, specs []domain.PreprocessSpec, logger ports.Logger) []domain.Preprocessor {
	out := make([]domain.Preprocessor, 0, len(specs))
	for _, spec := range specs {
		out = append(out, NewCommandPreprocessor(spec, root, logger))
	}
	return out
}

// allowListedEnvVars are the system environment variables inherited by preprocessor commands.
var allowListedEnvVars = map[string]struct{}{
	"HOME":        {},
	"TERM":        {},
	"USER":        {},
	"PATH":        {},
	"TMPDIR":      {},
	domain.EnvVar: {},
}

// resolveEnvironment keeps allow-listed system variables and applies overrides.
func resolveEnvironment(sysEnv []string, overrides map[string]string) []string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if _, allowed := allowListedEnvVars[k]; allowed {
			envMap[k] = v
		}
	}
	for k, v := range overrides {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by PATH in env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if v, ok := strings.CutPrefix(e, "PATH="); ok {
			path = v
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
