package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/viewc/cmd/viewc/commands"
	"go.trai.ch/viewc/internal/app"
	"go.trai.ch/viewc/internal/build"
	"go.trai.ch/viewc/internal/core/domain"
)

type mockApp struct {
	renderFunc func(ctx context.Context, file string, opts app.RenderOptions) error
	buildFunc  func(ctx context.Context, files []string, opts app.BuildOptions) error
	cleanFunc  func(ctx context.Context, opts app.CleanOptions) error
}

func (m *mockApp) Render(ctx context.Context, file string, opts app.RenderOptions) error {
	if m.renderFunc != nil {
		return m.renderFunc(ctx, file, opts)
	}
	return nil
}

func (m *mockApp) Build(ctx context.Context, files []string, opts app.BuildOptions) error {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, files, opts)
	}
	return nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil
}

type recordingLogger struct {
	json  bool
	quiet bool
}

func (l *recordingLogger) SetJSON(enable bool) { l.json = enable }
func (l *recordingLogger) SetQuiet(quiet bool) { l.quiet = quiet }

func TestCommands_Render(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.RenderOptions
		var file string

		mock := &mockApp{
			renderFunc: func(_ context.Context, f string, opts app.RenderOptions) error {
				file = f
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock, nil)
		cli.SetArgs([]string{
			"render", "Widget.tmpl",
			"--config", "site/viewc.yaml",
			"--env", "production",
			"--hydratable=false",
			"-r", "api.url=https://example.test",
			"-r", "flags.beta=true",
			"--dedupe", "icons,shared-ui",
			"--props", `{"name":"Ada"}`,
			"--watch",
			"--timings",
		})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "Widget.tmpl", file)
		assert.Equal(t, "site/viewc.yaml", captured.ConfigPath)
		assert.Equal(t, "production", captured.Env)
		assert.Nil(t, captured.Dev)
		assert.Nil(t, captured.Cache)
		require.NotNil(t, captured.Hydratable)
		assert.False(t, *captured.Hydratable)
		assert.Equal(t, map[string]any{"api.url": "https://example.test", "flags.beta": true}, captured.Replace)
		assert.Equal(t, []string{"icons", "shared-ui"}, captured.Dedupe)
		assert.Equal(t, map[string]any{"name": "Ada"}, captured.Props)
		assert.True(t, captured.Watch)
		assert.True(t, captured.Timings)
	})

	t.Run("reads props from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "props.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"count": 2}`), domain.FilePerm))

		var captured app.RenderOptions
		mock := &mockApp{
			renderFunc: func(_ context.Context, _ string, opts app.RenderOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock, nil)
		cli.SetArgs([]string{"render", "Widget.tmpl", "--props-file", path, "--dev"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, map[string]any{"count": float64(2)}, captured.Props)
		require.NotNil(t, captured.Dev)
		assert.True(t, *captured.Dev)
	})

	t.Run("rejects malformed replacement", func(t *testing.T) {
		mock := &mockApp{
			renderFunc: func(context.Context, string, app.RenderOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock, nil)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"render", "Widget.tmpl", "-r", "novalue"})

		err := cli.Execute(context.Background())
		require.ErrorIs(t, err, domain.ErrInvalidReplacement)
	})

	t.Run("rejects non-object props", func(t *testing.T) {
		cli := commands.New(&mockApp{}, nil)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"render", "Widget.tmpl", "--props", "[1,2]"})

		err := cli.Execute(context.Background())
		require.ErrorIs(t, err, domain.ErrInvalidProps)
	})

	t.Run("requires a template", func(t *testing.T) {
		cli := commands.New(&mockApp{}, nil)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"render"})

		require.Error(t, cli.Execute(context.Background()))
	})

	t.Run("returns error on render failure", func(t *testing.T) {
		mock := &mockApp{
			renderFunc: func(context.Context, string, app.RenderOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock, nil)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"render", "Widget.tmpl"})

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Build(t *testing.T) {
	var captured app.BuildOptions
	var files []string

	mock := &mockApp{
		buildFunc: func(_ context.Context, f []string, opts app.BuildOptions) error {
			files = f
			captured = opts
			return nil
		},
	}

	cli := commands.New(mock, nil)
	cli.SetArgs([]string{"build", "a.tmpl", "b.svelte", "-j", "4", "--cache=false"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, []string{"a.tmpl", "b.svelte"}, files)
	assert.Equal(t, 4, captured.Jobs)
	require.NotNil(t, captured.Cache)
	assert.False(t, *captured.Cache)
	assert.Nil(t, captured.Hydratable)
}

func TestCommands_Clean(t *testing.T) {
	var captured app.CleanOptions
	called := false
	mock := &mockApp{
		cleanFunc: func(_ context.Context, opts app.CleanOptions) error {
			called = true
			captured = opts
			return nil
		},
	}

	cli := commands.New(mock, nil)
	cli.SetArgs([]string{"clean", "-c", "viewc.yaml"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, called)
	assert.Equal(t, "viewc.yaml", captured.ConfigPath)
}

func TestCommands_LoggerFlags(t *testing.T) {
	log := &recordingLogger{}
	cli := commands.New(&mockApp{}, log)
	cli.SetArgs([]string{"clean", "--json", "-q"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, log.json)
	assert.True(t, log.quiet)
}

func TestCommands_Version(t *testing.T) {
	cli := commands.New(&mockApp{}, nil)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), build.Version)
}

func TestCommands_VersionJSON(t *testing.T) {
	cli := commands.New(&mockApp{}, nil)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version", "--json"})

	require.NoError(t, cli.Execute(context.Background()))

	var info map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.Equal(t, build.Version, info["version"])
	assert.Equal(t, build.Commit, info["commit"])
	assert.Equal(t, runtime.Version(), info["go"])
}

func TestCommands_LoggerFlagsOnlyApplyWhenGiven(t *testing.T) {
	log := &recordingLogger{json: true}
	cli := commands.New(&mockApp{}, log)
	cli.SetArgs([]string{"clean"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, log.json)
	assert.False(t, log.quiet)
}
