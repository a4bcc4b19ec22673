package compiler_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/core/ports"
	"go.trai.ch/viewc/internal/core/ports/mocks"
	"go.trai.ch/viewc/internal/engine/compiler"
	"go.uber.org/mock/gomock"
)

const widget = "/app/views/Widget.tmpl"

type compilerTestMocks struct {
	ctrl      *gomock.Controller
	bundler   *mocks.MockBundler
	loader    *mocks.MockModuleLoader
	registrar *mocks.MockSourceMapRegistrar
	tracer    *mocks.MockTracer
}

// setupCompilerTest creates a compiler whose ambient environment is env.
func setupCompilerTest(t *testing.T, env string) (*compiler.Compiler, compilerTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := compilerTestMocks{
		ctrl:      ctrl,
		bundler:   mocks.NewMockBundler(ctrl),
		loader:    mocks.NewMockModuleLoader(ctrl),
		registrar: mocks.NewMockSourceMapRegistrar(ctrl),
		tracer:    mocks.NewMockTracer(ctrl),
	}

	mockSpan := mocks.NewMockSpan(ctrl)
	mockSpan.EXPECT().End().AnyTimes()
	mockSpan.EXPECT().RecordError(gomock.Any()).AnyTimes()
	mockSpan.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

	m.tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, mockSpan
		},
	).AnyTimes()

	c := compiler.New(m.bundler, m.loader, m.registrar,
		compiler.WithTracer(m.tracer),
		compiler.WithGetenv(func(key string) string {
			if key == domain.EnvVar {
				return env
			}
			return ""
		}),
	)
	return c, m
}

func chunkOutput(code string) domain.Output {
	return domain.Output{Items: []domain.OutputItem{{
		Kind:     domain.KindChunk,
		FileName: "Widget.js",
		Code:     code,
		Modules:  []string{widget},
	}}}
}

func TestCompile_ProductionCachesArtifact(t *testing.T) {
	c, m := setupCompilerTest(t, domain.EnvProduction)
	artifact := mocks.NewMockArtifact(m.ctrl)

	m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(chunkOutput("module.exports = 1;"), nil).Times(1)
	m.loader.EXPECT().Load(gomock.Any(), "module.exports = 1;", widget).Return(artifact, nil).Times(1)

	first, err := c.Compile(t.Context(), widget, domain.CompileOptions{})
	require.NoError(t, err)

	second, err := c.Compile(t.Context(), widget, domain.CompileOptions{})
	require.NoError(t, err)

	require.Same(t, first, second)
	assert.Equal(t, 1, c.CacheLen())
}

// The cache key deliberately ignores every option except hydratable, so a
// changed replacement map is served the previously compiled artifact.
func TestCompile_CacheKeyIgnoresNonHydratableOptions(t *testing.T) {
	c, m := setupCompilerTest(t, domain.EnvProduction)
	artifact := mocks.NewMockArtifact(m.ctrl)

	m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(chunkOutput("a"), nil).Times(1)
	m.loader.EXPECT().Load(gomock.Any(), "a", widget).Return(artifact, nil).Times(1)

	first, err := c.Compile(t.Context(), widget, domain.CompileOptions{
		Replace: map[string]any{"feature.flag": true},
	})
	require.NoError(t, err)

	second, err := c.Compile(t.Context(), widget, domain.CompileOptions{
		Env:     "staging",
		Replace: map[string]any{"feature.flag": false},
		Dedupe:  []string{"shared-lib"},
	})
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestCompile_HydratableSeparatesEntries(t *testing.T) {
	c, m := setupCompilerTest(t, domain.EnvProduction)
	hydratable := mocks.NewMockArtifact(m.ctrl)
	static := mocks.NewMockArtifact(m.ctrl)

	gomock.InOrder(
		m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(chunkOutput("h"), nil),
		m.loader.EXPECT().Load(gomock.Any(), "h", widget).Return(hydratable, nil),
		m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(chunkOutput("s"), nil),
		m.loader.EXPECT().Load(gomock.Any(), "s", widget).Return(static, nil),
	)

	a, err := c.Compile(t.Context(), widget, domain.CompileOptions{Hydratable: domain.Bool(true)})
	require.NoError(t, err)
	b, err := c.Compile(t.Context(), widget, domain.CompileOptions{Hydratable: domain.Bool(false)})
	require.NoError(t, err)

	require.Same(t, hydratable, a)
	require.Same(t, static, b)
	assert.Equal(t, 2, c.CacheLen())
}

func TestCompile_CacheDisabledAlwaysRunsPipeline(t *testing.T) {
	c, m := setupCompilerTest(t, domain.EnvProduction)

	m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(chunkOutput("x"), nil).Times(2)
	m.loader.EXPECT().Load(gomock.Any(), "x", widget).DoAndReturn(
		func(context.Context, string, string) (ports.Artifact, error) {
			return mocks.NewMockArtifact(m.ctrl), nil
		},
	).Times(2)

	opts := domain.CompileOptions{Cache: domain.Bool(false)}
	first, err := c.Compile(t.Context(), widget, opts)
	require.NoError(t, err)
	second, err := c.Compile(t.Context(), widget, opts)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 0, c.CacheLen())
}

func TestCompile_DevelopmentDefaults(t *testing.T) {
	c, m := setupCompilerTest(t, "")
	sourceMap := &domain.SourceMap{JSON: []byte(`{"version":3}`)}
	output := chunkOutput("exports.x = 1;")
	output.Items[0].Map = sourceMap

	m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, stages []domain.Stage) (domain.Output, error) {
			require.Len(t, stages, 4)
			assert.Equal(t, domain.EnvDevelopment, stages[0].Substitute.Values[compiler.KeyEnv])
			assert.True(t, stages[1].Transpile.Dev)
			assert.True(t, stages[1].Transpile.PreserveComments)
			assert.True(t, stages[3].Normalize.SourceMap)
			return output, nil
		},
	).Times(2)
	m.registrar.EXPECT().Register(domain.SourceMapSupport{
		HandleUncaughtExceptions: false,
		Environment:              "goja",
	}).Times(1)
	m.loader.EXPECT().Load(gomock.Any(), gomock.Any(), widget).DoAndReturn(
		func(_ context.Context, code, _ string) (ports.Artifact, error) {
			assert.Equal(t, "exports.x = 1;\n//# sourceMappingURL="+sourceMap.ToURL(), code)
			return mocks.NewMockArtifact(m.ctrl), nil
		},
	).Times(2)

	for range 2 {
		_, err := c.Compile(t.Context(), widget, domain.CompileOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, 0, c.CacheLen(), "development disables caching by default")
}

func TestCompile_DevWithoutMapLoadsPlainCode(t *testing.T) {
	c, m := setupCompilerTest(t, domain.EnvTesting)

	m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(chunkOutput("plain"), nil)
	m.registrar.EXPECT().Register(gomock.Any()).Times(1)
	m.loader.EXPECT().Load(gomock.Any(), "plain", widget).Return(mocks.NewMockArtifact(m.ctrl), nil)

	_, err := c.Compile(t.Context(), widget, domain.CompileOptions{})
	require.NoError(t, err)
}

func TestCompile_RejectsInvalidOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   domain.Output
		sentinel error
		code     string
		contains []string
	}{
		{
			name: "two chunks",
			output: domain.Output{Items: []domain.OutputItem{
				{Kind: domain.KindChunk, FileName: "a.js"},
				{Kind: domain.KindChunk, FileName: "b.js"},
			}},
			sentinel: domain.ErrInvalidOutputLength,
			code:     domain.CodeInvalidLength,
			contains: []string{widget, "2 items"},
		},
		{
			name:     "no output",
			output:   domain.Output{},
			sentinel: domain.ErrInvalidOutputLength,
			code:     domain.CodeInvalidLength,
			contains: []string{widget, "0 items"},
		},
		{
			name: "asset",
			output: domain.Output{Items: []domain.OutputItem{
				{Kind: domain.KindAsset, FileName: "Widget.css", Source: []byte("h1{}")},
			}},
			sentinel: domain.ErrInvalidOutputType,
			code:     domain.CodeInvalidType,
			contains: []string{widget, "asset"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := setupCompilerTest(t, domain.EnvProduction)
			m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(tt.output, nil)

			artifact, err := c.Compile(t.Context(), widget, domain.CompileOptions{})
			require.Error(t, err)
			require.Nil(t, artifact)
			require.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.code, domain.ErrorCode(err))
			for _, s := range tt.contains {
				assert.Contains(t, err.Error(), s)
			}
			assert.Equal(t, 0, c.CacheLen())
		})
	}
}

func TestCompile_BundlerErrorIsNotWrapped(t *testing.T) {
	c, m := setupCompilerTest(t, domain.EnvProduction)
	bundleErr := errors.New("Widget.tmpl:3:1: unexpected token")

	m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(domain.Output{}, bundleErr).Times(2)

	_, err := c.Compile(t.Context(), widget, domain.CompileOptions{})
	require.Same(t, bundleErr, err)

	_, err = c.Compile(t.Context(), widget, domain.CompileOptions{})
	require.Same(t, bundleErr, err, "failures are not cached")
}

func TestCompile_LoadErrorIsNotWrappedOrCached(t *testing.T) {
	c, m := setupCompilerTest(t, domain.EnvProduction)
	loadErr := errors.New("ReferenceError: window is not defined")
	artifact := mocks.NewMockArtifact(m.ctrl)

	m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(chunkOutput("x"), nil).Times(2)
	gomock.InOrder(
		m.loader.EXPECT().Load(gomock.Any(), "x", widget).Return(nil, loadErr),
		m.loader.EXPECT().Load(gomock.Any(), "x", widget).Return(artifact, nil),
	)

	_, err := c.Compile(t.Context(), widget, domain.CompileOptions{})
	require.Same(t, loadErr, err)
	assert.Equal(t, 0, c.CacheLen())

	got, err := c.Compile(t.Context(), widget, domain.CompileOptions{})
	require.NoError(t, err)
	require.Same(t, artifact, got)
}

func TestClearCache_RerunsPipelineButNotInstaller(t *testing.T) {
	c, m := setupCompilerTest(t, domain.EnvProduction)
	opts := domain.CompileOptions{Dev: domain.Bool(true), Cache: domain.Bool(true)}

	m.registrar.EXPECT().Register(gomock.Any()).Times(1)
	m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(chunkOutput("x"), nil).Times(2)
	m.loader.EXPECT().Load(gomock.Any(), "x", widget).DoAndReturn(
		func(context.Context, string, string) (ports.Artifact, error) {
			return mocks.NewMockArtifact(m.ctrl), nil
		},
	).Times(2)

	first, err := c.Compile(t.Context(), widget, opts)
	require.NoError(t, err)

	hit, err := c.Compile(t.Context(), widget, opts)
	require.NoError(t, err)
	require.Same(t, first, hit)

	c.ClearCache()
	assert.Equal(t, 0, c.CacheLen())

	fresh, err := c.Compile(t.Context(), widget, opts)
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
}

func TestCompile_ConcurrentRequestsShareOnePipelineRun(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, m := setupCompilerTest(t, domain.EnvProduction)
		artifact := mocks.NewMockArtifact(m.ctrl)
		release := make(chan struct{})

		m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).DoAndReturn(
			func(context.Context, string, []domain.Stage) (domain.Output, error) {
				<-release
				return chunkOutput("x"), nil
			},
		).Times(1)
		m.loader.EXPECT().Load(gomock.Any(), "x", widget).Return(artifact, nil).Times(1)

		const callers = 8
		results := make([]ports.Artifact, callers)
		var wg sync.WaitGroup
		for i := range callers {
			wg.Go(func() {
				a, err := c.Compile(context.Background(), widget, domain.CompileOptions{})
				assert.NoError(t, err)
				results[i] = a
			})
		}

		synctest.Wait()
		close(release)
		wg.Wait()

		for _, a := range results {
			assert.Same(t, artifact, a)
		}
	})
}

func TestCompile_CancelledCallerDoesNotFailSharedRun(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		c, m := setupCompilerTest(t, domain.EnvProduction)
		artifact := mocks.NewMockArtifact(m.ctrl)
		release := make(chan struct{})
		bundleCtx := make(chan context.Context, 1)

		m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).DoAndReturn(
			func(ctx context.Context, _ string, _ []domain.Stage) (domain.Output, error) {
				bundleCtx <- ctx
				select {
				case <-release:
					return chunkOutput("x"), nil
				case <-ctx.Done():
					return domain.Output{}, ctx.Err()
				}
			},
		).Times(1)
		m.loader.EXPECT().Load(gomock.Any(), "x", widget).Return(artifact, nil).Times(1)

		ctxA, cancelA := context.WithCancel(context.Background())
		errA := make(chan error, 1)
		go func() {
			_, err := c.Compile(ctxA, widget, domain.CompileOptions{})
			errA <- err
		}()
		synctest.Wait()

		type result struct {
			artifact ports.Artifact
			err      error
		}
		resB := make(chan result, 1)
		go func() {
			a, err := c.Compile(context.Background(), widget, domain.CompileOptions{})
			resB <- result{a, err}
		}()
		synctest.Wait()

		cancelA()
		require.ErrorIs(t, <-errA, context.Canceled)
		require.NoError(t, (<-bundleCtx).Err())

		close(release)
		b := <-resB
		require.NoError(t, b.err)
		assert.Same(t, artifact, b.artifact)
		assert.Equal(t, 1, c.CacheLen())
	})
}

func TestGenerate_DoesNotEvaluateOrCache(t *testing.T) {
	c, m := setupCompilerTest(t, domain.EnvProduction)
	m.bundler.EXPECT().Bundle(gomock.Any(), widget, gomock.Any()).Return(chunkOutput("code"), nil)

	chunk, plan, err := c.Generate(t.Context(), widget, domain.CompileOptions{})
	require.NoError(t, err)

	assert.Equal(t, "code", chunk.Code)
	assert.Equal(t, domain.EnvProduction, plan.Flags.Env)
	assert.True(t, strings.HasSuffix(plan.Key.String(), ":true"))
	assert.Equal(t, 0, c.CacheLen())
}
