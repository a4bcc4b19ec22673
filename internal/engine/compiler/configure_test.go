package compiler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/engine/compiler"
)

func TestResolveFlags(t *testing.T) {
	tests := []struct {
		name    string
		opts    domain.CompileOptions
		ambient string
		want    domain.Flags
	}{
		{
			name: "defaults to development",
			want: domain.Flags{Env: "development", Dev: true, Cache: false, Hydratable: true},
		},
		{
			name:    "ambient production",
			ambient: "production",
			want:    domain.Flags{Env: "production", Dev: false, Cache: true, Hydratable: true},
		},
		{
			name:    "ambient testing is dev",
			ambient: "testing",
			want:    domain.Flags{Env: "testing", Dev: true, Cache: false, Hydratable: true},
		},
		{
			name:    "explicit env beats ambient",
			opts:    domain.CompileOptions{Env: "staging"},
			ambient: "development",
			want:    domain.Flags{Env: "staging", Dev: false, Cache: true, Hydratable: true},
		},
		{
			name:    "explicit dev beats env",
			opts:    domain.CompileOptions{Dev: domain.Bool(true)},
			ambient: "production",
			want:    domain.Flags{Env: "production", Dev: true, Cache: false, Hydratable: true},
		},
		{
			name:    "explicit cache beats dev",
			opts:    domain.CompileOptions{Cache: domain.Bool(true)},
			ambient: "",
			want:    domain.Flags{Env: "development", Dev: true, Cache: true, Hydratable: true},
		},
		{
			name:    "explicit hydratable false",
			opts:    domain.CompileOptions{Hydratable: domain.Bool(false)},
			ambient: "production",
			want:    domain.Flags{Env: "production", Dev: false, Cache: true, Hydratable: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compiler.ResolveFlags(tt.opts, tt.ambient))
		})
	}
}

func TestConfigure_StageOrderAndValues(t *testing.T) {
	plan := compiler.Configure(widget, domain.CompileOptions{
		Replace: map[string]any{"runtime.isBrowser": true, "api.url": "https://example.test"},
		Dedupe:  []string{"shared-ui"},
	}, "production")

	require.Len(t, plan.Stages, 4)
	names := make([]domain.StageName, 0, len(plan.Stages))
	for _, s := range plan.Stages {
		names = append(names, s.Name)
	}
	assert.Equal(t, []domain.StageName{
		domain.StageSubstitute, domain.StageTranspile, domain.StageResolve, domain.StageNormalize,
	}, names)

	assert.Equal(t, map[string]any{
		"runtime.isBrowser": true,
		"runtime.env":       "production",
		"api.url":           "https://example.test",
	}, plan.Stages[0].Substitute.Values)

	assert.Equal(t, domain.TranspileConfig{
		Generate:           "ssr",
		Hydratable:         true,
		Dev:                false,
		PreserveComments:   false,
		PreserveWhitespace: false,
		CSS:                false,
	}, *plan.Stages[1].Transpile)

	assert.Equal(t, []string{"viewc", "viewc/internal", "viewc/store", "shared-ui"}, plan.Stages[2].Resolve.Dedupe)
	assert.Equal(t, domain.NormalizeConfig{Format: "cjs", Exports: "auto", SourceMap: false}, *plan.Stages[3].Normalize)

	require.NotNil(t, plan.Key)
	assert.Equal(t, widget+":true", plan.Key.String())
	assert.Same(t, &plan.Stages[3], plan.Stage(domain.StageNormalize))
}

func TestConfigure_NoKeyWhenCacheDisabled(t *testing.T) {
	plan := compiler.Configure(widget, domain.CompileOptions{}, "")
	assert.Nil(t, plan.Key)
}

func TestConfigure_DoesNotAliasOptions(t *testing.T) {
	replace := map[string]any{"a": 1}
	dedupe := []string{"x"}
	plan := compiler.Configure(widget, domain.CompileOptions{Replace: replace, Dedupe: dedupe}, "")

	replace["a"] = 2
	dedupe[0] = "y"

	assert.Equal(t, 1, plan.Stages[0].Substitute.Values["a"])
	assert.Equal(t, "x", plan.Stages[2].Resolve.Dedupe[3])
	assert.Equal(t, []string{"viewc", "viewc/internal", "viewc/store"}, compiler.DefaultDedupe)
}
