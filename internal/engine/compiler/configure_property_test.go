//go:build property

package compiler_test

import (
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.trai.ch/viewc/internal/core/domain"
	"go.trai.ch/viewc/internal/engine/compiler"
)

func TestConfigureProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	envs := gen.OneConstOf("", "development", "testing", "production", "staging")

	properties.Property("key is present exactly when caching is on", prop.ForAll(
		func(env string, dev, cache, hydratable bool) bool {
			plan := compiler.Configure(widget, domain.CompileOptions{
				Env:        env,
				Dev:        &dev,
				Cache:      &cache,
				Hydratable: &hydratable,
			}, "")
			if !cache {
				return plan.Key == nil
			}
			return plan.Key != nil &&
				plan.Key.Filename == widget &&
				plan.Key.Hydratable == hydratable
		},
		envs, gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.Property("key ignores replacements and dedupe", prop.ForAll(
		func(value string, dedupe []string, hydratable bool) bool {
			base := compiler.Configure(widget, domain.CompileOptions{Hydratable: &hydratable}, "production")
			other := compiler.Configure(widget, domain.CompileOptions{
				Hydratable: &hydratable,
				Replace:    map[string]any{"runtime.label": value},
				Dedupe:     dedupe,
			}, "production")
			return *base.Key == *other.Key
		},
		gen.AlphaString(), gen.SliceOf(gen.Identifier()), gen.Bool(),
	))

	properties.Property("dev mode drives comments whitespace and source maps together", prop.ForAll(
		func(env, ambient string) bool {
			plan := compiler.Configure(widget, domain.CompileOptions{Env: env}, ambient)
			tr := plan.Stage(domain.StageTranspile).Transpile
			norm := plan.Stage(domain.StageNormalize).Normalize
			dev := plan.Flags.Dev
			return tr.Dev == dev &&
				tr.PreserveComments == dev &&
				tr.PreserveWhitespace == dev &&
				norm.SourceMap == dev &&
				!tr.CSS
		},
		envs, envs,
	))

	properties.Property("default dedupe entries always lead", prop.ForAll(
		func(dedupe []string) bool {
			plan := compiler.Configure(widget, domain.CompileOptions{Dedupe: dedupe}, "")
			got := plan.Stage(domain.StageResolve).Resolve.Dedupe
			return slices.Equal(got[:len(compiler.DefaultDedupe)], compiler.DefaultDedupe) &&
				slices.Equal(got[len(compiler.DefaultDedupe):], dedupe)
		},
		gen.SliceOf(gen.Identifier()),
	))

	properties.TestingRun(t)
}
