package compiler

import (
	"maps"
	"slices"

	"go.trai.ch/viewc/internal/core/domain"
)

// DefaultDedupe lists the runtime packages that always resolve to a single instance.
var DefaultDedupe = []string{"viewc", "viewc/internal", "viewc/store"}

// Substitution keys that are always defined.
const (
	KeyIsBrowser = "runtime.isBrowser"
	KeyEnv       = "runtime.env"
)

// ResolveFlags derives the mode switches of a request.
// Explicit options win, then ambientEnv, then the development default.
func ResolveFlags(opts domain.CompileOptions, ambientEnv string) domain.Flags {
	env := opts.Env
	if env == "" {
		env = ambientEnv
	}
	if env == "" {
		env = domain.EnvDevelopment
	}

	dev := env == domain.EnvDevelopment || env == domain.EnvTesting
	if opts.Dev != nil {
		dev = *opts.Dev
	}

	cache := !dev
	if opts.Cache != nil {
		cache = *opts.Cache
	}

	hydratable := true
	if opts.Hydratable != nil {
		hydratable = *opts.Hydratable
	}

	return domain.Flags{
		Env:        env,
		Dev:        dev,
		Cache:      cache,
		Hydratable: hydratable,
	}
}

// Configure turns a compile request into an immutable plan. It has no side effects.
func Configure(filename string, opts domain.CompileOptions, ambientEnv string) domain.Plan {
	flags := ResolveFlags(opts, ambientEnv)

	var key *domain.CacheKey
	if flags.Cache {
		key = &domain.CacheKey{Filename: filename, Hydratable: flags.Hydratable}
	}

	values := map[string]any{
		KeyIsBrowser: false,
		KeyEnv:       flags.Env,
	}
	maps.Copy(values, opts.Replace)

	dedupe := slices.Concat(DefaultDedupe, opts.Dedupe)

	return domain.Plan{
		Filename: filename,
		Flags:    flags,
		Key:      key,
		Stages: []domain.Stage{
			{
				Name:       domain.StageSubstitute,
				Substitute: &domain.SubstitutionConfig{Values: values},
			},
			{
				Name: domain.StageTranspile,
				Transpile: &domain.TranspileConfig{
					Generate:           "ssr",
					Hydratable:         flags.Hydratable,
					Dev:                flags.Dev,
					PreserveComments:   flags.Dev,
					PreserveWhitespace: flags.Dev,
					CSS:                false,
					Preprocess:         slices.Clone(opts.Preprocess),
				},
			},
			{
				Name:    domain.StageResolve,
				Resolve: &domain.ResolveConfig{Dedupe: dedupe},
			},
			{
				Name: domain.StageNormalize,
				Normalize: &domain.NormalizeConfig{
					Format:    "cjs",
					Exports:   "auto",
					SourceMap: flags.Dev,
				},
			},
		},
	}
}
