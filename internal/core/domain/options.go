// Package domain contains the core types of the view compiler.
package domain

import (
	"context"
	"strconv"
)

// Environment names recognized when deriving the development flag.
const (
	EnvDevelopment = "development"
	EnvTesting     = "testing"
	EnvProduction  = "production"
)

// EnvVar is the ambient environment variable consulted when no env option is given.
const EnvVar = "VIEWC_ENV"

// CompileOptions are the caller supplied knobs for a single compile request.
// Unset pointer fields fall back to derived defaults.
type CompileOptions struct {
	Env        string
	Dev        *bool
	Cache      *bool
	Hydratable *bool

	// Replace maps identifiers to literal values substituted into the source.
	Replace map[string]any

	// Preprocess runs, in order, against template sources before transpilation.
	Preprocess []Preprocessor

	// Dedupe lists package names that must resolve to a single instance.
	Dedupe []string
}

// Preprocessor transforms template source text before it is transpiled.
type Preprocessor interface {
	// Name identifies the preprocessor in errors and logs.
	Name() string
	// Preprocess returns the transformed source. Returning the input unchanged is valid.
	Preprocess(ctx context.Context, filename, source string) (string, error)
}

// Flags are the fully resolved mode switches of a compile request.
type Flags struct {
	Env        string
	Dev        bool
	Cache      bool
	Hydratable bool
}

// CacheKey identifies a compiled artifact.
// Only the filename and the hydratable flag participate.
type CacheKey struct {
	Filename   string
	Hydratable bool
}

// String renders the key as filename:hydratable.
func (k CacheKey) String() string {
	return k.Filename + ":" + strconv.FormatBool(k.Hydratable)
}

// Bool returns a pointer to b, for populating optional option fields.
func Bool(b bool) *bool {
	return &b
}
