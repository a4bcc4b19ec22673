package domain

import "time"

// BundleInfo describes a generated bundle persisted by the build command.
type BundleInfo struct {
	Filename     string    `json:"filename"`
	Env          string    `json:"env"`
	Hydratable   bool      `json:"hydratable"`
	Dev          bool      `json:"dev"`
	SourceDigest string    `json:"source_digest"`
	Digest       string    `json:"digest"`
	Size         int       `json:"size"`
	Modules      []string  `json:"modules"`
	CodePath     string    `json:"code_path"`
	BuiltAt      time.Time `json:"built_at"`
}

// RenderResult is the normalized output of rendering a component.
type RenderResult struct {
	HTML string
	Head string
	CSS  string
}

// SourceMapSupport configures debug mapping for evaluated modules.
type SourceMapSupport struct {
	HandleUncaughtExceptions bool
	Environment              string
}

// PreprocessSpec declares an external command preprocessor in the project config.
type PreprocessSpec struct {
	Name       string
	Command    []string
	Extensions []string
}

// ProjectConfig is the project level compile configuration.
type ProjectConfig struct {
	// Root is the directory holding the config file, or the working directory when absent.
	Root string

	Env        string
	Dev        *bool
	Cache      *bool
	Hydratable *bool
	Replace    map[string]any
	Dedupe     []string
	Preprocess []PreprocessSpec
	StoreDir   string
}
